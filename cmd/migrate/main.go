package main

import "github.com/aqasim81/schema-migrate/internal/cli"

func main() {
	cli.Execute()
}
