package config

import (
	"regexp"
	"strings"
)

const passwordMask = "***"

// keywordPassword matches password=value in a keyword/value DSN, quoted or bare.
var keywordPassword = regexp.MustCompile( //nolint:gochecknoglobals // compiled once, used by RedactURL
	`(password\s*=\s*)('(?:[^'\\]|\\.)*'|\S*)`,
)

// queryPassword matches a password parameter in a URL query string.
var queryPassword = regexp.MustCompile( //nolint:gochecknoglobals // compiled once, used by RedactURL
	`([?&]password=)[^&#]*`,
)

// RedactURL hides the password in a database URL or keyword/value DSN so the
// result is safe to log. Both the userinfo and a password query parameter of
// a URL are masked. Input without a password is returned unchanged.
func RedactURL(raw string) string {
	scheme, rest, isURL := strings.Cut(raw, "://")
	if !isURL {
		return keywordPassword.ReplaceAllString(raw, "${1}"+passwordMask)
	}

	rest = queryPassword.ReplaceAllString(rest, "${1}"+passwordMask)

	at := strings.Index(rest, "@")
	if at < 0 {
		return scheme + "://" + rest
	}

	user, _, hasPassword := strings.Cut(rest[:at], ":")
	if !hasPassword {
		return scheme + "://" + rest
	}

	return scheme + "://" + user + ":" + passwordMask + rest[at:]
}
