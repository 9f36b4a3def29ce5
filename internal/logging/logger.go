package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported log formats.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatLogfmt  = "logfmt"
)

// ErrInvalidFormat indicates an unknown log format name.
var ErrInvalidFormat = errors.New("invalid log format")

// ErrInvalidLevel indicates an unknown log level name.
var ErrInvalidLevel = errors.New("invalid log level")

// Config selects the log level and encoding.
type Config struct {
	Level  string
	Format string
}

// New builds a logger writing to w. The auto format picks console output when
// w is a terminal and logfmt otherwise.
func New(w io.Writer, cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel

	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, cfg.Level)
		}

		level = lvl
	}

	encoder, err := newEncoder(cfg.Format, w)
	if err != nil {
		return nil, err
	}

	return zap.New(zapcore.NewCore(
		encoder,
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)), nil
}

func newEncoder(format string, w io.Writer) (zapcore.Encoder, error) {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.UTC().Format(time.RFC3339))
	}
	config.EncodeDuration = func(d time.Duration, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(d.String())
	}

	switch strings.ToLower(format) {
	case "", FormatAuto:
		if isTerminal(w) {
			return zapcore.NewConsoleEncoder(config), nil
		}

		return zaplogfmt.NewEncoder(config), nil
	case FormatConsole:
		return zapcore.NewConsoleEncoder(config), nil
	case FormatJSON:
		return zapcore.NewJSONEncoder(config), nil
	case FormatLogfmt:
		return zaplogfmt.NewEncoder(config), nil
	default:
		return nil, fmt.Errorf("%w: %q (want auto, console, json or logfmt)", ErrInvalidFormat, format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
