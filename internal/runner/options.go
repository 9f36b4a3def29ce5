package runner

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OutOfOrderPolicy decides what Up does with pending migrations that sort
// before the newest applied one.
type OutOfOrderPolicy string

// Out-of-order policies.
const (
	OutOfOrderWarn   OutOfOrderPolicy = "warn"
	OutOfOrderReject OutOfOrderPolicy = "reject"
)

// ParseOutOfOrderPolicy converts a config value. The empty string means warn.
func ParseOutOfOrderPolicy(s string) (OutOfOrderPolicy, error) {
	switch p := OutOfOrderPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", OutOfOrderWarn:
		return OutOfOrderWarn, nil
	case OutOfOrderReject:
		return OutOfOrderReject, nil
	default:
		return "", fmt.Errorf("%w: %q (want warn or reject)", ErrInvalidPolicy, s)
	}
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithProgress sets a function called as each migration starts and finishes.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(r *Runner) { r.onProgress = fn }
}

// WithDryRun makes Up and Down report what they would run without opening a transaction.
func WithDryRun(b bool) Option {
	return func(r *Runner) { r.dryRun = b }
}

// WithLockTimeout sets lock_timeout for each migration transaction (PostgreSQL only).
func WithLockTimeout(d time.Duration) Option {
	return func(r *Runner) { r.lockTimeout = d }
}

// WithStatementTimeout sets statement_timeout for each migration transaction (PostgreSQL only).
func WithStatementTimeout(d time.Duration) Option {
	return func(r *Runner) { r.statementTimeout = d }
}

// WithOutOfOrder sets the out-of-order policy. The default is OutOfOrderWarn.
func WithOutOfOrder(p OutOfOrderPolicy) Option {
	return func(r *Runner) { r.outOfOrder = p }
}
