// config.go: server-level configuration for memline.
//
// Grounded on agilira/balios's config.go: the same Validate-applies-
// defaults shape and the same philosophy that a Config is a normalized,
// fully-resolved value, not a builder. Trimmed to the knobs spec.md §1
// actually leaves to an operator — no slab classes, no MaxSize, no
// eviction ratios, since none of that is in scope.
package config

import "time"

// Default values applied by Validate when the corresponding field is left
// at its zero value.
const (
	DefaultLogLevel     = "info"
	DefaultReadTimeout  = 0 // 0 disables read deadlines, matching net.Conn's default
	DefaultWriteTimeout = 0
)

// ServerConfig holds the server-level settings memline.cmd/memline-server
// and config.HotReloader operate on. It deliberately excludes anything
// Store-internal (spec.md's Non-goals: no memory accounting, no eviction
// policy, no persistence).
type ServerConfig struct {
	// LogLevel is one of "debug", "info", "warn", "error". Default: "info".
	LogLevel string

	// ReadTimeout bounds how long a Session will wait for a client to send
	// a complete command line or data block before the connection is
	// closed. Zero disables the deadline.
	ReadTimeout time.Duration

	// WriteTimeout bounds how long a Session will wait for a reply to be
	// written. Zero disables the deadline.
	WriteTimeout time.Duration
}

// Validate normalizes c in place, filling in defaults for zero-valued
// fields. It never returns an error: every field has a sensible default
// and there is no combination of values this type can express that is
// invalid, mirroring balios's Config.Validate.
func (c *ServerConfig) Validate() error {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return nil
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		LogLevel:     DefaultLogLevel,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}
