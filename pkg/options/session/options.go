// Package session provides conversation session configuration options.
package session

import (
	"fmt"

	"github.com/kart-io/tutor-x/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains conversation history configuration.
type Options struct {
	// HistoryLimit is the maximum number of messages kept per session.
	HistoryLimit int `json:"history-limit" mapstructure:"history-limit"`

	// RedisEnabled selects the Redis-backed session store instead of
	// the in-memory one.
	RedisEnabled bool `json:"redis-enabled" mapstructure:"redis-enabled"`

	// RedisAddr is the Redis server address (host:port).
	RedisAddr string `json:"redis-addr" mapstructure:"redis-addr"`

	// RedisPassword is the Redis password.
	RedisPassword string `json:"redis-password" mapstructure:"redis-password"`

	// RedisDB is the Redis database number.
	RedisDB int `json:"redis-db" mapstructure:"redis-db"`

	// KeyPrefix 会话键前缀。
	KeyPrefix string `json:"key-prefix" mapstructure:"key-prefix"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		HistoryLimit: 20,
		RedisEnabled: false,
		RedisAddr:    "localhost:6379",
		KeyPrefix:    "tutor:session:",
	}
}

// AddFlags adds flags for session options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.HistoryLimit, options.Join(prefixes...)+"session.history-limit", o.HistoryLimit, "Maximum number of messages kept per session.")
	fs.BoolVar(&o.RedisEnabled, options.Join(prefixes...)+"session.redis-enabled", o.RedisEnabled, "Store session history in Redis instead of memory.")
	fs.StringVar(&o.RedisAddr, options.Join(prefixes...)+"session.redis-addr", o.RedisAddr, "Redis server address.")
	fs.StringVar(&o.RedisPassword, options.Join(prefixes...)+"session.redis-password", o.RedisPassword, "Redis password.")
	fs.IntVar(&o.RedisDB, options.Join(prefixes...)+"session.redis-db", o.RedisDB, "Redis database number.")
	fs.StringVar(&o.KeyPrefix, options.Join(prefixes...)+"session.key-prefix", o.KeyPrefix, "Prefix for session keys in Redis.")
}

// Validate validates the session options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("history-limit must be positive"))
	}
	if o.RedisEnabled && o.RedisAddr == "" {
		errs = append(errs, fmt.Errorf("redis-addr is required when redis-enabled is set"))
	}
	return errs
}

// Complete completes the session options with defaults.
func (o *Options) Complete() error {
	if o.KeyPrefix == "" {
		o.KeyPrefix = "tutor:session:"
	}
	return nil
}
