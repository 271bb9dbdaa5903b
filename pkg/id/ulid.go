// Package id provides request identifier generation.
package id

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces monotonic ULID strings. Safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewGenerator creates a new ULID generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// New returns a new ULID string.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

var defaultGenerator = NewGenerator()

// New returns a new ULID string from the package-level generator.
func New() string {
	return defaultGenerator.New()
}

// IsValid reports whether s is a well-formed ULID.
func IsValid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
