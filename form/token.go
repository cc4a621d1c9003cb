package form

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator generates unique run tokens for correlating the commits
// and merge of one convergence run.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making tokens
// sortable by creation time, which is helpful when reading a journal.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined run tokens for testing.
// This enables deterministic test execution and golden trace comparison.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedGenerator("run-1", "run-2")
//	gen.Generate() // "run-1"
//	gen.Generate() // "run-2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
// Panics when all tokens have been consumed: a test that runs more
// convergences than it planned for should fail fast.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic(fmt.Sprintf("form: FixedGenerator exhausted after %d tokens", len(g.tokens)))
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
