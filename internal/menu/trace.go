package menu

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Record describes one dispatch for the trace log.
type Record struct {
	// Token correlates every record of one interaction.
	Token string `json:"token"`

	// Seq orders records within the process.
	Seq int64 `json:"seq"`

	Menu    string `json:"menu"`
	Element string `json:"element"`

	// Response is the response kind, or "error".
	Response string `json:"response"`

	// Target is the menu rendered after a switch; empty otherwise.
	Target string `json:"target,omitempty"`

	// BlobBefore and BlobAfter are digests of the state the interaction
	// carried in and the state it left behind.
	BlobBefore string `json:"blob_before,omitempty"`
	BlobAfter  string `json:"blob_after,omitempty"`

	Deferred bool   `json:"deferred,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Tracer receives a Record for every dispatch. Tracer failures are logged
// and never fail the interaction.
type Tracer interface {
	Record(ctx context.Context, rec Record) error
}

// TokenGenerator produces dispatch correlation tokens.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// Clock is a monotonic logical clock stamping trace records.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming after start, for a trace log that
// already holds records.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// UUIDv7Generator generates time-sortable UUIDv7 tokens.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
// Panics if UUID generation fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens, for deterministic traces in
// tests.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next token.
//
// Panics if all tokens have been consumed; a test that dispatches more often
// than it planned for is misconfigured.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
