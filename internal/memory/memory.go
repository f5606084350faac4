// Package memory records past analysis decisions in an append-only log.
package memory

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// InputLimit is the number of runes of the raw input kept per record.
	InputLimit = 200
	// PrefixLength is the number of runes of a stored input that must appear
	// in a new input for FindByPrefix to report it.
	PrefixLength = 20
)

// Record is one audit entry.
type Record struct {
	Input     string    `json:"input"`
	Decision  string    `json:"decision"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecord truncates input and stamps the record in UTC.
func NewRecord(input, decision string, now time.Time) Record {
	return Record{
		Input:     Truncate(input, InputLimit),
		Decision:  decision,
		Timestamp: now.UTC(),
	}
}

// Log is an append-only store of decisions.
type Log interface {
	Append(ctx context.Context, rec Record) error
	// FindByPrefix returns decisions whose stored input begins with text that
	// occurs anywhere in input, oldest first.
	FindByPrefix(ctx context.Context, input string) ([]string, error)
}

// History lists stored records, newest first, up to limit (0 means all).
type History interface {
	Records(ctx context.Context, limit int) ([]Record, error)
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// Matches reports whether the stored input's prefix appears in input.
func Matches(stored, input string) bool {
	return strings.Contains(input, Truncate(stored, PrefixLength))
}

// Nop discards every record.
type Nop struct{}

func (Nop) Append(context.Context, Record) error { return nil }

func (Nop) FindByPrefix(context.Context, string) ([]string, error) { return nil, nil }
