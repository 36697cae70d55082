// Package workout models generated workout plans, the per-identity append-only
// history they are kept in, and the pipeline that requests a new plan from a
// text generation service.
//
// A plan is stored as a Record whose fields are all optional, so units written
// before a field existed still decode. Normalize fills every absent field with
// a fixed default and is applied on every write and every read, which keeps old
// and new units in one canonical shape.
package workout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Defaults for absent record fields.
const (
	DefaultActivityType    = "Unknown Type"
	DefaultGoal            = "Unknown Goal"
	DefaultDurationMinutes = 30
	DefaultPlanText        = "No workout plan generated."
)

// Record is the stored shape of one generated plan. The JSON keys match the
// history files the first version of the app wrote, one object per line.
type Record struct {
	ID              *string    `json:"id,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	ActivityType    *string    `json:"type,omitempty"`
	Goal            *string    `json:"goal,omitempty"`
	DurationMinutes *int       `json:"duration,omitempty"`
	PlanText        *string    `json:"plan,omitempty"`
}

// Plan is the canonical, fully populated view of a Record.
type Plan struct {
	ID              string
	CreatedAt       time.Time
	ActivityType    string
	Goal            string
	DurationMinutes int
	PlanText        string
}

// Log is an append-only history of plan records, one sequence per identity.
// Implementations must be safe for concurrent use.
type Log interface {
	// Append normalizes r and appends it to the identity's sequence. It either
	// appends the complete unit or fails with ErrStorageWriteFailed and leaves
	// the sequence unchanged.
	Append(ctx context.Context, identity string, r Record) error

	// LoadAll returns every record of the identity in append order, each
	// normalized. An identity without history yields an empty slice.
	LoadAll(ctx context.Context, identity string) ([]Record, error)
}

// Normalize returns a copy of r with every absent field set to its default.
// Present fields are kept as they are, except that invalid UTF-8 in a text
// field is replaced with U+FFFD the same way the JSON encoding of a unit does,
// so Normalize(r) is exactly what a store loads back after Append(r). Both
// rules are idempotent: Normalize(Normalize(r)) equals Normalize(r). ID and
// CreatedAt are metadata and stay absent when absent.
func Normalize(r Record) Record {
	return Record{
		ID:              validText(clone(r.ID)),
		CreatedAt:       clone(r.CreatedAt),
		ActivityType:    validText(orDefault(r.ActivityType, DefaultActivityType)),
		Goal:            validText(orDefault(r.Goal, DefaultGoal)),
		DurationMinutes: orDefault(r.DurationMinutes, DefaultDurationMinutes),
		PlanText:        validText(orDefault(r.PlanText, DefaultPlanText)),
	}
}

// Plan flattens the normalized record.
func (r Record) Plan() Plan {
	n := Normalize(r)
	p := Plan{
		ActivityType:    *n.ActivityType,
		Goal:            *n.Goal,
		DurationMinutes: *n.DurationMinutes,
		PlanText:        *n.PlanText,
	}
	if n.ID != nil {
		p.ID = *n.ID
	}
	if n.CreatedAt != nil {
		p.CreatedAt = *n.CreatedAt
	}
	return p
}

// MarshalUnit normalizes r and encodes it as one self-contained unit followed
// by the '\n' record separator. Newlines inside fields are escaped by the JSON
// encoding, so a unit never spans lines.
func MarshalUnit(r Record) ([]byte, error) {
	b, err := json.Marshal(Normalize(r))
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return append(b, '\n'), nil
}

// UnmarshalUnit decodes a single unit, without its separator, and normalizes
// the result. Anything other than a JSON object is rejected with
// ErrMalformedUnit.
func UnmarshalUnit(unit []byte) (Record, error) {
	trimmed := bytes.TrimSpace(unit)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Record{}, ErrMalformedUnit
	}
	var r Record
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedUnit, err)
	}
	return Normalize(r), nil
}

// String returns a pointer to s, for building records.
func String(s string) *string { return &s }

// Int returns a pointer to n, for building records.
func Int(n int) *int { return &n }

// validText replaces every byte of *s that is not part of a valid UTF-8
// sequence with U+FFFD, one replacement per byte as encoding/json does.
func validText(s *string) *string {
	if s == nil || utf8.ValidString(*s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(*s) + 2)
	for i := 0; i < len(*s); {
		r, size := utf8.DecodeRuneInString((*s)[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.WriteString((*s)[i : i+size])
		}
		i += size
	}
	v := b.String()
	return &v
}

func orDefault[T any](v *T, def T) *T {
	if v == nil {
		return &def
	}
	return clone(v)
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
