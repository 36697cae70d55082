// Package store provides the workout.Log backends: a JSON-lines file per
// identity, a SQL table (SQLite or Postgres), an S3 compatible bucket holding
// one object per record, and an in-memory log for tests and demos.
//
// Every backend stores the same self-contained unit produced by
// workout.MarshalUnit and applies the same malformed-unit policy on load:
// malformed units are skipped and logged at WARN unless the store was opened
// with WithStrict, in which case the first one fails the load.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/trainer/pkg/logging"
	"github.com/entrhq/trainer/pkg/workout"
)

var errInvalidIdentity = errors.New("invalid identity")

// Option configures a store.
type Option func(*options)

type options struct {
	logger *logging.Logger
	strict bool
}

// WithLogger sets the logger used for skipped units and failures.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrDiscard(l)
	}
}

// WithStrict makes LoadAll fail with workout.ErrStorageReadFailed on the first
// malformed unit instead of skipping it.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

func newOptions(opts []Option) options {
	o := options{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func checkIdentity(identity string) error {
	if strings.TrimSpace(identity) == "" {
		return fmt.Errorf("%w: empty", errInvalidIdentity)
	}
	if strings.ContainsAny(identity, "/\\\x00") {
		return fmt.Errorf("%w: %q contains a path separator", errInvalidIdentity, identity)
	}
	return nil
}

// encodeUnit checks r and encodes it with workout.MarshalUnit. A present
// duration must be positive. Units already stored are not checked on load.
func encodeUnit(r workout.Record) ([]byte, error) {
	if r.DurationMinutes != nil && *r.DurationMinutes <= 0 {
		return nil, writeFailed("duration must be positive",
			fmt.Errorf("duration %d minutes", *r.DurationMinutes))
	}
	unit, err := workout.MarshalUnit(r)
	if err != nil {
		return nil, writeFailed("could not encode the plan", err)
	}
	return unit, nil
}

func writeFailed(reason string, err error) error {
	return workout.NewError(workout.ErrStorageWriteFailed, reason, err)
}

func readFailed(reason string, err error) error {
	return workout.NewError(workout.ErrStorageReadFailed, reason, err)
}

// decoder applies the malformed-unit policy for one load.
type decoder struct {
	opts   options
	source string
}

func (d decoder) reject(pos int, err error) error {
	if d.opts.strict {
		return readFailed(fmt.Sprintf("unit %d of %s is malformed", pos, d.source), err)
	}
	d.opts.logger.Warnf("skipping malformed unit %d of %s: %v", pos, d.source, err)
	return nil
}

// unit decodes one stored unit given without its separator. ok is false when
// the unit was skipped.
func (d decoder) unit(pos int, b []byte) (rec workout.Record, ok bool, err error) {
	rec, err = workout.UnmarshalUnit(b)
	if err != nil {
		return workout.Record{}, false, d.reject(pos, err)
	}
	return rec, true, nil
}

// stream decodes a '\n' separated sequence of units. Blank lines are ignored.
// A final unit without its separator was torn by an interrupted write and is
// treated as malformed.
func (d decoder) stream(data []byte) ([]workout.Record, error) {
	records := make([]workout.Record, 0)
	pos := 0
	for len(data) > 0 {
		line, rest, found := bytes.Cut(data, []byte{'\n'})
		data = rest
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		pos++
		if !found {
			if err := d.reject(pos, fmt.Errorf("%w: missing record separator", workout.ErrMalformedUnit)); err != nil {
				return nil, err
			}
			break
		}
		rec, ok, err := d.unit(pos, line)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}
