package observability

import (
	"context"
	"time"

	"github.com/entrhq/trainer/pkg/workout"
)

type instrumentedLog struct {
	next    workout.Log
	metrics *Metrics
	now     func() time.Time
}

// Instrument wraps log so every Append and LoadAll is counted.
func Instrument(log workout.Log, m *Metrics) workout.Log {
	if m == nil {
		return log
	}
	return &instrumentedLog{next: log, metrics: m, now: time.Now}
}

func (l *instrumentedLog) Append(ctx context.Context, identity string, r workout.Record) error {
	err := l.next.Append(ctx, identity, r)
	l.metrics.storeOp(OpAppend, err)
	if err == nil {
		l.metrics.lastSavedGauge.Set(float64(l.now().Unix()))
	}
	return err
}

func (l *instrumentedLog) LoadAll(ctx context.Context, identity string) ([]workout.Record, error) {
	records, err := l.next.LoadAll(ctx, identity)
	l.metrics.storeOp(OpLoadAll, err)
	l.metrics.recordsLoaded.Add(float64(len(records)))
	return records, err
}
