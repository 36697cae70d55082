package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/trainer/pkg/workout"
)

type stubLog struct {
	appendErr error
	loadErr   error
	records   []workout.Record
}

func (s *stubLog) Append(ctx context.Context, identity string, r workout.Record) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.records = append(s.records, r)
	return nil
}

func (s *stubLog) LoadAll(ctx context.Context, identity string) ([]workout.Record, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.records, nil
}

func TestGenerationFinished(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)

	m.GenerationFinished(workout.StateCompleted, 2*time.Second)
	m.GenerationFinished(workout.StateCompleted, time.Second)
	m.GenerationFinished(workout.StateGenerationFailed, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.generations.WithLabelValues(string(workout.StateCompleted))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generations.WithLabelValues(string(workout.StateGenerationFailed))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.generations.WithLabelValues(string(workout.StateRejectedInput))))
	assert.Equal(t, 2, testutil.CollectAndCount(m.generationTime))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestInstrument(t *testing.T) {
	ctx := context.Background()
	m, err := NewMetrics(nil)
	require.NoError(t, err)

	stub := &stubLog{}
	log := Instrument(stub, m)
	log.(*instrumentedLog).now = func() time.Time { return time.Unix(1700000000, 0) }

	require.NoError(t, log.Append(ctx, "sam", workout.Record{}))
	require.NoError(t, log.Append(ctx, "sam", workout.Record{}))
	records, err := log.LoadAll(ctx, "sam")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	stub.appendErr = errors.New("disk full")
	assert.Error(t, log.Append(ctx, "sam", workout.Record{}))
	stub.loadErr = errors.New("unreadable")
	_, err = log.LoadAll(ctx, "sam")
	assert.Error(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.storeOps.WithLabelValues(OpAppend)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeOps.WithLabelValues(OpLoadAll)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues(OpAppend)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues(OpLoadAll)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordsLoaded))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastSavedGauge))
}

func TestInstrument_NilMetrics(t *testing.T) {
	stub := &stubLog{}
	assert.Same(t, stub, Instrument(stub, nil))
}

func TestHandler(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	m.GenerationFinished(workout.StateRejectedInput, 0)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `trainer_pipeline_generations_total{state="rejected_input"} 1`))
}

func TestServe_StopsOnCancel(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "127.0.0.1:0", nil) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
