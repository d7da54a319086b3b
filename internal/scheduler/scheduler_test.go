package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingIngester struct {
	calls   atomic.Int32
	tickers []string
}

func (c *countingIngester) RunForTickers(_ context.Context, tickers []string) (int, error) {
	c.calls.Add(1)
	c.tickers = tickers
	return len(tickers), nil
}

type countingAnalyzer struct {
	calls atomic.Int32
}

func (c *countingAnalyzer) RunBatch(context.Context) error {
	c.calls.Add(1)
	return nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStartRunsInitialSweep(t *testing.T) {
	ing := &countingIngester{}
	ana := &countingAnalyzer{}
	s := New(ing, ana, []string{"AAPL", "MSFT"}, 5, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	waitFor(t, func() bool { return ing.calls.Load() >= 1 })
	waitFor(t, func() bool { return ana.calls.Load() >= 1 })

	if len(ing.tickers) != 2 {
		t.Errorf("swept %v, want both tickers", ing.tickers)
	}
}

func TestStartTwiceFails(t *testing.T) {
	s := New(&countingIngester{}, &countingAnalyzer{}, nil, 5, nil)

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if err := s.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}
}

func TestSweepSkipsWhenContextCancelled(t *testing.T) {
	ing := &countingIngester{}
	s := New(ing, &countingAnalyzer{}, []string{"AAPL"}, 5, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.sweep(ctx)
	if ing.calls.Load() != 0 {
		t.Error("sweep ran despite cancelled context")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := New(&countingIngester{}, &countingAnalyzer{}, nil, 5, nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
	s.Stop()
}
