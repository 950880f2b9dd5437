package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gfranca/b3-ledger-backend/internal/testutil"
)

func TestRunnerRecordsStatus(t *testing.T) {
	runner := NewRunner(2, testutil.SilentLogger())

	done := make(chan struct{})
	ok := runner.Submit("sync", func(_ context.Context) error {
		close(done)
		return nil
	})
	if !ok {
		t.Fatal("Expected submit to be accepted")
	}

	<-done
	runner.Shutdown()

	st, found := runner.JobStatus("sync")
	if !found {
		t.Fatal("Expected status record for job")
	}
	if st.State != StatusSucceeded {
		t.Errorf("Expected succeeded, got %s", st.State)
	}
	if st.StartedAt == nil || st.FinishedAt == nil {
		t.Errorf("Expected start and finish timestamps, got %+v", st)
	}
}

func TestRunnerFailureDoesNotCancelPool(t *testing.T) {
	runner := NewRunner(1, testutil.SilentLogger())

	runner.Submit("failing", func(_ context.Context) error {
		return errors.New("boom")
	})

	var ran atomic.Bool
	runner.Submit("following", func(_ context.Context) error {
		ran.Store(true)
		return nil
	})

	runner.Shutdown()

	if !ran.Load() {
		t.Error("Expected second job to run after first failed")
	}

	st, _ := runner.JobStatus("failing")
	if st.State != StatusFailed || st.Error != "boom" {
		t.Errorf("Expected failed status with error, got %+v", st)
	}
}

func TestRunnerBoundsConcurrency(t *testing.T) {
	runner := NewRunner(2, testutil.SilentLogger())

	var current, peak atomic.Int32
	for i := 0; i < 6; i++ {
		runner.Submit(fmt.Sprintf("job-%d", i), func(_ context.Context) error {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return nil
		})
	}

	runner.Shutdown()

	if peak.Load() > 2 {
		t.Errorf("Expected at most 2 concurrent jobs, observed %d", peak.Load())
	}
}

func TestRunnerRejectsAfterShutdown(t *testing.T) {
	runner := NewRunner(1, testutil.SilentLogger())
	runner.Shutdown()

	if runner.Submit("late", func(_ context.Context) error { return nil }) {
		t.Error("Expected submit after shutdown to be rejected")
	}
}
