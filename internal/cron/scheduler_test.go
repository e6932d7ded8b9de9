package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// simpleJob is a minimal Job for scheduler tests.
type simpleJob struct {
	name     string
	schedule string
	runFunc  func(ctx context.Context) error
	calls    atomic.Int32
}

func (j *simpleJob) Name() string     { return j.name }
func (j *simpleJob) Schedule() string { return j.schedule }
func (j *simpleJob) Run(ctx context.Context) error {
	j.calls.Add(1)
	if j.runFunc != nil {
		return j.runFunc(ctx)
	}
	return nil
}

func TestScheduler_RegisterJob_DuplicateName(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())

	if err := s.RegisterJob(&simpleJob{name: "test", schedule: "* * * * *"}); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := s.RegisterJob(&simpleJob{name: "test", schedule: "* * * * *"}); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestScheduler_RegisterJob_InvalidSchedule(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	if err := s.RegisterJob(&simpleJob{name: "bad", schedule: "invalid"}); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestValidateSchedule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"*/5 * * * *", false},
		{"0 3 * * *", false},
		{"0 0 1 1 *", false},
		{"", true},
		{"invalid", true},
		{"60 * * * *", true},
		{"0 25 * * *", true},
		{"* * * * * *", true},
	}

	for _, tt := range tests {
		err := ValidateSchedule(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSchedule(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	_ = s.RegisterJob(&simpleJob{name: "noop", schedule: "* * * * *"})

	if err := s.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Fatal("second start should fail")
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestScheduler_NilLogger(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil) // should not panic
	if s.logger == nil {
		t.Fatal("logger should default to slog.Default()")
	}
}

func TestScheduler_RunNow(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	job := &simpleJob{name: "once", schedule: "0 3 * * *"}
	_ = s.RegisterJob(job)

	if err := s.RunNow(context.Background(), "once"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if got := job.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}

	if err := s.RunNow(context.Background(), "missing"); err == nil {
		t.Error("RunNow on an unknown job should fail")
	}
}

func TestScheduler_JobError(t *testing.T) {
	t.Parallel()

	boom := errors.New("job failed")
	s := NewScheduler(slog.Default())
	_ = s.RegisterJob(FuncJob{
		JobName: "failing",
		Expr:    "* * * * *",
		Fn:      func(context.Context) error { return boom },
	})

	if err := s.RunNow(context.Background(), "failing"); !errors.Is(err, boom) {
		t.Fatalf("RunNow err = %v, want %v", err, boom)
	}
}

func TestScheduler_NoParallelExecution(t *testing.T) {
	t.Parallel()

	var concurrent, maxConcurrent atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{}, 1)

	s := NewScheduler(slog.Default())
	_ = s.RegisterJob(&simpleJob{
		name:     "slow",
		schedule: "0 3 * * *",
		runFunc: func(context.Context) error {
			c := concurrent.Add(1)
			for {
				old := maxConcurrent.Load()
				if c <= old || maxConcurrent.CompareAndSwap(old, c) {
					break
				}
			}
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
			concurrent.Add(-1)
			return nil
		},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.RunNow(context.Background(), "slow")
	}()
	<-started

	// The first run holds the job lock, so these are skipped.
	for range 5 {
		if err := s.RunNow(context.Background(), "slow"); err != nil {
			t.Errorf("skipped run returned %v", err)
		}
	}
	close(release)
	wg.Wait()

	if maxConcurrent.Load() > 1 {
		t.Errorf("max concurrent = %d, want <= 1", maxConcurrent.Load())
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	t.Parallel()

	s := NewScheduler(slog.Default())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if s.ctx.Err() == nil {
		t.Error("job context should be cancelled after Stop")
	}
}
