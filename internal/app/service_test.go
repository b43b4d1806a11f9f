package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type stubService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *stubService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesWhenOneFails(t *testing.T) {
	failing := &stubService{name: "broken", startErr: errors.New("bind failed")}
	healthy := &stubService{name: "http", block: true}
	runner := NewRunner(failing, healthy)
	cleaned := false
	runner.AddCleanup(func() error {
		cleaned = true
		return nil
	})

	err := runner.Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "bind failed" {
		t.Fatalf("expected start error, got %v", err)
	}
	if !failing.stopped.Load() || !healthy.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
	if !cleaned {
		t.Fatalf("cleanup should run after stop")
	}
}

func TestRunnerCancelledContextIsCleanExit(t *testing.T) {
	svc := &stubService{name: "worker", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled context should exit cleanly, got %v", err)
	}
	if !svc.stopped.Load() {
		t.Fatalf("service should be stopped")
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty runner")
	}
}
