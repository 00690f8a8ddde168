package circuitbreaker

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func testConfig(timeout time.Duration) Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      1,
		Interval:         10 * time.Second,
		Timeout:          timeout,
		FailureThreshold: 1.0,
		MinRequests:      3,
	}
}

func fail(cb *CircuitBreaker, err error, n int) {
	for i := 0; i < n; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, err })
	}
}

func TestNew(t *testing.T) {
	cb := New(DefaultConfig("books"))

	if cb.Name() != "books" {
		t.Errorf("expected name=books, got %q", cb.Name())
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected initial state=Closed, got %v", cb.State())
	}
	if cb.IsOpen() {
		t.Error("expected IsOpen()=false")
	}
}

func TestCircuitBreaker_Execute(t *testing.T) {
	cb := New(testConfig(time.Minute))

	result, err := cb.Execute(func() (interface{}, error) { return 42, nil })
	if err != nil || result != 42 {
		t.Fatalf("expected (42, nil), got (%v, %v)", result, err)
	}

	testErr := errors.New("test error")
	result, err = cb.Execute(func() (interface{}, error) { return nil, testErr })
	if err != testErr || result != nil {
		t.Fatalf("expected (nil, %v), got (%v, %v)", testErr, result, err)
	}
}

func TestCircuitBreaker_TripsOpen(t *testing.T) {
	cb := New(testConfig(time.Minute))

	fail(cb, errors.New("connection refused"), 3)

	if !cb.IsOpen() {
		t.Fatalf("expected state=Open, got %v", cb.State())
	}
	_, err := cb.Execute(func() (interface{}, error) {
		t.Error("function should not be called when circuit is open")
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if !IsRejection(err) {
		t.Error("expected IsRejection()=true")
	}
}

func TestCircuitBreaker_IgnoresBenignErrors(t *testing.T) {
	cb := New(testConfig(time.Minute))

	fail(cb, context.Canceled, 5)
	fail(cb, sql.ErrNoRows, 5)

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("cancellations and empty results must not trip the breaker, got %v", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := New(testConfig(50 * time.Millisecond))
	fail(cb, errors.New("down"), 3)
	if !cb.IsOpen() {
		t.Fatalf("circuit should be open, got %v", cb.State())
	}

	time.Sleep(80 * time.Millisecond)

	if _, err := cb.Execute(func() (interface{}, error) { return "ok", nil }); err != nil {
		t.Fatalf("expected trial call to succeed, got %v", err)
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected Closed after successful trial call, got %v", cb.State())
	}
}

func TestIsRejection(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{gobreaker.ErrOpenState, true},
		{gobreaker.ErrTooManyRequests, true},
		{errors.New("timeout"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsRejection(tt.err); got != tt.want {
			t.Errorf("IsRejection(%v)=%v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("test")
	if cfg.Name != "test" || cfg.MaxRequests != 3 || cfg.MinRequests != 5 || cfg.FailureThreshold != 0.6 {
		t.Errorf("unexpected default config: %+v", cfg)
	}
}
