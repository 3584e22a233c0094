package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), nil, "op", func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls: want 1, got %d", calls)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	boom := errors.New("transient")
	calls := 0
	err := fastPolicy(3).Do(context.Background(), nil, "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return boom
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls: want 3, got %d", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("still broken")
	calls := 0
	err := fastPolicy(3).Do(context.Background(), nil, "put raw artifact", func(context.Context) error {
		calls++
		return boom
	})
	if err == nil {
		t.Fatalf("Do: want error after exhausting attempts")
	}
	if calls != 3 {
		t.Fatalf("calls: want 3, got %d", calls)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("Do should wrap the last underlying error, got %v", err)
	}
	if !strings.Contains(err.Error(), "3 attempts") {
		t.Fatalf("error should carry the retry count: %v", err)
	}
	if !strings.Contains(err.Error(), "put raw artifact") {
		t.Fatalf("error should carry the operation name: %v", err)
	}
}

func TestDo_CanceledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}.Do(ctx, nil, "op", func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail then cancel")
	})
	if err == nil {
		t.Fatalf("Do: want error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do: want context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls: want 1 (no retry after cancel), got %d", calls)
	}
}

func TestDo_CanceledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastPolicy(3).Do(ctx, nil, "op", func(context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do: want context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("calls: want 0, got %d", calls)
	}
}

func TestDo_RejectsInvalidPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
	}{
		{name: "zero attempts", policy: Policy{MaxAttempts: 0, BaseDelay: time.Second, MaxDelay: time.Second}},
		{name: "zero base delay", policy: Policy{MaxAttempts: 1, BaseDelay: 0, MaxDelay: time.Second}},
		{name: "cap below base", policy: Policy{MaxAttempts: 1, BaseDelay: time.Second, MaxDelay: time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Do(context.Background(), nil, "op", func(context.Context) error { return nil })
			if err == nil {
				t.Fatalf("Do: want policy validation error")
			}
		})
	}
}
