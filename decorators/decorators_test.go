package decorators

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimeFilterMatchesSingleValue(t *testing.T) {
	f := TimeFilter{Hour: Single(9)}
	tick := time.Date(2026, 7, 31, 9, 30, 0, 0, time.UTC)
	if !f.matches(tick) {
		t.Error("matches() = false, want true for matching hour")
	}
	tick = time.Date(2026, 7, 31, 10, 30, 0, 0, time.UTC)
	if f.matches(tick) {
		t.Error("matches() = true, want false for non-matching hour")
	}
}

func TestTimeFilterMatchesSet(t *testing.T) {
	f := TimeFilter{Weekday: Set(time.Saturday, time.Sunday)}
	saturday := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	if !f.matches(saturday) {
		t.Error("matches() = false for a weekday in the set")
	}
	if f.matches(monday) {
		t.Error("matches() = true for a weekday outside the set")
	}
}

func TestTimeFilterNilFieldMatchesAnything(t *testing.T) {
	var f TimeFilter
	if !f.matches(time.Now()) {
		t.Error("matches() = false with every field nil")
	}
}

func TestTimeFilterYearComponent(t *testing.T) {
	f := TimeFilter{Year: Single(2026)}
	if !f.matches(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("matches() = false for matching year")
	}
	if f.matches(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("matches() = true for non-matching year")
	}
}

func TestFilterTimeSkipsNonMatchingTicks(t *testing.T) {
	var called bool
	handler := func(ctx context.Context, tick time.Time) (struct{}, error) {
		called = true
		return struct{}{}, nil
	}
	wrapped := FilterTime[struct{}](TimeFilter{Hour: Single(9)})(handler)

	_, err := wrapped(context.Background(), time.Date(2026, 7, 31, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("wrapped() error = %v", err)
	}
	if called {
		t.Error("handler was called for a non-matching tick")
	}

	_, err = wrapped(context.Background(), time.Date(2026, 7, 31, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("wrapped() error = %v", err)
	}
	if !called {
		t.Error("handler was not called for a matching tick")
	}
}

func TestSuppressSwallowsMatchingErrors(t *testing.T) {
	wantErr := errors.New("expected")
	handler := func(ctx context.Context, msg string) (int, error) {
		return 0, wantErr
	}
	var logged error
	wrapped := Suppress[string, int](func(err error) bool {
		return errors.Is(err, wantErr)
	}, func(err error) { logged = err })(handler)

	resp, err := wrapped(context.Background(), "x")
	if err != nil {
		t.Errorf("wrapped() error = %v, want nil", err)
	}
	if resp != 0 {
		t.Errorf("wrapped() resp = %d, want 0", resp)
	}
	if logged != wantErr {
		t.Errorf("logged = %v, want %v", logged, wantErr)
	}
}

func TestSuppressPassesThroughNonMatchingErrors(t *testing.T) {
	other := errors.New("other")
	handler := func(ctx context.Context, msg string) (int, error) {
		return 0, other
	}
	wrapped := Suppress[string, int](func(err error) bool { return false }, nil)(handler)

	_, err := wrapped(context.Background(), "x")
	if !errors.Is(err, other) {
		t.Errorf("wrapped() error = %v, want %v", err, other)
	}
}

func TestRequireWaitsForPredicate(t *testing.T) {
	ready := false
	go func() {
		time.Sleep(20 * time.Millisecond)
		ready = true
	}()
	handler := func(ctx context.Context, msg string) (int, error) { return 1, nil }
	wrapped := Require[string, int](func() bool { return ready }, 5*time.Millisecond)(handler)

	resp, err := wrapped(context.Background(), "x")
	if err != nil {
		t.Fatalf("wrapped() error = %v", err)
	}
	if resp != 1 {
		t.Errorf("wrapped() resp = %d, want 1", resp)
	}
}

func TestRequireRespectsCancellation(t *testing.T) {
	handler := func(ctx context.Context, msg string) (int, error) { return 1, nil }
	wrapped := Require[string, int](func() bool { return false }, 5*time.Millisecond)(handler)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()
	if _, err := wrapped(ctx, "x"); err == nil {
		t.Error("wrapped() with a predicate that never becomes true = nil error")
	}
}
