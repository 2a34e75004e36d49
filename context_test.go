package walnats

import "testing"

// TestContextAttempts tests the user-visible attempt count, including the
// delay-nak adjustment.
func TestContextAttempts(t *testing.T) {
	cases := []struct {
		name         string
		numDelivered uint64
		delayed      bool
		want         uint64
	}{
		{"first delivery", 1, false, 1},
		{"second delivery, no delay trip", 2, false, 2},
		{"second delivery after a delay-nak trip", 2, true, 1},
		{"third delivery after an earlier delay-nak trip", 3, true, 2},
		{"never delivered", 0, false, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := Context{NumDelivered: c.numDelivered, delayed: c.delayed}
			if got := ctx.Attempts(); got != c.want {
				t.Errorf("Attempts() = %d, want %d", got, c.want)
			}
		})
	}
}

func TestContextIsFirstAttempt(t *testing.T) {
	if !(Context{NumDelivered: 0}).IsFirstAttempt() {
		t.Error("IsFirstAttempt() = false for NumDelivered 0, want true")
	}
	if !(Context{NumDelivered: 1}).IsFirstAttempt() {
		t.Error("IsFirstAttempt() = false for NumDelivered 1, want true")
	}
	if (Context{NumDelivered: 2}).IsFirstAttempt() {
		t.Error("IsFirstAttempt() = true for NumDelivered 2, want false")
	}
}

func TestBaseMiddlewareIsNoop(t *testing.T) {
	var m BaseMiddleware
	if fn := m.OnStart(Context{}); fn != nil {
		t.Error("OnStart() returned non-nil")
	}
	if fn := m.OnFailure(ErrorContext{}); fn != nil {
		t.Error("OnFailure() returned non-nil")
	}
	if fn := m.OnSuccess(OkContext{}); fn != nil {
		t.Error("OnSuccess() returned non-nil")
	}
}
