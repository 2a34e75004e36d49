package walnats

import "testing"

func TestLimitsEvolveOverlaysNonNilFields(t *testing.T) {
	base := Limits{
		Age:      durationPtr(24 * 3600 * 1e9),
		Messages: int64Ptr(1000),
	}
	patch := Limits{
		Messages:    int64Ptr(5000),
		MessageSize: int64Ptr(1 << 20),
	}

	out := base.Evolve(patch)

	if out.Age == nil || *out.Age != *base.Age {
		t.Errorf("Evolve() overwrote Age, which patch left nil")
	}
	if out.Messages == nil || *out.Messages != 5000 {
		t.Errorf("Evolve() Messages = %v, want 5000", out.Messages)
	}
	if out.MessageSize == nil || *out.MessageSize != 1<<20 {
		t.Errorf("Evolve() MessageSize = %v, want %d", out.MessageSize, 1<<20)
	}
	if out.Consumers != nil {
		t.Errorf("Evolve() Consumers = %v, want nil", out.Consumers)
	}
}

func TestLimitsEvolveLeavesBaseUnmodified(t *testing.T) {
	base := Limits{Messages: int64Ptr(1000)}
	_ = base.Evolve(Limits{Messages: int64Ptr(5000)})
	if *base.Messages != 1000 {
		t.Errorf("Evolve() mutated the receiver's Messages to %d", *base.Messages)
	}
}
