package walnats

import "testing"

func TestValidateNamePanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("validateName() on an empty name did not panic")
		}
	}()
	validateName("event", "")
}

func TestValidateNamePanicsOnTooLong(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("validateName() on a 65-character name did not panic")
		}
	}()
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	validateName("event", string(long))
}

func TestValidateNamePanicsOnReservedChars(t *testing.T) {
	for _, name := range []string{"orders.placed", "orders*", "orders>", "order s", "orders\t"} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("validateName(%q) did not panic", name)
				}
			}()
			validateName("event", name)
		}()
	}
}

func TestValidateNameAcceptsKebabCase(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("validateName() panicked on a valid name: %v", r)
		}
	}()
	validateName("event", "orders-placed")
}

func TestStreamNameForReplacesDots(t *testing.T) {
	if got := streamNameFor("orders.placed"); got != "orders-placed" {
		t.Errorf("streamNameFor() = %q, want %q", got, "orders-placed")
	}
}
