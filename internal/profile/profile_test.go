package profile

import (
	"errors"
	"testing"
)

func TestEquivalentTreatsMissingAsZero(t *testing.T) {
	cases := []struct {
		name string
		a, b Profile
		want bool
	}{
		{name: "zero vs empty", a: Profile{"bass": 0}, b: Profile{}, want: true},
		{name: "nil vs empty", a: nil, b: Profile{}, want: true},
		{name: "same gains", a: Profile{"lead": 1, "drums": 0.5}, b: Profile{"drums": 0.5, "lead": 1}, want: true},
		{name: "differs on shared key", a: Profile{"lead": 1}, b: Profile{"lead": 0.9}, want: false},
		{name: "extra non-zero key", a: Profile{"lead": 1}, b: Profile{"lead": 1, "pad": 0.1}, want: false},
		{name: "extra zero key both sides", a: Profile{"lead": 1, "x": 0}, b: Profile{"lead": 1, "y": 0}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Equivalent(tc.a, tc.b); got != tc.want {
				t.Fatalf("Equivalent(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			if got := Equivalent(tc.b, tc.a); got != tc.want {
				t.Fatalf("Equivalent is not symmetric for %v, %v", tc.a, tc.b)
			}
		})
	}
}

func TestLerpUnionOfKeys(t *testing.T) {
	from := Profile{"lead": 1}
	to := Profile{"lead": 0, "drums": 1}

	start := Lerp(from, to, 0)
	if start.Gain("lead") != 1 || start.Gain("drums") != 0 {
		t.Fatalf("t=0: got %v", start)
	}
	mid := Lerp(from, to, 0.5)
	if mid.Gain("lead") != 0.5 || mid.Gain("drums") != 0.5 {
		t.Fatalf("t=0.5: got %v", mid)
	}
	end := Lerp(from, to, 1)
	if end.Gain("lead") != 0 || end.Gain("drums") != 1 {
		t.Fatalf("t=1: got %v", end)
	}
	if over := Lerp(from, to, 3); !Equivalent(over, to) {
		t.Fatalf("t>1 should clamp to target, got %v", over)
	}
}

func TestStoreCopiesOnSetAndGet(t *testing.T) {
	s := NewStore()
	src := Profile{"lead": 1}
	s.Set("full", src)
	src["lead"] = 0

	got, err := s.Get("full")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Gain("lead") != 1 {
		t.Fatalf("stored profile changed with caller map: %v", got)
	}
	got["lead"] = 0.2
	again, _ := s.Get("full")
	if again.Gain("lead") != 1 {
		t.Fatalf("stored profile changed through Get result: %v", again)
	}
}

func TestStoreGetUnknown(t *testing.T) {
	s := NewStore()
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	s.Remove("nope")
	s.Set("b", nil)
	s.Set("a", Profile{})
	if names := s.Names(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("names = %v", names)
	}
	s.Remove("a")
	if s.Has("a") {
		t.Fatalf("a should be removed")
	}
}
