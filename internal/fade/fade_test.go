package fade

import (
	"testing"
	"time"

	"github.com/cbegin/stemloop-go/internal/profile"
)

func TestCrossfadeLinearBlend(t *testing.T) {
	cf := NewCrossfade(profile.Profile{"lead": 1}, profile.Profile{"lead": 0, "drums": 1}, time.Second)

	cur := cf.Current()
	if cur.Gain("lead") != 1 || cur.Gain("drums") != 0 {
		t.Fatalf("progress 0: %v", cur)
	}

	cur, done := cf.Advance(500 * time.Millisecond)
	if done {
		t.Fatalf("fade finished early")
	}
	if cur.Gain("lead") != 0.5 || cur.Gain("drums") != 0.5 {
		t.Fatalf("progress 0.5: %v", cur)
	}

	cur, done = cf.Advance(600 * time.Millisecond)
	if !done {
		t.Fatalf("fade should be done past its duration")
	}
	if cur.Gain("lead") != 0 || cur.Gain("drums") != 1 {
		t.Fatalf("progress 1: %v", cur)
	}
	if cf.Progress() != 1 {
		t.Fatalf("progress should clamp to 1, got %v", cf.Progress())
	}
}

func TestCrossfadeSnapshotsEndpoints(t *testing.T) {
	from := profile.Profile{"lead": 1}
	to := profile.Profile{"lead": 0}
	cf := NewCrossfade(from, to, time.Second)
	from["lead"] = 7
	to["lead"] = 7

	cur, _ := cf.Advance(time.Second)
	if cur.Gain("lead") != 0 {
		t.Fatalf("fade picked up external mutation: %v", cur)
	}
}

func TestCrossfadeZeroDurationCompletesAtOnce(t *testing.T) {
	cf := NewCrossfade(profile.Profile{"a": 1}, profile.Profile{"a": 0.25}, 0)
	cur, done := cf.Advance(0)
	if !done || cur.Gain("a") != 0.25 {
		t.Fatalf("zero-length fade: done=%v cur=%v", done, cur)
	}
}

func TestEnvelope(t *testing.T) {
	cases := []struct {
		name     string
		from, to float64
		steps    []time.Duration
		want     []float64
	}{
		{
			name:  "fade in",
			from:  0,
			to:    1,
			steps: []time.Duration{250 * time.Millisecond, 250 * time.Millisecond, time.Second},
			want:  []float64{0.25, 0.5, 1},
		},
		{
			name:  "fade out from partial",
			from:  0.5,
			to:    0,
			steps: []time.Duration{500 * time.Millisecond, 500 * time.Millisecond},
			want:  []float64{0.25, 0},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := NewEnvelope(tc.from, tc.to, time.Second)
			for i, step := range tc.steps {
				got, done := env.Advance(step)
				if got != tc.want[i] {
					t.Fatalf("step %d: value = %v, want %v", i, got, tc.want[i])
				}
				if last := i == len(tc.steps)-1; done != last {
					t.Fatalf("step %d: done = %v", i, done)
				}
			}
		})
	}
}
