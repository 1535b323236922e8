package mixfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `
sample_rate: 44100
look_ahead: 500ms
fade: 2s
default_profile: full
instruments:
  - name: Lead1
    intro: stems/lead1_intro.wav
    loop: stems/lead1_loop.wav
  - name: Percussion
    loop: /abs/perc_loop.ogg
profiles:
  full:
    Lead1: 1
    Percussion: 1
  muted:
    Percussion: 0.5
`

func TestLoadResolvesPathsAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.SampleRate != 44100 || *f.LookAhead != 500*time.Millisecond || f.Fade != 2*time.Second {
		t.Fatalf("unexpected header: %+v", f)
	}
	if !*f.Preload || !*f.WaitForLoad || *f.Volume != 1 {
		t.Fatalf("defaults not applied: preload=%v wait=%v volume=%v", *f.Preload, *f.WaitForLoad, *f.Volume)
	}
	if got := f.Resolve(f.Instruments[0].Intro); got != filepath.Join(dir, "stems", "lead1_intro.wav") {
		t.Fatalf("resolved intro = %q", got)
	}
	if got := f.Resolve(f.Instruments[1].Loop); got != "/abs/perc_loop.ogg" {
		t.Fatalf("absolute path changed: %q", got)
	}
	if f.Resolve("") != "" {
		t.Fatalf("empty path should stay empty")
	}
	if f.Profiles["muted"]["Percussion"] != 0.5 {
		t.Fatalf("profiles = %v", f.Profiles)
	}
}

func TestParseLookAhead(t *testing.T) {
	const inst = "instruments:\n  - {name: pad, loop: pad.wav}\n"
	cases := map[string]time.Duration{
		"":                    DefaultLookAhead,
		"look_ahead: 0s\n":    0,
		"look_ahead: 250ms\n": 250 * time.Millisecond,
	}
	for doc, want := range cases {
		f, err := Parse([]byte(doc+inst), "")
		if err != nil {
			t.Fatalf("parse %q: %v", doc, err)
		}
		if *f.LookAhead != want {
			t.Fatalf("parse %q: look_ahead = %v, want %v", doc, *f.LookAhead, want)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"duplicate instrument": `
instruments:
  - {name: a, loop: a.wav}
  - {name: a, loop: b.wav}
`,
		"no clips": `
instruments:
  - {name: a}
`,
		"negative gain": `
profiles:
  full: {a: -1}
`,
		"unknown default": `
default_profile: nope
profiles:
  full: {a: 1}
`,
		"not yaml": `instruments: [`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc), "."); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}
