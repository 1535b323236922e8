package stemloop

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func writeTestWAV(t *testing.T, path string, rate int, frames int) {
	t.Helper()
	dataSize := frames * 4
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], 2)
	binary.LittleEndian.PutUint32(out[24:], uint32(rate))
	binary.LittleEndian.PutUint32(out[28:], uint32(rate*4))
	binary.LittleEndian.PutUint16(out[32:], 4)
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenSong(t *testing.T) {
	dir := t.TempDir()
	writeTestWAV(t, filepath.Join(dir, "lead_intro.wav"), 48000, 4800)
	writeTestWAV(t, filepath.Join(dir, "lead_loop.wav"), 48000, 9600)
	writeTestWAV(t, filepath.Join(dir, "pad_loop.wav"), 48000, 9600)
	doc := `
sample_rate: 48000
look_ahead: 50ms
volume: 0.5
default_profile: full
instruments:
  - {name: lead, intro: lead_intro.wav, loop: lead_loop.wav}
  - {name: pad, loop: pad_loop.wav}
profiles:
  full: {lead: 1, pad: 1}
  sparse: {pad: 1}
`
	path := filepath.Join(dir, "song.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	song, err := OpenSong(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	pl := song.Player
	if len(song.Profiles) != 2 || song.Profiles[0] != "full" || song.Default != "full" {
		t.Fatalf("profiles = %v default = %q", song.Profiles, song.Default)
	}
	if pl.Volume() != 0.5 {
		t.Fatalf("volume = %v", pl.Volume())
	}
	if _, ok := pl.IntroChannel("pad"); ok {
		t.Fatalf("pad has no intro in the file")
	}

	deadline := time.Now().Add(5 * time.Second)
	for !pl.AllLoaded() {
		if time.Now().After(deadline) {
			t.Fatalf("clips did not load")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !pl.ValidateLoopLengths() {
		t.Fatalf("loops should match")
	}

	pl.Play()
	if pl.State() != StateIntroPlaying {
		t.Fatalf("state = %v", pl.State())
	}
	if pl.LoopStart() != 0.1 {
		t.Fatalf("loop start = %v, want 0.1", pl.LoopStart())
	}
	if got := pl.ChannelGain("lead"); got != 0.5 {
		t.Fatalf("lead gain = %v, want 0.5", got)
	}
}

func TestOpenSongInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.yaml")
	if err := os.WriteFile(path, []byte("default_profile: missing\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenSong(path, zerolog.Nop()); err == nil {
		t.Fatalf("expected validation error")
	}
}
