package stemloop

import (
	"github.com/rs/zerolog"

	"github.com/cbegin/stemloop-go/internal/mixfile"
)

// Song is a player wired to a bus from a YAML mix file.
type Song struct {
	Player   *Player
	Bus      *Bus
	Profiles []string // sorted by name
	Default  string
}

// OpenSong reads a mix file, creates one voice per clip on a new bus and
// registers everything with a new player. Options given here override the
// file's settings.
func OpenSong(path string, logger zerolog.Logger, opts ...PlayerOption) (*Song, error) {
	f, err := mixfile.Load(path)
	if err != nil {
		return nil, err
	}
	bus, err := NewBus(f.SampleRate)
	if err != nil {
		return nil, err
	}

	base := []PlayerOption{
		WithLookAhead(*f.LookAhead),
		WithDefaultFade(f.Fade),
		WithPreload(*f.Preload),
		WithWaitForLoad(*f.WaitForLoad),
		WithLoadTimeout(f.LoadTimeout),
		WithLogger(logger),
	}
	p, err := NewPlayer(bus, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	p.SetVolume(*f.Volume)

	for _, inst := range f.Instruments {
		if inst.Intro != "" {
			c := LoadClip(f.Resolve(inst.Intro), f.SampleRate, logger)
			p.AddIntroChannel(inst.Name, NewVoice(bus, c))
		}
		if inst.Loop != "" {
			c := LoadClip(f.Resolve(inst.Loop), f.SampleRate, logger)
			p.AddLoopChannel(inst.Name, NewVoice(bus, c))
		}
	}
	for name, gains := range f.Profiles {
		p.AddProfile(name, Profile(gains))
	}
	if f.DefaultProfile != "" {
		if err := p.ApplyProfile(f.DefaultProfile); err != nil {
			return nil, err
		}
	}

	s := &Song{
		Player:   p,
		Bus:      bus,
		Profiles: p.ProfileNames(),
		Default:  f.DefaultProfile,
	}
	logger.Info().
		Str("file", path).
		Int("instruments", len(f.Instruments)).
		Strs("profiles", s.Profiles).
		Msg("song opened")
	return s, nil
}
