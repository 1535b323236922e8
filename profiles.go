package stemloop

import (
	"time"

	"github.com/cbegin/stemloop-go/internal/fade"
	"github.com/cbegin/stemloop-go/internal/profile"
)

// ProfilesEquivalent reports whether a and b give every instrument the same
// gain, treating missing instruments as 0.
func ProfilesEquivalent(a, b Profile) bool {
	return profile.Equivalent(a, b)
}

// AddProfile stores a copy of gains under name, replacing any previous one.
// Running crossfades keep the endpoints they started with.
func (p *Player) AddProfile(name string, gains Profile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles.Set(name, gains)
}

func (p *Player) RemoveProfile(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profiles.Remove(name)
}

// Profile returns a copy of the named profile.
func (p *Player) Profile(name string) (Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profiles.Get(name)
}

func (p *Player) ProfileNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profiles.Names()
}

// ActiveProfile returns a copy of the gains currently driving the channels.
func (p *Player) ActiveProfile() Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active.Clone()
}

// ApplyProfile switches to the named profile at once, cancelling any running
// crossfade.
func (p *Player) ApplyProfile(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	gains, err := p.profiles.Get(name)
	if err != nil {
		return err
	}
	p.crossfade = nil
	p.active = gains
	p.previous = gains.Clone()
	p.target = gains.Clone()
	p.targetName = name
	p.updateVolumeLocked()
	return nil
}

// FadeToProfile blends from the current mix to the named profile over d
// (d <= 0 uses the default fade). Asking for the profile already being faded
// to, or already reached, does nothing. Any other running crossfade is
// replaced and the new one starts from wherever the mix is now.
func (p *Player) FadeToProfile(name string, d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	gains, err := p.profiles.Get(name)
	if err != nil {
		return err
	}
	if profile.Equivalent(gains, p.target) {
		return nil
	}
	if d <= 0 {
		d = p.defaultFade
	}
	p.previous = p.active.Clone()
	p.target = gains
	p.targetName = name
	p.crossfade = fade.NewCrossfade(p.previous, p.target, d)
	p.logger.Debug().Str("profile", name).Dur("duration", d).Msg("crossfade")
	return nil
}
