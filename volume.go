package stemloop

// SetGlobalVolume sets the application-wide volume (the game's or host's
// volume setting). Negative values clamp to 0.
func (p *Player) SetGlobalVolume(v float64) {
	if v < 0 {
		v = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.globalVolume = v
	p.updateVolumeLocked()
}

func (p *Player) GlobalVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.globalVolume
}

// SetVolume sets this player's own volume, on top of the global volume.
// Negative values clamp to 0.
func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	p.updateVolumeLocked()
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Envelope returns the current fade envelope gain in [0, 1].
func (p *Player) Envelope() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.envelope
}

// ChannelGain returns the gain the player resolves for instrument right now.
func (p *Player) ChannelGain(instrument string) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gainLocked(instrument)
}

func (p *Player) gainLocked(instrument string) float64 {
	return p.globalVolume * p.volume * p.envelope * p.active.Gain(instrument)
}

// updateVolumeLocked pushes resolved gains to every intro and loop channel.
func (p *Player) updateVolumeLocked() {
	push := func(instrument string, ch Channel) {
		ch.SetVolume(p.gainLocked(instrument))
	}
	p.channels.EachIntro(push)
	p.channels.EachLoop(push)
}
