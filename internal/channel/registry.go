package channel

// group is an insertion-ordered set of channels keyed by instrument.
type group struct {
	order  []string
	byName map[string]Channel
}

func newGroup() *group {
	return &group{byName: make(map[string]Channel)}
}

// set returns the channel it replaced, if any.
func (g *group) set(name string, ch Channel) Channel {
	old, ok := g.byName[name]
	if !ok {
		g.order = append(g.order, name)
	}
	g.byName[name] = ch
	return old
}

func (g *group) remove(name string) Channel {
	old, ok := g.byName[name]
	if !ok {
		return nil
	}
	delete(g.byName, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return old
}

func (g *group) each(fn func(name string, ch Channel)) {
	for _, name := range g.order {
		fn(name, g.byName[name])
	}
}

func (g *group) names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// uniform reports whether every channel has the same sample count and rate.
func (g *group) uniform() bool {
	first := true
	var count, rate int
	for _, name := range g.order {
		ch := g.byName[name]
		if first {
			count, rate = ch.SampleCount(), ch.SampleRate()
			first = false
			continue
		}
		if ch.SampleCount() != count || ch.SampleRate() != rate {
			return false
		}
	}
	return true
}

// Registry owns the intro and loop channels of a mixer. It is not safe for
// concurrent use; the owning player serialises access.
type Registry struct {
	intro   *group
	loop    *group
	preload bool
}

func NewRegistry(preload bool) *Registry {
	return &Registry{intro: newGroup(), loop: newGroup(), preload: preload}
}

// SetPreload controls whether channels added afterwards are asked to load.
func (r *Registry) SetPreload(enabled bool) {
	r.preload = enabled
}

// SetIntro adds or replaces the intro channel for instrument. Intro channels
// never loop. A replaced channel is stopped, closed if it is an io.Closer,
// and dropped.
func (r *Registry) SetIntro(instrument string, ch Channel) {
	r.add(r.intro, instrument, ch, false)
}

// SetLoop adds or replaces the loop channel for instrument.
func (r *Registry) SetLoop(instrument string, ch Channel) {
	r.add(r.loop, instrument, ch, true)
}

func (r *Registry) add(g *group, instrument string, ch Channel, loop bool) {
	if old := g.set(instrument, ch); old != nil && old != ch {
		release(old)
	}
	ch.SetLoop(loop)
	if r.preload {
		ch.Load()
	}
}

// RemoveIntro stops and drops the intro channel for instrument, if any.
func (r *Registry) RemoveIntro(instrument string) {
	if old := r.intro.remove(instrument); old != nil {
		release(old)
	}
}

// RemoveLoop stops and drops the loop channel for instrument, if any.
func (r *Registry) RemoveLoop(instrument string) {
	if old := r.loop.remove(instrument); old != nil {
		release(old)
	}
}

func (r *Registry) Intro(instrument string) (Channel, bool) {
	ch, ok := r.intro.byName[instrument]
	return ch, ok
}

func (r *Registry) Loop(instrument string) (Channel, bool) {
	ch, ok := r.loop.byName[instrument]
	return ch, ok
}

func (r *Registry) IntroNames() []string { return r.intro.names() }
func (r *Registry) LoopNames() []string  { return r.loop.names() }
func (r *Registry) IntroLen() int        { return len(r.intro.order) }
func (r *Registry) LoopLen() int         { return len(r.loop.order) }

// FirstIntro returns the earliest registered intro channel still present.
func (r *Registry) FirstIntro() (Channel, bool) {
	if len(r.intro.order) == 0 {
		return nil, false
	}
	return r.intro.byName[r.intro.order[0]], true
}

func (r *Registry) EachIntro(fn func(instrument string, ch Channel)) { r.intro.each(fn) }
func (r *Registry) EachLoop(fn func(instrument string, ch Channel))  { r.loop.each(fn) }

// Each visits intro channels, then loop channels.
func (r *Registry) Each(fn func(instrument string, ch Channel)) {
	r.intro.each(fn)
	r.loop.each(fn)
}

// AllLoaded reports whether every registered channel has its clip data.
func (r *Registry) AllLoaded() bool {
	loaded := true
	r.Each(func(_ string, ch Channel) {
		if !ch.IsLoaded() {
			loaded = false
		}
	})
	return loaded
}

// ValidateIntro reports whether all intro clips share length and sample rate.
func (r *Registry) ValidateIntro() bool { return r.intro.uniform() }

// ValidateLoop reports whether all loop clips share length and sample rate.
func (r *Registry) ValidateLoop() bool { return r.loop.uniform() }

func (r *Registry) StopAll() {
	r.Each(func(_ string, ch Channel) { ch.Stop() })
}
