package stemloop

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cbegin/stemloop-go/internal/channel"
	"github.com/cbegin/stemloop-go/internal/fade"
	"github.com/cbegin/stemloop-go/internal/profile"
)

// Profile maps instrument names to linear gains. Missing instruments are silent.
type Profile = profile.Profile

// Channel is the playback capability the player drives for each stem.
type Channel = channel.Channel

// ErrProfileNotFound is returned when applying or fading to an unknown profile.
var ErrProfileNotFound = profile.ErrNotFound

// Clock is the monotonic DSP clock channels are scheduled against, in seconds.
type Clock interface {
	Now() float64
}

// State is the playback state of a Player.
type State int

const (
	StateStopped State = iota
	StateWaiting
	StateIntroPlaying
	StateLoopScheduled
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateWaiting:
		return "waiting"
	case StateIntroPlaying:
		return "intro-playing"
	case StateLoopScheduled:
		return "loop-scheduled"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// PlaybackEvent carries state changes and fade completions from Watch().
type PlaybackEvent struct {
	Kind  int // one of the Event constants
	State State
	// Profile is the target of a finished crossfade.
	Profile string
}

const (
	EventStateChanged int = iota
	EventLoopScheduled
	EventCrossfadeDone
	EventEnvelopeDone
	EventLoadTimeout
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	lookAhead   time.Duration
	preload     bool
	waitForLoad bool
	loadTimeout time.Duration
	defaultFade time.Duration
	logger      zerolog.Logger
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		lookAhead:   time.Second,
		preload:     true,
		waitForLoad: true,
		defaultFade: time.Second,
		logger:      zerolog.Nop(),
	}
}

// WithLookAhead sets how long before the intro ends the loop gets scheduled.
// Zero or negative schedules the loop as soon as the intro starts.
func WithLookAhead(d time.Duration) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.lookAhead = d
	}
}

// WithPreload controls whether channels are asked to load when registered.
func WithPreload(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.preload = enabled
	}
}

// WithWaitForLoad makes Play wait until every channel reports loaded.
func WithWaitForLoad(enabled bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.waitForLoad = enabled
	}
}

// WithLoadTimeout gives up waiting for clips after d and stops. The default,
// zero, waits forever.
func WithLoadTimeout(d time.Duration) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.loadTimeout = d
	}
}

// WithDefaultFade sets the duration used when a fade is requested with d <= 0.
func WithDefaultFade(d time.Duration) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.defaultFade = d
	}
}

func WithLogger(logger zerolog.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.logger = logger
	}
}

// Player plays intro stems followed by a seamless hand-off into loop stems
// and mixes them through named gain profiles.
//
// Nothing happens on its own: the host must call Advance regularly (once per
// frame or audio tick). All methods are safe for concurrent use; they are
// serialised on one lock.
type Player struct {
	mu       sync.Mutex
	clock    Clock
	channels *channel.Registry
	profiles *profile.Store
	logger   zerolog.Logger

	globalVolume float64
	volume       float64
	envelope     float64

	lookAhead   time.Duration
	defaultFade time.Duration
	waitForLoad bool
	loadTimeout time.Duration

	active     profile.Profile
	previous   profile.Profile
	target     profile.Profile
	targetName string

	state       State
	loopStart   float64
	loopPending bool
	fadeInOnGo  time.Duration
	waited      time.Duration

	crossfade     *fade.Crossfade
	envelopeFade  *fade.Envelope
	stopAtSilence bool

	eventCh   chan PlaybackEvent
	eventChMu sync.Mutex
}

func NewPlayer(clock Clock, opts ...PlayerOption) (*Player, error) {
	if clock == nil {
		return nil, errors.New("clock must not be nil")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Player{
		clock:        clock,
		channels:     channel.NewRegistry(cfg.preload),
		profiles:     profile.NewStore(),
		logger:       cfg.logger,
		globalVolume: 1,
		volume:       1,
		envelope:     1,
		lookAhead:    cfg.lookAhead,
		defaultFade:  cfg.defaultFade,
		waitForLoad:  cfg.waitForLoad,
		loadTimeout:  cfg.loadTimeout,
		active:       profile.Profile{},
		previous:     profile.Profile{},
		target:       profile.Profile{},
	}, nil
}

// AddIntroChannel adds or replaces the intro stem for instrument.
func (p *Player) AddIntroChannel(instrument string, ch Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels.SetIntro(instrument, ch)
	p.updateVolumeLocked()
}

// AddLoopChannel adds or replaces the loop stem for instrument.
func (p *Player) AddLoopChannel(instrument string, ch Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels.SetLoop(instrument, ch)
	p.updateVolumeLocked()
}

func (p *Player) RemoveIntroChannel(instrument string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels.RemoveIntro(instrument)
}

func (p *Player) RemoveLoopChannel(instrument string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels.RemoveLoop(instrument)
}

func (p *Player) IntroChannel(instrument string) (Channel, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channels.Intro(instrument)
}

func (p *Player) LoopChannel(instrument string) (Channel, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channels.Loop(instrument)
}

// SetPreload applies to channels registered afterwards.
func (p *Player) SetPreload(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels.SetPreload(enabled)
}

// SetLookAhead takes effect on the next Play.
func (p *Player) SetLookAhead(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookAhead = d
}

// ValidateIntroLengths reports whether every intro clip has the same length
// and sample rate. Mismatched intros drift against each other.
func (p *Player) ValidateIntroLengths() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channels.ValidateIntro()
}

// ValidateLoopLengths is ValidateIntroLengths for loop clips.
func (p *Player) ValidateLoopLengths() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channels.ValidateLoop()
}

// AllLoaded reports whether every registered channel has its clip data.
func (p *Player) AllLoaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channels.AllLoaded()
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// LoopStart returns the DSP time the loop stems start at for the current
// playback. It is only meaningful after the intro has started.
func (p *Player) LoopStart() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loopStart
}

// Play starts playback from the top, restarting if already playing.
// With load waiting enabled, audio starts on the first Advance after every
// channel is loaded.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropEnvelopeLocked()
	p.envelope = 1
	p.playLocked(0)
}

// PlayAndFadeIn is Play with the envelope rising from silence over d.
// d <= 0 uses the default fade duration.
func (p *Player) PlayAndFadeIn(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d <= 0 {
		d = p.defaultFade
	}
	p.dropEnvelopeLocked()
	p.envelope = 0
	p.playLocked(d)
}

func (p *Player) playLocked(fadeIn time.Duration) {
	if p.state != StateStopped {
		p.logger.Debug().Stringer("state", p.state).Msg("restarting playback")
		p.stopLocked()
	}
	p.fadeInOnGo = fadeIn
	if p.waitForLoad && !p.channels.AllLoaded() {
		p.waited = 0
		p.setStateLocked(StateWaiting)
		return
	}
	p.startAudioLocked()
}

// startAudioLocked starts every stem. Intros are scheduled at the clock
// reading taken here, and the loop start is derived from that same reading,
// so all stems and the hand-off share one time base.
func (p *Player) startAudioLocked() {
	p.updateVolumeLocked()
	now := p.clock.Now()

	if p.channels.IntroLen() == 0 {
		p.loopStart = now
		p.channels.EachLoop(func(_ string, ch Channel) {
			ch.PlayScheduled(now)
		})
		p.loopPending = false
		p.setStateLocked(StateLoopScheduled)
		p.emit(PlaybackEvent{Kind: EventLoopScheduled, State: p.state})
	} else {
		p.channels.EachIntro(func(_ string, ch Channel) {
			ch.PlayScheduled(now)
		})
		first, _ := p.channels.FirstIntro()
		p.loopStart = now + channel.Duration(first)
		p.loopPending = true
		p.setStateLocked(StateIntroPlaying)
		if p.lookAhead <= 0 {
			p.scheduleLoopLocked()
		}
	}

	if p.fadeInOnGo > 0 {
		p.startEnvelopeLocked(1, p.fadeInOnGo, false)
		p.fadeInOnGo = 0
	}
}

func (p *Player) scheduleLoopLocked() {
	p.channels.EachLoop(func(_ string, ch Channel) {
		ch.PlayScheduled(p.loopStart)
	})
	p.loopPending = false
	if p.state == StateIntroPlaying {
		p.setStateLocked(StateLoopScheduled)
	}
	p.logger.Debug().Float64("loop_start", p.loopStart).Msg("loop scheduled")
	p.emit(PlaybackEvent{Kind: EventLoopScheduled, State: p.state})
}

// Stop halts every channel at once and cancels running fades. A running
// profile crossfade settles on its target so the next Play starts on the
// requested mix; the envelope keeps its last value until the next Play.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	p.channels.StopAll()
	p.dropEnvelopeLocked()
	if p.crossfade != nil {
		p.active = p.crossfade.Target().Clone()
		p.crossfade = nil
		p.updateVolumeLocked()
	}
	p.loopPending = false
	p.fadeInOnGo = 0
	p.setStateLocked(StateStopped)
}

// FadeOutAndStop fades the envelope to silence over d and then stops.
// d <= 0 uses the default fade duration.
func (p *Player) FadeOutAndStop(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateStopped:
		return
	case StateWaiting:
		p.stopLocked()
		return
	}
	if d <= 0 {
		d = p.defaultFade
	}
	p.startEnvelopeLocked(0, d, true)
	p.setStateLocked(StateStopping)
}

// FadeIn moves the envelope to 1 over d without touching playback state.
func (p *Player) FadeIn(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d <= 0 {
		d = p.defaultFade
	}
	p.startEnvelopeLocked(1, d, false)
}

// FadeOut moves the envelope to 0 over d. Playback keeps running silently.
func (p *Player) FadeOut(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d <= 0 {
		d = p.defaultFade
	}
	p.startEnvelopeLocked(0, d, false)
}

// startEnvelopeLocked replaces any running envelope fade.
func (p *Player) startEnvelopeLocked(to float64, d time.Duration, stop bool) {
	p.cancelEnvelopeLocked()
	p.envelopeFade = fade.NewEnvelope(p.envelope, to, d)
	p.stopAtSilence = stop
	p.logger.Debug().Float64("from", p.envelope).Float64("to", to).Dur("duration", d).Bool("stop", stop).Msg("envelope fade")
}

// dropEnvelopeLocked discards any envelope fade without touching state.
func (p *Player) dropEnvelopeLocked() {
	p.envelopeFade = nil
	p.stopAtSilence = false
}

// cancelEnvelopeLocked discards the running envelope fade. If it was a
// fade-out-and-stop, playback carries on in its previous state.
func (p *Player) cancelEnvelopeLocked() {
	if p.envelopeFade == nil {
		return
	}
	p.envelopeFade = nil
	if p.stopAtSilence {
		p.stopAtSilence = false
		if p.state == StateStopping {
			if p.loopPending {
				p.setStateLocked(StateIntroPlaying)
			} else {
				p.setStateLocked(StateLoopScheduled)
			}
		}
	}
}

// Advance runs one host tick: the load gate, the loop deadline, then the
// profile crossfade and the envelope fade, each moved on by dt.
func (p *Player) Advance(dt time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	opened := false
	switch p.state {
	case StateWaiting:
		if p.channels.AllLoaded() {
			p.startAudioLocked()
			opened = true
			break
		}
		p.waited += dt
		if p.loadTimeout > 0 && p.waited >= p.loadTimeout {
			p.logger.Warn().Dur("waited", p.waited).Msg("clips did not load in time, stopping")
			p.emit(PlaybackEvent{Kind: EventLoadTimeout, State: p.state})
			p.stopLocked()
			return
		}
	case StateIntroPlaying, StateStopping:
		if p.loopPending && p.clock.Now() > p.loopStart-p.lookAhead.Seconds() {
			p.scheduleLoopLocked()
		}
	}

	changed := false
	if p.crossfade != nil {
		cur, done := p.crossfade.Advance(dt)
		p.active = cur
		changed = true
		if done {
			p.crossfade = nil
			p.logger.Debug().Str("profile", p.targetName).Msg("crossfade done")
			p.emit(PlaybackEvent{Kind: EventCrossfadeDone, State: p.state, Profile: p.targetName})
		}
	}
	stop := false
	// A fade-in started by the gate this tick begins from silence.
	if p.envelopeFade != nil && !opened {
		v, done := p.envelopeFade.Advance(dt)
		p.envelope = v
		changed = true
		if done {
			p.envelopeFade = nil
			stop = p.stopAtSilence
			p.stopAtSilence = false
			p.emit(PlaybackEvent{Kind: EventEnvelopeDone, State: p.state})
		}
	}
	if changed {
		p.updateVolumeLocked()
	}
	if stop {
		p.stopLocked()
	}
}

func (p *Player) setStateLocked(s State) {
	if p.state == s {
		return
	}
	p.logger.Debug().Stringer("from", p.state).Stringer("to", s).Msg("state")
	p.state = s
	p.emit(PlaybackEvent{Kind: EventStateChanged, State: s})
}

func (p *Player) emit(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
			// Channel full; drop event
		}
	}
}

// Watch returns a channel that receives playback events. The channel is
// buffered (cap 16) and events are dropped when it is full. Only the most
// recent Watch() channel receives events.
func (p *Player) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 16)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}
