package channel

import "io"

// Channel is one playable stem: a clip bound to an output.
//
// Timestamps are seconds on the output's monotonic DSP clock. A channel that
// also implements io.Closer is closed once the registry drops it.
type Channel interface {
	// Play starts immediately from the beginning of the clip. The player
	// itself always uses PlayScheduled so every stem shares one clock
	// reading; Play is for driving a channel directly.
	Play()
	// PlayScheduled starts playback at the given DSP time. A timestamp in the
	// past starts at the matching offset into the clip.
	PlayScheduled(at float64)
	Stop()
	// SetVolume sets the linear output gain. Safe to call while playing.
	SetVolume(gain float64)
	SetLoop(loop bool)
	// Load requests the clip data. It must not block.
	Load()
	IsLoaded() bool
	SampleCount() int
	SampleRate() int
}

// release stops a channel that left the registry and closes it if it can be.
func release(ch Channel) {
	ch.Stop()
	if c, ok := ch.(io.Closer); ok {
		_ = c.Close()
	}
}

// Duration returns the clip length in seconds, computed in float64 so that
// intro/loop stitching stays sample accurate.
func Duration(ch Channel) float64 {
	rate := ch.SampleRate()
	if rate <= 0 {
		return 0
	}
	return float64(ch.SampleCount()) / float64(rate)
}
