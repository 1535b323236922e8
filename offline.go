package stemloop

import (
	"encoding/binary"
	"math"
	"time"
)

// RenderOffline renders seconds of bus output without an audio device,
// calling p.Advance before every block of tick length. The player's clock
// must be bus for scheduling to line up.
func RenderOffline(p *Player, bus *Bus, seconds float64, tick time.Duration) []float32 {
	rate := bus.SampleRate()
	frames := int(float64(rate) * seconds)
	step := int(tick.Seconds() * float64(rate))
	if step < 1 {
		step = 1
	}
	out := make([]float32, frames*2)
	for off := 0; off < frames; off += step {
		n := step
		if off+n > frames {
			n = frames - off
		}
		p.Advance(time.Duration(n) * time.Second / time.Duration(rate))
		bus.Process(out[off*2 : (off+n)*2])
	}
	return out
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
