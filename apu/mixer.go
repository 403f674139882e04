package apu

import (
	"github.com/arl/blip"
)

// Mixer converts per-cycle channel terminal sums into bandlimited stereo
// PCM, using github.com/arl/blip — a Go port of Blargg's blip_buffer
// bandlimited synthesis library — for the 32-phase step-insertion algorithm
// §4.3 describes (other_examples/arl-blip__main.go shows the same
// NewBuffer/SetRates/AddDelta/EndFrame/ReadSamples sequence used here, one
// buffer per stereo terminal since blip_buf buffers are mono).
type Mixer struct {
	left  *blip.Buffer
	right *blip.Buffer

	lastLeft, lastRight int32

	sampleRate int
}

// mixerBufferMillis is the capacity, in milliseconds of audio, of each
// internal blip.Buffer.
const mixerBufferMillis = 200

// NewMixer returns a Mixer that resamples from the Game Boy clock to
// sampleRate Hz.
func NewMixer(sampleRate int) *Mixer {
	capacity := sampleRate * mixerBufferMillis / 1000

	left := blip.NewBuffer(capacity)
	left.SetRates(GBClockHz, float64(sampleRate))

	right := blip.NewBuffer(capacity)
	right.SetRates(GBClockHz, float64(sampleRate))

	return &Mixer{left: left, right: right, sampleRate: sampleRate}
}

// Update records the terminal sums at cycle time t, inserting a bandlimited
// step for whichever terminal changed since the last call (§4.3).
func (m *Mixer) Update(t uint64, left, right int32) {
	if left != m.lastLeft {
		m.left.AddDelta(t, left-m.lastLeft)
		m.lastLeft = left
	}
	if right != m.lastRight {
		m.right.AddDelta(t, right-m.lastRight)
		m.lastRight = right
	}
}

// EndFrame flushes accumulated deltas up to clocks T-states and rebases
// the internal clock to 0, as specified by §4.3's endFrame(time) contract.
// It always advances both buffers by clocks; APU.EndFrame clamps clocks to
// the cycles actually stepped, which makes a repeated APU.EndFrame with no
// Step in between a no-op (§5, §8 idempotence).
func (m *Mixer) EndFrame(clocks int) {
	m.left.EndFrame(clocks)
	m.right.EndFrame(clocks)
}

// SamplesAvailable reports how many interleaved stereo sample pairs are
// ready to read.
func (m *Mixer) SamplesAvailable() int {
	if avail := m.left.SamplesAvailable(); avail < m.right.SamplesAvailable() {
		return avail
	}
	return m.right.SamplesAvailable()
}

// ReadSamples drains up to n stereo sample pairs as interleaved
// [-1.0, 1.0] float32 PCM (L, R, L, R, ...).
func (m *Mixer) ReadSamples(n int) []float32 {
	if n <= 0 {
		return nil
	}

	li := make([]int16, n)
	ri := make([]int16, n)
	gotL := m.left.ReadSamples(li, n, blip.Mono)
	gotR := m.right.ReadSamples(ri, n, blip.Mono)

	got := gotL
	if gotR < got {
		got = gotR
	}

	out := make([]float32, 0, got*2)
	const scale = 1.0 / 32768.0
	for i := 0; i < got; i++ {
		out = append(out, float32(li[i])*scale, float32(ri[i])*scale)
	}
	return out
}
