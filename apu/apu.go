// Package apu implements a cycle-accurate model of the Game Boy's audio
// processing unit: the four-channel oscillator bank, the 512 Hz frame
// sequencer that gates length/sweep/envelope, and the bandlimited mixer
// that turns per-cycle digital output into stereo PCM (§4.1-§4.3).
package apu

import (
	"github.com/sabaki-audio/gbtracker/internal/addr"
)

// registerBytes is large enough to index every non-wave-RAM register by
// address - AudioStart.
const registerBytes = int(addr.WaveRAMStart - addr.AudioStart)

// APU models the DMG/SGB audio hardware: four channels, the frame
// sequencer, 16 bytes of wave RAM, and the bandlimited Mixer that turns
// terminal sums into PCM (§4.1-§4.3).
type APU struct {
	enabled bool

	ch      [4]channelState
	waveRAM [16]uint8

	registers [registerBytes]uint8

	volLeft, volRight uint8 // NR50 master volume, 1-8

	frameSeqStep   uint8
	frameSeqCycles int32

	cycleTime uint64 // running T-state clock fed to the Mixer

	mixer *Mixer
}

// NewAPU returns a powered-off APU that will resample to sampleRate Hz.
func NewAPU(sampleRate int) *APU {
	a := &APU{
		mixer:          NewMixer(sampleRate),
		frameSeqCycles: frameSequencerPeriod,
		volLeft:        8,
		volRight:       8,
	}
	a.ch[0].kind = kindSweepPulse
	a.ch[1].kind = kindPulse
	a.ch[2].kind = kindWave
	a.ch[3].kind = kindNoise
	return a
}

// Step advances the APU by cycles T-states: oscillators tick down their
// frequency timers, the frame sequencer gates length/sweep/envelope at its
// 512 Hz rate, and the mixer records every terminal-sum transition (§4.2,
// §4.3).
func (a *APU) Step(cycles int) {
	for i := 0; i < cycles; i++ {
		a.stepOne()
	}
}

func (a *APU) stepOne() {
	if a.enabled {
		for c := range a.ch {
			ch := &a.ch[c]
			if !ch.enabled {
				continue
			}
			ch.freqTimer--
			if ch.freqTimer <= 0 {
				p := ch.period()
				if p <= 0 {
					// period() returned 0 (noise scf>=14 quirk): the
					// channel never clocks again for the life of the note.
					ch.freqTimer = 1
					continue
				}
				ch.freqTimer += p
				ch.stepOscillator()
			}
		}

		a.frameSeqCycles--
		if a.frameSeqCycles <= 0 {
			a.frameSeqCycles += frameSequencerPeriod
			a.stepFrameSequencer()
		}
	}

	left, right := a.terminalSums()
	a.mixer.Update(a.cycleTime, left, right)
	a.cycleTime++
}

// stepFrameSequencer advances the 8-step, 512 Hz frame sequencer: length
// at steps 0/2/4/6, sweep at steps 2/6, envelope at step 7 (§4.2).
func (a *APU) stepFrameSequencer() {
	switch a.frameSeqStep {
	case 0, 4:
		a.stepLengths()
	case 2, 6:
		a.stepLengths()
		a.ch[0].stepSweep()
	case 7:
		a.stepEnvelopes()
	}
	a.frameSeqStep = (a.frameSeqStep + 1) & 7
}

func (a *APU) stepLengths() {
	for c := range a.ch {
		a.ch[c].stepLength()
	}
}

func (a *APU) stepEnvelopes() {
	for c := range a.ch {
		a.ch[c].stepEnvelope()
	}
}

// dcCenter maps a channel's literal 0-15 digital output formula (§4.1) to
// a DC-centered [-15, +15] sample before mixing, the bandlimiting
// convention real Game Boy emulators use ahead of a blip_buf-style
// resampler; see DESIGN.md for why this lives at the mixing stage instead
// of in channelState.digitalOutput.
func dcCenter(raw uint8, dacOn bool) int32 {
	if !dacOn {
		return 0
	}
	return 2*int32(raw) - 15
}

// terminalSums computes the current left/right terminal sums (§4.3): each
// enabled channel contributes its DC-centered output to whichever
// terminals its NR51 panning bits select, then the sum is scaled by the
// NR50 master volume.
func (a *APU) terminalSums() (left, right int32) {
	var l, r int32
	for c := range a.ch {
		ch := &a.ch[c]
		sample := dcCenter(ch.digitalOutput(&a.waveRAM), ch.dacOn && ch.enabled)
		if ch.left {
			l += sample
		}
		if ch.right {
			r += sample
		}
	}
	return l * int32(a.volLeft), r * int32(a.volRight)
}

// EndFrame flushes the mixer up to the cycles accumulated since the last
// call and rebases the internal clock, matching §4.3's per-frame contract.
// clocks is clamped to those accumulated cycles, so calling it again with
// no Step in between adds no samples.
func (a *APU) EndFrame(clocks int) {
	if clocks <= 0 {
		return
	}
	if uint64(clocks) > a.cycleTime {
		clocks = int(a.cycleTime)
	}
	if clocks == 0 {
		return
	}
	a.mixer.EndFrame(clocks)
	a.cycleTime -= uint64(clocks)
}

// SamplesAvailable reports how many stereo sample pairs are ready.
func (a *APU) SamplesAvailable() int {
	return a.mixer.SamplesAvailable()
}

// ReadSamples drains up to n stereo sample pairs as interleaved float32
// PCM.
func (a *APU) ReadSamples(n int) []float32 {
	return a.mixer.ReadSamples(n)
}

// Enabled reports whether the APU is currently powered on (NR52 bit 7).
func (a *APU) Enabled() bool {
	return a.enabled
}
