package engine

import (
	"github.com/sabaki-audio/gbtracker/apu"
	"github.com/sabaki-audio/gbtracker/data"
	"github.com/sabaki-audio/gbtracker/internal/addr"
)

// channelRegisters names the four NRx1-NRx4 addresses for one channel
// slot, channel 2 (wave) additionally using NR30.
type channelRegisters struct {
	nrX0, nrX1, nrX2, nrX3, nrX4 uint16
}

var channelRegisterMap = [4]channelRegisters{
	{nrX0: addr.NR10, nrX1: addr.NR11, nrX2: addr.NR12, nrX3: addr.NR13, nrX4: addr.NR14},
	{nrX1: addr.NR21, nrX2: addr.NR22, nrX3: addr.NR23, nrX4: addr.NR24},
	{nrX0: addr.NR30, nrX1: addr.NR31, nrX2: addr.NR32, nrX3: addr.NR33, nrX4: addr.NR34},
	{nrX1: addr.NR41, nrX2: addr.NR42, nrX3: addr.NR43, nrX4: addr.NR44},
}

// Engine is the per-frame music interpreter of §4.9: it reads one row per
// Timer-gated frame, drives four TrackControls, writes their ChannelState
// to apu.Provider registers each frame, and ends the APU frame.
type Engine struct {
	module *data.Module
	song   *data.Song

	global *GlobalState
	timer  *Timer
	tracks [4]*TrackControl

	apu            apu.Provider
	cyclesPerFrame int

	lastOrderIndex int
	loopCount      int
}

// CyclesPerFrame returns the number of T-states in one video frame for
// the module's target system (§4.3).
func CyclesPerFrame(m *data.Module) int {
	framerate := apu.FramerateDMG
	switch m.Header.Target {
	case data.TargetSGB:
		framerate = apu.FramerateSGB
	case data.TargetCustom:
		if m.Header.CustomFramerate > 0 {
			framerate = float64(m.Header.CustomFramerate)
		}
	}
	return int(apu.GBClockHz/framerate + 0.5)
}

// NewEngine returns an Engine that plays songIndex from m against
// provider, starting at order 0, row 0.
func NewEngine(m *data.Module, songIndex int, provider apu.Provider) (*Engine, error) {
	song, err := m.Song(songIndex)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		module:         m,
		song:           song,
		global:         newGlobalState(song),
		timer:          NewTimer(song.Speed),
		apu:            provider,
		cyclesPerFrame: CyclesPerFrame(m),
	}
	for i := range e.tracks {
		e.tracks[i] = NewTrackControl(i)
	}

	// Power the APU on: without NR52 bit 7 set, WriteRegister ignores
	// every other register write and Step never advances the oscillators
	// (§4.4), so a freshly constructed Engine would otherwise drive a
	// powered-off APU forever.
	e.apu.WriteRegister(addr.NR52, 0x80)

	return e, nil
}

// Halted reports whether a C00 (pattern halt) effect has stopped playback.
func (e *Engine) Halted() bool {
	return e.global.Halted
}

// LoopCount returns how many times playback has wrapped backward in the
// order (a Bxx/fallthrough jump to an earlier or equal order index),
// the real-time counterpart to compiler.PatternRun's static LoopIndex.
// Player uses this to bound an indefinite loop to a fixed repeat count.
func (e *Engine) LoopCount() int {
	return e.loopCount
}

// Step advances playback by exactly one frame, per §4.9's pseudocode.
func (e *Engine) Step() {
	if e.global.Halted {
		return
	}

	if e.timer.Active() {
		pattern := e.song.Pattern(e.global.OrderIndex)
		for ch := 0; ch < data.NumChannels; ch++ {
			row := pattern.Tracks[ch].Row(e.global.RowIndex)
			e.tracks[ch].SetRow(row)
		}
	}

	for ch := 0; ch < data.NumChannels; ch++ {
		e.tracks[ch].Step(e.global, e.module.Instruments)
	}

	if e.global.Halted {
		return
	}

	e.emitRegisters()

	e.apu.Step(e.cyclesPerFrame)
	e.apu.EndFrame(e.cyclesPerFrame)

	if e.timer.Step() {
		prevRow := e.global.RowIndex
		e.global.advanceRow(e.song.Order, e.song.PatternLength())
		forwardInOrder := e.global.OrderIndex == e.lastOrderIndex && e.global.RowIndex > prevRow
		if !e.global.Halted && !forwardInOrder && e.global.OrderIndex <= e.lastOrderIndex {
			e.loopCount++
		}
		e.lastOrderIndex = e.global.OrderIndex
	}
}

// emitRegisters writes each TrackControl's ChannelState out as register
// writes (§2 data flow, §4.8). Frequency/control registers are written
// every frame (safe: the trigger bit is only set on Operation commit);
// envelope/timbre/sweep are written every frame too since re-writing an
// unchanged value is idempotent on real hardware (§4.4).
func (e *Engine) emitRegisters() {
	var nr51 uint8

	vol := e.global.GlobalVolume
	if vol > 7 {
		vol = 7
	}
	nr50 := (vol << 4) | vol

	for ch := 0; ch < data.NumChannels; ch++ {
		st := e.tracks[ch].State()
		regs := channelRegisterMap[ch]

		envelope := st.Envelope
		if !st.Playing {
			// Software note-off: clearing the DAC bits disables the
			// channel immediately (§4.1 "DAC"), the tracker-engine
			// equivalent of the hardware length counter reaching 0.
			envelope = 0
		}

		if st.PanRight {
			nr51 |= 1 << ch
		}
		if st.PanLeft {
			nr51 |= 1 << (ch + 4)
		}

		switch ch {
		case 0:
			e.apu.WriteRegister(regs.nrX0, st.SweepByte)
			e.apu.WriteRegister(regs.nrX1, (st.Timbre<<6)&0xC0)
			e.apu.WriteRegister(regs.nrX2, envelope)
		case 1:
			e.apu.WriteRegister(regs.nrX1, (st.Timbre<<6)&0xC0)
			e.apu.WriteRegister(regs.nrX2, envelope)
		case 2:
			dacBit := boolToBit(st.Playing && st.Envelope != 0, 7)
			e.apu.WriteRegister(regs.nrX0, dacBit)
			e.apu.WriteRegister(regs.nrX2, waveVolumeCodeByte(st.Timbre))
		case 3:
			// NR43 bit 3 is the half-width (7-bit LFSR) bit, taken from
			// the channel's timbre.
			nr43 := uint8(st.Frequency) &^ 0x08
			if st.Timbre&1 != 0 {
				nr43 |= 0x08
			}
			e.apu.WriteRegister(regs.nrX2, envelope)
			e.apu.WriteRegister(regs.nrX3, nr43)
		}

		if ch != 3 {
			freqLow := uint8(st.Frequency & 0xFF)
			freqHigh := uint8((st.Frequency >> 8) & 0x07)
			e.apu.WriteRegister(regs.nrX3, freqLow)

			control := freqHigh
			if st.Trigger {
				control |= 0x80
			}
			e.apu.WriteRegister(regs.nrX4, control)
		} else if st.Trigger {
			e.apu.WriteRegister(regs.nrX4, 0x80)
		}
	}

	e.apu.WriteRegister(addr.NR50, nr50)
	e.apu.WriteRegister(addr.NR51, nr51)
}

func boolToBit(b bool, bitIndex uint8) uint8 {
	if b {
		return 1 << bitIndex
	}
	return 0
}

// waveVolumeCodeByte packs a 2-bit NR32 output-level code into its
// register position (bits 5-6).
func waveVolumeCodeByte(timbre uint8) uint8 {
	return (timbre & 0x03) << 5
}
