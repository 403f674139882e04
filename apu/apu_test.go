package apu

import (
	"testing"

	"github.com/sabaki-audio/gbtracker/internal/addr"
	"github.com/stretchr/testify/assert"
)

const cyclesPerFrame = 70224 // §4.3: one DMG video frame (154 lines x 456 T-states)

func powerOn(a *APU) {
	a.WriteRegister(addr.NR52, 0x80)
}

func TestSilentDAC(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)

	a.WriteRegister(addr.NR12, 0x00) // envelope upper bits all 0: DAC off
	a.WriteRegister(addr.NR14, 0x80) // trigger

	a.Step(cyclesPerFrame)
	a.EndFrame(cyclesPerFrame)

	assert.Greater(t, a.SamplesAvailable(), 0)
	samples := a.ReadSamples(a.SamplesAvailable())
	for _, s := range samples {
		assert.Equal(t, float32(0), s)
	}
}

func TestDutyCycle12Point5Percent(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)

	freq := uint16(1750)
	a.WriteRegister(addr.NR12, 0xF0)
	a.WriteRegister(addr.NR13, uint8(freq&0xFF))
	a.WriteRegister(addr.NR14, 0x80|uint8(freq>>8))

	high := 0
	for i := 0; i < 8*int(a.ch[0].period()); i++ {
		if a.ch[0].digitalOutput(&a.waveRAM) > 0 {
			high++
		}
		a.stepOne()
	}
	total := 8 * int(a.ch[0].period())
	ratio := float64(high) / float64(total)
	assert.InDelta(t, 0.125, ratio, 0.02)
}

func TestSweepKillsChannel(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)

	a.WriteRegister(addr.NR10, 0x11) // period=1, shift=1, add
	a.WriteRegister(addr.NR12, 0xF0)
	freq := uint16(2000)
	a.WriteRegister(addr.NR13, uint8(freq&0xFF))
	a.WriteRegister(addr.NR14, 0x80|uint8(freq>>8))

	for i := 0; i < 128*int(frameSequencerPeriod*4); i++ {
		a.stepOne()
		if !a.ch[0].enabled {
			break
		}
	}

	assert.False(t, a.ch[0].enabled)
	assert.Equal(t, uint8(0), a.ReadRegister(addr.NR52)&0x01)
}

func TestEndFrameIdempotent(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)
	a.WriteRegister(addr.NR12, 0xF0)
	a.WriteRegister(addr.NR14, 0x80)

	a.Step(cyclesPerFrame)
	a.EndFrame(cyclesPerFrame)
	n := a.SamplesAvailable()
	a.EndFrame(cyclesPerFrame)
	assert.Equal(t, n, a.SamplesAvailable())
}

func TestPoweredOffRegistersReadFF(t *testing.T) {
	a := NewAPU(44100)
	assert.Equal(t, uint8(0xFF), a.ReadRegister(addr.NR11))
	// NR52 itself remains readable while off, with unused bits forced to 1.
	assert.Equal(t, uint8(0x70), a.ReadRegister(addr.NR52))
}

func TestPoweredOffWritesIgnored(t *testing.T) {
	a := NewAPU(44100)
	a.WriteRegister(addr.NR11, 0xFF)
	powerOn(a)
	assert.Equal(t, uint8(0x3F), a.ReadRegister(addr.NR11))
}

func TestWaveRAMGuardedWrite(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)

	a.WriteRegister(addr.NR30, 0x80) // DAC on
	a.WriteRegister(addr.WaveRAMStart, 0xAB)
	assert.Equal(t, uint8(0), a.ReadRegister(addr.WaveRAMStart))

	a.WriteRegister(addr.NR30, 0x00) // DAC off
	a.WriteRegister(addr.WaveRAMStart, 0xAB)
	assert.Equal(t, uint8(0xAB), a.ReadRegister(addr.WaveRAMStart))
}

func TestPowerOffZeroesChannels(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)
	a.WriteRegister(addr.NR12, 0xF0)
	a.WriteRegister(addr.NR14, 0x80)
	assert.True(t, a.ch[0].enabled)

	a.WriteRegister(addr.NR52, 0x00)
	assert.False(t, a.ch[0].enabled)
	assert.Equal(t, uint8(0xFF), a.ReadRegister(addr.NR11))
}

func TestNR51PanningExcludesUnmaskedTerminal(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)
	a.WriteRegister(addr.NR12, 0xF0)
	a.WriteRegister(addr.NR50, 0x77)
	a.WriteRegister(addr.NR51, 0x01) // CH1 -> right only
	a.WriteRegister(addr.NR14, 0x80)

	left, right := a.terminalSums()
	assert.Equal(t, int32(0), left)
	assert.NotEqual(t, int32(0), right)
}

func TestTriggerReloadsFrequencyTimer(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)
	a.WriteRegister(addr.NR12, 0xF0)
	freq := uint16(1000)
	a.WriteRegister(addr.NR13, uint8(freq&0xFF))
	a.WriteRegister(addr.NR14, 0x80|uint8(freq>>8))

	assert.Equal(t, a.ch[0].period(), a.ch[0].freqTimer)
}

func TestMaxFrequencyDoesNotStall(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)
	a.WriteRegister(addr.NR12, 0xF0)
	a.WriteRegister(addr.NR13, 0xFF)
	a.WriteRegister(addr.NR14, 0x87) // freq = 2047

	assert.Equal(t, int32(4), a.ch[0].period())
	assert.NotPanics(t, func() { a.Step(100) })
}

func TestNoiseShiftClock14SilencesClocking(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)
	a.WriteRegister(addr.NR42, 0xF0)
	a.WriteRegister(addr.NR43, 0xE0) // scf=14
	a.WriteRegister(addr.NR44, 0x80)

	before := a.ch[3].lfsr
	a.Step(10000)
	assert.Equal(t, before, a.ch[3].lfsr)
}

func TestDigitalOutputRangeAndDacOff(t *testing.T) {
	a := NewAPU(44100)
	powerOn(a)
	a.WriteRegister(addr.NR50, 0x77)
	a.WriteRegister(addr.NR51, 0x11) // CH1 -> both terminals
	a.WriteRegister(addr.NR12, 0xF0)
	a.WriteRegister(addr.NR14, 0x80)

	for i := 0; i < 10000; i++ {
		a.stepOne()
		left, _ := a.terminalSums()
		assert.LessOrEqual(t, left, int32(15*8))
		assert.GreaterOrEqual(t, left, int32(-15*8))
	}

	a.WriteRegister(addr.NR12, 0x00)
	assert.Equal(t, uint8(0), a.ch[0].digitalOutput(&a.waveRAM))
}
