package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvelopeMonotonicity(t *testing.T) {
	c := &channelState{kind: kindPulse, envelopeInitialVolume: 4, envelopeAmplify: true, envelopePeriod: 1}
	c.dacOn = true
	c.trigger()

	prev := c.volume
	for i := 0; i < 20; i++ {
		c.stepEnvelope()
		assert.GreaterOrEqual(t, c.volume, prev)
		prev = c.volume
	}
	assert.Equal(t, uint8(0xF), c.volume)
}

func TestEnvelopeDisabledWhenPeriodZero(t *testing.T) {
	c := &channelState{kind: kindPulse, envelopeInitialVolume: 8, envelopePeriod: 0}
	c.trigger()
	c.stepEnvelope()
	assert.Equal(t, uint8(8), c.volume)
}

func TestLengthCounterDisablesChannel(t *testing.T) {
	c := &channelState{kind: kindPulse, dacOn: true, lengthEnabled: true, lengthCounter: 3}
	c.enabled = true
	for i := 0; i < 3; i++ {
		assert.True(t, c.enabled)
		c.stepLength()
	}
	assert.False(t, c.enabled)
}

func TestTriggerReloadsZeroLength(t *testing.T) {
	c := &channelState{kind: kindPulse, dacOn: true, lengthCounter: 0}
	c.trigger()
	assert.Equal(t, c.lengthMax(), c.lengthCounter)
}

func TestSweepOverflowDisablesOnTrigger(t *testing.T) {
	c := &channelState{kind: kindSweepPulse, dacOn: true, freq: 2000, sweepShift: 1}
	c.trigger()
	assert.False(t, c.enabled)
}

func TestSweepUnderflowIsNoOp(t *testing.T) {
	c := &channelState{kind: kindSweepPulse, shadowFreq: 4, sweepShift: 3, sweepNegate: true}
	target := c.sweepTarget()
	assert.Equal(t, int32(4), target)
}

func TestNoiseLFSRHalfWidthWritesBit6(t *testing.T) {
	c := &channelState{kind: kindNoise, noiseWidth: true, lfsr: lfsrResetValue}
	c.stepOscillator()
	bit6 := (c.lfsr >> 6) & 1
	bit14 := (c.lfsr >> 14) & 1
	assert.Equal(t, bit14, bit6)
}

func TestDacOffDisablesChannelImmediately(t *testing.T) {
	c := &channelState{kind: kindPulse, enabled: true, dacOn: true}
	c.updateDacFromEnvelope(0x00)
	assert.False(t, c.dacOn)
	assert.False(t, c.enabled)
}

func TestDigitalOutputZeroWhenDisabled(t *testing.T) {
	c := &channelState{kind: kindPulse, enabled: false, dacOn: true, volume: 15}
	assert.Equal(t, uint8(0), c.digitalOutput(&[16]byte{}))
}

func TestWaveOutputNibbleSelection(t *testing.T) {
	var ram [16]byte
	ram[0] = 0xAB
	c := &channelState{kind: kindWave, enabled: true, dacOn: true, waveVolumeCode: 1} // shift 0
	c.waveIndex = 0
	assert.Equal(t, uint8(0xA), c.digitalOutput(&ram))
	c.waveIndex = 1
	assert.Equal(t, uint8(0xB), c.digitalOutput(&ram))
}

func TestWaveVolumeCodeZeroMutes(t *testing.T) {
	var ram [16]byte
	ram[0] = 0xFF
	c := &channelState{kind: kindWave, enabled: true, dacOn: true, waveVolumeCode: 0}
	assert.Equal(t, uint8(0), c.digitalOutput(&ram))
}
