package apu

// channelState holds the per-channel hardware state shared by all four
// oscillator kinds (§4.1). Fields unused by a given kind are simply never
// touched by that kind's code paths.
type channelState struct {
	kind    channelKind
	enabled bool // cleared by length/sweep overflow/DAC-off; set on trigger
	dacOn   bool

	freq      uint16 // NRx3/NRx4 combined frequency (noise: raw NR43 byte)
	freqTimer int32  // countdown of T-states to the next oscillator step

	// Length counter, all channels.
	lengthCounter uint16
	lengthEnabled bool

	// Envelope, CH1/2/4.
	envelopeInitialVolume uint8
	envelopeAmplify       bool
	envelopePeriod        uint8
	envelopeTimer         uint8
	volume                uint8 // current envelope volume, 0-15

	// Pulse duty, CH1/2.
	duty      uint8
	dutyPhase uint8 // 0-7

	// Sweep, CH1 only.
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepTimer   uint8
	sweepEnabled bool
	shadowFreq   uint16

	// Wave, CH3.
	waveIndex      uint8 // 0-31
	waveVolumeCode uint8 // 2-bit NR32 code

	// Noise, CH4.
	lfsr       uint16
	noiseWidth bool // true = 7-bit (half-width) LFSR

	// Mixing, all channels.
	left, right bool // NR51 panning bits
}

// length max for this channel's kind (§4.1).
func (c *channelState) lengthMax() uint16 {
	if c.kind == kindWave {
		return 256
	}
	return 64
}

// period returns the frequency timer's reload value in T-states (§4.1).
func (c *channelState) period() int32 {
	switch c.kind {
	case kindPulse, kindSweepPulse:
		return int32(2048-c.freq) * 4
	case kindWave:
		return int32(2048-c.freq) * 2
	case kindNoise:
		divisorCode := c.freq & 7
		shift := (c.freq >> 4) & 0x0F
		var drf int32
		if divisorCode != 0 {
			drf = int32(divisorCode) * 16
		} else {
			drf = 8
		}
		if shift >= 14 {
			// Obscure hardware quirk: scf 14/15 means the channel never
			// receives clocks again for the life of the note (§4.1, §9).
			return 0
		}
		return drf << shift
	}
	return 1
}

// updateDacFromEnvelope sets the DAC state of CH1/2/4 from an NRx2 write,
// per §4.1: the DAC is on when the upper 5 envelope bits are nonzero, and
// turning it off also disables the channel.
func (c *channelState) updateDacFromEnvelope(nrX2 uint8) {
	c.dacOn = (nrX2 & 0xF8) != 0
	if !c.dacOn {
		c.enabled = false
	}
}

// trigger restarts the channel: reload the frequency timer, trigger length
// and envelope (and sweep, for CH1), and clear the disabled flag iff the
// DAC is on (§4.1 "Register restart").
func (c *channelState) trigger() {
	if c.lengthCounter == 0 {
		c.lengthCounter = c.lengthMax()
	}

	c.freqTimer = c.period()

	c.envelopeTimer = c.envelopePeriod
	c.volume = c.envelopeInitialVolume

	if c.kind == kindNoise {
		c.lfsr = lfsrResetValue
	}
	if c.kind == kindWave {
		c.waveIndex = 0
	} else {
		c.dutyPhase = 0
	}

	c.enabled = c.dacOn

	if c.kind == kindSweepPulse {
		c.shadowFreq = c.freq
		c.sweepTimer = c.sweepPeriod
		if c.sweepTimer == 0 {
			c.sweepTimer = 8
		}
		c.sweepEnabled = c.sweepPeriod != 0 || c.sweepShift != 0
		if c.sweepShift != 0 && c.sweepOverflows() {
			c.enabled = false
		}
	}
}

// sweepOverflows computes the sweep target and reports whether it exceeds
// the representable frequency range (§4.1).
func (c *channelState) sweepOverflows() bool {
	target := c.sweepTarget()
	return target > maxToneFrequency
}

func (c *channelState) sweepTarget() int32 {
	delta := int32(c.shadowFreq) >> c.sweepShift
	if c.sweepNegate {
		t := int32(c.shadowFreq) - delta
		if t < 0 {
			return int32(c.shadowFreq) // underflow: no-op per §4.1
		}
		return t
	}
	return int32(c.shadowFreq) + delta
}

// stepSweep runs one 128 Hz sweep iteration (§4.1, frame sequencer steps
// 2 and 6). Grounded on the shadow-frequency algorithm used by both the
// spec and real hardware (see also the sweep handling in
// other_examples/lorenzosim-goodboy__apu.go).
func (c *channelState) stepSweep() {
	if c.sweepTimer > 0 {
		c.sweepTimer--
	}
	if c.sweepTimer != 0 {
		return
	}

	if c.sweepPeriod != 0 {
		c.sweepTimer = c.sweepPeriod
	} else {
		c.sweepTimer = 8
	}

	if !c.sweepEnabled || c.sweepPeriod == 0 {
		return
	}

	target := c.sweepTarget()
	if target > maxToneFrequency {
		c.enabled = false
		return
	}
	if c.sweepShift != 0 {
		c.shadowFreq = uint16(target)
		c.freq = uint16(target)
		if c.sweepTarget() > maxToneFrequency {
			c.enabled = false
		}
	}
}

// stepEnvelope runs one 64 Hz envelope iteration (§4.1, frame sequencer
// step 7). Volume moves monotonically toward 0x0/0xF, saturating.
func (c *channelState) stepEnvelope() {
	if c.envelopePeriod == 0 {
		return
	}
	c.envelopeTimer++
	if c.envelopeTimer < c.envelopePeriod {
		return
	}
	c.envelopeTimer = 0
	if c.envelopeAmplify {
		if c.volume < 0xF {
			c.volume++
		}
	} else {
		if c.volume > 0x0 {
			c.volume--
		}
	}
}

// stepLength runs one 256 Hz length iteration (§4.1, frame sequencer steps
// 0, 2, 4, 6).
func (c *channelState) stepLength() {
	if !c.lengthEnabled || c.lengthCounter == 0 {
		return
	}
	c.lengthCounter--
	if c.lengthCounter == 0 {
		c.enabled = false
	}
}

// stepOscillator advances the channel by one frequency-timer period,
// producing one new oscillator step (duty phase advance, wave index
// advance, or LFSR shift), per §4.1.
func (c *channelState) stepOscillator() {
	switch c.kind {
	case kindPulse, kindSweepPulse:
		c.dutyPhase = (c.dutyPhase + 1) & 7
	case kindWave:
		c.waveIndex = (c.waveIndex + 1) & 31
	case kindNoise:
		bit := (c.lfsr ^ (c.lfsr >> 1)) & 1
		c.lfsr = (c.lfsr >> 1) | (bit << 14)
		if c.noiseWidth {
			c.lfsr = (c.lfsr &^ (1 << 6)) | (bit << 6)
		}
	}
}

// digitalOutput returns the channel's current 0-15 digital sample, the raw
// value described by §4.1's per-channel output formulas, before the
// DC centering applied by dcCenter (see apu/apu.go).
func (c *channelState) digitalOutput(waveRAM *[16]byte) uint8 {
	if !c.enabled || !c.dacOn {
		return 0
	}

	switch c.kind {
	case kindPulse, kindSweepPulse:
		pattern := dutyPatterns[c.duty&3]
		bit := (pattern >> c.dutyPhase) & 1
		return bit * c.volume
	case kindWave:
		nibbleIndex := c.waveIndex / 2
		b := waveRAM[nibbleIndex]
		var sample uint8
		if c.waveIndex%2 == 0 {
			sample = (b >> 4) & 0x0F
		} else {
			sample = b & 0x0F
		}
		shift := waveVolumeShift[c.waveVolumeCode&3]
		if shift >= 4 {
			return 0
		}
		return sample >> shift
	case kindNoise:
		bit := uint8(^c.lfsr) & 1
		return bit * c.volume
	}
	return 0
}
