package apu

// GBClockHz is the Game Boy's master clock rate in Hz (§4.3).
const GBClockHz = 4194304

// Framerates for the three §4.3 target systems.
const (
	FramerateDMG = 59.7
	FramerateSGB = 61.1
)

// frameSequencerPeriod is the number of T-states between frame sequencer
// ticks: 4194304 / 512 (§4.2).
const frameSequencerPeriod = 8192

// Duty waveforms for the pulse channels, indexed by the 2-bit NRx1 duty
// field. Bit 0 of each pattern is read out first after a trigger (§4.1).
var dutyPatterns = [4]uint8{
	0x80, // 12.5%
	0x81, // 25%
	0xE1, // 50%
	0x7E, // 75%
}

// waveVolumeShift maps the 2-bit NR32 output-level code to a right-shift
// amount: code 0 (raw 0x00) mutes entirely (§4.1).
var waveVolumeShift = [4]uint8{4, 0, 1, 2}

// channelKind tags which of the four oscillator algorithms a channel slot
// runs, the tagged-variant alternative to CRTP channel templates (§9).
type channelKind uint8

const (
	kindPulse channelKind = iota
	kindSweepPulse
	kindWave
	kindNoise
)

// lfsrResetValue is the LFSR's value immediately after a channel 4 trigger.
const lfsrResetValue = 0x7FFF

// maxToneFrequency is the largest legal NRx3/NRx4 frequency value.
const maxToneFrequency = 2047
