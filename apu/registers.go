package apu

import (
	"github.com/sabaki-audio/gbtracker/internal/addr"
	"github.com/sabaki-audio/gbtracker/internal/bit"
)

// registerIndex maps an absolute address in [addr.AudioStart, addr.AudioEnd]
// to an index into APU.registers.
func registerIndex(a uint16) int {
	return int(a - addr.AudioStart)
}

// ReadRegister reads an APU register, applying the §4.4 read masks. While
// the APU is powered off, every register except NR52 reads as 0xFF.
func (a *APU) ReadRegister(address uint16) uint8 {
	if address < addr.AudioStart || address > addr.AudioEnd {
		return 0xFF
	}

	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		return a.waveRAM[address-addr.WaveRAMStart]
	}

	if !a.enabled && address != addr.NR52 {
		return 0xFF
	}

	idx := registerIndex(address)
	raw := a.registers[idx]

	switch address {
	case addr.NR10:
		return raw | 0x80
	case addr.NR11, addr.NR21:
		return raw | 0x3F
	case addr.NR12, addr.NR22, addr.NR42:
		return raw
	case addr.NR13, addr.NR23, addr.NR33, addr.NR43:
		return 0xFF
	case addr.NR14:
		return a.lengthReadMask(0, raw)
	case addr.NR24:
		return a.lengthReadMask(1, raw)
	case addr.NR34:
		return a.lengthReadMask(2, raw)
	case addr.NR44:
		return a.lengthReadMask(3, raw)
	case addr.NR30:
		return raw | 0x7F
	case addr.NR31:
		return 0xFF
	case addr.NR32:
		return raw | 0x9F
	case addr.NR41:
		return 0xFF
	case addr.NR50:
		return raw
	case addr.NR51:
		return raw
	case addr.NR52:
		return a.readNR52()
	default:
		return raw
	}
}

// lengthReadMask applies the NRx4 read mask: bit 6 (length-enable) reads
// back as written, bit 7 and the frequency bits always read as 1 (§4.4).
func (a *APU) lengthReadMask(ch int, raw uint8) uint8 {
	if a.ch[ch].lengthEnabled {
		return 0xFF
	}
	return raw | 0xBF
}

// readNR52 builds the NR52 read value: power bit, per-channel active
// (enabled) flags, unused bits forced to 1 (§4.4).
func (a *APU) readNR52() uint8 {
	var v uint8
	if a.enabled {
		v |= 0x80
		v |= 0x70 // unused bits read as 1 when powered on
	} else {
		v |= 0x70 // unused bits still read as 1 when powered off
	}
	for i := 0; i < 4; i++ {
		if a.ch[i].enabled {
			v |= 1 << i
		}
	}
	return v
}

// WriteRegister writes an APU register. While powered off, every register
// except NR52 ignores the write (§4.4); wave RAM remains writable only
// while CH3's DAC is off, per the CGB-style guarded-access rule (§4.4, §9).
func (a *APU) WriteRegister(address uint16, value uint8) {
	if address < addr.AudioStart || address > addr.AudioEnd {
		return
	}

	if address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd {
		if !a.ch[2].dacOn {
			a.waveRAM[address-addr.WaveRAMStart] = value
		}
		return
	}

	if address == addr.NR52 {
		a.writePower(value)
		return
	}

	if !a.enabled {
		return
	}

	a.registers[registerIndex(address)] = value
	a.mapRegisterToState(address, value)
}

// writePower implements NR52: powering off zeroes every channel register
// via a recursive writeRegister-style clear, powering on resets the frame
// sequencer (§4.4).
func (a *APU) writePower(value uint8) {
	wasEnabled := a.enabled
	a.enabled = bit.IsSet(7, value)

	if !a.enabled && wasEnabled {
		for addrVal := addr.AudioStart; addrVal < addr.NR52; addrVal++ {
			a.registers[registerIndex(addrVal)] = 0
			a.mapRegisterToState(addrVal, 0)
		}
		for i := range a.ch {
			a.ch[i] = channelState{kind: a.ch[i].kind, left: false, right: false}
		}
	}

	if a.enabled && !wasEnabled {
		a.frameSeqStep = 0
		a.frameSeqCycles = frameSequencerPeriod
	}
}

func updateFrequencyLow(current uint16, low uint8) uint16 {
	return (current & 0x700) | uint16(low)
}

func updateFrequencyHigh(current uint16, high uint8) uint16 {
	return (current & 0xFF) | (uint16(high&0x07) << 8)
}

// mapRegisterToState updates the internal channel model from a raw
// register write (§4.1, §4.4, §6).
func (a *APU) mapRegisterToState(address uint16, value uint8) {
	switch address {

	// Channel 1 - sweep pulse
	case addr.NR10:
		a.ch[0].sweepPeriod = (value >> 4) & 0x07
		a.ch[0].sweepNegate = bit.IsSet(3, value)
		a.ch[0].sweepShift = value & 0x07
	case addr.NR11:
		a.ch[0].duty = value >> 6
		a.ch[0].lengthCounter = 64 - uint16(value&0x3F)
	case addr.NR12:
		a.writeEnvelope(0, value)
	case addr.NR13:
		a.ch[0].freq = updateFrequencyLow(a.ch[0].freq, value)
	case addr.NR14:
		a.writeFreqHighAndControl(0, value)

	// Channel 2 - pulse
	case addr.NR21:
		a.ch[1].duty = value >> 6
		a.ch[1].lengthCounter = 64 - uint16(value&0x3F)
	case addr.NR22:
		a.writeEnvelope(1, value)
	case addr.NR23:
		a.ch[1].freq = updateFrequencyLow(a.ch[1].freq, value)
	case addr.NR24:
		a.writeFreqHighAndControl(1, value)

	// Channel 3 - wave
	case addr.NR30:
		a.ch[2].dacOn = bit.IsSet(7, value)
		if !a.ch[2].dacOn {
			a.ch[2].enabled = false
		}
	case addr.NR31:
		a.ch[2].lengthCounter = 256 - uint16(value)
	case addr.NR32:
		a.ch[2].waveVolumeCode = (value >> 5) & 0x03
	case addr.NR33:
		a.ch[2].freq = updateFrequencyLow(a.ch[2].freq, value)
	case addr.NR34:
		a.writeFreqHighAndControl(2, value)

	// Channel 4 - noise
	case addr.NR41:
		a.ch[3].lengthCounter = 64 - uint16(value&0x3F)
	case addr.NR42:
		a.writeEnvelope(3, value)
	case addr.NR43:
		a.ch[3].freq = uint16(value)
		a.ch[3].noiseWidth = bit.IsSet(3, value)
	case addr.NR44:
		a.writeFreqHighAndControl(3, value)

	// Global control
	case addr.NR50:
		a.volLeft = ((value >> 4) & 0x07) + 1
		a.volRight = (value & 0x07) + 1
	case addr.NR51:
		for i := 0; i < 4; i++ {
			a.ch[i].right = bit.IsSet(uint8(i), value)
			a.ch[i].left = bit.IsSet(uint8(i+4), value)
		}
	}
}

// writeEnvelope writes NRx2 (volume/envelope) for CH1/2/4 (§4.1, §6).
func (a *APU) writeEnvelope(ch int, value uint8) {
	a.ch[ch].envelopeInitialVolume = value >> 4
	a.ch[ch].envelopeAmplify = bit.IsSet(3, value)
	a.ch[ch].envelopePeriod = value & 0x07
	a.ch[ch].updateDacFromEnvelope(value)
}

// writeFreqHighAndControl writes NRx4: frequency high bits, length-enable,
// and the trigger bit (§4.1, §6).
func (a *APU) writeFreqHighAndControl(ch int, value uint8) {
	a.ch[ch].freq = updateFrequencyHigh(a.ch[ch].freq, value)
	a.ch[ch].lengthEnabled = bit.IsSet(6, value)
	if bit.IsSet(7, value) {
		a.ch[ch].trigger()
	}
}
