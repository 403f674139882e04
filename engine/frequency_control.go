package engine

import "github.com/sabaki-audio/gbtracker/data"

// modulationMode is the active per-channel pitch modulation, mutually
// exclusive except that arpeggio always takes priority when an
// instrument's arpeggio sequence is also firing (§4.6).
type modulationMode uint8

const (
	modNone modulationMode = iota
	modPortamento
	modPitchSlide
	modNoteSlide
	modArpeggio
)

type vibratoState struct {
	enabled      bool
	delayFrames  uint8
	delayCounter uint8
	speed        uint8
	counter      uint8
	value        int16
	extent       uint8
}

// FrequencyControl is the per-channel pitch modulation engine of §4.6:
// note, tune bias, instrument pitch accumulator, slides, arpeggio, and
// vibrato all combine into one effective frequency each frame.
type FrequencyControl struct {
	isNoise bool

	note uint8
	tune int8 // signed, Pxx param - 0x80

	instrumentPitch int32

	mode        modulationMode
	slideTarget uint16
	slideAmount int32
	baseFreq    uint16

	chord      [3]uint16
	chordIndex int
	chordParam uint8

	vibrato vibratoState

	Frequency uint16 // mFrequency: the channel's raw (pre-effective) frequency
}

// NewFrequencyControl returns a FrequencyControl for a tone or noise
// channel (noise channels index NoiseFrequency instead of ToneFrequency).
func NewFrequencyControl(isNoise bool) *FrequencyControl {
	return &FrequencyControl{isNoise: isNoise}
}

func (f *FrequencyControl) maxFreq() uint16 {
	if f.isNoise {
		return 0xFF
	}
	return MaxToneFrequency
}

func (f *FrequencyControl) noteFreq(note int) uint16 {
	if f.isNoise {
		return uint16(NoiseFrequency(note))
	}
	return ToneFrequency(note)
}

// Effective returns the frequency value that should be written to the
// channel's register this frame: the raw frequency plus tune, instrument
// pitch, and vibrato, clamped to the representable range (§4.6).
func (f *FrequencyControl) Effective() uint16 {
	v := int32(f.Frequency) + int32(f.tune) + f.instrumentPitch
	if f.vibrato.enabled && f.vibrato.delayCounter == 0 {
		v += int32(f.vibrato.value)
	}
	return clampFreq(v, f.maxFreq())
}

func clampFreq(v int32, max uint16) uint16 {
	if v < 0 {
		return 0
	}
	if v > int32(max) {
		return max
	}
	return uint16(v)
}

// Apply applies an Operation's frequency-relevant fields in the precedence
// order fixed by §4.6.
func (f *FrequencyControl) Apply(op Operation) {
	newNote := false
	if op.HasNote && op.Note != NoteCut {
		f.note = op.Note
		if f.mode == modNoteSlide {
			f.mode = modNone
		}
		newNote = true
	}

	for _, e := range op.Effects {
		switch e.Type {
		case data.EffectArpeggio:
			if e.Param == 0 {
				if f.mode == modArpeggio {
					f.mode = modNone
				}
				continue
			}
			f.mode = modArpeggio
			f.chordParam = e.Param
			f.setChord(e.Param)
		case data.EffectPitchUp:
			f.setSlide(modPitchSlide, int32(e.Param))
		case data.EffectPitchDown:
			f.setSlide(modPitchSlide, -int32(e.Param))
		case data.EffectAutoPortamento:
			if e.Param == 0 {
				f.mode = modNone
				continue
			}
			f.mode = modPortamento
			f.slideAmount = int32(e.Param)
		case data.EffectNoteSlideUp:
			f.setNoteSlide(e.Param, 1)
		case data.EffectNoteSlideDown:
			f.setNoteSlide(e.Param, -1)
		case data.EffectVibrato:
			f.applyVibrato(e.Param)
		case data.EffectVibratoDelay:
			f.vibrato.delayFrames = e.Param
		case data.EffectTune:
			f.tune = int8(int32(e.Param) - 0x80)
		}
	}

	if newNote {
		freq := f.noteFreq(int(f.note))
		switch f.mode {
		case modPortamento:
			f.slideTarget = freq
		case modArpeggio:
			f.setChord(f.chordParam)
		default:
			f.Frequency = freq
		}
		f.vibrato.delayCounter = f.vibrato.delayFrames
		f.vibrato.counter = 0
		f.vibrato.value = int16(f.vibrato.extent)
		f.instrumentPitch = 0
	}
}

func (f *FrequencyControl) setSlide(mode modulationMode, amount int32) {
	if amount == 0 {
		if f.mode == mode {
			f.mode = modNone
		}
		return
	}
	f.mode = mode
	f.slideAmount = amount
}

// setNoteSlide configures a Qxy/Rxy note-slide: high nibble = semitones
// to traverse, low nibble n yields slide amount 1+2n, direction is ±1
// (§4.6).
func (f *FrequencyControl) setNoteSlide(param uint8, direction int32) {
	semitones := int(param >> 4)
	n := int32(param & 0x0F)
	amount := 1 + 2*n
	f.mode = modNoteSlide
	f.slideAmount = direction * amount
	target := int(f.note) + int(direction)*semitones
	if target < 0 {
		target = 0
	}
	f.slideTarget = f.noteFreq(target)
}

func (f *FrequencyControl) applyVibrato(param uint8) {
	extent := param & 0x0F
	if extent == 0 {
		f.vibrato.enabled = false
		return
	}
	f.vibrato.enabled = true
	f.vibrato.speed = param >> 4
	f.vibrato.extent = extent
	f.vibrato.value = int16(extent)
}

// setChord builds the arpeggio chord [note, note+hi, note+lo] clamped to
// the channel's note table range (tone, or noise for CH4) (§4.6).
func (f *FrequencyControl) setChord(param uint8) {
	hi := int(param >> 4)
	lo := int(param & 0x0F)
	maxNote := ToneNoteCount - 1
	if f.isNoise {
		maxNote = NoiseNoteCount - 1
	}
	base := int(f.note)
	f.chord[0] = f.noteFreq(base)
	f.chord[1] = f.noteFreq(clampInt(base+hi, 0, maxNote))
	f.chord[2] = f.noteFreq(clampInt(base+lo, 0, maxNote))
	f.chordIndex = 0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Step advances vibrato, and, when instrumentArpeggioFired is false,
// advances the active slide/arpeggio mode (§4.6). instrumentArpeggioFired
// is set by InstrumentRuntime when the attached instrument's own
// arpeggio sequence produced a value this frame, which takes priority.
func (f *FrequencyControl) Step(instrumentArpeggioFired bool) {
	f.stepVibrato()

	if instrumentArpeggioFired {
		return
	}

	switch f.mode {
	case modPortamento, modPitchSlide, modNoteSlide:
		f.stepSlide()
	case modArpeggio:
		f.Frequency = f.chord[f.chordIndex]
		f.chordIndex = (f.chordIndex + 1) % 3
	}
}

func (f *FrequencyControl) stepSlide() {
	target := int32(f.slideTarget)
	cur := int32(f.Frequency)
	next := cur + f.slideAmount
	reached := (f.slideAmount > 0 && next >= target) || (f.slideAmount < 0 && next <= target)
	if reached {
		next = target
		if f.mode == modNoteSlide {
			f.mode = modNone
		}
	}
	f.Frequency = clampFreq(next, f.maxFreq())
}

func (f *FrequencyControl) stepVibrato() {
	if !f.vibrato.enabled {
		return
	}
	if f.vibrato.delayCounter > 0 {
		f.vibrato.delayCounter--
		return
	}
	if f.vibrato.counter == 0 {
		f.vibrato.value = -f.vibrato.value
		f.vibrato.counter = f.vibrato.speed
	} else {
		f.vibrato.counter--
	}
}

// AddInstrumentPitch accumulates a signed pitch-sequence delta from
// InstrumentRuntime (§4.7).
func (f *FrequencyControl) AddInstrumentPitch(delta int8) {
	f.instrumentPitch += int32(delta)
}

// SetArpeggioOffset overrides this frame's frequency with the note at
// note+semitoneOffset, used when the instrument's arpeggio sequence
// fires (§4.6, §4.7).
func (f *FrequencyControl) SetArpeggioOffset(semitoneOffset int8) {
	maxNote := ToneNoteCount - 1
	if f.isNoise {
		maxNote = NoiseNoteCount - 1
	}
	f.Frequency = f.noteFreq(clampInt(int(f.note)+int(semitoneOffset), 0, maxNote))
}
