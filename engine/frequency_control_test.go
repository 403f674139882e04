package engine

import (
	"testing"

	"github.com/sabaki-audio/gbtracker/data"
	"github.com/stretchr/testify/assert"
)

func TestArpeggioCyclesChordEveryThreeFrames(t *testing.T) {
	f := NewFrequencyControl(false)
	op := Operation{
		HasNote: true,
		Note:    48,
		Effects: [data.EffectsPerRow]data.Effect{{Type: data.EffectArpeggio, Param: 0x47}},
	}
	f.Apply(op)

	want := []uint16{
		ToneFrequency(48),
		ToneFrequency(52),
		ToneFrequency(55),
	}

	var got []uint16
	for i := 0; i < 6; i++ {
		f.Step(false)
		got = append(got, f.Frequency)
	}

	assert.Equal(t, append(append([]uint16{}, want...), want...), got)
}

func TestVibratoDisabledWhenExtentZero(t *testing.T) {
	f := NewFrequencyControl(false)
	op := Operation{Effects: [data.EffectsPerRow]data.Effect{{Type: data.EffectVibrato, Param: 0x40}}}
	f.Apply(op)
	assert.False(t, f.vibrato.enabled)
}

func TestNoteSlideReachesTargetAndStops(t *testing.T) {
	f := NewFrequencyControl(false)
	f.Apply(Operation{HasNote: true, Note: 40})
	start := f.Frequency
	op := Operation{Effects: [data.EffectsPerRow]data.Effect{{Type: data.EffectNoteSlideUp, Param: 0x11}}}
	f.Apply(op)

	for i := 0; i < 200 && f.mode != modNone; i++ {
		f.Step(false)
	}

	assert.Equal(t, modNone, f.mode)
	assert.NotEqual(t, start, f.Frequency)
}

func TestTuneAppliesSignedOffset(t *testing.T) {
	f := NewFrequencyControl(false)
	f.Apply(Operation{HasNote: true, Note: 40})
	base := f.Effective()

	f.Apply(Operation{Effects: [data.EffectsPerRow]data.Effect{{Type: data.EffectTune, Param: 0x90}}})
	assert.Greater(t, f.Effective(), base)
}
