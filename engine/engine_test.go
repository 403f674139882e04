package engine

import (
	"testing"

	"github.com/sabaki-audio/gbtracker/apu"
	"github.com/sabaki-audio/gbtracker/data"
	"github.com/stretchr/testify/assert"
)

func buildSingleNoteModule(t *testing.T) *data.Module {
	t.Helper()

	m := &data.Module{Instruments: data.NewTable[data.Instrument](), Waveforms: data.NewTable[data.Waveform]()}
	song := data.NewSong("test", 4)
	song.Speed = data.Speed(0x10)

	inst := data.NewInstrument("lead")
	inst.SetEnvelope(0xF0)
	id, err := m.Instruments.Insert(inst)
	assert.NoError(t, err)

	track := song.Patterns.Track(0, 0)
	row := track.Row(0)
	row.Note = 48
	row.Instrument = id
	track.SetRow(0, row)

	assert.NoError(t, m.AddSong(song))
	return m
}

func TestEngineTriggersNoteOnFirstFrame(t *testing.T) {
	m := buildSingleNoteModule(t)
	a := apu.NewAPU(44100)

	e, err := NewEngine(m, 0, a)
	assert.NoError(t, err)

	// NewEngine must power the APU on itself (§4.4): without NR52 bit 7
	// set, WriteRegister ignores every other register write and Step
	// never advances the oscillators, so the channel would stay silent
	// regardless of how TrackControl/FrequencyControl resolve the row.
	e.Step()

	assert.True(t, e.tracks[0].State().Playing)

	n := a.SamplesAvailable()
	assert.Greater(t, n, 0)

	samples := a.ReadSamples(n)
	nonZero := false
	for _, s := range samples {
		if s != 0 {
			nonZero = true
			break
		}
	}
	assert.True(t, nonZero, "engine produced pure-silent PCM for a playing note")
}

func TestEngineHaltStopsAdvancing(t *testing.T) {
	m := &data.Module{Instruments: data.NewTable[data.Instrument](), Waveforms: data.NewTable[data.Waveform]()}
	song := data.NewSong("halt", 2)
	track := song.Patterns.Track(0, 0)
	row := track.Row(0)
	row.Effects[0] = data.Effect{Type: data.EffectPatternHalt}
	track.SetRow(0, row)
	assert.NoError(t, m.AddSong(song))

	e, err := NewEngine(m, 0, apu.NullProvider{})
	assert.NoError(t, err)

	// C00 takes effect at the end of its row: 6 frames at the default speed.
	for i := 0; i < 6; i++ {
		e.Step()
	}

	assert.True(t, e.Halted())
}

func TestCyclesPerFrameDMG(t *testing.T) {
	m := data.NewModule()
	assert.InDelta(t, 70255, CyclesPerFrame(m), 5)
}
