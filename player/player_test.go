package player

import (
	"testing"
	"time"

	"github.com/sabaki-audio/gbtracker/apu"
	"github.com/sabaki-audio/gbtracker/data"
	"github.com/sabaki-audio/gbtracker/engine"
	"github.com/stretchr/testify/assert"
)

// fastFramerate keeps these tests from actually taking video-frame-length
// wall time: the ticker period only needs to be short, not accurate.
const fastFramerate = 100000.0

type recordingDrain struct {
	calls int
	total int
}

func (d *recordingDrain) WriteFloat32(samples []float32) error {
	d.calls++
	d.total += len(samples)
	return nil
}

func haltingModule(t *testing.T) *data.Module {
	t.Helper()
	m := &data.Module{Instruments: data.NewTable[data.Instrument](), Waveforms: data.NewTable[data.Waveform]()}
	song := data.NewSong("halt", 2)
	track := song.Patterns.Track(0, 0)
	row := track.Row(0)
	row.Effects[0] = data.Effect{Type: data.EffectPatternHalt}
	track.SetRow(0, row)
	assert.NoError(t, m.AddSong(song))
	return m
}

func TestRunLoopsStopsAtHalt(t *testing.T) {
	m := haltingModule(t)
	a := apu.NewAPU(44100)
	eng, err := engine.NewEngine(m, 0, a)
	assert.NoError(t, err)

	drain := &recordingDrain{}
	p := New(eng, a, drain, fastFramerate)

	err = p.RunLoops(0)
	assert.NoError(t, err)
	assert.True(t, eng.Halted())
}

func TestStopEndsPlaybackPromptly(t *testing.T) {
	m := data.NewModule() // empty song never halts or loops past order 0
	song := data.NewSong("idle", 4)
	assert.NoError(t, m.AddSong(song))

	eng, err := engine.NewEngine(m, 0, apu.NullProvider{})
	assert.NoError(t, err)

	p := New(eng, apu.NullProvider{}, nil, fastFramerate)

	done := make(chan error, 1)
	go func() { done <- p.RunLoops(0) }()

	time.Sleep(5 * time.Millisecond)
	p.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Stop did not end playback within timeout")
	}
}

func TestFlushDrainsAvailableSamples(t *testing.T) {
	m := haltingModule(t)
	a := apu.NewAPU(44100)
	eng, err := engine.NewEngine(m, 0, a)
	assert.NoError(t, err)

	drain := &recordingDrain{}
	p := New(eng, a, drain, fastFramerate)

	assert.NoError(t, p.RunLoops(0))
	assert.Greater(t, drain.calls, 0)
}
