package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleAddSongRespectsMax(t *testing.T) {
	m := &Module{Instruments: NewTable[Instrument](), Waveforms: NewTable[Waveform]()}
	for i := 0; i < MaxSongs; i++ {
		assert.NoError(t, m.AddSong(NewSong("s", 16)))
	}
	assert.Error(t, m.AddSong(NewSong("overflow", 16)))
}

func TestModuleValidate(t *testing.T) {
	m := NewModule()
	assert.NoError(t, m.Validate())

	m.Header.Title = string(make([]byte, MaxHeaderFieldLength+1))
	assert.Error(t, m.Validate())
}
