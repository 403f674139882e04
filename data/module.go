package data

import "fmt"

// TargetSystem identifies the hardware a Module targets (§3, §6).
type TargetSystem uint8

const (
	TargetDMG TargetSystem = iota
	TargetSGB
	TargetCustom
)

// MaxHeaderFieldLength bounds the title/artist/copyright header strings.
const MaxHeaderFieldLength = 32

// MaxSongs bounds the number of Songs a Module may hold.
const MaxSongs = 256

// Header carries a Module's free-form identifying information (§3, §6).
type Header struct {
	Title     string // ≤32 bytes
	Artist    string // ≤32 bytes
	Copyright string // ≤32 bytes
	Comment   string

	Target          TargetSystem
	CustomFramerate uint16 // meaningful only when Target == TargetCustom
}

// Module is the top-level container: a list of Songs plus the shared
// Instrument/Waveform tables they reference by id (§3).
type Module struct {
	Header      Header
	Songs       []*Song
	Instruments *Table[Instrument]
	Waveforms   *Table[Waveform]
}

// NewModule returns an empty Module with one default Song and empty tables.
func NewModule() *Module {
	m := &Module{
		Instruments: NewTable[Instrument](),
		Waveforms:   NewTable[Waveform](),
	}
	m.Songs = []*Song{NewSong("untitled", 64)}
	return m
}

// AddSong appends a Song, failing if the Module is already at MaxSongs.
func (m *Module) AddSong(s *Song) error {
	if len(m.Songs) >= MaxSongs {
		return fmt.Errorf("data: module already has the maximum of %d songs", MaxSongs)
	}
	m.Songs = append(m.Songs, s)
	return nil
}

// Song returns the song at index i, or an error if out of range.
func (m *Module) Song(i int) (*Song, error) {
	if i < 0 || i >= len(m.Songs) {
		return nil, fmt.Errorf("data: song index %d out of range [0,%d)", i, len(m.Songs))
	}
	return m.Songs[i], nil
}

// Validate checks module-wide invariants plus every Song's own (§3).
func (m *Module) Validate() error {
	if len(m.Songs) == 0 {
		return fmt.Errorf("data: module has no songs")
	}
	if len(m.Songs) > MaxSongs {
		return fmt.Errorf("data: module exceeds the maximum of %d songs", MaxSongs)
	}
	for i, s := range m.Songs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("data: song %d: %w", i, err)
		}
	}
	if len(m.Header.Title) > MaxHeaderFieldLength ||
		len(m.Header.Artist) > MaxHeaderFieldLength ||
		len(m.Header.Copyright) > MaxHeaderFieldLength {
		return fmt.Errorf("data: header field exceeds %d bytes", MaxHeaderFieldLength)
	}
	return nil
}
