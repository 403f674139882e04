package data

// WaveformSize is the number of bytes of wave RAM a Waveform stores (32
// packed 4-bit samples).
const WaveformSize = 16

// Waveform holds the 16-byte wave RAM payload for channel 3.
type Waveform struct {
	Name string
	Data [WaveformSize]uint8
}

// NewWaveform returns a Waveform with the given name and zeroed data.
func NewWaveform(name string) *Waveform {
	return &Waveform{Name: name}
}

// Sample returns the 4-bit sample at the given 0-31 index: the high nibble
// of byte index/2 for even indices, the low nibble for odd ones (§4.1).
func (w *Waveform) Sample(index int) uint8 {
	b := w.Data[index/2]
	if index%2 == 0 {
		return (b >> 4) & 0x0F
	}
	return b & 0x0F
}

// Clone returns a deep copy of the waveform.
func (w *Waveform) Clone() *Waveform {
	clone := &Waveform{Name: w.Name}
	clone.Data = w.Data
	return clone
}

// Equal reports whether two waveforms hold identical data and name.
func (w *Waveform) Equal(other *Waveform) bool {
	return other != nil && w.Name == other.Name && w.Data == other.Data
}
