package data

// MaxSequenceLength is the largest number of elements a Sequence may hold.
const MaxSequenceLength = 256

// Sequence is an ordered list of bytes with an optional loop point. It backs
// an Instrument's arpeggio, panning, pitch and timbre tracks (§4.1, §4.7).
type Sequence struct {
	data []uint8
	loop *uint8
}

// NewSequence builds a Sequence from existing data, truncating to
// MaxSequenceLength if necessary.
func NewSequence(elements ...uint8) *Sequence {
	if len(elements) > MaxSequenceLength {
		elements = elements[:MaxSequenceLength]
	}
	data := make([]uint8, len(elements))
	copy(data, elements)
	return &Sequence{data: data}
}

// Len returns the number of elements in the sequence.
func (s *Sequence) Len() int {
	return len(s.data)
}

// At returns the element at index i.
func (s *Sequence) At(i int) uint8 {
	return s.data[i]
}

// SetLoop sets the loop index. Enumeration past the end of the sequence
// resumes from this index instead of terminating.
func (s *Sequence) SetLoop(index uint8) {
	v := index
	s.loop = &v
}

// ClearLoop removes the loop point so enumeration ends at the sequence's end.
func (s *Sequence) ClearLoop() {
	s.loop = nil
}

// Loop reports the loop index and whether one is set.
func (s *Sequence) Loop() (uint8, bool) {
	if s.loop == nil {
		return 0, false
	}
	return *s.loop, true
}

// Append adds an element to the end of the sequence, up to MaxSequenceLength.
func (s *Sequence) Append(v uint8) bool {
	if len(s.data) >= MaxSequenceLength {
		return false
	}
	s.data = append(s.data, v)
	return true
}

// Resize truncates or zero-extends the sequence to the given length.
func (s *Sequence) Resize(n int) {
	if n > MaxSequenceLength {
		n = MaxSequenceLength
	}
	if n <= len(s.data) {
		s.data = s.data[:n]
		return
	}
	grown := make([]uint8, n)
	copy(grown, s.data)
	s.data = grown
}

// Clone returns a deep copy of the sequence.
func (s *Sequence) Clone() *Sequence {
	clone := &Sequence{data: append([]uint8(nil), s.data...)}
	if s.loop != nil {
		l := *s.loop
		clone.loop = &l
	}
	return clone
}

// Equal reports whether two sequences hold identical data and loop points,
// used by the fileformat round-trip tests (§8).
func (s *Sequence) Equal(other *Sequence) bool {
	if other == nil {
		return false
	}
	if len(s.data) != len(other.data) {
		return false
	}
	for i := range s.data {
		if s.data[i] != other.data[i] {
			return false
		}
	}
	if (s.loop == nil) != (other.loop == nil) {
		return false
	}
	return s.loop == nil || *s.loop == *other.loop
}

// Enumerator walks a Sequence frame by frame, honoring the loop point.
// A terminated sequence with no loop yields no further values (§4.7).
type Enumerator struct {
	seq   *Sequence
	index int
	done  bool
}

// Enumerator returns a fresh Enumerator positioned at the start of the
// sequence.
func (s *Sequence) Enumerator() *Enumerator {
	return &Enumerator{seq: s}
}

// Next advances the enumerator by one frame and returns the element at the
// new position, or ok=false once the sequence has ended without a loop.
func (e *Enumerator) Next() (value uint8, ok bool) {
	if e.done || e.seq == nil || e.seq.Len() == 0 {
		e.done = true
		return 0, false
	}

	if e.index >= e.seq.Len() {
		loop, hasLoop := e.seq.Loop()
		if !hasLoop || int(loop) >= e.seq.Len() {
			e.done = true
			return 0, false
		}
		e.index = int(loop)
	}

	value = e.seq.At(e.index)
	e.index++
	return value, true
}

// Reset returns the enumerator to the start of the sequence, as happens on
// instrument restart (§4.7).
func (e *Enumerator) Reset() {
	e.index = 0
	e.done = false
}
