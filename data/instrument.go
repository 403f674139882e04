package data

// SequenceKind indexes an Instrument's four Sequences.
type SequenceKind int

const (
	SequenceArpeggio SequenceKind = iota
	SequencePanning
	SequencePitch
	SequenceTimbre
	sequenceKindCount
)

// Instrument is a named preset driving a channel's envelope/waveform and
// its four modulation Sequences (§3).
type Instrument struct {
	Name string
	// Channel is the default channel the instrument targets; informational
	// only, the engine does not enforce it.
	Channel int
	// Envelope is the optional initial envelope byte (volume:nibble |
	// amplify:bit | period:3-bit) for CH1/2/4, or the waveform id for CH3.
	Envelope *uint8

	sequences [sequenceKindCount]*Sequence
}

// NewInstrument returns an Instrument with four empty sequences.
func NewInstrument(name string) *Instrument {
	inst := &Instrument{Name: name}
	for i := range inst.sequences {
		inst.sequences[i] = NewSequence()
	}
	return inst
}

// Sequence returns the Sequence of the given kind.
func (inst *Instrument) Sequence(kind SequenceKind) *Sequence {
	return inst.sequences[kind]
}

// SetEnvelope sets the initial envelope/waveform-id byte.
func (inst *Instrument) SetEnvelope(v uint8) {
	val := v
	inst.Envelope = &val
}

// Clone returns a deep copy of the instrument, including its sequences.
func (inst *Instrument) Clone() *Instrument {
	clone := &Instrument{Name: inst.Name, Channel: inst.Channel}
	if inst.Envelope != nil {
		v := *inst.Envelope
		clone.Envelope = &v
	}
	for i, seq := range inst.sequences {
		clone.sequences[i] = seq.Clone()
	}
	return clone
}

// InstrumentRef is a reference-counted handle to a shared Instrument. The
// engine holds one for the lifetime of the currently playing note so table
// edits (replacing or deleting an instrument id mid-play) cannot invalidate
// in-flight engine state (§9 "Instrument shared ownership").
type InstrumentRef struct {
	inst *Instrument
	refs *int
}

// NewInstrumentRef wraps an Instrument in a fresh reference-counted handle
// with an initial count of one.
func NewInstrumentRef(inst *Instrument) *InstrumentRef {
	count := 1
	return &InstrumentRef{inst: inst, refs: &count}
}

// Retain returns a new handle to the same Instrument, incrementing the
// shared refcount.
func (r *InstrumentRef) Retain() *InstrumentRef {
	if r == nil {
		return nil
	}
	*r.refs++
	return &InstrumentRef{inst: r.inst, refs: r.refs}
}

// Release decrements the shared refcount. The underlying Instrument is
// owned by the table regardless of count reaching zero; Release exists so
// callers can detect when they hold the last outstanding handle.
func (r *InstrumentRef) Release() (remaining int) {
	if r == nil {
		return 0
	}
	*r.refs--
	return *r.refs
}

// Get returns the underlying Instrument.
func (r *InstrumentRef) Get() *Instrument {
	if r == nil {
		return nil
	}
	return r.inst
}
