package engine

import "github.com/sabaki-audio/gbtracker/data"

// InstrumentRuntime advances the four per-instrument sequences (arp,
// panning, pitch, timbre) for one channel's currently attached instrument
// (§4.7).
type InstrumentRuntime struct {
	ref *data.InstrumentRef

	enumerators [4]*data.Enumerator // indexed by data.SequenceKind

	// ArpFired/ArpOffset/TimbreFired/TimbreValue/PanFired/PanValue report
	// this frame's results to TrackControl/FrequencyControl.
	ArpFired    bool
	ArpOffset   int8
	TimbreFired bool
	TimbreValue uint8
	PanFired    bool
	PanLeft     bool
	PanRight    bool

	pitchFired bool
	pitchDelta int8
}

// Attach restarts all four enumerators against a new (or reloaded)
// instrument, per §4.7 "on restart (new note or new instrument)".
func (r *InstrumentRuntime) Attach(ref *data.InstrumentRef) {
	r.ref = ref
	for k := data.SequenceKind(0); int(k) < 4; k++ {
		seq := ref.Get().Sequence(k)
		r.enumerators[k] = seq.Enumerator()
	}
}

// Instrument returns the currently attached instrument, or nil.
func (r *InstrumentRuntime) Instrument() *data.Instrument {
	if r.ref == nil {
		return nil
	}
	return r.ref.Get()
}

// Step advances all four enumerators by one frame (§4.7). Arp and pitch
// results are surfaced for FrequencyControl; timbre and panning are
// surfaced for TrackControl to write into ChannelState/NR51.
func (r *InstrumentRuntime) Step() {
	r.ArpFired = false
	r.TimbreFired = false
	r.PanFired = false

	if r.ref == nil {
		return
	}

	if v, ok := r.enumerators[data.SequenceArpeggio].Next(); ok {
		r.ArpFired = true
		r.ArpOffset = int8(v)
	}
	if v, ok := r.enumerators[data.SequencePitch].Next(); ok {
		r.pitchDelta = int8(v)
		r.pitchFired = true
	} else {
		r.pitchFired = false
	}
	if v, ok := r.enumerators[data.SequenceTimbre].Next(); ok {
		r.TimbreFired = true
		r.TimbreValue = v
	}
	if v, ok := r.enumerators[data.SequencePanning].Next(); ok {
		r.PanFired = true
		// Ixy encoding (§6): high nibble bit0 = left, low nibble bit0 =
		// right, matching TrackControl.commit's EffectSetPanning decode.
		r.PanLeft = v&0x10 != 0
		r.PanRight = v&0x01 != 0
	}
}

// PitchDelta and PitchFired expose the pitch sequence's signed delta for
// this frame; FrequencyControl.AddInstrumentPitch accumulates it.
func (r *InstrumentRuntime) PitchFired() bool { return r.pitchFired }
func (r *InstrumentRuntime) PitchDelta() int8 { return r.pitchDelta }
