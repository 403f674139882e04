package engine

import "github.com/sabaki-audio/gbtracker/data"

// ChannelState is the engine-side mirror of one APU channel's musical
// parameters, written out as register writes by Engine each frame (§4.8,
// §2 data flow).
type ChannelState struct {
	Playing bool

	Envelope  uint8 // NRx2 byte: volume<<4 | amplify<<3 | period
	Timbre    uint8 // pulse duty bits / CH3 volume code / CH4 width bit
	PanLeft   bool
	PanRight  bool
	SweepByte uint8 // NR10 byte, CH1 only

	Frequency uint16 // effective frequency/NR43 byte written this frame
	Trigger   bool   // set for one frame when a note/instrument restarts
}

// TrackControl is the per-channel row interpreter of §4.8: it caches an
// Operation from the current row, commits it (possibly after a Gxx
// delay), and each frame advances InstrumentRuntime/FrequencyControl.
type TrackControl struct {
	channel int // 0-3, selects tone vs noise tables

	pending     *Operation
	delayFrames int

	cutCounter int
	retrigger  bool

	inst InstrumentRuntime
	freq *FrequencyControl

	state ChannelState
}

// NewTrackControl returns a TrackControl for channel index ch (0=CH1 ...
// 3=CH4, noise).
func NewTrackControl(ch int) *TrackControl {
	return &TrackControl{
		channel: ch,
		freq:    NewFrequencyControl(ch == 3),
		state:   ChannelState{PanLeft: true, PanRight: true},
	}
}

// SetRow caches row as the next Operation to commit (§4.8 step 1's
// "converts a TrackRow into an Operation, caching it").
func (tc *TrackControl) SetRow(row data.TrackRow) {
	op := newOperation(row)
	tc.pending = &op
	tc.delayFrames = int(op.DelayedNoteFrames)
}

// State returns the channel state as of the last Step call.
func (tc *TrackControl) State() ChannelState {
	return tc.state
}

// Step advances the channel by one frame per §4.8's three numbered
// steps, resolving global-affecting effects (tempo, global volume,
// pattern command) into global.
func (tc *TrackControl) Step(global *GlobalState, instruments *data.Table[data.Instrument]) {
	tc.state.Trigger = false

	committed := false
	if tc.pending != nil {
		if tc.delayFrames > 0 {
			tc.delayFrames--
		} else {
			tc.commit(*tc.pending, global, instruments)
			tc.pending = nil
			committed = true
		}
	}

	if !committed && tc.state.Playing && tc.cutCounter > 0 {
		tc.cutCounter--
		if tc.cutCounter == 0 {
			tc.state.Playing = false
		}
	}

	tc.inst.Step()
	if tc.inst.PitchFired() {
		tc.freq.AddInstrumentPitch(tc.inst.PitchDelta())
	}
	if tc.inst.ArpFired {
		tc.freq.SetArpeggioOffset(tc.inst.ArpOffset)
	}
	if tc.inst.TimbreFired {
		tc.state.Timbre = tc.inst.TimbreValue
	}
	if tc.inst.PanFired {
		tc.state.PanLeft = tc.inst.PanLeft
		tc.state.PanRight = tc.inst.PanRight
	}

	tc.freq.Step(tc.inst.ArpFired)
	tc.state.Frequency = tc.freq.Effective()
}

// commit applies an Operation's non-frequency effects to global/channel
// state, swaps in a new instrument if requested, and calls
// FrequencyControl.Apply (§4.8 step 1).
func (tc *TrackControl) commit(op Operation, global *GlobalState, instruments *data.Table[data.Instrument]) {
	for _, e := range op.Effects {
		switch e.Type {
		case data.EffectPatternGoto, data.EffectPatternHalt, data.EffectPatternSkip:
			global.setPatternEffect(e)
		case data.EffectSetTempo:
			global.Speed = data.Speed(e.Param).Clamp()
		case data.EffectSetGlobalVolume:
			global.GlobalVolume = e.Param
		case data.EffectSetEnvelope:
			tc.state.Envelope = e.Param
		case data.EffectSetTimbre:
			tc.state.Timbre = e.Param
		case data.EffectSetPanning:
			tc.state.PanLeft = e.Param&0x10 != 0
			tc.state.PanRight = e.Param&0x01 != 0
		case data.EffectSetSweep:
			tc.state.SweepByte = e.Param
		}
	}

	newInstrument := false
	if op.HasInst {
		if inst, ok := instruments.Get(op.Instrument); ok {
			tc.inst.Attach(data.NewInstrumentRef(inst))
			newInstrument = true
			if inst.Envelope != nil {
				tc.state.Envelope = *inst.Envelope
			}
		}
	}

	if op.HasNote && op.Note == NoteCut {
		tc.state.Playing = false
	} else if op.HasNote {
		tc.state.Playing = true
		tc.cutCounter = int(op.duration())
		if !newInstrument {
			for _, en := range tc.inst.enumerators {
				if en != nil {
					en.Reset()
				}
			}
		}
	}

	tc.retrigger = op.HasNote || newInstrument
	tc.state.Trigger = tc.retrigger

	tc.freq.Apply(op)
}
