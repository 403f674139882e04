package engine

import "github.com/sabaki-audio/gbtracker/data"

// Operation is the per-row, per-channel unit TrackControl commits: a
// TrackRow translated into the concrete fields §4.8/§4.9 act on (§2 data
// flow: "constructs Operation").
type Operation struct {
	HasNote    bool
	Note       uint8
	HasInst    bool
	Instrument uint8

	Effects [data.EffectsPerRow]data.Effect

	// DelayedNoteFrames (Gxx) and DelayedCutFrames (Sxx) are extracted
	// from Effects for TrackControl's commit scheduling (§4.8).
	DelayedNoteFrames uint8
	HasDelayedCut     bool
	DelayedCutFrames  uint8
}

// newOperation translates a TrackRow into an Operation, per §4.8's "caches
// it" step. Delayed-note/cut effects are recognized here so TrackControl
// doesn't need to re-scan Effects on every frame.
func newOperation(row data.TrackRow) Operation {
	op := Operation{
		HasNote:    row.HasNote(),
		Note:       row.Note,
		HasInst:    row.HasInstrument(),
		Instrument: row.Instrument,
		Effects:    row.Effects,
	}
	for _, e := range row.Effects {
		switch e.Type {
		case data.EffectDelayedNote:
			op.DelayedNoteFrames = e.Param
		case data.EffectDelayedCut:
			op.HasDelayedCut = true
			op.DelayedCutFrames = e.Param
		}
	}
	return op
}

// duration reports how many frames the note set by this Operation should
// sound for, before Sxx (delayed cut) or the next note silences it. A
// missing delayed-cut effect means "play until the next event", encoded
// as 0 (TrackControl treats 0 as "no scheduled cut").
func (op Operation) duration() uint8 {
	if op.HasDelayedCut {
		return op.DelayedCutFrames
	}
	return 0
}
