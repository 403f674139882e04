package engine

import "github.com/sabaki-audio/gbtracker/data"

// GlobalState holds the song-wide playback cursor and transport flags
// that pattern/global effects mutate (§4.8, §4.9).
type GlobalState struct {
	Halted bool

	OrderIndex int
	RowIndex   int

	Speed        data.Speed
	GlobalVolume uint8 // 0-8, NR50-scale master attenuation

	// patternCommand/patternParam record the winning pattern effect for
	// the current row: setPatternEffect keeps the first one committed, and
	// channels are stepped 0-3 with effect slots in order, so the earliest
	// channel, then the earliest effect slot, wins (§4.10, §9).
	patternCommand data.EffectType
	patternParam   uint8
}

func newGlobalState(song *data.Song) *GlobalState {
	return &GlobalState{
		Speed:        song.Speed,
		GlobalVolume: 8,
	}
}

// setPatternEffect records a pattern-class effect seen while committing
// a row's operations (Bxx/C00/Dxx), keeping only the first one observed
// in scan order for this row.
func (g *GlobalState) setPatternEffect(effect data.Effect) {
	if g.patternCommand != data.EffectNone {
		return
	}
	g.patternCommand = effect.Type
	g.patternParam = effect.Param
}

func (g *GlobalState) clearPatternEffect() {
	g.patternCommand = data.EffectNone
	g.patternParam = 0
}

// advanceRow applies the Bxx/C00/Dxx rules of §4.9 after a row boundary,
// or the default rowIndex++ with pattern-length rollover.
func (g *GlobalState) advanceRow(order *data.Order, patternLength int) {
	switch g.patternCommand {
	case data.EffectPatternHalt:
		g.Halted = true
	case data.EffectPatternGoto:
		g.OrderIndex = clampOrderIndex(int(g.patternParam), order.Len())
		g.RowIndex = 0
	case data.EffectPatternSkip:
		g.OrderIndex = wrapOrderIndex(g.OrderIndex+1, order.Len())
		g.RowIndex = clampRow(int(g.patternParam), patternLength)
	default:
		g.RowIndex++
		if g.RowIndex >= patternLength {
			g.RowIndex = 0
			g.OrderIndex = wrapOrderIndex(g.OrderIndex+1, order.Len())
		}
	}
	g.clearPatternEffect()
}

func clampOrderIndex(i, size int) int {
	if size == 0 {
		return 0
	}
	if i >= size {
		return size - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

func wrapOrderIndex(i, size int) int {
	if size == 0 {
		return 0
	}
	return i % size
}

func clampRow(i, patternLength int) int {
	if i < 0 {
		return 0
	}
	if i >= patternLength {
		return patternLength - 1
	}
	return i
}
