// Package compiler implements the pattern-run analyzer: a static
// reachability analysis over a song's order list and pattern-jump
// effects, producing the halt/loop classification a compiler front-end
// needs before it can emit a fixed-size visit table (§4.10).
package compiler

import "github.com/sabaki-audio/gbtracker/data"

// Visit records one traversal of an order-list slot: PatternID is the
// order index visited, RowCount the number of rows actually played
// before a pattern-jump effect (or the full pattern length, if none
// fired) cut it short.
type Visit struct {
	PatternID int
	RowCount  int
}

// Result is the outcome of PatternRun: either the song halts (a C00 was
// reached) or it loops back to LoopIndex within Visits.
type Result struct {
	Halts     bool
	LoopIndex int
	Visits    []Visit
}

// PatternRun analyzes song's order list and pattern-jump effects (Bxx
// goto, C00 halt, Dxx skip), producing the unique visit sequence and its
// halt/loop classification (§4.10).
func PatternRun(song *data.Song) Result {
	order := song.Order
	patternLength := song.PatternLength()

	var visited []Visit
	seen := map[int]int{0: 0}
	idx := 0

	for {
		pattern := song.Pattern(idx)
		rows, effect, found := scanForFirstPatternEffect(pattern, patternLength)
		visited = append(visited, Visit{PatternID: idx, RowCount: rows})

		if found && effect.Type == data.EffectPatternHalt {
			return Result{Halts: true, Visits: visited}
		}

		next := idx + 1
		if found && effect.Type == data.EffectPatternGoto {
			next = clampGotoTarget(int(effect.Param), order.Len())
		}

		if next == order.Len() {
			return Result{Halts: false, Visits: visited}
		}
		if pos, ok := seen[next]; ok {
			return Result{Halts: false, LoopIndex: pos, Visits: visited}
		}
		seen[next] = len(visited)
		idx = next
	}
}

func clampGotoTarget(param, orderSize int) int {
	if orderSize == 0 {
		return 0
	}
	if param > orderSize-1 {
		return orderSize - 1
	}
	return param
}

// scanForFirstPatternEffect scans pattern's four tracks row by row,
// channel 0..3 then effect slot 0..2, for the first Bxx/C00/Dxx effect.
// This fixes the §9 open question: "earliest channel wins, then
// earliest effect slot" within the earliest row any pattern effect
// appears in.
func scanForFirstPatternEffect(pattern data.Pattern, patternLength int) (rowsPlayed int, effect data.Effect, found bool) {
	for row := 0; row < patternLength; row++ {
		for ch := 0; ch < data.NumChannels; ch++ {
			track := pattern.Tracks[ch]
			if track == nil {
				continue
			}
			trackRow := track.Row(row)
			for slot := 0; slot < data.EffectsPerRow; slot++ {
				e := trackRow.Effects[slot]
				if e.IsPatternEffect() {
					return row + 1, e, true
				}
			}
		}
	}
	return patternLength, data.Effect{}, false
}
