package engine

import "github.com/sabaki-audio/gbtracker/data"

// q4_4One is 1.0 in Q4.4 fixed point (§4.5).
const q4_4One = 1 << 4

// Timer paces rows against frames using Q4.4 fixed-point accumulation
// (§4.5): a Speed of 2.5 frames/row yields a new row every 2 or 3 frames,
// the canonical tracker tempo trick.
type Timer struct {
	period  uint8 // Q4.4, from data.Speed
	counter uint8 // Q4.4
}

// NewTimer returns a Timer paced at speed frames/row, counter starting at
// 0 so the very first frame is active.
func NewTimer(speed data.Speed) *Timer {
	return &Timer{period: uint8(speed.Clamp())}
}

// SetPeriod updates the row period (an Fxx tempo effect, §4.8).
func (t *Timer) SetPeriod(speed data.Speed) {
	t.period = uint8(speed.Clamp())
}

// Active reports whether the current frame is the first frame of its row.
func (t *Timer) Active() bool {
	return t.counter < q4_4One
}

// Step advances one frame and reports whether the row boundary was
// crossed (a new row must be read next frame).
func (t *Timer) Step() bool {
	t.counter += q4_4One
	if t.counter >= t.period {
		t.counter -= t.period
		return true
	}
	return false
}
