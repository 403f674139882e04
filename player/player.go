// Package player schedules Engine playback against wall-clock time (§1,
// §5 "Player: optional sleep_until against wall-clock"). It is the only
// blocking component in the system — Engine, apu.APU, and Mixer are all
// synchronous (§5).
package player

import (
	"log/slog"
	"time"

	"github.com/sabaki-audio/gbtracker/apu"
	"github.com/sabaki-audio/gbtracker/engine"
)

// SampleDrain receives PCM as it becomes available (a WAV writer, an
// audio device callback, ...).
type SampleDrain interface {
	WriteFloat32(samples []float32) error
}

// sampleSource is satisfied by providers that actually synthesize audio
// (*apu.APU). NullProvider and other Provider implementations without
// this capability simply never get drained — playback still paces in
// real time, it just produces no PCM.
type sampleSource interface {
	SamplesAvailable() int
	ReadSamples(n int) []float32
}

// Player paces Engine.Step calls to real time using a frame ticker, the
// same busy-wait-avoiding approach as a hardware emulator's display sync
// (grounded on the cadence of jeebie's old timing.Limiter/Ticker split:
// a ticker paces the loop, a stop flag is polled once per iteration
// rather than preempted mid-frame).
type Player struct {
	eng        *engine.Engine
	provider   apu.Provider
	drain      SampleDrain
	frameEvery time.Duration

	stop chan struct{}
}

// New returns a Player that steps eng once per video frame, draining
// provider's samples to drain after every frame.
func New(eng *engine.Engine, provider apu.Provider, drain SampleDrain, framerate float64) *Player {
	return &Player{
		eng:        eng,
		provider:   provider,
		drain:      drain,
		frameEvery: time.Duration(float64(time.Second) / framerate),
		stop:       make(chan struct{}),
	}
}

// Stop requests playback to end; the request is checked between frame
// ticks, so playback ends before the next Engine.Step (§5). Safe to
// call once; calling it twice panics on the closed channel, matching
// Go's usual close-once discipline.
func (p *Player) Stop() {
	close(p.stop)
}

// RunLoops steps the engine in real time until it halts, loops
// maxLoops times through the pattern-run visit sequence, or Stop is
// called — whichever comes first. maxLoops <= 0 means "until halt or
// Stop".
func (p *Player) RunLoops(maxLoops int) error {
	return p.run(func(frames int) bool {
		return maxLoops > 0 && p.eng.LoopCount() >= maxLoops
	})
}

// RunDuration steps the engine in real time for at most d, or until it
// halts or Stop is called.
func (p *Player) RunDuration(d time.Duration) error {
	maxFrames := int(d / p.frameEvery)
	return p.run(func(frames int) bool {
		return frames >= maxFrames
	})
}

func (p *Player) run(done func(framesElapsed int) bool) error {
	ticker := time.NewTicker(p.frameEvery)
	defer ticker.Stop()

	slog.Debug("player starting", "frame_period", p.frameEvery)

	frames := 0
	for {
		select {
		case <-p.stop:
			slog.Debug("player stopped", "frames", frames)
			return p.flush()
		case <-ticker.C:
			p.eng.Step()
			if err := p.flush(); err != nil {
				return err
			}
			frames++
			if p.eng.Halted() {
				slog.Debug("player halted", "frames", frames)
				return nil
			}
			if done(frames) {
				slog.Debug("player reached bound", "frames", frames, "loops", p.eng.LoopCount())
				return nil
			}
		}
	}
}

func (p *Player) flush() error {
	if p.drain == nil {
		return nil
	}
	src, ok := p.provider.(sampleSource)
	if !ok {
		return nil
	}
	n := src.SamplesAvailable()
	if n <= 0 {
		return nil
	}
	samples := src.ReadSamples(n)
	if len(samples) == 0 {
		return nil
	}
	return p.drain.WriteFloat32(samples)
}
