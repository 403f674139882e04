package apu

// Provider is the engine-facing audio backend seam (§9's replacement for
// the original's APU PIMPL pointer): anything that can accept register
// I/O and be stepped forward in T-states.
type Provider interface {
	WriteRegister(address uint16, value uint8)
	ReadRegister(address uint16) uint8
	Step(cycles int)
	EndFrame(clocks int)
}

// Ensure APU satisfies Provider.
var _ Provider = (*APU)(nil)

// NullProvider discards every register write and produces silence; it
// satisfies Provider for callers that want to drive engine timing without
// synthesizing audio (headless pattern analysis, fast-forward playback).
type NullProvider struct{}

func (NullProvider) WriteRegister(uint16, uint8) {}
func (NullProvider) ReadRegister(uint16) uint8   { return 0xFF }
func (NullProvider) Step(int)                    {}
func (NullProvider) EndFrame(int)                {}

var _ Provider = NullProvider{}
