// Package wavfile renders the stereo float PCM apu.Mixer produces to a
// standard WAV file (§1 "a WAV writer... specified only as an external
// collaborator").
//
// github.com/arl/blip/wave (see other_examples/arl-blip__main.go) only
// demonstrates a mono int16 Writer; its constructor takes no channel
// count, so it cannot be made to emit a correctly-headered stereo file.
// Writer below hand-rolls the RIFF/WAVE container for that reason (see
// DESIGN.md) while the antialiased PCM it receives still comes from
// apu.Mixer's arl/blip buffers.
package wavfile

import (
	"encoding/binary"
	"io"
)

const (
	bitsPerSample = 16
	numChannels   = 2
)

// Writer streams interleaved stereo PCM to the underlying io.WriteSeeker
// as 16-bit samples; Close patches the header sizes to complete the file.
type Writer struct {
	w          io.WriteSeeker
	sampleRate int
	frames     int
}

// NewWriter writes a placeholder WAV header to w (to be patched on
// Close) and returns a Writer accepting sampleRate-Hz stereo PCM.
func NewWriter(w io.WriteSeeker, sampleRate int) (*Writer, error) {
	wr := &Writer{w: w, sampleRate: sampleRate}
	if err := wr.writeHeader(0); err != nil {
		return nil, err
	}
	return wr, nil
}

// WriteFloat32 appends interleaved [-1,1] float32 stereo samples
// (apu.Mixer.ReadSamples's format), converting to 16-bit PCM.
func (w *Writer) WriteFloat32(samples []float32) error {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := clampSample(s)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v*32767)))
	}
	if _, err := w.w.Write(buf); err != nil {
		return err
	}
	w.frames += len(samples) / numChannels
	return nil
}

func clampSample(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// SampleCount returns the number of stereo frames written so far.
func (w *Writer) SampleCount() int {
	return w.frames
}

// Close patches the RIFF/data chunk sizes now that the final length is
// known, then closes the underlying writer if it implements io.Closer.
func (w *Writer) Close() error {
	dataBytes := w.frames * numChannels * (bitsPerSample / 8)
	if _, err := w.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := w.writeHeader(dataBytes); err != nil {
		return err
	}
	if closer, ok := w.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (w *Writer) writeHeader(dataBytes int) error {
	byteRate := w.sampleRate * numChannels * (bitsPerSample / 8)
	blockAlign := numChannels * (bitsPerSample / 8)

	var hdr [44]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataBytes))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(hdr[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], numChannels)
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], bitsPerSample)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataBytes))

	_, err := w.w.Write(hdr[:])
	return err
}
