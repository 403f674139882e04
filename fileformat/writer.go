package fileformat

import (
	"encoding/binary"
	"io"

	"github.com/sabaki-audio/gbtracker/data"
)

// Write serializes m to w in the module binary format (§6).
func Write(w io.Writer, m *data.Module) error {
	if err := writeHeader(w, m); err != nil {
		return err
	}
	if err := writeInstruments(w, m.Instruments); err != nil {
		return err
	}
	if err := writeWaveforms(w, m.Waveforms); err != nil {
		return err
	}
	for _, song := range m.Songs {
		if err := writeSong(w, song); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, m *data.Module) error {
	if _, err := w.Write(Signature[:]); err != nil {
		return newError(ErrWriteError, "signature", err)
	}
	if err := writeU8(w, RevisionMajor); err != nil {
		return err
	}
	if err := writeU8(w, RevisionMinor); err != nil {
		return err
	}

	for _, field := range []string{m.Header.Title, m.Header.Artist, m.Header.Copyright} {
		if err := writeInfoStr(w, field); err != nil {
			return err
		}
	}
	if err := writeString(w, m.Header.Comment); err != nil {
		return err
	}
	if err := writeU8(w, uint8(m.Header.Target)); err != nil {
		return err
	}
	if err := writeU16(w, m.Header.CustomFramerate); err != nil {
		return err
	}
	return nil
}

func writeInfoStr(w io.Writer, s string) error {
	buf := make([]byte, infoStrLen)
	copy(buf, s)
	if _, err := w.Write(buf); err != nil {
		return newError(ErrWriteError, "infoStr", err)
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return newError(ErrWriteError, "string", err)
	}
	return nil
}

func writeU8(w io.Writer, v uint8) error {
	if _, err := w.Write([]byte{v}); err != nil {
		return newError(ErrWriteError, "u8", err)
	}
	return nil
}

func writeU16(w io.Writer, v uint16) error {
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		return newError(ErrWriteError, "u16", err)
	}
	return nil
}

func writeU32(w io.Writer, v uint32) error {
	if err := binary.Write(w, binary.LittleEndian, v); err != nil {
		return newError(ErrWriteError, "u32", err)
	}
	return nil
}

func writeInstruments(w io.Writer, table *data.Table[data.Instrument]) error {
	if _, err := w.Write(blockInst[:]); err != nil {
		return newError(ErrWriteError, "block:INST", err)
	}
	ids := table.Ids()
	if err := writeU16(w, uint16(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		inst, _ := table.Get(id)
		if err := writeInstrument(w, id, inst); err != nil {
			return err
		}
	}
	return nil
}

func writeInstrument(w io.Writer, id uint8, inst *data.Instrument) error {
	if err := writeU8(w, id); err != nil {
		return err
	}
	if err := writeString(w, inst.Name); err != nil {
		return err
	}
	if err := writeU8(w, uint8(inst.Channel)); err != nil {
		return err
	}
	hasEnv := inst.Envelope != nil
	if err := writeU8(w, boolByte(hasEnv)); err != nil {
		return err
	}
	envByte := uint8(0)
	if hasEnv {
		envByte = *inst.Envelope
	}
	if err := writeU8(w, envByte); err != nil {
		return err
	}
	for k := data.SequenceKind(0); int(k) < 4; k++ {
		if err := writeSequence(w, inst.Sequence(k)); err != nil {
			return err
		}
	}
	return nil
}

func writeSequence(w io.Writer, seq *data.Sequence) error {
	if err := writeU16(w, uint16(seq.Len())); err != nil {
		return err
	}
	loopIdx, hasLoop := seq.Loop()
	if err := writeU8(w, boolByte(hasLoop)); err != nil {
		return err
	}
	if err := writeU8(w, loopIdx); err != nil {
		return err
	}
	for i := 0; i < seq.Len(); i++ {
		if err := writeU8(w, seq.At(i)); err != nil {
			return err
		}
	}
	return nil
}

func writeWaveforms(w io.Writer, table *data.Table[data.Waveform]) error {
	if _, err := w.Write(blockWave[:]); err != nil {
		return newError(ErrWriteError, "block:WAVE", err)
	}
	ids := table.Ids()
	if err := writeU16(w, uint16(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		wf, _ := table.Get(id)
		if err := writeU8(w, id); err != nil {
			return err
		}
		if err := writeString(w, wf.Name); err != nil {
			return err
		}
		if _, err := w.Write(wf.Data[:]); err != nil {
			return newError(ErrWriteError, "waveform data", err)
		}
	}
	return nil
}

func writeSong(w io.Writer, song *data.Song) error {
	if _, err := w.Write(blockSong[:]); err != nil {
		return newError(ErrWriteError, "block:SONG", err)
	}
	if err := writeString(w, song.Name); err != nil {
		return err
	}
	if err := writeU8(w, uint8(song.Speed)); err != nil {
		return err
	}
	if err := writeU8(w, song.RowsPerBeat); err != nil {
		return err
	}
	if err := writeU8(w, song.RowsPerMeasure); err != nil {
		return err
	}
	if err := writeU16(w, uint16(song.PatternLength())); err != nil {
		return err
	}

	if err := writeU16(w, uint16(song.Order.Len())); err != nil {
		return err
	}
	for i := 0; i < song.Order.Len(); i++ {
		row := song.Order.Row(i)
		for ch := 0; ch < data.NumChannels; ch++ {
			if err := writeU8(w, row.TrackIds[ch]); err != nil {
				return err
			}
		}
	}

	for ch := 0; ch < data.NumChannels; ch++ {
		if err := writeChannelTracks(w, song, ch); err != nil {
			return err
		}
	}
	return nil
}

func writeChannelTracks(w io.Writer, song *data.Song, ch int) error {
	ids := usedTrackIds(song, ch)
	if err := writeU16(w, uint16(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		track := song.Patterns.Track(ch, id)
		if err := writeU8(w, id); err != nil {
			return err
		}
		for r := 0; r < track.Len(); r++ {
			if err := writeTrackRow(w, track.Row(r)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeTrackRow(w io.Writer, row data.TrackRow) error {
	if err := writeU8(w, row.Note); err != nil {
		return err
	}
	if err := writeU8(w, row.Instrument); err != nil {
		return err
	}
	for _, e := range row.Effects {
		if err := writeU8(w, uint8(e.Type)); err != nil {
			return err
		}
		if err := writeU8(w, e.Param); err != nil {
			return err
		}
	}
	return nil
}

// usedTrackIds collects, in ascending order, the distinct track ids
// channel ch's order rows reference (§3 "Tracks live inside a Song's
// PatternMaster and are shared across OrderRows").
func usedTrackIds(song *data.Song, ch int) []uint8 {
	seen := make(map[uint8]bool)
	var ids []uint8
	for i := 0; i < song.Order.Len(); i++ {
		id := song.Order.Row(i).TrackIds[ch]
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
