package fileformat

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/sabaki-audio/gbtracker/data"
)

// Read deserializes a Module from r. On error the returned Module is
// discarded by convention; the caller MUST NOT assume partial state is
// usable (§7 propagation policy).
func Read(r io.Reader) (*data.Module, error) {
	// Songs come only from the file's SONG blocks.
	m := &data.Module{Instruments: data.NewTable[data.Instrument](), Waveforms: data.NewTable[data.Waveform]()}

	if err := readHeader(r, m); err != nil {
		return nil, err
	}

	for {
		var tag [4]byte
		if _, err := io.ReadFull(r, tag[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, newError(ErrReadError, "block tag", err)
		}
		switch tag {
		case blockInst:
			if err := readInstruments(r, m); err != nil {
				return nil, err
			}
		case blockWave:
			if err := readWaveforms(r, m); err != nil {
				return nil, err
			}
		case blockSong:
			song, err := readSong(r)
			if err != nil {
				return nil, err
			}
			if err := m.AddSong(song); err != nil {
				return nil, newError(ErrInvalid, "song count", err)
			}
		default:
			return nil, newError(ErrInvalid, "unknown block tag", nil)
		}
	}

	return m, nil
}

func readHeader(r io.Reader, m *data.Module) error {
	var sig [4]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return newError(ErrReadError, "signature", err)
	}
	if sig != Signature {
		return newError(ErrInvalidSignature, "signature mismatch", nil)
	}

	major, err := readU8(r)
	if err != nil {
		return err
	}
	if _, err := readU8(r); err != nil { // minor revision, currently unused for gating
		return err
	}
	if major > RevisionMajor {
		return newError(ErrCannotUpgrade, "revision newer than supported", nil)
	}

	title, err := readInfoStr(r)
	if err != nil {
		return err
	}
	artist, err := readInfoStr(r)
	if err != nil {
		return err
	}
	copyright, err := readInfoStr(r)
	if err != nil {
		return err
	}
	comment, err := readString(r)
	if err != nil {
		return err
	}
	target, err := readU8(r)
	if err != nil {
		return err
	}
	framerate, err := readU16(r)
	if err != nil {
		return err
	}

	m.Header = data.Header{
		Title:           title,
		Artist:          artist,
		Copyright:       copyright,
		Comment:         comment,
		Target:          data.TargetSystem(target),
		CustomFramerate: framerate,
	}
	return nil
}

func readInfoStr(r io.Reader) (string, error) {
	buf := make([]byte, infoStrLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", newError(ErrReadError, "infoStr", err)
	}
	return string(bytes.TrimRight(buf, "\x00")), nil
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", newError(ErrReadError, "string", err)
	}
	return string(buf), nil
}

func readU8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, newError(ErrReadError, "u8", err)
	}
	return b[0], nil
}

func readU16(r io.Reader) (uint16, error) {
	var v uint16
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, newError(ErrReadError, "u16", err)
	}
	return v, nil
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return 0, newError(ErrReadError, "u32", err)
	}
	return v, nil
}

func readInstruments(r io.Reader, m *data.Module) error {
	count, err := readU16(r)
	if err != nil {
		return err
	}
	for i := uint16(0); i < count; i++ {
		id, err := readU8(r)
		if err != nil {
			return err
		}
		name, err := readString(r)
		if err != nil {
			return err
		}
		channel, err := readU8(r)
		if err != nil {
			return err
		}
		hasEnv, err := readU8(r)
		if err != nil {
			return err
		}
		envByte, err := readU8(r)
		if err != nil {
			return err
		}

		inst := data.NewInstrument(name)
		inst.Channel = int(channel)
		if hasEnv != 0 {
			inst.SetEnvelope(envByte)
		}
		for k := data.SequenceKind(0); int(k) < 4; k++ {
			if err := readSequence(r, inst.Sequence(k)); err != nil {
				return err
			}
		}

		if err := m.Instruments.InsertAt(id, inst); err != nil {
			return newError(ErrDuplicateID, "instrument id", err)
		}
	}
	return nil
}

func readSequence(r io.Reader, seq *data.Sequence) error {
	length, err := readU16(r)
	if err != nil {
		return err
	}
	hasLoop, err := readU8(r)
	if err != nil {
		return err
	}
	loopIdx, err := readU8(r)
	if err != nil {
		return err
	}
	for i := uint16(0); i < length; i++ {
		v, err := readU8(r)
		if err != nil {
			return err
		}
		seq.Append(v)
	}
	if hasLoop != 0 {
		seq.SetLoop(loopIdx)
	}
	return nil
}

func readWaveforms(r io.Reader, m *data.Module) error {
	count, err := readU16(r)
	if err != nil {
		return err
	}
	for i := uint16(0); i < count; i++ {
		id, err := readU8(r)
		if err != nil {
			return err
		}
		name, err := readString(r)
		if err != nil {
			return err
		}
		wf := data.NewWaveform(name)
		if _, err := io.ReadFull(r, wf.Data[:]); err != nil {
			return newError(ErrReadError, "waveform data", err)
		}
		if err := m.Waveforms.InsertAt(id, wf); err != nil {
			return newError(ErrDuplicateID, "waveform id", err)
		}
	}
	return nil
}

func readSong(r io.Reader) (*data.Song, error) {
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	speed, err := readU8(r)
	if err != nil {
		return nil, err
	}
	rowsPerBeat, err := readU8(r)
	if err != nil {
		return nil, err
	}
	rowsPerMeasure, err := readU8(r)
	if err != nil {
		return nil, err
	}
	patternLength, err := readU16(r)
	if err != nil {
		return nil, err
	}

	song := data.NewSong(name, int(patternLength))
	song.Speed = data.Speed(speed).Clamp()
	song.RowsPerBeat = rowsPerBeat
	song.RowsPerMeasure = rowsPerMeasure

	orderCount, err := readU16(r)
	if err != nil {
		return nil, err
	}
	order := data.NewOrder()
	for i := uint16(0); i < orderCount; i++ {
		var row data.OrderRow
		for ch := 0; ch < data.NumChannels; ch++ {
			v, err := readU8(r)
			if err != nil {
				return nil, err
			}
			row.TrackIds[ch] = v
		}
		if i == 0 {
			order.SetRow(0, row)
		} else {
			order.Insert(int(i), row)
		}
	}
	song.Order = order

	for ch := 0; ch < data.NumChannels; ch++ {
		if err := readChannelTracks(r, song, ch); err != nil {
			return nil, err
		}
	}

	return song, nil
}

func readChannelTracks(r io.Reader, song *data.Song, ch int) error {
	if ch >= data.NumChannels {
		return newError(ErrUnknownChannel, "channel index", nil)
	}
	count, err := readU16(r)
	if err != nil {
		return err
	}
	for i := uint16(0); i < count; i++ {
		id, err := readU8(r)
		if err != nil {
			return err
		}
		track := song.Patterns.Track(ch, id)
		for row := 0; row < track.Len(); row++ {
			tr, err := readTrackRow(r)
			if err != nil {
				return err
			}
			track.SetRow(row, tr)
		}
	}
	return nil
}

func readTrackRow(r io.Reader) (data.TrackRow, error) {
	var row data.TrackRow
	note, err := readU8(r)
	if err != nil {
		return row, err
	}
	inst, err := readU8(r)
	if err != nil {
		return row, err
	}
	row.Note = note
	row.Instrument = inst
	for i := range row.Effects {
		typ, err := readU8(r)
		if err != nil {
			return row, err
		}
		param, err := readU8(r)
		if err != nil {
			return row, err
		}
		row.Effects[i] = data.Effect{Type: data.EffectType(typ), Param: param}
	}
	return row, nil
}
