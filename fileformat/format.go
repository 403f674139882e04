// Package fileformat implements the module binary format described by
// §6: a signature header, InfoStr metadata, comments, a target-system
// descriptor, and a sequence of typed INST/WAVE/SONG blocks. All
// multibyte integers are little-endian (§6).
package fileformat

import "github.com/sabaki-audio/gbtracker/data"

// Signature is the 4-byte magic every module file begins with.
var Signature = [4]byte{'G', 'B', 'T', 'K'}

// RevisionMajor and RevisionMinor are the format revision this package
// writes and the newest revision it can read.
const (
	RevisionMajor = 1
	RevisionMinor = 0
)

// Block tags identify the typed blocks that follow the header (§6).
var (
	blockInst = [4]byte{'I', 'N', 'S', 'T'}
	blockWave = [4]byte{'W', 'A', 'V', 'E'}
	blockSong = [4]byte{'S', 'O', 'N', 'G'}
)

// infoStrLen is the fixed width, in bytes, of each InfoStr header field
// (§3 "title/artist/copyright <=32 bytes each"; grounded on
// original_source/libtrackerboy/src/data/InfoStr.cpp's fixed-size,
// null-padded char array).
const infoStrLen = data.MaxHeaderFieldLength
