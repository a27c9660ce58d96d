package amrwb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thesyncim/amrwb/internal/bitstream"
	"github.com/thesyncim/amrwb/internal/types"
)

const (
	// SampleRate is the sample rate of the PCM interface in Hz.
	SampleRate = 16000

	// FrameSize is the number of samples in one 20 ms frame.
	FrameSize = 320

	// MaxFrameBits is the size of the largest frame, in bits.
	MaxFrameBits = 477
)

// Mode selects the bit rate of a frame.
type Mode = types.Mode

// Speech modes, in increasing bit rate, and the silence descriptor mode.
const (
	Mode660  = types.Mode660
	Mode885  = types.Mode885
	Mode1265 = types.Mode1265
	Mode1425 = types.Mode1425
	Mode1585 = types.Mode1585
	Mode1825 = types.Mode1825
	Mode1985 = types.Mode1985
	Mode2305 = types.Mode2305
	Mode2385 = types.Mode2385
	ModeSID  = types.ModeSID
)

// FrameType is the type of a frame produced by the encoder.
type FrameType = types.TxType

// Frame types.
const (
	FrameSpeech    = types.TxSpeech
	FrameSIDFirst  = types.TxSIDFirst
	FrameSIDUpdate = types.TxSIDUpdate
	FrameNoData    = types.TxNoData
)

// Quality classifies a received frame for the decoder.
type Quality = types.RxType

// Frame qualities.
const (
	QualityGood             = types.RxSpeechGood
	QualityProbablyDegraded = types.RxSpeechDegraded
	QualityLost             = types.RxSpeechLost
	QualityBad              = types.RxSpeechBad
	QualitySIDFirst         = types.RxSIDFirst
	QualitySIDUpdate        = types.RxSIDUpdate
	QualitySIDBad           = types.RxSIDBad
	QualityNoData           = types.RxNoData
)

// FrameBits returns the number of bits in a frame of mode m, or 0 for an
// invalid mode. SID frames are 35 bits.
func FrameBits(m Mode) int {
	if !m.Valid() {
		return 0
	}
	return bitstream.FrameBits(m)
}

// QualityFor returns the quality a lossless channel delivers a frame of
// type t with.
func QualityFor(t FrameType) Quality {
	switch t {
	case FrameSIDFirst:
		return QualitySIDFirst
	case FrameSIDUpdate:
		return QualitySIDUpdate
	case FrameNoData:
		return QualityNoData
	default:
		return QualityGood
	}
}

// ParseMode parses a speech mode given as its bit rate in kbit/s ("12.65"
// or "1265") or as its index ("2").
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	for m := Mode660; m <= Mode2385; m++ {
		name := m.String()
		if s == name || s == strings.Replace(name, ".", "", 1) {
			return m, nil
		}
	}
	if i, err := strconv.Atoi(s); err == nil && i >= 0 && Mode(i).IsSpeech() {
		return Mode(i), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}
