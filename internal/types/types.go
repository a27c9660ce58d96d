// Package types defines shared types used across amrwb packages.
// This package exists to break import cycles between the root amrwb package
// and internal packages.
package types

// Mode represents a codec bit-rate mode.
type Mode uint8

const (
	Mode660  Mode = iota // 6.60 kbit/s
	Mode885              // 8.85 kbit/s
	Mode1265             // 12.65 kbit/s
	Mode1425             // 14.25 kbit/s
	Mode1585             // 15.85 kbit/s
	Mode1825             // 18.25 kbit/s
	Mode1985             // 19.85 kbit/s
	Mode2305             // 23.05 kbit/s
	Mode2385             // 23.85 kbit/s
	ModeSID              // silence descriptor (comfort noise parameters)
)

// NumSpeechModes is the number of speech (non-SID) modes.
const NumSpeechModes = 9

// Valid reports whether m is a known mode, including ModeSID.
func (m Mode) Valid() bool {
	return m <= ModeSID
}

// IsSpeech reports whether m carries speech parameters.
func (m Mode) IsSpeech() bool {
	return m < ModeSID
}

var modeBitrates = [...]int{6600, 8850, 12650, 14250, 15850, 18250, 19850, 23050, 23850, 1750}

// Bitrate returns the nominal bit-rate of the mode in bits per second.
func (m Mode) Bitrate() int {
	if !m.Valid() {
		return 0
	}
	return modeBitrates[m]
}

var modeNames = [...]string{"6.60", "8.85", "12.65", "14.25", "15.85", "18.25", "19.85", "23.05", "23.85", "SID"}

func (m Mode) String() string {
	if !m.Valid() {
		return "invalid"
	}
	return modeNames[m]
}

// TxType is the frame type produced by the encoder.
type TxType uint8

const (
	TxSpeech    TxType = iota // full speech frame
	TxSIDFirst                // first silence descriptor after speech
	TxSIDUpdate               // periodic silence descriptor update
	TxNoData                  // nothing transmitted
)

func (t TxType) String() string {
	switch t {
	case TxSpeech:
		return "SPEECH"
	case TxSIDFirst:
		return "SID_FIRST"
	case TxSIDUpdate:
		return "SID_UPDATE"
	case TxNoData:
		return "NO_DATA"
	default:
		return "UNKNOWN"
	}
}

// RxType is the externally classified quality of a received frame.
type RxType uint8

const (
	RxSpeechGood     RxType = iota // speech frame received without errors
	RxSpeechDegraded               // speech frame, probably degraded
	RxSpeechLost                   // speech frame lost
	RxSpeechBad                    // speech frame received with errors
	RxSIDFirst                     // first SID frame
	RxSIDUpdate                    // SID update frame
	RxSIDBad                       // corrupted SID frame
	RxNoData                       // nothing received (DTX pause)
)

// Valid reports whether r is a known receive type.
func (r RxType) Valid() bool {
	return r <= RxNoData
}

// IsBad reports whether the frame bits cannot be trusted.
func (r RxType) IsBad() bool {
	return r == RxSpeechLost || r == RxSpeechBad
}

func (r RxType) String() string {
	switch r {
	case RxSpeechGood:
		return "SPEECH_GOOD"
	case RxSpeechDegraded:
		return "SPEECH_DEGRADED"
	case RxSpeechLost:
		return "SPEECH_LOST"
	case RxSpeechBad:
		return "SPEECH_BAD"
	case RxSIDFirst:
		return "SID_FIRST"
	case RxSIDUpdate:
		return "SID_UPDATE"
	case RxSIDBad:
		return "SID_BAD"
	case RxNoData:
		return "NO_DATA"
	default:
		return "UNKNOWN"
	}
}
