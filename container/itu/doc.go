// Package itu reads and writes frames in the 16-bit word formats used by
// codec test tools, where each bit of a frame occupies one little-endian
// word: 0x0081 for a one and 0x007F for a zero.
//
// FormatG192 stores a sync word (0x6B21 for a good frame, 0x6B20 for a
// damaged or lost one), the number of bits and the bits. The frame type is
// implied by the bit count: zero for NO_DATA and lost frames, 40 for a
// silence descriptor (35 parameter bits, the update indicator and the
// 4-bit mode indication), otherwise the size of a speech mode.
//
// FormatTypeMode stores a frame quality word, a mode word and a fixed
// block of 477 bit words, zero padded.
package itu
