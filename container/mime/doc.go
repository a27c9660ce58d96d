// Package mime implements a storage format laid out like the single channel
// storage format of RFC 4867 section 5.
//
// The codebooks and bit order of this codec are its own, so its frames do
// not decode with AMR-WB implementations. Files therefore carry their own
// magic, "#!ACELP-WB\n", and a file with the AMR-WB magic is rejected with
// ErrForeignFormat. The magic is followed by one record per 20 ms frame:
//
//	Byte 0:   ToC  P FT(4) Q P P  (P = padding, zero)
//	Bytes 1+: frame data, bits ordered by error sensitivity, zero padded
//
// FT 0-8 are the speech modes, FT 9 is a silence descriptor, FT 14 a lost
// speech frame and FT 15 an empty (NO_DATA) frame. Q set to zero marks a
// frame damaged in transit.
//
// The ToC and frame data coding is shared with the octet-aligned RTP
// payload, see package rtp.
package mime
