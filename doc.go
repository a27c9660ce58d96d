// Package amrwb implements a wideband (16 kHz) ACELP speech codec in pure
// Go, modeled on AMR-WB: the same modes, frame sizes, parameter layout and
// DTX scheme, in fixed-point arithmetic.
//
// The ISF and gain codebooks and the ordering of bits by sensitivity are
// generated for this codec rather than taken from 3GPP TS 26.173, so its
// frames do not decode with AMR-WB implementations and vice versa.
//
// A frame is 20 ms of audio: 320 16-bit samples at 16 kHz. The encoder
// codes each frame at one of nine bit rates from 6.60 to 23.85 kbit/s and
// produces the frame's parameters as a sequence of bits, one element per
// bit. The decoder turns such sequences back into 320 samples.
//
// # Modes
//
// The mode selects the bit rate and can change on every frame:
//
//	Mode660   6.60 kbit/s   132 bits
//	Mode885   8.85 kbit/s   177 bits
//	Mode1265 12.65 kbit/s   253 bits
//	Mode1425 14.25 kbit/s   285 bits
//	Mode1585 15.85 kbit/s   317 bits
//	Mode1825 18.25 kbit/s   365 bits
//	Mode1985 19.85 kbit/s   397 bits
//	Mode2305 23.05 kbit/s   461 bits
//	Mode2385 23.85 kbit/s   477 bits
//
// # Discontinuous transmission
//
// With DTX enabled, the encoder runs a voice activity detector. After a
// hangover period of inactive frames it sends a silence descriptor
// (FrameSIDFirst), then a descriptor update every eighth frame
// (FrameSIDUpdate) and nothing in between (FrameNoData). The decoder
// generates comfort noise from the descriptors.
//
// # Frame quality
//
// The decoder is told the quality of each received frame. Lost and bad
// frames are concealed by extrapolating the previous parameters with
// increasing attenuation.
//
// # Containers
//
// The container packages carry frames in files and packets:
// container/mime implements a storage format and container/rtp an RTP
// payload, both laid out like RFC 4867 but marked so they are not mistaken
// for AMR-WB. container/itu implements the 16-bit word debug formats.
package amrwb
