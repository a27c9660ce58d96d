// Package rtp carries frames in RTP packets using the payload layout of
// RFC 4867, in octet-aligned or bandwidth-efficient mode, without
// interleaving or payload CRCs.
//
// Only the layout is shared. The frame data is this codec's own bitstream
// and does not decode with AMR-WB implementations, so sessions must not
// negotiate it as "AMR-WB".
//
// A payload is a codec mode request (CMR), one table of contents entry
// per frame and the frame data in storage order:
//
//	octet-aligned:        CMR(4) R(4) | F FT(4) Q P(2) ... | data, each frame octet padded
//	bandwidth-efficient:  CMR(4) | F FT(4) Q ... | data bits back to back, zero padded
//
// Packets are built and sequenced with github.com/pion/rtp.
package rtp
