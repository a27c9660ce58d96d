package rtp

import (
	pionrtp "github.com/pion/rtp"

	"github.com/thesyncim/amrwb"
)

// ClockRate is the RTP timestamp rate of the payload format.
const ClockRate = amrwb.SampleRate

const (
	defaultMTU   = 1200
	frameSamples = amrwb.FrameSize
	maxGap       = 50 // frames synthesized for one timestamp gap
)

// PacketizerConfig configures a Packetizer.
type PacketizerConfig struct {
	MTU             uint16 // default 1200
	PayloadType     uint8
	SSRC            uint32
	FramesPerPacket int // default 1
	Format          Format

	// Sequencer numbers the packets. The default starts at a random
	// sequence number.
	Sequencer pionrtp.Sequencer
}

// Packetizer groups frames into RTP packets.
//
// NO_DATA frames between talkspurts are not sent; they only advance the
// timestamp. The first packet of a talkspurt carries the marker bit.
type Packetizer struct {
	cfg     PacketizerConfig
	p       pionrtp.Packetizer
	pending []amrwb.RxFrame
	bits    [][]uint8
	cmr     uint8
	last    amrwb.Mode
	silent  bool
}

// NewPacketizer returns a Packetizer for cfg.
func NewPacketizer(cfg PacketizerConfig) *Packetizer {
	if cfg.MTU == 0 {
		cfg.MTU = defaultMTU
	}
	if cfg.FramesPerPacket <= 0 {
		cfg.FramesPerPacket = 1
	}
	cfg.FramesPerPacket = min(cfg.FramesPerPacket, MaxFrames)
	if cfg.Sequencer == nil {
		cfg.Sequencer = pionrtp.NewRandomSequencer()
	}
	return &Packetizer{
		cfg:    cfg,
		p:      pionrtp.NewPacketizer(cfg.MTU, cfg.PayloadType, cfg.SSRC, passthrough{}, cfg.Sequencer, ClockRate),
		cmr:    CMRNone,
		silent: true,
	}
}

// SetCMR sets the codec mode request sent to the peer, CMRNone for none.
func (p *Packetizer) SetCMR(cmr uint8) {
	p.cmr = cmr & 0x0f
}

// Push adds one frame. It returns the packets completed by the frame,
// usually none or one. The frame's bits are copied.
func (p *Packetizer) Push(f amrwb.RxFrame) ([]*pionrtp.Packet, error) {
	if f.Quality == amrwb.QualityNoData && len(p.pending) == 0 {
		p.p.SkipSamples(frameSamples)
		p.silent = true
		return nil, nil
	}
	if len(p.bits) <= len(p.pending) {
		p.bits = append(p.bits, nil)
	}
	b := append(p.bits[len(p.pending)][:0], f.Bits...)
	p.bits[len(p.pending)] = b
	if f.Bits != nil {
		f.Bits = b
	}
	p.pending = append(p.pending, f)
	if len(p.pending) < p.cfg.FramesPerPacket {
		return nil, nil
	}
	return p.Flush()
}

// Flush packetizes the pending frames, if any.
func (p *Packetizer) Flush() ([]*pionrtp.Packet, error) {
	if len(p.pending) == 0 {
		return nil, nil
	}
	modeInd := p.last
	for _, f := range p.pending {
		if f.Mode.IsSpeech() && f.Bits != nil {
			p.last = f.Mode
		}
	}
	payload, err := p.cfg.Format.Marshal(p.cmr, p.pending, modeInd)
	n := len(p.pending)
	p.pending = p.pending[:0]
	if err != nil {
		p.p.SkipSamples(uint32(n * frameSamples))
		return nil, err
	}
	pkts := p.p.Packetize(payload, uint32(n*frameSamples))
	for _, pkt := range pkts {
		pkt.Marker = p.silent
	}
	p.silent = false
	return pkts, nil
}

// passthrough hands the payload to the packetizer unchanged. The payload
// format does not fragment frames across packets.
type passthrough struct{}

func (passthrough) Payload(mtu uint16, payload []byte) [][]byte {
	if len(payload) == 0 || len(payload) > int(mtu) {
		return nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return [][]byte{out}
}

// Depacketizer turns received packets back into frames.
//
// Gaps in the timestamps are filled: with lost frames when packets are
// missing from the sequence, with NO_DATA frames otherwise.
type Depacketizer struct {
	format  Format
	pt      uint8
	last    amrwb.Mode
	started bool
	nextSeq uint16
	nextTS  uint32
}

// NewDepacketizer returns a Depacketizer accepting payload type pt.
func NewDepacketizer(pt uint8, f Format) *Depacketizer {
	return &Depacketizer{format: f, pt: pt}
}

// Unmarshal parses a raw RTP packet and depacketizes it.
func (d *Depacketizer) Unmarshal(buf []byte) (Payload, error) {
	var pkt pionrtp.Packet
	if err := pkt.Unmarshal(buf); err != nil {
		return Payload{}, err
	}
	return d.Depacketize(&pkt)
}

// Depacketize returns the frames of pkt, preceded by the frames covering
// any gap since the previous packet.
func (d *Depacketizer) Depacketize(pkt *pionrtp.Packet) (Payload, error) {
	if pkt.PayloadType != d.pt {
		return Payload{}, ErrPayloadType
	}
	p, last, err := d.format.Unmarshal(pkt.Payload, d.last)
	if err != nil {
		return Payload{}, err
	}

	var fill []amrwb.RxFrame
	if d.started {
		gap := int32(pkt.Timestamp-d.nextTS) / frameSamples
		q := amrwb.QualityNoData
		if pkt.SequenceNumber != d.nextSeq {
			q = amrwb.QualityLost
		}
		for i := int32(0); i < min(gap, maxGap); i++ {
			fill = append(fill, amrwb.RxFrame{Mode: d.last, Quality: q})
		}
	}
	if len(fill) > 0 {
		p.Frames = append(fill, p.Frames...)
	}

	d.last = last
	d.started = true
	d.nextSeq = pkt.SequenceNumber + 1
	d.nextTS = pkt.Timestamp + uint32(len(p.Frames)-len(fill))*frameSamples
	return p, nil
}
