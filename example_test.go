package amrwb_test

import (
	"fmt"
	"log"

	"github.com/thesyncim/amrwb"
)

func ExampleNewEncoder() {
	enc, err := amrwb.NewEncoder(amrwb.EncoderOptions{Mode: amrwb.Mode1265})
	if err != nil {
		log.Fatal(err)
	}

	// 20 ms of silence
	pcm := make([]int16, amrwb.FrameSize)
	frame, err := enc.Encode(pcm)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%v frame, mode %v, %d bits\n", frame.Type, frame.Mode, len(frame.Bits))
	// Output: SPEECH frame, mode 12.65, 253 bits
}

func ExampleDecoder_Decode() {
	enc, err := amrwb.NewEncoder(amrwb.EncoderOptions{Mode: amrwb.Mode660})
	if err != nil {
		log.Fatal(err)
	}
	dec := amrwb.NewDecoder()

	pcm := make([]int16, amrwb.FrameSize)
	frame, err := enc.Encode(pcm)
	if err != nil {
		log.Fatal(err)
	}
	out := make([]int16, amrwb.FrameSize)
	if err := dec.Decode(frame.Bits, frame.Mode, amrwb.QualityGood, out); err != nil {
		log.Fatal(err)
	}

	// A lost frame is concealed from the decoder history.
	if err := dec.Decode(nil, frame.Mode, amrwb.QualityLost, out); err != nil {
		log.Fatal(err)
	}
	fmt.Println(len(out), "samples")
	// Output: 320 samples
}

func ExampleEncoder_SetDTX() {
	enc, err := amrwb.NewEncoder(amrwb.EncoderOptions{Mode: amrwb.Mode885})
	if err != nil {
		log.Fatal(err)
	}
	enc.SetDTX(true)

	pcm := make([]int16, amrwb.FrameSize)
	sent := 0
	for i := 0; i < 50; i++ {
		frame, err := enc.Encode(pcm)
		if err != nil {
			log.Fatal(err)
		}
		if frame.Type != amrwb.FrameNoData {
			sent++
		}
	}
	fmt.Println(sent < 50)
	// Output: true
}
