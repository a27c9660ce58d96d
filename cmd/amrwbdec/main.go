// Command amrwbdec decodes frames into raw 16 kHz 16-bit little-endian
// mono PCM.
//
// Usage:
//
//	amrwbdec [-format mime] input.cwb output.pcm
//	amrwbdec -loss 5 -seed 1 input.cwb output.pcm
//
// -loss drops the given percentage of frames before decoding to exercise
// the concealment.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/thesyncim/amrwb"
	"github.com/thesyncim/amrwb/internal/frameio"
)

func main() {
	format := flag.String("format", "mime", "Input format: "+strings.Join(frameio.Formats, ", "))
	loss := flag.Float64("loss", 0, "Percentage of frames to drop")
	seed := flag.Uint64("seed", 1, "Seed of the frame loss pattern")
	quiet := flag.Bool("q", false, "Do not print statistics")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: amrwbdec [flags] input output.pcm")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *loss < 0 || *loss > 100 {
		log.Fatalf("Invalid -loss %v (use 0..100)", *loss)
	}

	in, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Open input failed: %v", err)
	}
	defer in.Close()
	out, err := os.Create(flag.Arg(1))
	if err != nil {
		log.Fatalf("Create output failed: %v", err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	fr, err := frameio.NewReader(bufio.NewReader(in), *format)
	if err != nil {
		log.Fatalf("Open %s input failed: %v", *format, err)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	dec := amrwb.NewDecoder()
	pcm := make([]int16, amrwb.FrameSize)
	frames, dropped := 0, 0
	for {
		f, err := fr.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			log.Fatalf("Frame %d: read failed: %v", frames, err)
		}
		if *loss > 0 && rng.Float64()*100 < *loss {
			f = lose(f)
			dropped++
		}
		if err := dec.DecodeFrame(f, pcm); err != nil {
			log.Fatalf("Frame %d: decode failed: %v", frames, err)
		}
		if err := frameio.WritePCM(bw, pcm); err != nil {
			log.Fatalf("Write output failed: %v", err)
		}
		frames++
	}
	if err := bw.Flush(); err != nil {
		log.Fatalf("Write output failed: %v", err)
	}
	if !*quiet {
		fmt.Printf("Decoded %d frames (%.2f s), %d dropped\n", frames, float64(frames)*0.02, dropped)
	}
}

// lose returns what a receiver sees in place of a dropped frame.
func lose(f amrwb.RxFrame) amrwb.RxFrame {
	switch f.Quality {
	case amrwb.QualitySIDFirst, amrwb.QualitySIDUpdate, amrwb.QualitySIDBad, amrwb.QualityNoData:
		return amrwb.RxFrame{Mode: f.Mode, Quality: amrwb.QualityNoData}
	}
	return amrwb.RxFrame{Mode: f.Mode, Quality: amrwb.QualityLost}
}
