// Command amrwbenc encodes raw 16 kHz 16-bit little-endian mono PCM into
// frames.
//
// Usage:
//
//	amrwbenc [-mode 12.65] [-dtx] [-format mime] input.pcm output.cwb
//	amrwbenc -modes modes.txt input.pcm output.cwb
//
// A mode file holds one mode per line and selects the mode of each frame;
// the last line repeats once the file runs out.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/thesyncim/amrwb"
	"github.com/thesyncim/amrwb/internal/frameio"
)

func main() {
	modeName := flag.String("mode", "12.65", "Speech mode (6.60 .. 23.85)")
	modeFile := flag.String("modes", "", "File with one mode per frame")
	dtx := flag.Bool("dtx", false, "Enable discontinuous transmission")
	dither := flag.Bool("dither", false, "Allow comfort noise dithering in SID frames")
	format := flag.String("format", "mime", "Output format: "+strings.Join(frameio.Formats, ", "))
	quiet := flag.Bool("q", false, "Do not print statistics")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: amrwbenc [flags] input.pcm output")
		flag.PrintDefaults()
		os.Exit(2)
	}

	mode, err := amrwb.ParseMode(*modeName)
	if err != nil {
		log.Fatalf("Invalid -mode: %v", err)
	}
	var modes []amrwb.Mode
	if *modeFile != "" {
		modes, err = readModes(*modeFile)
		if err != nil {
			log.Fatalf("Read mode file failed: %v", err)
		}
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

	fw, err := frameio.NewWriter(bw, *format)
	if err != nil {
		log.Fatalf("Invalid -format: %v", err)
	}
	enc, err := amrwb.NewEncoder(amrwb.EncoderOptions{Mode: mode, DTX: *dtx, AllowDither: *dither})
	if err != nil {
		log.Fatalf("NewEncoder failed: %v", err)
	}

	br := bufio.NewReader(in)
	pcm := make([]int16, amrwb.FrameSize)
	counts := map[amrwb.FrameType]int{}
	frames := 0
	for {
		if err := frameio.ReadPCM(br, pcm); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			log.Fatalf("Read input failed: %v", err)
		}
		m := mode
		if len(modes) > 0 {
			m = modes[min(frames, len(modes)-1)]
		}
		fr, err := enc.EncodeMode(pcm, m)
		if err != nil {
			log.Fatalf("Frame %d: encode failed: %v", frames, err)
		}
		if err := fw.WriteFrame(fr.Rx()); err != nil {
			log.Fatalf("Frame %d: write failed: %v", frames, err)
		}
		counts[fr.Type]++
		frames++
	}
	if err := bw.Flush(); err != nil {
		log.Fatalf("Write output failed: %v", err)
	}

	if !*quiet {
		fmt.Printf("Encoded %d frames (%.2f s) at %v kbit/s\n", frames, float64(frames)*0.02, mode)
		if *dtx {
			fmt.Printf("  speech %d, SID_FIRST %d, SID_UPDATE %d, NO_DATA %d\n",
				counts[amrwb.FrameSpeech], counts[amrwb.FrameSIDFirst], counts[amrwb.FrameSIDUpdate], counts[amrwb.FrameNoData])
		}
	}
}

func readModes(path string) ([]amrwb.Mode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var modes []amrwb.Mode
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		m, err := amrwb.ParseMode(s)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		modes = append(modes, m)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(modes) == 0 {
		return nil, fmt.Errorf("%s: no modes", path)
	}
	return modes, nil
}
