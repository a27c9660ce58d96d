package dtx

import (
	"math"
	"testing"

	"github.com/thesyncim/amrwb/internal/bitstream"
	"github.com/thesyncim/amrwb/internal/lpc"
	"github.com/thesyncim/amrwb/internal/types"
)

func TestSilenceSequence(t *testing.T) {
	e := NewEncoder()
	var got []types.TxType
	for i := 0; i < 60; i++ {
		got = append(got, e.Next(false))
	}
	for i := 0; i < hangConst; i++ {
		if got[i] != types.TxSpeech {
			t.Fatalf("frame %d: %v during hangover", i, got[i])
		}
	}
	if got[hangConst] != types.TxSIDFirst {
		t.Fatalf("frame %d: %v, want SID_FIRST", hangConst, got[hangConst])
	}
	for i := hangConst + 1; i < len(got); i++ {
		want := types.TxNoData
		if (i-hangConst-firstUpdate)%updateInterval == 0 && i >= hangConst+firstUpdate {
			want = types.TxSIDUpdate
		}
		if got[i] != want {
			t.Fatalf("frame %d: %v, want %v", i, got[i], want)
		}
	}
}

func TestTxLiveness(t *testing.T) {
	e := NewEncoder()
	seed := uint32(5)
	sidFirstPending := false // SID_FIRST seen since the last speech frame
	vad := true
	for i := 0; i < 5000; i++ {
		seed = seed*1664525 + 1013904223
		if (seed>>8)%20 == 0 {
			vad = !vad
		}
		switch tx := e.Next(vad); tx {
		case types.TxSpeech:
			sidFirstPending = false
		case types.TxSIDFirst:
			if sidFirstPending {
				t.Fatalf("frame %d: second SID_FIRST without speech", i)
			}
			sidFirstPending = true
		case types.TxSIDUpdate, types.TxNoData:
			if !sidFirstPending {
				t.Fatalf("frame %d: %v before SID_FIRST", i, tx)
			}
		}
	}
}

func TestShortBurstSkipsHangover(t *testing.T) {
	e := NewEncoder()
	for i := 0; i < 20; i++ {
		e.Next(false)
	}
	for i := 0; i < 3; i++ {
		if tx := e.Next(true); tx != types.TxSpeech {
			t.Fatalf("active frame coded as %v", tx)
		}
	}
	if tx := e.Next(false); tx != types.TxSIDFirst {
		t.Fatalf("after a short burst: %v, want SID_FIRST", tx)
	}
}

func sine(buf []int16, n0 int, freq, amp float64) {
	for i := range buf {
		buf[i] = int16(amp * math.Sin(2*math.Pi*freq*float64(n0+i)/12800))
	}
}

func TestVADOnsetAndHangover(t *testing.T) {
	v := NewVAD()
	frame := make([]int16, FrameLen)
	for i := 0; i < 30; i++ {
		if v.Decide(frame) {
			t.Fatalf("silent frame %d classified active", i)
		}
	}
	for i := 0; i < 6; i++ {
		sine(frame, i*FrameLen, 500, 8000)
		if !v.Decide(frame) {
			t.Fatalf("tone frame %d classified inactive", i)
		}
	}
	clear(frame)
	active := 0
	for i := 0; i < 30; i++ {
		if v.Decide(frame) {
			if i != active {
				t.Fatalf("activity resumed at silent frame %d", i)
			}
			active++
		}
	}
	if active < hangLen || active > hangLen+2 {
		t.Fatalf("%d hangover frames, want about %d", active, hangLen)
	}
}

func TestVADAdaptsToStationaryNoise(t *testing.T) {
	v := NewVAD()
	frame := make([]int16, FrameLen)
	seed := uint32(11)
	active := 0
	for n := 0; n < 500; n++ {
		for i := range frame {
			seed = seed*1664525 + 1013904223
			frame[i] = int16(int32(seed>>16)%2001 - 1000)
		}
		if v.Decide(frame) && n >= 400 {
			active++
		}
	}
	if active > 20 {
		t.Fatalf("%d of the last 100 noise frames classified active", active)
	}
}

func TestEnergyQuantizer(t *testing.T) {
	for i := 0; i < 64; i++ {
		if got := QuantizeEnergy(DequantizeEnergy(i)); got != i {
			t.Errorf("index %d round trips to %d", i, got)
		}
	}
	x := make([]int16, 256)
	for i := range x {
		x[i] = 1024
	}
	if e := LogEnergy(x); e != 20<<10 {
		t.Errorf("LogEnergy = %d, want %d", e, 20<<10)
	}
	if e := LogEnergy(make([]int16, 64)); e != minEner {
		t.Errorf("silent LogEnergy = %d, want %d", e, minEner)
	}
}

func TestHistoryDropsOutliers(t *testing.T) {
	var h history
	base := lpc.MeanIsfNoise
	odd := base
	for k := range odd {
		odd[k] += 900
	}
	for i := 0; i < histLen; i++ {
		if i == 3 {
			h.push(odd[:], 4000)
		} else {
			h.push(base[:], 6000)
		}
	}
	var isf [lpc.M]int16
	e, _ := h.average(isf[:])
	if isf != base || e != 6000 {
		t.Fatalf("average %v (energy %d), want %v (6000)", isf, e, base)
	}
}

func TestSIDTransfer(t *testing.T) {
	enc := NewEncoder()
	isf := lpc.MeanIsfNoise
	for i := 0; i < histLen; i++ {
		enc.Update(isf[:], 9<<10)
	}
	var p bitstream.SID
	var isfQ [lpc.M]int16
	enc.SID(&p, isfQ[:])
	if p.Dither != 0 {
		t.Errorf("stationary history requested dithering")
	}

	dec := NewDecoder()
	dec.Next(types.RxSIDUpdate)
	dec.Update(&p)
	for i := 0; i < 40; i++ {
		dec.Next(types.RxNoData)
		var got [lpc.M]int16
		exc := make([]int16, 256)
		dec.Generate(got[:], exc)
		if i >= maxPeriod && got != isfQ {
			t.Fatalf("frame %d: comfort noise ISF %v, want %v", i, got, isfQ)
		}
		if i >= maxPeriod {
			if d := int(LogEnergy(exc)) - int(DequantizeEnergy(p.Energy)); d > 100 || d < -100 {
				t.Fatalf("frame %d: noise energy off by %d", i, d)
			}
		}
	}
}

func TestRxStates(t *testing.T) {
	d := NewDecoder()
	steps := []struct {
		rx   types.RxType
		want State
	}{
		{types.RxSpeechGood, StateSpeech},
		{types.RxNoData, StateSpeech},
		{types.RxSIDFirst, StateDTX},
		{types.RxNoData, StateDTX},
		{types.RxSpeechLost, StateDTX},
		{types.RxSpeechBad, StateDTX},
		{types.RxSIDUpdate, StateDTX},
	}
	for i, s := range steps {
		if got := d.Next(s.rx); got != s.want {
			t.Fatalf("step %d (%v): %v, want %v", i, s.rx, got, s.want)
		}
	}
	for i := 1; i <= maxEmpty+1; i++ {
		got := d.Next(types.RxNoData)
		want := StateDTX
		if i > maxEmpty {
			want = StateMute
		}
		if got != want {
			t.Fatalf("empty frame %d: %v, want %v", i, got, want)
		}
	}
	if got := d.Next(types.RxSIDBad); got != StateMute {
		t.Fatalf("bad SID while muted: %v", got)
	}
	if got := d.Next(types.RxSpeechLost); got != StateMute {
		t.Fatalf("lost frame while muted: %v", got)
	}
	if got := d.Next(types.RxSIDUpdate); got != StateDTX {
		t.Fatalf("SID update while muted: %v", got)
	}
	if got := d.Next(types.RxSpeechGood); got != StateSpeech {
		t.Fatalf("speech after DTX: %v", got)
	}
}
