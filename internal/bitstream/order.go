package bitstream

import (
	"sort"

	"github.com/thesyncim/amrwb/internal/types"
)

// Bit classes in decreasing order of sensitivity to errors. The resulting
// order is this codec's own and differs from the AMR-WB sorting tables.
const (
	classCore = iota // VAD, first stage ISF
	classLongTerm
	classIsfFine
	classFlags
	classCode
)

var orders [types.NumSpeechModes + 1][]int

func init() {
	for m := types.Mode660; m <= types.ModeSID; m++ {
		orders[m] = buildOrder(m)
	}
}

func buildOrder(m types.Mode) []int {
	var p Params
	classOf := func(v *int) int {
		switch {
		case v == &p.VAD, v == &p.ISF[0], v == &p.ISF[1], v == &p.Desc.ISF[0], v == &p.Desc.Energy:
			return classCore
		}
		for i := range p.ISF {
			if v == &p.ISF[i] {
				return classIsfFine
			}
		}
		for i := range p.Desc.ISF {
			if v == &p.Desc.ISF[i] {
				return classIsfFine
			}
		}
		for s := range p.Sub {
			sub := &p.Sub[s]
			switch v {
			case &sub.Pitch, &sub.Gain:
				return classLongTerm
			case &sub.LTP, &sub.HFGain:
				return classFlags
			}
		}
		if v == &p.Desc.Dither {
			return classFlags
		}
		return classCode
	}
	var class []int
	walk(m, &p, func(width int, v *int) {
		c := classOf(v)
		for b := 0; b < width; b++ {
			class = append(class, c)
		}
	})
	order := make([]int, len(class))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return class[order[i]] < class[order[j]] })
	return order
}

// Order returns the storage order of the bits of a frame in mode m: the
// i-th stored bit is bit Order(m)[i] of the sequence written by Pack. The
// order groups bits by error sensitivity. The result must not be modified.
func Order(m types.Mode) []int {
	if !m.Valid() {
		return nil
	}
	return orders[m]
}
