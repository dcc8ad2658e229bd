package pdfdoc

import (
	"math"

	rpdf "rsc.io/pdf"
)

// matrix is a PDF transformation matrix [a b c d e f].
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// mul returns m followed by n.
func (m matrix) mul(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// unitRect maps the image unit square through m and returns its bounds in
// top-left page space.
func (m matrix) unitRect(box Rect) Rect {
	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		x, y := m.apply(c[0], c[1])
		x0, x1 = min(x0, x), max(x1, x)
		y0, y1 = min(y0, y), max(y1, y)
	}
	return Rect{
		X0: x0 - box.X0,
		Y0: box.Y1 - y1,
		X1: x1 - box.X0,
		Y1: box.Y1 - y0,
	}
}

// imagePlacements walks the page content and records, per image resource
// name, every rectangle the image is painted into. Images drawn from inside
// form XObjects are not followed.
func imagePlacements(p rpdf.Page, box Rect) map[string][]Rect {
	out := make(map[string][]Rect)
	xobjects := p.Resources().Key("XObject")

	ctm := identity
	var saved []matrix

	do := func(stk *rpdf.Stack, op string) {
		n := stk.Len()
		args := make([]rpdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		case "q":
			saved = append(saved, ctm)
		case "Q":
			if k := len(saved); k > 0 {
				ctm = saved[k-1]
				saved = saved[:k-1]
			}
		case "cm":
			if n != 6 {
				return
			}
			var m matrix
			for i := range m {
				m[i] = args[i].Float64()
			}
			ctm = m.mul(ctm)
		case "Do":
			if n != 1 {
				return
			}
			name := args[0].Name()
			if xobjects.Key(name).Key("Subtype").Name() != "Image" {
				return
			}
			out[name] = append(out[name], ctm.unitRect(box))
		}
	}

	contents := p.V.Key("Contents")
	if contents.Kind() == rpdf.Array {
		for i := 0; i < contents.Len(); i++ {
			interpret(contents.Index(i), do)
		}
	} else {
		interpret(contents, do)
	}
	return out
}

// interpret runs one content stream, swallowing the panics rsc.io/pdf uses
// for malformed input. Whatever was collected before the fault is kept.
func interpret(strm rpdf.Value, do func(*rpdf.Stack, string)) {
	defer func() { _ = recover() }()
	rpdf.Interpret(strm, do)
}
