package chart

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	tau      = 2 * math.Pi
	epsilon  = 1e-12
	halfTurn = math.Pi
)

type Layout struct {
	Width  int
	Height int
	Margin int
}

func DefaultLayout() Layout {
	return Layout{Width: 450, Height: 450, Margin: 40}
}

func (l Layout) Radius() float64 {
	return math.Min(float64(l.Width), float64(l.Height))/2 - float64(l.Margin)
}

// PieAngles lays values out clockwise from 12 o'clock. Angles are handed out
// in descending value order (stable on ties) while the result keeps input order.
func PieAngles(values []float64) [][2]float64 {
	out := make([][2]float64, len(values))
	sum := 0.0
	for _, v := range values {
		if v > 0 {
			sum += v
		}
	}
	k := 0.0
	if sum > 0 {
		k = tau / sum
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	a := 0.0
	for _, i := range order {
		v := values[i]
		if v < 0 {
			v = 0
		}
		start := a
		a += v * k
		out[i] = [2]float64{start, a}
	}
	return out
}

// ArcPath returns the SVG path of a pie sector with radius r centred on the origin.
func ArcPath(start, end, r float64) string {
	da := math.Abs(end - start)
	if r <= 0 || da < epsilon {
		return "M0,0Z"
	}
	var b strings.Builder
	if da > tau-epsilon {
		rs := fnum(r)
		b.WriteString("M0," + fnum(-r))
		b.WriteString("A" + rs + "," + rs + ",0,1,1,0," + rs)
		b.WriteString("A" + rs + "," + rs + ",0,1,1,0," + fnum(-r))
		b.WriteString("Z")
		return b.String()
	}
	x0, y0 := r*math.Sin(start), -r*math.Cos(start)
	x1, y1 := r*math.Sin(end), -r*math.Cos(end)
	large := "0"
	if da > halfTurn {
		large = "1"
	}
	sweep := "1"
	if end < start {
		sweep = "0"
	}
	rs := fnum(r)
	b.WriteString("M" + fnum(x0) + "," + fnum(y0))
	b.WriteString("A" + rs + "," + rs + ",0," + large + "," + sweep + "," + fnum(x1) + "," + fnum(y1))
	b.WriteString("L0,0Z")
	return b.String()
}

// Centroid is the midpoint of the sector at half the outer radius.
func Centroid(start, end, r float64) [2]float64 {
	a := (start+end)/2 - math.Pi/2
	rc := r / 2
	return [2]float64{round3(math.Cos(a) * rc), round3(math.Sin(a) * rc)}
}

func round3(v float64) float64 {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		return 0
	}
	return v
}

func fnum(v float64) string {
	return strconv.FormatFloat(round3(v), 'f', -1, 64)
}
