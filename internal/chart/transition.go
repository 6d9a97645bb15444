package chart

import (
	"payrollpie/internal/models"
)

// EaseCubicInOut is the default easing of the page's arc transitions.
func EaseCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

func Interpolate(from, to models.Arc, t float64) models.Arc {
	return models.Arc{
		StartAngle: from.StartAngle + (to.StartAngle-from.StartAngle)*t,
		EndAngle:   from.EndAngle + (to.EndAngle-from.EndAngle)*t,
	}
}

// Diff classifies slices by region key. Entering slices grow from a
// zero-width arc at their start angle; exiting slices collapse onto theirs.
// Result order is next's order followed by exits in prev's order.
func Diff(prev, next []models.Slice) []models.SliceTransition {
	before := make(map[string]models.Slice, len(prev))
	for _, s := range prev {
		before[s.Region] = s
	}
	kept := make(map[string]bool, len(next))

	out := make([]models.SliceTransition, 0, len(prev)+len(next))
	for _, s := range next {
		kept[s.Region] = true
		st := models.SliceTransition{Region: s.Region, To: s.Arc, Color: s.Color}
		if old, ok := before[s.Region]; ok {
			st.Phase = models.PhaseUpdate
			st.From = old.Arc
		} else {
			st.Phase = models.PhaseEnter
			st.From = models.Arc{StartAngle: s.Arc.StartAngle, EndAngle: s.Arc.StartAngle}
		}
		out = append(out, st)
	}
	for _, s := range prev {
		if kept[s.Region] {
			continue
		}
		out = append(out, models.SliceTransition{
			Region: s.Region,
			Phase:  models.PhaseExit,
			From:   s.Arc,
			To:     models.Arc{StartAngle: s.Arc.StartAngle, EndAngle: s.Arc.StartAngle},
			Color:  s.Color,
		})
	}
	return out
}

// Frames fills each transition with n eased intermediate paths.
func Frames(ts []models.SliceTransition, radius float64, n int) {
	if n < 1 {
		n = 1
	}
	for i := range ts {
		frames := make([]string, n)
		for f := 1; f < n; f++ {
			a := Interpolate(ts[i].From, ts[i].To, EaseCubicInOut(float64(f)/float64(n)))
			frames[f-1] = ArcPath(a.StartAngle, a.EndAngle, radius)
		}
		frames[n-1] = ArcPath(ts[i].To.StartAngle, ts[i].To.EndAngle, radius)
		ts[i].Frames = frames
	}
}
