package chart

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"payrollpie/internal/models"
)

var ErrYearOutOfRange = errors.New("year outside slider range")

// Aggregator produces the aggregate set for a fiscal year.
type Aggregator interface {
	Aggregate(year int) models.Summary
}

type Options struct {
	Layout       Layout
	Frames       int
	TransitionMs int
	// Slider bounds; zero means the dataset's own year range.
	MinYear int
	MaxYear int
	Step    int
}

// Surface is the chart's state holder: selected year, the slice set on
// screen, the colour scale and the render generation. Select is the only
// way to change it.
type Surface struct {
	mu         sync.Mutex
	src        Aggregator
	opts       Options
	colors     *OrdinalScale
	domain     models.YearDomain
	year       int
	generation uint64
	slices     []models.Slice
}

// NewSurface renders the earliest year of the slider range.
func NewSurface(src Aggregator, years []int, opts Options) *Surface {
	if opts.Layout == (Layout{}) {
		opts.Layout = DefaultLayout()
	}
	if opts.Step <= 0 {
		opts.Step = 1
	}
	if opts.Frames <= 0 {
		opts.Frames = 1
	}
	d := models.YearDomain{Years: append([]int(nil), years...), Min: opts.MinYear, Max: opts.MaxYear, Step: opts.Step}
	if d.Min == 0 && len(years) > 0 {
		d.Min = years[0]
	}
	if d.Max == 0 && len(years) > 0 {
		d.Max = years[len(years)-1]
	}
	if d.Max < d.Min {
		d.Max = d.Min
	}

	s := &Surface{
		src:    src,
		opts:   opts,
		colors: NewYearScale(years),
		domain: d,
		slices: make([]models.Slice, 0),
	}
	s.mu.Lock()
	s.render(d.Min)
	s.mu.Unlock()
	return s
}

func (s *Surface) checkYear(year int) error {
	d := s.domain
	if year < d.Min || year > d.Max || (year-d.Min)%d.Step != 0 {
		return fmt.Errorf("%w: %d not in [%d, %d] step %d", ErrYearOutOfRange, year, d.Min, d.Max, d.Step)
	}
	return nil
}

// Select re-renders for year and returns the transition from the previous
// slice set. Each call bumps the generation, so any older transition still
// animating is stale.
func (s *Surface) Select(year int) (models.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkYear(year); err != nil {
		return models.Transition{}, err
	}
	return s.render(year), nil
}

func (s *Surface) render(year int) models.Transition {
	next := BuildSlices(s.src.Aggregate(year), s.colors, s.opts.Layout.Radius())
	ts := Diff(s.slices, next)
	Frames(ts, s.opts.Layout.Radius(), s.opts.Frames)

	s.generation++
	s.year = year
	s.slices = next
	return models.Transition{
		Generation: s.generation,
		Year:       year,
		DurationMs: s.opts.TransitionMs,
		Slices:     ts,
	}
}

func (s *Surface) State() models.ChartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	slices := make([]models.Slice, len(s.slices))
	copy(slices, s.slices)
	return models.ChartState{
		Generation: s.generation,
		Year:       s.year,
		Radius:     s.opts.Layout.Radius(),
		Width:      s.opts.Layout.Width,
		Height:     s.opts.Layout.Height,
		Slices:     slices,
	}
}

func (s *Surface) Domain() models.YearDomain {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.domain
	d.Years = append([]int(nil), s.domain.Years...)
	d.Selected = s.year
	return d
}

func (s *Surface) Colors() *OrdinalScale { return s.colors }

func (s *Surface) Layout() Layout { return s.opts.Layout }

// BuildSlices lays out a summary as pie slices of radius r.
func BuildSlices(sum models.Summary, colors *OrdinalScale, r float64) []models.Slice {
	out := make([]models.Slice, 0, len(sum.Regions))
	if sum.GrandTotal == 0 {
		return out
	}
	values := make([]float64, len(sum.Regions))
	for i, reg := range sum.Regions {
		values[i] = reg.MeanSalary
	}
	angles := PieAngles(values)
	for i, reg := range sum.Regions {
		start, end := angles[i][0], angles[i][1]
		out = append(out, models.Slice{
			Region:   reg.Region,
			Value:    reg.MeanSalary,
			Percent:  reg.Percent,
			Label:    reg.Label,
			Color:    colors.Color(reg.Region),
			Arc:      models.Arc{StartAngle: start, EndAngle: end},
			Path:     ArcPath(start, end, r),
			Centroid: Centroid(start, end, r),
			Tooltip: models.Tooltip{
				Region: reg.Region,
				Mean:   strconv.FormatFloat(reg.MeanSalary, 'f', 2, 64),
			},
		})
	}
	return out
}
