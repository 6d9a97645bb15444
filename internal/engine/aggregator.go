package engine

import (
	"math"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"payrollpie/internal/models"
)

// minChunk keeps small tables on a single goroutine.
const minChunk = 4096

type regionAcc struct {
	sum   float64
	count int
	first int // lowest row index seen for the region, -1 when none
}

// Aggregate filters rows to the given fiscal year, averages daily salary per
// region and derives each region's share of the sum of those averages.
// A year with no valid rows yields an empty Summary, as does a year that
// cannot be stored in the year column.
func (cs *ColumnStore) Aggregate(year int) models.Summary {
	out := models.Summary{Year: year, Regions: make([]models.RegionAggregate, 0)}
	n := cs.Len()
	if n == 0 || year < math.MinInt32 || year > math.MaxInt32 {
		return out
	}
	numRegs := len(cs.RegionDict)

	// 1. Setup Workers
	numWorkers := runtime.NumCPU()
	if maxW := (n + minChunk - 1) / minChunk; maxW < numWorkers {
		numWorkers = maxW
	}
	chunkSize := (n + numWorkers - 1) / numWorkers

	partials := make([][]regionAcc, numWorkers)
	var wg sync.WaitGroup

	// 2. Parallel Loop
	y := int32(year)
	for w := 0; w < numWorkers; w++ {
		s := w * chunkSize
		e := s + chunkSize
		if e > n {
			e = n
		}
		if s > e {
			s = e
		}
		wg.Add(1)
		go func(idx, s, e int) {
			defer wg.Done()
			acc := make([]regionAcc, numRegs)
			for i := range acc {
				acc[i].first = -1
			}
			years := cs.Years
			sals := cs.Salaries
			ids := cs.RegionIDs
			for j := s; j < e; j++ {
				if years[j] != y {
					continue
				}
				sal := sals[j]
				if math.IsNaN(sal) {
					continue
				}
				a := &acc[ids[j]]
				a.sum += sal
				a.count++
				if a.first < 0 {
					a.first = j
				}
			}
			partials[idx] = acc
		}(w, s, e)
	}
	wg.Wait()

	// 3. Merge Phase, in worker order so float sums are reproducible
	final := make([]regionAcc, numRegs)
	for i := range final {
		final[i].first = -1
	}
	for _, acc := range partials {
		for i := range acc {
			if acc[i].count == 0 {
				continue
			}
			final[i].sum += acc[i].sum
			final[i].count += acc[i].count
			if final[i].first < 0 || acc[i].first < final[i].first {
				final[i].first = acc[i].first
			}
		}
	}

	// 4. Build Result
	order := make([]int, 0, numRegs)
	for i := range final {
		if final[i].count > 0 {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool { return final[order[a]].first < final[order[b]].first })

	for _, rid := range order {
		mean := final[rid].sum / float64(final[rid].count)
		if math.IsInf(mean, 0) || math.IsNaN(mean) {
			// sum overflowed
			continue
		}
		out.Regions = append(out.Regions, models.RegionAggregate{
			Region:     cs.RegionDict[rid],
			MeanSalary: mean,
			Records:    final[rid].count,
		})
		out.GrandTotal += mean
	}
	applyPercentages(&out)
	return out
}

// applyPercentages fills Percent and Label. A zero or overflowed total
// leaves the set empty.
func applyPercentages(s *models.Summary) {
	if s.GrandTotal == 0 || math.IsInf(s.GrandTotal, 0) || math.IsNaN(s.GrandTotal) {
		s.Regions = s.Regions[:0]
		s.GrandTotal = 0
		return
	}
	for i := range s.Regions {
		p := s.Regions[i].MeanSalary / s.GrandTotal * 100
		s.Regions[i].Percent = math.Round(p*10) / 10
		s.Regions[i].Label = strconv.FormatFloat(s.Regions[i].Percent, 'f', 1, 64) + "%"
	}
}
