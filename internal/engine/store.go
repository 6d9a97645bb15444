package engine

import (
	"math"
	"sort"

	"payrollpie/internal/models"
)

// ColumnStore holds the payroll table in Struct-of-Arrays format.
// It is built once by the loader and never written afterwards.
type ColumnStore struct {
	// Data Columns (Flat Arrays)
	Years    []int32
	Salaries []float64 // NaN when Daily.Salary did not parse

	// Dictionary Encoded IDs (0..N)
	RegionIDs []int32

	// Dictionaries (ID -> String)
	RegionDict []string
}

func (cs *ColumnStore) Len() int {
	if cs == nil {
		return 0
	}
	return len(cs.Years)
}

func (cs *ColumnStore) Row(i int) models.PayrollRecord {
	sal := cs.Salaries[i]
	return models.PayrollRecord{
		FiscalYear:  int(cs.Years[i]),
		Region:      cs.RegionDict[cs.RegionIDs[i]],
		DailySalary: sal,
		SalaryValid: !math.IsNaN(sal),
	}
}

// DistinctYears returns the distinct fiscal years, ascending.
func (cs *ColumnStore) DistinctYears() []int {
	seen := make(map[int32]struct{})
	for _, y := range cs.Years {
		seen[y] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, int(y))
	}
	sort.Ints(years)
	return years
}

// NewColumnStore builds a store from row values, encoding regions in order of
// first appearance.
func NewColumnStore(rows []models.PayrollRecord) *ColumnStore {
	cs := &ColumnStore{
		Years:     make([]int32, len(rows)),
		Salaries:  make([]float64, len(rows)),
		RegionIDs: make([]int32, len(rows)),
	}
	dict := make(map[string]int32)
	for i, r := range rows {
		id, ok := dict[r.Region]
		if !ok {
			id = int32(len(cs.RegionDict))
			cs.RegionDict = append(cs.RegionDict, r.Region)
			dict[r.Region] = id
		}
		cs.Years[i] = int32(r.FiscalYear)
		cs.RegionIDs[i] = id
		if r.SalaryValid {
			cs.Salaries[i] = r.DailySalary
		} else {
			cs.Salaries[i] = math.NaN()
		}
	}
	return cs
}
