package engine

import (
	"testing"

	"payrollpie/internal/models"
)

func TestCachedStore(t *testing.T) {
	store := NewColumnStore([]models.PayrollRecord{
		rec(2014, "Manhattan", 100),
		rec(2014, "Queens", 200),
		rec(2015, "Bronx", 50),
	})
	cached, err := NewCachedStore(store, CacheConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer cached.Close()

	first := cached.Aggregate(2014)
	cached.Wait()

	// Mutating a returned summary must not leak into later reads
	first.Regions[0].MeanSalary = -1

	second := cached.Aggregate(2014)
	if len(second.Regions) != 2 || second.Regions[0].MeanSalary != 100 {
		t.Errorf("Cached summary corrupted: %+v", second.Regions)
	}

	if got := cached.Aggregate(2030); len(got.Regions) != 0 {
		t.Errorf("Expected empty summary for 2030, got %+v", got.Regions)
	}

	years := cached.DistinctYears()
	if len(years) != 2 || years[0] != 2014 {
		t.Errorf("Unexpected years %v", years)
	}
}
