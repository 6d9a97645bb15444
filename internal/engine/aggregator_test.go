package engine

import (
	"math"
	"testing"

	"payrollpie/internal/models"
)

func rec(year int, region string, salary float64) models.PayrollRecord {
	return models.PayrollRecord{FiscalYear: year, Region: region, DailySalary: salary, SalaryValid: true}
}

func TestAggregateTwoRegions(t *testing.T) {
	store := NewColumnStore([]models.PayrollRecord{
		rec(2014, "Manhattan", 100),
		rec(2014, "Queens", 200),
	})

	data := store.Aggregate(2014)

	if len(data.Regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(data.Regions))
	}
	m, q := data.Regions[0], data.Regions[1]
	if m.Region != "Manhattan" || m.MeanSalary != 100.0 || m.Percent != 33.3 || m.Label != "33.3%" {
		t.Errorf("Manhattan aggregate incorrect: %+v", m)
	}
	if q.Region != "Queens" || q.MeanSalary != 200.0 || q.Percent != 66.7 || q.Label != "66.7%" {
		t.Errorf("Queens aggregate incorrect: %+v", q)
	}
	if data.GrandTotal != 300.0 {
		t.Errorf("Expected grand total 300, got %f", data.GrandTotal)
	}
}

func TestAggregateAbsentYear(t *testing.T) {
	store := NewColumnStore([]models.PayrollRecord{rec(2014, "Bronx", 50)})

	data := store.Aggregate(2015)

	if len(data.Regions) != 0 {
		t.Errorf("Expected empty aggregate, got %+v", data.Regions)
	}
	if data.GrandTotal != 0 {
		t.Errorf("Expected zero grand total, got %f", data.GrandTotal)
	}
	if data.Regions == nil {
		t.Error("Regions should be an empty slice, not nil")
	}
}

func TestAggregateEmptyTable(t *testing.T) {
	data := NewColumnStore(nil).Aggregate(2014)
	if len(data.Regions) != 0 || data.GrandTotal != 0 {
		t.Errorf("Expected empty summary, got %+v", data)
	}
}

func TestAggregateMeanIsPerRegion(t *testing.T) {
	// Grand total is the sum of the means, not of the raw salaries.
	store := NewColumnStore([]models.PayrollRecord{
		rec(2016, "Brooklyn", 100),
		rec(2016, "Brooklyn", 300),
		rec(2016, "Brooklyn", 200),
		rec(2016, "Richmond", 200),
		rec(2017, "Richmond", 9999),
	})

	data := store.Aggregate(2016)

	if len(data.Regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(data.Regions))
	}
	if data.Regions[0].MeanSalary != 200 || data.Regions[0].Records != 3 {
		t.Errorf("Brooklyn mean incorrect: %+v", data.Regions[0])
	}
	if data.GrandTotal != 400 {
		t.Errorf("Expected grand total 400, got %f", data.GrandTotal)
	}
	if data.Regions[0].Percent != 50 || data.Regions[1].Percent != 50 {
		t.Errorf("Expected 50/50 split, got %v / %v", data.Regions[0].Percent, data.Regions[1].Percent)
	}
}

func TestAggregateSingleRecordExact(t *testing.T) {
	store := NewColumnStore([]models.PayrollRecord{rec(2020, "Queens", 287.4321)})
	data := store.Aggregate(2020)
	if len(data.Regions) != 1 || data.Regions[0].MeanSalary != 287.4321 {
		t.Fatalf("Expected exact mean 287.4321, got %+v", data.Regions)
	}
	if data.Regions[0].Label != "100.0%" {
		t.Errorf("Expected 100.0%%, got %s", data.Regions[0].Label)
	}
}

func TestAggregateSkipsInvalidSalary(t *testing.T) {
	store := NewColumnStore([]models.PayrollRecord{
		rec(2018, "Bronx", 120),
		{FiscalYear: 2018, Region: "Bronx", SalaryValid: false},
		{FiscalYear: 2018, Region: "Queens", SalaryValid: false},
	})

	data := store.Aggregate(2018)

	// Queens has no valid salary in 2018 and is omitted
	if len(data.Regions) != 1 {
		t.Fatalf("Expected 1 region, got %+v", data.Regions)
	}
	if data.Regions[0].MeanSalary != 120 || data.Regions[0].Records != 1 {
		t.Errorf("Invalid salary was not skipped: %+v", data.Regions[0])
	}
}

func TestAggregateZeroTotalIsEmpty(t *testing.T) {
	store := NewColumnStore([]models.PayrollRecord{rec(2019, "Bronx", 0), rec(2019, "Queens", 0)})
	data := store.Aggregate(2019)
	if len(data.Regions) != 0 {
		t.Errorf("Expected zero total to clear the set, got %+v", data.Regions)
	}
	for _, r := range data.Regions {
		if math.IsNaN(r.Percent) {
			t.Error("NaN percentage produced")
		}
	}
}

func TestAggregatePercentagesSumTo100(t *testing.T) {
	regions := []string{"Manhattan", "Queens", "Bronx", "Brooklyn", "Richmond", "Albany", "Other"}
	rows := make([]models.PayrollRecord, 0, 50000)
	for i := 0; i < 50000; i++ {
		rows = append(rows, rec(2014+i%3, regions[(i*3)%len(regions)], float64(50+(i*37)%400)+0.25))
	}
	store := NewColumnStore(rows)

	for year := 2014; year <= 2016; year++ {
		data := store.Aggregate(year)
		if len(data.Regions) == 0 {
			t.Fatalf("Year %d: expected regions", year)
		}
		sum := 0.0
		for _, r := range data.Regions {
			sum += r.Percent
		}
		tol := 0.1 * float64(len(data.Regions))
		if math.Abs(sum-100) > tol {
			t.Errorf("Year %d: percentages sum to %f, tolerance %f", year, sum, tol)
		}
	}
}

func TestAggregateParallelMatchesSerial(t *testing.T) {
	rows := make([]models.PayrollRecord, 0, 20000)
	for i := 0; i < 20000; i++ {
		region := "East"
		if i%3 == 1 {
			region = "West"
		}
		rows = append(rows, rec(2021, region, float64(i%100)))
	}
	store := NewColumnStore(rows)

	data := store.Aggregate(2021)

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range rows {
		sums[r.Region] += r.DailySalary
		counts[r.Region]++
	}
	if len(data.Regions) != 2 || data.Regions[0].Region != "East" {
		t.Fatalf("Unexpected regions: %+v", data.Regions)
	}
	for _, r := range data.Regions {
		want := sums[r.Region] / float64(counts[r.Region])
		if math.Abs(r.MeanSalary-want) > 1e-9 || r.Records != counts[r.Region] {
			t.Errorf("%s: expected mean %f over %d, got %f over %d", r.Region, want, counts[r.Region], r.MeanSalary, r.Records)
		}
	}
}

func TestAggregateIdempotent(t *testing.T) {
	store := NewColumnStore([]models.PayrollRecord{rec(2014, "A", 10), rec(2014, "B", 30)})
	a := store.Aggregate(2014)
	b := store.Aggregate(2014)
	if len(a.Regions) != len(b.Regions) {
		t.Fatal("Region count differs between runs")
	}
	for i := range a.Regions {
		if a.Regions[i] != b.Regions[i] {
			t.Errorf("Run mismatch at %d: %+v vs %+v", i, a.Regions[i], b.Regions[i])
		}
	}
	if store.Row(0).DailySalary != 10 {
		t.Error("Aggregate mutated the table")
	}
}

func TestAggregateYearBeyondInt32(t *testing.T) {
	store := NewColumnStore([]models.PayrollRecord{rec(2014, "Bronx", 50)})

	for _, year := range []int{2014 + 1<<32, 2014 - 1<<32, math.MaxInt32 + 1, math.MinInt32 - 1} {
		if data := store.Aggregate(year); len(data.Regions) != 0 {
			t.Errorf("Year %d matched stored rows: %+v", year, data.Regions)
		}
	}
}

func TestAggregateLabelMatchesRoundedPercent(t *testing.T) {
	// 1/16 and 15/16 land exactly on .x5 ties
	store := NewColumnStore([]models.PayrollRecord{rec(2020, "Bronx", 1), rec(2020, "Queens", 15)})

	data := store.Aggregate(2020)

	if len(data.Regions) != 2 {
		t.Fatalf("Expected 2 regions, got %+v", data.Regions)
	}
	b, q := data.Regions[0], data.Regions[1]
	if b.Percent != 6.3 || b.Label != "6.3%" {
		t.Errorf("Bronx tie rounded wrong: %+v", b)
	}
	if q.Percent != 93.8 || q.Label != "93.8%" {
		t.Errorf("Queens tie rounded wrong: %+v", q)
	}
}

func TestAggregateDropsOverflowedMean(t *testing.T) {
	store := NewColumnStore([]models.PayrollRecord{
		rec(2021, "Bronx", 1e308),
		rec(2021, "Bronx", 1e308),
		rec(2021, "Queens", 50),
	})

	data := store.Aggregate(2021)

	if len(data.Regions) != 1 || data.Regions[0].Region != "Queens" {
		t.Fatalf("Expected only Queens, got %+v", data.Regions)
	}
	if data.Regions[0].Percent != 100 || data.GrandTotal != 50 {
		t.Errorf("Queens aggregate incorrect: %+v total=%f", data.Regions[0], data.GrandTotal)
	}
}

func TestAggregateOverflowedTotalIsEmpty(t *testing.T) {
	store := NewColumnStore([]models.PayrollRecord{
		rec(2022, "Bronx", 1e308),
		rec(2022, "Queens", 1e308),
	})

	data := store.Aggregate(2022)

	if len(data.Regions) != 0 || data.GrandTotal != 0 {
		t.Errorf("Expected overflowed total to clear the set, got %+v total=%f", data.Regions, data.GrandTotal)
	}
}
