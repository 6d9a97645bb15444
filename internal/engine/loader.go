package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"payrollpie/internal/models"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

const (
	ColFiscalYear  = "Fiscal.Year"
	ColRegion      = "Work.Location.Borough"
	ColDailySalary = "Daily.Salary"
)

var ErrMissingColumn = errors.New("missing required column")

// csvRow is the raw CSV shape. Values stay text so each field can fail on its own.
type csvRow struct {
	FiscalYear  string `csv:"Fiscal.Year"`
	Region      string `csv:"Work.Location.Borough"`
	DailySalary string `csv:"Daily.Salary"`
}

// --- 1. PARSERS ---

func parseYear(s string) (int32, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// parseSalary returns NaN for anything that is not a finite decimal number.
func parseSalary(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return math.NaN()
	}
	return f
}

// --- 2. SOURCES ---

// Open returns a reader for a local path or an http(s) URL.
func Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: unexpected status %s", source, resp.Status)
		}
		return resp.Body, nil
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	return f, nil
}

// Load opens source and parses it into a ColumnStore.
func Load(ctx context.Context, source string, logger *zap.Logger) (*ColumnStore, models.LoadStats, error) {
	rc, err := Open(ctx, source)
	if err != nil {
		return nil, models.LoadStats{}, err
	}
	defer rc.Close()
	return LoadColumnar(rc, logger)
}

// --- 3. MAIN LOADER ---

func checkHeader(content []byte) error {
	line, _, _ := bytes.Cut(content, []byte{'\n'})
	have := make(map[string]bool)
	for _, h := range strings.Split(strings.TrimRight(string(line), "\r"), ",") {
		have[strings.Trim(strings.TrimSpace(h), `"`)] = true
	}
	for _, col := range []string{ColFiscalYear, ColRegion, ColDailySalary} {
		if !have[col] {
			return fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return nil
}

// LoadColumnar decodes CSV from r. Rows with an unparseable fiscal year are
// rejected; rows with an unparseable salary are kept with a NaN salary.
func LoadColumnar(r io.Reader, logger *zap.Logger) (*ColumnStore, models.LoadStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	// A. Read Input
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, models.LoadStats{}, fmt.Errorf("read csv: %w", err)
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, models.LoadStats{}, errors.New("read csv: empty input")
	}
	if err := checkHeader(content); err != nil {
		return nil, models.LoadStats{}, err
	}

	var raw []*csvRow
	if err := gocsv.UnmarshalBytes(content, &raw); err != nil {
		return nil, models.LoadStats{}, fmt.Errorf("decode csv: %w", err)
	}

	// B. Parallel Parsing over contiguous chunks
	numWorkers := runtime.NumCPU()
	if numWorkers > len(raw) {
		numWorkers = 1
	}
	chunkSize := (len(raw) + numWorkers - 1) / numWorkers

	type localChunk struct {
		years    []int32
		salaries []float64
		ids      []int32
		rMap     map[string]int32
		rList    []string
		rejected int
		invalid  int
	}
	chunks := make([]*localChunk, numWorkers)

	var parseWg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		s := w * chunkSize
		e := s + chunkSize
		if e > len(raw) {
			e = len(raw)
		}
		if s > e {
			s = e
		}
		parseWg.Add(1)
		go func(idx int, rows []*csvRow) {
			defer parseWg.Done()
			lc := &localChunk{
				years:    make([]int32, 0, len(rows)),
				salaries: make([]float64, 0, len(rows)),
				ids:      make([]int32, 0, len(rows)),
				rMap:     make(map[string]int32),
			}
			chunks[idx] = lc

			for _, row := range rows {
				year, ok := parseYear(row.FiscalYear)
				if !ok {
					lc.rejected++
					continue
				}
				sal := parseSalary(row.DailySalary)
				if math.IsNaN(sal) {
					lc.invalid++
				}
				region := strings.TrimSpace(row.Region)
				id, ok := lc.rMap[region]
				if !ok {
					id = int32(len(lc.rList))
					lc.rList = append(lc.rList, region)
					lc.rMap[region] = id
				}
				lc.years = append(lc.years, year)
				lc.salaries = append(lc.salaries, sal)
				lc.ids = append(lc.ids, id)
			}
		}(w, raw[s:e])
	}
	parseWg.Wait()

	// C. Allocate Store ONCE
	var stats models.LoadStats
	offsets := make([]int, numWorkers)
	total := 0
	for w, lc := range chunks {
		offsets[w] = total
		total += len(lc.years)
		stats.RejectedRows += lc.rejected
		stats.InvalidSalary += lc.invalid
	}
	stats.Rows = total

	store := &ColumnStore{
		Years:     make([]int32, total),
		Salaries:  make([]float64, total),
		RegionIDs: make([]int32, total),
	}

	// D. Merge Dictionaries in worker order so ids follow first appearance
	gMap := make(map[string]int32)
	for w, lc := range chunks {
		remap := make([]int32, len(lc.rList))
		for lid, name := range lc.rList {
			gid, exists := gMap[name]
			if !exists {
				gid = int32(len(store.RegionDict))
				store.RegionDict = append(store.RegionDict, name)
				gMap[name] = gid
			}
			remap[lid] = gid
		}
		off := offsets[w]
		copy(store.Years[off:], lc.years)
		copy(store.Salaries[off:], lc.salaries)
		dest := store.RegionIDs[off : off+len(lc.ids)]
		for k, id := range lc.ids {
			dest[k] = remap[id]
		}
	}
	stats.Regions = len(store.RegionDict)

	logger.Info("payroll table loaded",
		zap.Int("rows", stats.Rows),
		zap.Int("rejected_rows", stats.RejectedRows),
		zap.Int("invalid_salary", stats.InvalidSalary),
		zap.Int("regions", stats.Regions),
		zap.Duration("elapsed", time.Since(start)),
	)
	return store, stats, nil
}
