package models

// PayrollRecord is one row of the payroll table.
// SalaryValid is false when Daily.Salary could not be parsed.
type PayrollRecord struct {
	FiscalYear  int     `json:"fiscal_year"`
	Region      string  `json:"region"`
	DailySalary float64 `json:"daily_salary"`
	SalaryValid bool    `json:"salary_valid"`
}

type RegionAggregate struct {
	Region     string  `json:"region"`
	MeanSalary float64 `json:"mean_daily_salary"`
	Records    int     `json:"records"`
	Percent    float64 `json:"percent"`
	Label      string  `json:"label"`
}

// Summary is the aggregate set for one fiscal year.
// GrandTotal is the sum of the per-region means, not of raw salaries.
type Summary struct {
	Year       int               `json:"year"`
	Regions    []RegionAggregate `json:"regions"`
	GrandTotal float64           `json:"grand_total"`
}

type YearDomain struct {
	Years    []int `json:"years"`
	Min      int   `json:"min"`
	Max      int   `json:"max"`
	Step     int   `json:"step"`
	Selected int   `json:"selected"`
}

type LoadStats struct {
	Rows          int `json:"rows"`
	RejectedRows  int `json:"rejected_rows"`
	InvalidSalary int `json:"invalid_salary"`
	Regions       int `json:"regions"`
}

// Arc is a pie segment in radians, clockwise from 12 o'clock.
type Arc struct {
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
}

type Tooltip struct {
	Region string `json:"region"`
	Mean   string `json:"mean"`
}

// Slice is everything the page needs to draw one pie segment.
type Slice struct {
	Region   string     `json:"region"`
	Value    float64    `json:"value"`
	Percent  float64    `json:"percent"`
	Label    string     `json:"label"`
	Color    string     `json:"color"`
	Arc      Arc        `json:"arc"`
	Path     string     `json:"path"`
	Centroid [2]float64 `json:"centroid"`
	Tooltip  Tooltip    `json:"tooltip"`
}

type SlicePhase string

const (
	PhaseEnter  SlicePhase = "enter"
	PhaseUpdate SlicePhase = "update"
	PhaseExit   SlicePhase = "exit"
)

// SliceTransition animates one region from From to To.
// Frames holds the interpolated arc paths, the last one equal to the final shape.
type SliceTransition struct {
	Region string     `json:"region"`
	Phase  SlicePhase `json:"phase"`
	From   Arc        `json:"from"`
	To     Arc        `json:"to"`
	Color  string     `json:"color"`
	Frames []string   `json:"frames"`
}

type Transition struct {
	Generation uint64            `json:"generation"`
	Year       int               `json:"year"`
	DurationMs int               `json:"duration_ms"`
	Slices     []SliceTransition `json:"slices"`
}

type ChartState struct {
	Generation uint64  `json:"generation"`
	Year       int     `json:"year"`
	Radius     float64 `json:"radius"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Slices     []Slice `json:"slices"`
}
