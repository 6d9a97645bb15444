package chart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutRadius(t *testing.T) {
	assert.Equal(t, 185.0, DefaultLayout().Radius())
	assert.Equal(t, 60.0, Layout{Width: 300, Height: 200, Margin: 40}.Radius())
}

func TestPieAnglesDescendingAllocation(t *testing.T) {
	angles := PieAngles([]float64{100, 200})
	require.Len(t, angles, 2)

	// Larger value takes the first sweep even though it comes second.
	assert.InDelta(t, 0, angles[1][0], 1e-12)
	assert.InDelta(t, tau*2/3, angles[1][1], 1e-12)
	assert.InDelta(t, tau*2/3, angles[0][0], 1e-12)
	assert.InDelta(t, tau, angles[0][1], 1e-12)
}

func TestPieAnglesCoverFullTurn(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	angles := PieAngles(values)
	sweep := 0.0
	for i, a := range angles {
		assert.GreaterOrEqual(t, a[1], a[0])
		sweep += a[1] - a[0]
		assert.InDelta(t, values[i]/31*tau, a[1]-a[0], 1e-9)
	}
	assert.InDelta(t, tau, sweep, 1e-9)
}

func TestPieAnglesTiesAreStable(t *testing.T) {
	angles := PieAngles([]float64{5, 5})
	assert.InDelta(t, 0, angles[0][0], 1e-12)
	assert.InDelta(t, math.Pi, angles[1][0], 1e-12)
}

func TestPieAnglesZeroSum(t *testing.T) {
	for _, a := range PieAngles([]float64{0, 0}) {
		assert.Equal(t, a[0], a[1])
	}
}

func TestArcPath(t *testing.T) {
	assert.Equal(t, "M0,0Z", ArcPath(1, 1, 100))
	assert.Equal(t, "M0,-100A100,100,0,1,1,0,100A100,100,0,1,1,0,-100Z", ArcPath(0, tau, 100))

	// Quarter turn from 12 o'clock to 3 o'clock.
	assert.Equal(t, "M0,-100A100,100,0,0,1,100,0L0,0Z", ArcPath(0, math.Pi/2, 100))
	// Three quarters uses the large-arc flag.
	assert.Equal(t, "M0,-100A100,100,0,1,1,-100,0L0,0Z", ArcPath(0, 3*math.Pi/2, 100))
}

func TestCentroid(t *testing.T) {
	c := Centroid(0, math.Pi/2, 100)
	assert.InDelta(t, 35.355, c[0], 1e-3)
	assert.InDelta(t, -35.355, c[1], 1e-3)

	c = Centroid(0, tau, 100)
	assert.InDelta(t, 0, c[0], 1e-3)
	assert.InDelta(t, 50, c[1], 1e-3)
}

func TestOrdinalScale(t *testing.T) {
	s := NewYearScale([]int{2014, 2015})
	assert.Equal(t, Set3[0], s.Color("2014"))
	assert.Equal(t, Set3[2], s.Color("MANHATTAN"))
	assert.Equal(t, Set3[3], s.Color("QUEENS"))
	assert.Equal(t, Set3[2], s.Color("MANHATTAN"), "colour stays stable")
	assert.Equal(t, []string{"2014", "2015", "MANHATTAN", "QUEENS"}, s.Domain())

	// Range cycles past the palette length.
	years := make([]int, 12)
	for i := range years {
		years[i] = 2014 + i
	}
	full := NewYearScale(years)
	assert.Equal(t, Set3[0], full.Color("BRONX"))
}
