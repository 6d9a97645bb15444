package chart

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"payrollpie/internal/models"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// RenderImage draws a static pie of the summary. An empty summary yields an
// empty canvas of the layout's size.
func RenderImage(w io.Writer, sum models.Summary, colors *OrdinalScale, layout Layout, format Format) error {
	if len(sum.Regions) == 0 || sum.GrandTotal == 0 {
		return renderEmpty(w, layout, format)
	}

	values := make([]gochart.Value, 0, len(sum.Regions))
	for _, r := range sum.Regions {
		values = append(values, gochart.Value{
			Value: r.MeanSalary,
			Label: fmt.Sprintf("%s %s", r.Region, r.Label),
			Style: gochart.Style{
				FillColor:   drawing.ColorFromHex(strings.TrimPrefix(colors.Color(r.Region), "#")),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
				FontSize:    10,
				FontColor:   drawing.ColorBlack,
			},
		})
	}

	pie := gochart.PieChart{
		Title:  fmt.Sprintf("Average Daily Salary by Borough, %d", sum.Year),
		Width:  layout.Width,
		Height: layout.Height,
		Values: values,
	}

	provider := gochart.SVG
	if format == FormatPNG {
		provider = gochart.PNG
	}
	if err := pie.Render(provider, w); err != nil {
		return fmt.Errorf("render pie chart for %d: %w", sum.Year, err)
	}
	return nil
}

func renderEmpty(w io.Writer, layout Layout, format Format) error {
	if format == FormatPNG {
		img := image.NewRGBA(image.Rect(0, 0, layout.Width, layout.Height))
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode empty chart: %w", err)
		}
		return nil
	}
	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"></svg>`, layout.Width, layout.Height)
	return err
}
