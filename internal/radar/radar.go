// Package radar projects six 0-100 metric values onto a hexagonal radar
// chart. Axis 0 points straight up and the axes run clockwise at 60°
// intervals in screen coordinates.
package radar

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"rift-rewind/internal/constants"
)

const Axes = 6

var ErrAxisCount = errors.New("radar: exactly six values are required")

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Projection struct {
	Points [Axes]Point `json:"points"`
	Labels [Axes]Point `json:"labels"`
	Path   string      `json:"path"`
}

// Geometry fixes the chart frame; every series drawn on one chart shares it.
type Geometry struct {
	Center      Point
	Radius      float64
	LabelOffset float64
}

func DefaultGeometry() Geometry {
	return Geometry{
		Center:      Point{X: constants.RadarCenter, Y: constants.RadarCenter},
		Radius:      constants.RadarRadius,
		LabelOffset: constants.RadarLabelOffset,
	}
}

func angle(i int) float64 {
	return 2*math.Pi*float64(i)/Axes - math.Pi/2
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func at(center Point, r, theta float64) Point {
	if r == 0 {
		return center
	}
	return Point{X: center.X + r*math.Cos(theta), Y: center.Y + r*math.Sin(theta)}
}

// Project maps values onto the chart. Values are clamped to [0,100]; 0 lands
// on the center and 100 on the outer ring.
func Project(values []float64, center Point, radius float64) (Projection, error) {
	return DefaultGeometry().with(center, radius).Project(values)
}

func (g Geometry) with(center Point, radius float64) Geometry {
	g.Center = center
	g.Radius = radius
	return g
}

func (g Geometry) Project(values []float64) (Projection, error) {
	if len(values) != Axes {
		return Projection{}, fmt.Errorf("%w: got %d", ErrAxisCount, len(values))
	}

	var p Projection
	for i, v := range values {
		theta := angle(i)
		p.Points[i] = at(g.Center, clamp(v)/100*g.Radius, theta)
		p.Labels[i] = at(g.Center, g.Radius+g.LabelOffset, theta)
	}
	p.Path = path(p.Points[:])
	return p, nil
}

// Ring returns the regular hexagon at pct percent of the radius, used for
// grid lines.
func (g Geometry) Ring(pct float64) [Axes]Point {
	var out [Axes]Point
	for i := range out {
		out[i] = at(g.Center, clamp(pct)/100*g.Radius, angle(i))
	}
	return out
}

func path(points []Point) string {
	var b strings.Builder
	for i, pt := range points {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatFloat(pt.X))
		b.WriteByte(' ')
		b.WriteString(formatFloat(pt.Y))
	}
	b.WriteString(" Z")
	return b.String()
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
