package radar

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"rift-rewind/internal/constants"
)

type Palette struct {
	Fill   string
	Stroke string
}

var (
	PlayerPalette = Palette{Fill: "rgba(139, 92, 246, 0.25)", Stroke: "rgb(139, 92, 246)"}
	DuoPalette    = Palette{Fill: "rgba(236, 72, 153, 0.25)", Stroke: "rgb(236, 72, 153)"}
)

type Series struct {
	Name    string
	Values  []float64
	Palette Palette
}

type Chart struct {
	Geometry Geometry
	Labels   [Axes]string
	Series   []Series
}

// Overlay projects every series against the same axes.
func Overlay(g Geometry, series ...Series) ([]Projection, error) {
	out := make([]Projection, 0, len(series))
	for _, s := range series {
		p, err := g.Project(s.Values)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

var gridSteps = []float64{20, 40, 60, 80, 100}

// RenderSVG writes the chart. The first series is drawn last so it sits in
// the foreground.
func RenderSVG(w io.Writer, c Chart) error {
	projections, err := Overlay(c.Geometry, c.Series...)
	if err != nil {
		return err
	}

	g := c.Geometry
	bw := bufio.NewWriter(w)
	size := constants.RadarSize

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", size, size, size, size)

	for _, pct := range gridSteps {
		fmt.Fprintf(bw, `<circle cx="%s" cy="%s" r="%s" fill="none" stroke="rgba(255,255,255,0.1)" stroke-width="1"/>`+"\n",
			formatFloat(g.Center.X), formatFloat(g.Center.Y), formatFloat(pct/100*g.Radius))
	}
	for _, pt := range g.Ring(100) {
		fmt.Fprintf(bw, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="rgba(255,255,255,0.1)" stroke-width="1"/>`+"\n",
			formatFloat(g.Center.X), formatFloat(g.Center.Y), formatFloat(pt.X), formatFloat(pt.Y))
	}

	for i := len(projections) - 1; i >= 0; i-- {
		s := c.Series[i]
		fmt.Fprintf(bw, `<path d="%s" fill="%s" stroke="%s" stroke-width="2"><title>%s</title></path>`+"\n",
			projections[i].Path, html.EscapeString(s.Palette.Fill), html.EscapeString(s.Palette.Stroke), html.EscapeString(s.Name))
	}

	var labels [Axes]Point
	if len(projections) > 0 {
		labels = projections[0].Labels
	} else {
		for i := range labels {
			labels[i] = at(g.Center, g.Radius+g.LabelOffset, angle(i))
		}
	}
	for i, label := range c.Labels {
		fmt.Fprintf(bw, `<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="12" font-weight="bold" fill="white">%s</text>`+"\n",
			formatFloat(labels[i].X), formatFloat(labels[i].Y), html.EscapeString(label))
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
