// Package render draws the analysis map and exports it to PNG and PDF.
package render

import (
	"fmt"
	"image/color"
	"os"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/verdantcity/greenspace-cli/internal/model"
)

// Layer colors. Alpha channels approximate the original 0.7/0.4 opacities.
var (
	greenColor       = color.NRGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xb2}
	residentialColor = color.NRGBA{R: 0xf3, G: 0x9c, B: 0x12, A: 0x66}
	gridColor        = color.NRGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xb2}
)

// Options configures map construction and export.
type Options struct {
	City     string
	WidthIn  float64 // default 12
	HeightIn float64 // default 8
	DPI      int     // PNG only, default 300
}

func (o Options) withDefaults() Options {
	if o.WidthIn <= 0 {
		o.WidthIn = 12
	}
	if o.HeightIn <= 0 {
		o.HeightIn = 8
	}
	if o.DPI <= 0 {
		o.DPI = 300
	}
	return o
}

// MapPNGName returns the PNG export filename for a city.
func MapPNGName(city string) string {
	return fmt.Sprintf("urban_green_space_map_%s.png", city)
}

// AnalysisPDFName returns the PDF export filename for a city.
func AnalysisPDFName(city string) string {
	return fmt.Sprintf("urban_green_space_analysis_%s.pdf", city)
}

// BuildMap assembles the map plot: green-space and residential vertices as
// colored scatters, titled axes, dashed grid, lower-right legend, and a
// north arrow.
func BuildMap(features []model.Feature, opts Options) (*plot.Plot, error) {
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Urban Green Space Analysis - %s", opts.City)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	grid := plotter.NewGrid()
	grid.Vertical.Color = gridColor
	grid.Vertical.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	grid.Horizontal.Color = gridColor
	grid.Horizontal.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(grid)

	greenXYs := vertexXYs(features, model.CategoryGreenSpace)
	if len(greenXYs) > 0 {
		s, err := plotter.NewScatter(greenXYs)
		if err != nil {
			return nil, eris.Wrap(err, "render: green scatter")
		}
		s.GlyphStyle.Color = greenColor
		s.GlyphStyle.Radius = vg.Points(1.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add("Green Spaces", s)
	}

	residentialXYs := vertexXYs(features, model.CategoryResidential)
	if len(residentialXYs) > 0 {
		s, err := plotter.NewScatter(residentialXYs)
		if err != nil {
			return nil, eris.Wrap(err, "render: residential scatter")
		}
		s.GlyphStyle.Color = residentialColor
		s.GlyphStyle.Radius = vg.Points(1.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add("Residential Areas", s)
	}

	// Lower right, like the original.
	p.Legend.Top = false
	p.Legend.Left = false

	if err := addNorthArrow(p, append(greenXYs, residentialXYs...)); err != nil {
		return nil, err
	}

	return p, nil
}

// SavePNG renders the plot to a PNG at the configured DPI.
func SavePNG(p *plot.Plot, path string, opts Options) error {
	opts = opts.withDefaults()

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opts.WidthIn)*vg.Inch, vg.Length(opts.HeightIn)*vg.Inch),
		vgimg.UseDPI(opts.DPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(f); err != nil {
		return eris.Wrapf(err, "render: write %s", path)
	}
	return nil
}

// SavePDF renders the plot to a single-page PDF.
func SavePDF(p *plot.Plot, path string, opts Options) error {
	opts = opts.withDefaults()

	c := vgpdf.New(vg.Length(opts.WidthIn)*vg.Inch, vg.Length(opts.HeightIn)*vg.Inch)
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "render: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if _, err := c.WriteTo(f); err != nil {
		return eris.Wrapf(err, "render: write %s", path)
	}
	return nil
}

// vertexXYs flattens the polygon vertices of all features in a category.
func vertexXYs(features []model.Feature, cat model.Category) plotter.XYs {
	var xys plotter.XYs
	for _, f := range features {
		if f.Category != cat || f.Geometry == nil {
			continue
		}
		flat := f.Geometry.FlatCoords()
		stride := f.Geometry.Stride()
		for i := 0; i+1 < len(flat); i += stride {
			xys = append(xys, plotter.XY{X: flat[i], Y: flat[i+1]})
		}
	}
	return xys
}

// addNorthArrow draws a short vertical arrow with an "N" label near the
// top-right corner of the data extent.
func addNorthArrow(p *plot.Plot, xys plotter.XYs) error {
	if len(xys) == 0 {
		return nil
	}

	minX, minY := xys[0].X, xys[0].Y
	maxX, maxY := minX, minY
	for _, xy := range xys {
		minX = min(minX, xy.X)
		maxX = max(maxX, xy.X)
		minY = min(minY, xy.Y)
		maxY = max(maxY, xy.Y)
	}

	dx := maxX - minX
	dy := maxY - minY
	if dx == 0 || dy == 0 {
		return nil
	}

	ax := minX + 0.95*dx
	shaft := plotter.XYs{
		{X: ax, Y: minY + 0.85*dy},
		{X: ax, Y: minY + 0.93*dy},
	}

	line, err := plotter.NewLine(shaft)
	if err != nil {
		return eris.Wrap(err, "render: north arrow")
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = color.Black
	p.Add(line)

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: ax, Y: minY + 0.95*dy}},
		Labels: []string{"N"},
	})
	if err != nil {
		return eris.Wrap(err, "render: north label")
	}
	p.Add(labels)

	return nil
}
