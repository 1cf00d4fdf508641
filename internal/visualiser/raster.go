package visualiser

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/imu-heading/internal/fsutil"
)

// figure is the renderer-independent description of one plot.
type figure struct {
	Title     string
	Subtitle  string
	Frames    []Frame
	Reference bool
}

// axisDashes maps each axis to its line pattern: X solid, Y dashed, Z dotted.
func axisDashes(a Axis) []vg.Length {
	switch a {
	case AxisY:
		return []vg.Length{vg.Points(6), vg.Points(3)}
	case AxisZ:
		return []vg.Length{vg.Points(1), vg.Points(3)}
	default:
		return nil
	}
}

// buildPlot projects the figure through cam onto a 2D gonum plot.
func buildPlot(fig figure, cam Camera) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fig.Title
	p.HideAxes()

	project := func(v r3.Vec) plotter.XY {
		x, y := cam.Project(v)
		return plotter.XY{X: x, Y: y}
	}

	// Bounding box, projected.
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, e := range boxEdges(Limit) {
		pts := plotter.XYs{project(e[0]), project(e[1])}
		for _, pt := range pts {
			minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
			minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		l.Color = boxColor
		l.Width = vg.Points(0.5)
		p.Add(l)
	}
	p.X.Min, p.X.Max = minX, maxX
	p.Y.Min, p.Y.Max = minY, maxY

	var (
		labelXYs   plotter.XYs
		labelTexts []string
		labelCols  []color.Color
	)

	// World axis names at the positive box faces.
	worldNames := [3]string{"X (East)", "Y (North)", "Z (Up)"}
	for i, tip := range [3]r3.Vec{{X: Limit}, {Y: Limit}, {Z: Limit}} {
		labelXYs = append(labelXYs, project(tip))
		labelTexts = append(labelTexts, worldNames[i])
		labelCols = append(labelCols, color.Black)
	}

	if fig.Reference {
		refNames := [3]string{"X (E)", "Y (N)", "Z (U)"}
		for i, seg := range ReferenceSegments() {
			l, err := plotter.NewLine(plotter.XYs{project(seg.From), project(seg.To)})
			if err != nil {
				return nil, err
			}
			l.Color = referenceColors[i]
			l.Width = vg.Points(4)
			p.Add(l)
			p.Legend.Add("ENU - "+worldNames[i], l)

			labelXYs = append(labelXYs, project(seg.To))
			labelTexts = append(labelTexts, refNames[i])
			labelCols = append(labelCols, referenceColors[i])
		}
	}

	colors := generateColors(len(fig.Frames))
	for i, f := range fig.Frames {
		for _, seg := range AxisSegments(f.Rotation, AxisLength) {
			l, err := plotter.NewLine(plotter.XYs{project(seg.From), project(seg.To)})
			if err != nil {
				return nil, err
			}
			l.Color = colors[i]
			l.Width = vg.Points(2)
			l.Dashes = axisDashes(seg.Axis)
			p.Add(l)
			p.Legend.Add(fmt.Sprintf("%s - %s", f.Name, seg.Axis), l)

			labelXYs = append(labelXYs, project(seg.To))
			labelTexts = append(labelTexts, fmt.Sprintf("%s-%s", f.Name, seg.Axis))
			labelCols = append(labelCols, colors[i])
		}
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labelTexts})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = labelCols[i]
	}
	p.Add(labels)

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = 10
	p.Legend.YOffs = -10

	return p, nil
}

// writePNG renders the figure and writes it to path on fsys.
func writePNG(fsys fsutil.FileSystem, path string, fig figure, cam Camera, width, height vg.Length) error {
	p, err := buildPlot(fig, cam)
	if err != nil {
		return fmt.Errorf("build plot: %w", err)
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}

	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
