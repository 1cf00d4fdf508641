package visualiser

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/imu-heading/internal/fsutil"
)

func point3D(v r3.Vec) opts.Chart3DData {
	return opts.Chart3DData{Value: []interface{}{v.X, v.Y, v.Z}}
}

// newLine3D builds a rotatable chart with one two-point series per axis.
func newLine3D(fig figure) *charts.Line3D {
	line := charts.NewLine3D()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: fig.Title, Width: "1000px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title, Subtitle: fig.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "60px"}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X (East)", Min: -Limit, Max: Limit}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y (North)", Min: -Limit, Max: Limit}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z (Up)", Min: -Limit, Max: Limit}),
	)

	if fig.Reference {
		names := [3]string{"ENU - X (East)", "ENU - Y (North)", "ENU - Z (Up)"}
		for i, seg := range ReferenceSegments() {
			line.AddSeries(names[i], []opts.Chart3DData{point3D(seg.From), point3D(seg.To)},
				charts.WithLineStyleOpts(opts.LineStyle{Color: hexColor(referenceColors[i]), Width: 4}))
		}
	}

	colors := generateColors(len(fig.Frames))
	for i, f := range fig.Frames {
		c := hexColor(colors[i])
		for _, seg := range AxisSegments(f.Rotation, AxisLength) {
			line.AddSeries(fmt.Sprintf("%s - %s", f.Name, seg.Axis),
				[]opts.Chart3DData{point3D(seg.From), point3D(seg.To)},
				charts.WithLineStyleOpts(opts.LineStyle{Color: c, Width: 3, Type: seg.Axis.LineType()}))
		}
	}
	return line
}

// writeHTML renders one page holding a chart per figure.
func writeHTML(fsys fsutil.FileSystem, path string, figs []figure) error {
	page := components.NewPage()
	for _, fig := range figs {
		page.AddCharts(newLine3D(fig))
	}

	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}
