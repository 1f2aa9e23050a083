package msclust

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/eeg-microstates/msclust/criteria"
)

// VisualizeSelection renders the mean-rank curve, the meta-criterion
// curve, and a handful of individual value criteria side by side, the
// way a caller would inspect why a given K won.
func VisualizeSelection(filename string, m *criteria.Matrix, sel MetaCriterionSelection, kMin, kMax int, extra ...criteria.ID) error {
	rows := 2 + len(extra)
	cols := 1
	plots := make([][]*plot.Plot, rows)
	for i := range plots {
		plots[i] = make([]*plot.Plot, cols)
	}

	var err error
	plots[0][0], err = createCurvePlot(curveToXYs(sel.MeanRankCurve, kMin, kMax), "mean-rank curve")
	if err != nil {
		return err
	}
	plots[1][0], err = createCurvePlot(curveToXYs(sel.MetaCurve, kMin, kMax), "meta-criterion curve")
	if err != nil {
		return err
	}
	for i, id := range extra {
		ks, vals := m.Row(id, kMin, kMax)
		pts := make(plotter.XYs, len(ks))
		for j, k := range ks {
			pts[j].X, pts[j].Y = float64(k), vals[j]
		}
		plots[2+i][0], err = createCurvePlot(pts, string(id))
		if err != nil {
			return err
		}
	}

	return renderGrid(plots, rows, cols, filename)
}

func curveToXYs(curve map[int]float64, kMin, kMax int) plotter.XYs {
	pts := make(plotter.XYs, 0, kMax-kMin+1)
	for k := kMin; k <= kMax; k++ {
		if v, ok := curve[k]; ok {
			pts = append(pts, plotter.XY{X: float64(k), Y: v})
		}
	}
	return pts
}

func createCurvePlot(pts plotter.XYs, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return p, err
	}
	line.Color = plotutil.Color(0)
	points.Color = plotutil.Color(0)
	p.Add(line, points)
	return p, nil
}

func renderGrid(plots [][]*plot.Plot, rows, cols int, filename string) error {
	img := vgimg.New(vg.Points(800), vg.Points(300*float64(rows)))
	dc := draw.New(img)

	t := draw.Tiles{Rows: rows, Cols: cols}
	canvases := plot.Align(plots, t, dc)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			if plots[j][i] != nil {
				plots[j][i].Draw(canvases[j][i])
			}
		}
	}

	w, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer w.Close()

	png := vgimg.PngCanvas{Canvas: img}
	_, err = png.WriteTo(w)
	if err != nil {
		return fmt.Errorf("msclust: writing visualization: %w", err)
	}
	return nil
}
