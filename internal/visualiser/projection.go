package visualiser

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera is an orthographic view defined like a matplotlib 3D axes:
// elevation above the XY plane and azimuth around Z, both in degrees.
type Camera struct {
	Elevation float64
	Azimuth   float64
}

// DefaultCamera looks down 20° from an azimuth of 45°.
func DefaultCamera() Camera {
	return Camera{Elevation: 20, Azimuth: 45}
}

// basis returns the screen right and up vectors.
func (c Camera) basis() (right, up r3.Vec) {
	e := c.Elevation * math.Pi / 180
	a := c.Azimuth * math.Pi / 180
	right = r3.Vec{X: -math.Sin(a), Y: math.Cos(a)}
	up = r3.Vec{X: -math.Sin(e) * math.Cos(a), Y: -math.Sin(e) * math.Sin(a), Z: math.Cos(e)}
	return right, up
}

// Project maps a world point to 2D screen coordinates.
func (c Camera) Project(p r3.Vec) (x, y float64) {
	right, up := c.basis()
	return r3.Dot(p, right), r3.Dot(p, up)
}

// boxEdges returns the 12 edges of the cube [-l, l]^3.
func boxEdges(l float64) [][2]r3.Vec {
	var corners []r3.Vec
	for _, x := range []float64{-l, l} {
		for _, y := range []float64{-l, l} {
			for _, z := range []float64{-l, l} {
				corners = append(corners, r3.Vec{X: x, Y: y, Z: z})
			}
		}
	}
	var edges [][2]r3.Vec
	for i := range corners {
		for j := i + 1; j < len(corners); j++ {
			d := r3.Sub(corners[i], corners[j])
			// Edges differ in exactly one coordinate.
			n := 0
			for _, v := range []float64{d.X, d.Y, d.Z} {
				if v != 0 {
					n++
				}
			}
			if n == 1 {
				edges = append(edges, [2]r3.Vec{corners[i], corners[j]})
			}
		}
	}
	return edges
}
