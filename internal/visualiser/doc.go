// Package visualiser draws mean node orientations as overlaid 3D frames.
//
// Each frame is the triad of rotated unit axes for one node: X solid, Y
// dashed, Z dotted, one colour per node. Figures are written twice: as PNG
// through gonum/plot using an orthographic camera, and as a rotatable
// go-echarts Line3D page.
package visualiser
