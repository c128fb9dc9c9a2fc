// Copyright 2026 The godss Authors
// SPDX-License-Identifier: BSD-3-Clause

package geom

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Matrix is a 2D affine transformation over display coordinates. It is an
// f64.Aff3 in row-major order:
//
//	| m[0]  m[1]  m[2] |
//	| m[3]  m[4]  m[5] |
//
// representing the transformation:
//
//	x' = m[0]*x + m[1]*y + m[2]
//	y' = m[3]*x + m[4]*y + m[5]
type Matrix f64.Aff3

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0,
		0, 1, 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		1, 0, x,
		0, 1, y,
	}
}

// ScaleRatio creates a scaling matrix from integer axis ratios, scaling x by
// xTo/xFrom and y by yTo/yFrom. Negative ratios flip the axis.
func ScaleRatio(xFrom, xTo, yFrom, yTo int) Matrix {
	return Matrix{
		float64(xTo) / float64(xFrom), 0, 0,
		0, float64(yTo) / float64(yFrom), 0,
	}
}

// RotateQuarter creates a rotation matrix for a whole number of quarter
// turns. Quarter turns are exact; no trigonometry is involved.
func RotateQuarter(turns int) Matrix {
	switch turns & 3 {
	case 1:
		return Matrix{
			0, -1, 0,
			1, 0, 0,
		}
	case 2:
		return Matrix{
			-1, 0, 0,
			0, -1, 0,
		}
	case 3:
		return Matrix{
			0, 1, 0,
			-1, 0, 0,
		}
	default:
		return Identity()
	}
}

// Multiply multiplies two matrices (m * other). The combined transform
// applies other first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[3],
		m[0]*other[1] + m[1]*other[4],
		m[0]*other[2] + m[1]*other[5] + m[2],
		m[3]*other[0] + m[4]*other[3],
		m[3]*other[1] + m[4]*other[4],
		m[3]*other[2] + m[4]*other[5] + m[5],
	}
}

// Invert returns the inverse matrix.
// Returns the identity matrix if the matrix is not invertible.
func (m Matrix) Invert() Matrix {
	det := m[0]*m[4] - m[1]*m[3]
	if math.Abs(det) < 1e-10 {
		return Identity()
	}

	invDet := 1.0 / det
	return Matrix{
		m[4] * invDet,
		-m[1] * invDet,
		(m[1]*m[5] - m[2]*m[4]) * invDet,
		-m[3] * invDet,
		m[0] * invDet,
		(m[2]*m[3] - m[0]*m[5]) * invDet,
	}
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Aff3 returns the matrix as an f64.Aff3 for use with golang.org/x/image.
func (m Matrix) Aff3() f64.Aff3 {
	return f64.Aff3(m)
}

// TransformRect maps a rectangle through the matrix. Position and size are
// each rounded once and the far edges derived from them, so pixel rounding
// error never accumulates across an edge.
//
// The matrix must be a quarter-turn orthogonal transform; the result is the
// mapped rectangle, not a bounding box of mapped corners.
func (m Matrix) TransformRect(r Rect) Rect {
	x := m[0]*float64(r.X) + m[1]*float64(r.Y) + m[2]
	y := m[3]*float64(r.X) + m[4]*float64(r.Y) + m[5]
	w := m[0]*float64(r.W) + m[1]*float64(r.H)
	h := m[3]*float64(r.W) + m[4]*float64(r.H)

	var out Rect
	if w > 0 {
		out.X = round(x)
	} else {
		out.X = round(x + w)
	}
	if h > 0 {
		out.Y = round(y)
	} else {
		out.Y = round(y + h)
	}
	out.W = round(math.Abs(w))
	out.H = round(math.Abs(h))
	return out
}

// round rounds half away from zero.
func round(x float64) int {
	return int(math.Round(x))
}
