// Package spatial provides a uniform grid used to replace the O(n²) neighbor
// scan of a simulation with a 27-cell candidate lookup.
package spatial

import (
	"fmt"
	"math"
	"slices"

	"github.com/Carmen-Shannon/oxy-demos/common"
)

type cellKey struct {
	x, y, z int
}

// Grid buckets entity indices by floor(position / cellSize). A Grid is rebuilt
// from scratch every tick; it holds no reference to the positions it was built from.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]int
	keys     []cellKey
}

// NewGrid creates an empty grid.
//
// Parameters:
//   - cellSize: the side length of a cell, must be positive and finite
//
// Returns:
//   - *Grid: the grid
//   - error: error if cellSize is not usable
func NewGrid(cellSize float64) (*Grid, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("spatial grid cell size %v must be positive", cellSize)
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
	}, nil
}

// CellSize returns the grid's cell side length.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

func (g *Grid) key(p common.Vec3) cellKey {
	return cellKey{
		x: int(math.Floor(p.X / g.cellSize)),
		y: int(math.Floor(p.Y / g.cellSize)),
		z: int(math.Floor(p.Z / g.cellSize)),
	}
}

// Build clears the grid and inserts every position by index. Bucket slices are
// reused between builds.
func (g *Grid) Build(positions []common.Vec3) {
	for k, bucket := range g.cells {
		g.cells[k] = bucket[:0]
	}
	if cap(g.keys) < len(positions) {
		g.keys = make([]cellKey, len(positions))
	}
	g.keys = g.keys[:len(positions)]

	for i, p := range positions {
		k := g.key(p)
		g.keys[i] = k
		g.cells[k] = append(g.cells[k], i)
	}
}

// Len returns the number of indexed positions.
func (g *Grid) Len() int {
	return len(g.keys)
}

// Candidates appends to dst every index in the 27 cells around entity i,
// excluding i, in ascending order, and returns the extended slice. The
// ascending order keeps force accumulation bit-identical to a full scan.
func (g *Grid) Candidates(dst []int, i int) []int {
	start := len(dst)
	c := g.keys[i]
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				for _, j := range g.cells[cellKey{c.x + dx, c.y + dy, c.z + dz}] {
					if j != i {
						dst = append(dst, j)
					}
				}
			}
		}
	}
	slices.Sort(dst[start:])
	return dst
}

// Neighbors calls fn for every candidate neighbor of entity i.
func (g *Grid) Neighbors(i int, fn func(j int)) {
	for _, j := range g.Candidates(nil, i) {
		fn(j)
	}
}
