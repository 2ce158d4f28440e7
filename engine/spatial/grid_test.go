package spatial

import (
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-demos/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridRejectsBadCellSize(t *testing.T) {
	for _, size := range []float64{0, -1} {
		_, err := NewGrid(size)
		assert.Error(t, err)
	}
}

func TestGridNeighborsExcludeSelf(t *testing.T) {
	g, err := NewGrid(2)
	require.NoError(t, err)
	g.Build([]common.Vec3{{X: 0.5}, {X: 1.5}, {X: 10}})

	var got []int
	g.Neighbors(0, func(j int) { got = append(got, j) })
	assert.Equal(t, []int{1}, got)

	got = nil
	g.Neighbors(2, func(j int) { got = append(got, j) })
	assert.Empty(t, got)
}

func TestGridNegativeCoordinates(t *testing.T) {
	g, err := NewGrid(1)
	require.NoError(t, err)
	// -0.1 floors to cell -1, 0.1 to cell 0: adjacent, so still candidates
	g.Build([]common.Vec3{{X: -0.1}, {X: 0.1}})
	assert.Equal(t, []int{1}, g.Candidates(nil, 0))
}

func TestGridFindsEveryPairWithinCellSize(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	positions := make([]common.Vec3, 200)
	for i := range positions {
		positions[i] = common.Vec3{X: rng.Float64() * 20, Y: rng.Float64() * 20, Z: rng.Float64() * 20}
	}

	const cell = 2.0
	g, err := NewGrid(cell)
	require.NoError(t, err)
	g.Build(positions)
	assert.Equal(t, len(positions), g.Len())

	for i := range positions {
		candidates := map[int]bool{}
		prev := -1
		for _, j := range g.Candidates(nil, i) {
			assert.Greater(t, j, prev, "candidates are sorted")
			prev = j
			candidates[j] = true
		}
		for j := range positions {
			if i != j && positions[i].Dist(positions[j]) < cell {
				assert.True(t, candidates[j], "pair %d,%d missing", i, j)
			}
		}
	}
}

func TestGridRebuild(t *testing.T) {
	g, err := NewGrid(1)
	require.NoError(t, err)
	g.Build([]common.Vec3{{}, {X: 0.5}})
	g.Build([]common.Vec3{{}, {X: 5}})
	assert.Empty(t, g.Candidates(nil, 0))
}
