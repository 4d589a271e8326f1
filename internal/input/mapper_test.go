package input

import (
	"testing"

	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper_Map(t *testing.T) {
	mapper := NewMapper(10, 20, 40, 40)

	t.Run("Maps a point inside a square by floor division", func(t *testing.T) {
		// When: the pointer is inside square (2,3)
		coord, ok := mapper.Map(10+3*40+39, 20+2*40)

		// Then: the square is returned
		require.True(t, ok)
		assert.Equal(t, entity.Coord{Row: 2, Col: 3}, coord)
	})

	t.Run("Rejects points left of or above the board", func(t *testing.T) {
		_, ok := mapper.Map(9, 25)
		assert.False(t, ok)

		_, ok = mapper.Map(15, 19)
		assert.False(t, ok)
	})

	t.Run("Rejects points right of or below the board", func(t *testing.T) {
		_, ok := mapper.Map(10+8*40, 25)
		assert.False(t, ok)

		_, ok = mapper.Map(15, 20+8*40)
		assert.False(t, ok)
	})

	t.Run("Supports non-square cells", func(t *testing.T) {
		terminal := NewMapper(1, 4, 5, 2)

		coord, ok := terminal.Map(1+7*5+4, 4+7*2+1)

		require.True(t, ok)
		assert.Equal(t, entity.Coord{Row: 7, Col: 7}, coord)
	})

	t.Run("Rejects everything without a cell size", func(t *testing.T) {
		_, ok := NewMapper(0, 0, 0, 0).Map(1, 1)

		assert.False(t, ok)
	})
}

func TestMapper_Origin(t *testing.T) {
	mapper := NewMapper(10, 20, 40, 40)

	x, y := mapper.Origin(entity.Coord{Row: 1, Col: 2})

	assert.Equal(t, 90, x)
	assert.Equal(t, 60, y)

	coord, ok := mapper.Map(x, y)
	require.True(t, ok)
	assert.Equal(t, entity.Coord{Row: 1, Col: 2}, coord)
}
