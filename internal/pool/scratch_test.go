package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratch(t *testing.T) {
	s := Get()
	require.NotNil(t, s)
	require.NotNil(t, s.Heap)

	d := s.Distances(10)
	assert.Len(t, d, 10)
	d = s.Distances(DefaultPoints * 2)
	assert.Len(t, d, DefaultPoints*2)

	v := s.Vector(3)
	assert.Len(t, v, 3)

	Put(s)
}

func TestPutDropsOversized(t *testing.T) {
	s := Get()
	s.Distances(maxRetainedPoints + 1)
	Put(s)
	assert.LessOrEqual(t, cap(s.Dist), maxRetainedPoints)
}
