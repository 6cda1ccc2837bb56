package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 10)
	assert.Equal(t, uint64(20), offset)
	assert.Equal(t, uint64(10), limit)

	offset, limit = CalculateOffsetLimit(0, 1000)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(DefaultPageSize), limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, int64(45), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages)

	past := NewPaginationInfo(5, 9, 20)
	assert.Equal(t, 1, past.CurrentPage)
}

func TestCalculateSliceIndices(t *testing.T) {
	start, end := CalculateSliceIndices(2, 2, 5)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, end)

	start, end = CalculateSliceIndices(3, 2, 5)
	assert.Equal(t, 4, start)
	assert.Equal(t, 5, end)

	start, end = CalculateSliceIndices(9, 2, 5)
	assert.Equal(t, 5, start)
	assert.Equal(t, 5, end)
}
