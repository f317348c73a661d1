package bitfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Len(t, New(0), 0)
	assert.Len(t, New(1), 1)
	assert.Len(t, New(8), 1)
	assert.Len(t, New(9), 2)
}

func TestSetPiece(t *testing.T) {
	tests := []struct {
		index  int
		output Bitfield
	}{
		{
			2,
			Bitfield{0b11101010, 0b01010101},
		}, {
			7,
			Bitfield{0b11001011, 0b01010101},
		},
		{
			8,
			Bitfield{0b11001010, 0b11010101},
		},
		{
			16,
			Bitfield{0b11001010, 0b01010101},
		},
		{
			-1,
			Bitfield{0b11001010, 0b01010101},
		}}

	for _, tt := range tests {
		bf := Bitfield{0b11001010, 0b01010101}
		bf.SetPiece(tt.index)

		assert.Equal(t, tt.output, bf)
	}
}

func TestHasPiece(t *testing.T) {
	bf := Bitfield{0b11001010, 0b01010101}

	output := []bool{true, true, false, false, true, false, true, false, false, true, false, true, false, true, false, true, false, false, false}

	for index, expected := range output {
		got := bf.HasPiece(index)

		assert.Equal(t, expected, got)
	}

	assert.False(t, bf.HasPiece(-3))
}

func TestCount(t *testing.T) {
	bf := Bitfield{0b11001010, 0b01010101}

	assert.Equal(t, 8, bf.Count(16))
	assert.Equal(t, 4, bf.Count(8))
	assert.Equal(t, 2, bf.Count(2))
	assert.Equal(t, 8, bf.Count(100))
}
