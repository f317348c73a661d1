package bitfield

// Bitfield marks pieces by index, most significant bit first.
type Bitfield []byte

// New returns a cleared bitfield wide enough for n pieces.
func New(n int) Bitfield {
	return make(Bitfield, (n+7)/8)
}

func (bf Bitfield) HasPiece(index int) bool {
	byteIndex := index / 8
	if index < 0 || byteIndex >= len(bf) {
		return false
	}

	bitOffset := 7 - (index % 8)
	return bf[byteIndex]&(1<<bitOffset) != 0
}

func (bf Bitfield) SetPiece(index int) {
	byteIndex := index / 8

	if index < 0 || byteIndex >= len(bf) {
		return
	}

	bitOffset := 7 - (index % 8)
	bf[byteIndex] |= (1 << bitOffset)
}

// Count returns how many of the first n pieces are set.
func (bf Bitfield) Count(n int) int {
	count := 0
	for i := 0; i < n; i++ {
		if bf.HasPiece(i) {
			count++
		}
	}

	return count
}
