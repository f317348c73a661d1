package piece

import (
	"errors"
	"fmt"

	"github.com/danferreira/torrentinfo/internal/metadata"
)

// MaxPieceLength is the largest piece length Plan accepts. Common clients
// stop well below it.
const MaxPieceLength = 128 << 20

var (
	ErrUnknownLength      = errors.New("torrent does not declare a payload length")
	ErrPieceCountMismatch = errors.New("piece count does not match payload length")
	ErrPieceTooLarge      = errors.New("piece length too large")
	ErrInvalidPiece       = errors.New("invalid piece bounds")
)

// Piece is one hash-checked slice of the payload.
type Piece struct {
	Index  int
	Hash   metadata.Hash
	Begin  int64
	Length int
}

// Plan lays the pieces of m over its payload. Every piece spans
// PieceLength bytes except the last, which ends at the payload length.
func Plan(m *metadata.Metadata) ([]Piece, error) {
	if m.Info.Length == nil {
		return nil, ErrUnknownLength
	}

	torrentSize := *m.Info.Length
	pieceLength := m.Info.PieceLength
	pieceHashes := m.Info.PieceHashes

	if pieceLength > MaxPieceLength {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrPieceTooLarge, pieceLength, MaxPieceLength)
	}

	want := pieceCount(torrentSize, pieceLength)
	if int64(len(pieceHashes)) != want {
		return nil, fmt.Errorf("%w: %d hashes for %d bytes in pieces of %d", ErrPieceCountMismatch, len(pieceHashes), torrentSize, pieceLength)
	}

	pieces := make([]Piece, 0, len(pieceHashes))
	for index, ph := range pieceHashes {
		begin := int64(index) * pieceLength
		end := begin + pieceLength

		if end > torrentSize {
			end = torrentSize
		}

		pieces = append(pieces, Piece{Index: index, Hash: ph, Begin: begin, Length: int(end - begin)})
	}

	return pieces, nil
}

func pieceCount(size, pieceLength int64) int64 {
	n := size / pieceLength
	if size%pieceLength != 0 {
		n++
	}

	return n
}
