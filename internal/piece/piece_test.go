package piece

import (
	"bytes"
	"crypto/sha1"
	"math"
	"testing"

	"github.com/danferreira/torrentinfo/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	zeebo "github.com/zeebo/bencode"
)

type torrentFile struct {
	Announce string          `bencode:"announce"`
	Info     torrentFileInfo `bencode:"info"`
}

type torrentFileInfo struct {
	Length      int64  `bencode:"length"`
	Name        string `bencode:"name"`
	PieceLength int64  `bencode:"piece length"`
	Pieces      string `bencode:"pieces"`
}

// newMockedTorrent builds metadata describing content split into pieces of
// pieceLength bytes.
func newMockedTorrent(t *testing.T, content []byte, pieceLength int) *metadata.Metadata {
	t.Helper()

	var pieces bytes.Buffer
	for start := 0; start < len(content); start += pieceLength {
		end := min(start+pieceLength, len(content))
		h := sha1.Sum(content[start:end])
		pieces.Write(h[:])
	}

	buf, err := zeebo.EncodeBytes(torrentFile{
		Announce: "http://localhost:8000/announce",
		Info: torrentFileInfo{
			Length:      int64(len(content)),
			Name:        "payload.bin",
			PieceLength: int64(pieceLength),
			Pieces:      pieces.String(),
		},
	})
	require.NoError(t, err)

	m, err := metadata.ParseBytes(buf)
	require.NoError(t, err)

	return m
}

func TestPlan(t *testing.T) {
	m := newMockedTorrent(t, make([]byte, 40000), 16384)

	pieces, err := Plan(m)
	require.NoError(t, err)
	require.Len(t, pieces, 3)

	assert.Equal(t, Piece{Index: 0, Hash: m.Info.PieceHashes[0], Begin: 0, Length: 16384}, pieces[0])
	assert.Equal(t, Piece{Index: 1, Hash: m.Info.PieceHashes[1], Begin: 16384, Length: 16384}, pieces[1])
	assert.Equal(t, Piece{Index: 2, Hash: m.Info.PieceHashes[2], Begin: 32768, Length: 7232}, pieces[2])
}

func TestPlanExactMultiple(t *testing.T) {
	m := newMockedTorrent(t, make([]byte, 32768), 16384)

	pieces, err := Plan(m)
	require.NoError(t, err)
	require.Len(t, pieces, 2)
	assert.Equal(t, 16384, pieces[1].Length)
}

func TestPlanUnknownLength(t *testing.T) {
	m := &metadata.Metadata{Info: metadata.Info{PieceLength: 16384}}

	_, err := Plan(m)
	assert.ErrorIs(t, err, ErrUnknownLength)
}

func TestPlanPieceCountMismatch(t *testing.T) {
	length := int64(40000)
	m := &metadata.Metadata{
		Info: metadata.Info{
			PieceLength: 16384,
			Length:      &length,
			PieceHashes: []metadata.Hash{{}, {}},
		},
	}

	_, err := Plan(m)
	assert.ErrorIs(t, err, ErrPieceCountMismatch)
}

func TestPlanEmptyPayload(t *testing.T) {
	length := int64(0)
	m := &metadata.Metadata{Info: metadata.Info{PieceLength: 16384, Length: &length}}

	pieces, err := Plan(m)
	require.NoError(t, err)
	assert.Empty(t, pieces)
}

func TestPlanPieceTooLarge(t *testing.T) {
	length := int64(1 << 62)
	m := &metadata.Metadata{
		Info: metadata.Info{
			PieceLength: 1 << 62,
			Length:      &length,
			PieceHashes: []metadata.Hash{{}},
		},
	}

	_, err := Plan(m)
	assert.ErrorIs(t, err, ErrPieceTooLarge)
}

func TestPieceCount(t *testing.T) {
	tests := map[string]struct {
		size        int64
		pieceLength int64
		want        int64
	}{
		"empty":          {size: 0, pieceLength: 16384, want: 0},
		"exact multiple": {size: 32768, pieceLength: 16384, want: 2},
		"short last":     {size: 40000, pieceLength: 16384, want: 3},
		"max size":       {size: math.MaxInt64, pieceLength: MaxPieceLength, want: math.MaxInt64/MaxPieceLength + 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, pieceCount(tt.size, tt.pieceLength))
		})
	}
}
