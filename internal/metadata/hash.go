package metadata

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"github.com/danferreira/torrentinfo/internal/bencode"
)

// HashSize is the length of a SHA-1 digest, used for the info hash and for
// every piece hash.
const HashSize = sha1.Size

var ErrMalformedPieceBuffer = errors.New("piece buffer length is not a multiple of 20")

type Hash [HashSize]byte

func (h Hash) String() string { return h.HexString() }

func (h Hash) HexString() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Bytes() []byte { return h[:] }

// InfoHash digests the canonical encoding of info. Only info contributes:
// the announce URL and any bytes outside the info dict never reach the hash.
func InfoHash(info bencode.Value) Hash {
	return sha1.Sum(bencode.Encode(info))
}

// SplitPieceHashes cuts pieces into consecutive 20-byte hashes. Hash i is
// the expected digest of piece i.
func SplitPieceHashes(pieces []byte) ([]Hash, error) {
	if len(pieces)%HashSize != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrMalformedPieceBuffer, len(pieces))
	}

	hashes := make([]Hash, 0, len(pieces)/HashSize)
	for chunk := range slices.Chunk(pieces, HashSize) {
		hashes = append(hashes, Hash(chunk))
	}

	return hashes, nil
}
