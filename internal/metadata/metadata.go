package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/danferreira/torrentinfo/internal/bencode"
)

type Metadata struct {
	Announce string
	Info     Info
}

type Info struct {
	Name        string
	PieceLength int64

	// Pieces is the raw concatenation of piece hashes, never text.
	Pieces      []byte
	PieceHashes []Hash

	// Length is nil when the info dict does not carry a single-file length.
	Length *int64

	InfoHash Hash

	// Raw is the info dict as decoded, extra keys included.
	Raw bencode.Value
}

type FileInfo struct {
	Path   string
	Length int64
}

// Parse reads a .torrent file and extracts its metadata.
func Parse(path string) (*Metadata, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m, err := ParseBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse torrent file %s: %w", path, err)
	}

	return m, nil
}

func ParseBytes(buf []byte) (*Metadata, error) {
	v, err := bencode.Decode(buf)
	if err != nil {
		return nil, err
	}

	return Extract(v)
}

// Extract projects a decoded torrent dict onto Metadata, checking every
// required field and its type.
func Extract(v bencode.Value) (*Metadata, error) {
	if v.Kind() != bencode.KindDict {
		return nil, wrongType("", bencode.KindDict)
	}

	announce, err := textField(v, "announce", "announce")
	if err != nil {
		return nil, err
	}

	info, ok := v.Lookup("info")
	if !ok {
		return nil, missing("info")
	}
	if info.Kind() != bencode.KindDict {
		return nil, wrongType("info", bencode.KindDict)
	}

	name, err := textField(info, "name", "info.name")
	if err != nil {
		return nil, err
	}

	pieceLength, err := intField(info, "piece length", "info.piece length")
	if err != nil {
		return nil, err
	}
	if pieceLength <= 0 {
		return nil, outOfRange("info.piece length", pieceLength)
	}

	piecesValue, ok := info.Lookup("pieces")
	if !ok {
		return nil, missing("info.pieces")
	}
	if piecesValue.Kind() != bencode.KindString {
		return nil, wrongType("info.pieces", bencode.KindString)
	}

	pieces := piecesValue.Bytes()
	hashes, err := SplitPieceHashes(pieces)
	if err != nil {
		return nil, err
	}

	var length *int64
	if _, ok := info.Lookup("length"); ok {
		n, err := intField(info, "length", "info.length")
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, outOfRange("info.length", n)
		}
		length = &n
	}

	return &Metadata{
		Announce: announce,
		Info: Info{
			Name:        name,
			PieceLength: pieceLength,
			Pieces:      pieces,
			PieceHashes: hashes,
			Length:      length,
			InfoHash:    InfoHash(info),
			Raw:         info,
		},
	}, nil
}

// Files lays the payload out under dir. Only the single-file layout is
// described by Info, so the result holds one entry.
func (m *Metadata) Files(dir string) []FileInfo {
	var length int64
	if m.Info.Length != nil {
		length = *m.Info.Length
	}

	return []FileInfo{{
		Path:   filepath.Join(dir, filepath.Base(m.Info.Name)),
		Length: length,
	}}
}

func (i *Info) TotalLength() int64 {
	if i.Length == nil {
		return 0
	}

	return *i.Length
}

func textField(dict bencode.Value, key, field string) (string, error) {
	v, ok := dict.Lookup(key)
	if !ok {
		return "", missing(field)
	}
	if v.Kind() != bencode.KindString {
		return "", wrongType(field, bencode.KindString)
	}

	b := v.Bytes()
	if !utf8.Valid(b) {
		return "", &SchemaError{Field: field, Err: ErrInvalidTextEncoding}
	}

	return string(b), nil
}

func intField(dict bencode.Value, key, field string) (int64, error) {
	v, ok := dict.Lookup(key)
	if !ok {
		return 0, missing(field)
	}
	if v.Kind() != bencode.KindInteger {
		return 0, wrongType(field, bencode.KindInteger)
	}

	return v.Int(), nil
}
