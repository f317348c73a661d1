// Package render turns decoded values and torrent metadata into the text
// printed by the command-line tools.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/danferreira/torrentinfo/internal/bencode"
	"github.com/danferreira/torrentinfo/internal/metadata"
)

// JSON renders v as a single line of JSON. Byte strings that are not valid
// UTF-8 become null; dict entries with such keys are dropped. Markup
// characters are written as is.
func JSON(v bencode.Value) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(toJSON(v)); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func toJSON(v bencode.Value) any {
	switch v.Kind() {
	case bencode.KindString:
		b := v.Bytes()
		if !utf8.Valid(b) {
			return nil
		}
		return string(b)
	case bencode.KindInteger:
		return v.Int()
	case bencode.KindList:
		out := make([]any, 0, v.Len())
		for _, item := range v.Items() {
			out = append(out, toJSON(item))
		}
		return out
	case bencode.KindDict:
		out := make(map[string]any, v.Len())
		for _, e := range v.Entries() {
			if !utf8.Valid(e.Key) {
				continue
			}
			out[string(e.Key)] = toJSON(e.Value)
		}
		return out
	}

	return nil
}

// Info writes the tracker, length, info hash, piece length and one piece
// hash per line.
func Info(w io.Writer, m *metadata.Metadata) error {
	length := "unknown"
	if m.Info.Length != nil {
		length = fmt.Sprint(*m.Info.Length)
	}

	if _, err := fmt.Fprintf(w, "Tracker URL: %s\nLength: %s\nInfo Hash: %s\nPiece Length: %d\nPiece Hashes:\n",
		m.Announce, length, m.Info.InfoHash, m.Info.PieceLength); err != nil {
		return err
	}

	for _, h := range m.Info.PieceHashes {
		if _, err := fmt.Fprintln(w, h); err != nil {
			return err
		}
	}

	return nil
}
