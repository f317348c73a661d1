package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/danferreira/torrentinfo/internal/metadata"
)

type File struct {
	File   *os.File
	Path   string
	Length int64
}

// Storage is a read-only view of the payload files laid end to end.
type Storage struct {
	Files []File
}

func Open(files []metadata.FileInfo) (*Storage, error) {
	var sFiles []File

	for _, f := range files {
		file, err := os.Open(f.Path)
		if err != nil {
			closeAll(sFiles)
			return nil, fmt.Errorf("failed to open %s: %w", f.Path, err)
		}

		sFiles = append(sFiles, File{
			File:   file,
			Path:   f.Path,
			Length: f.Length,
		})
	}

	return &Storage{
		Files: sFiles,
	}, nil
}

func (s *Storage) Size() int64 {
	var size int64
	for _, f := range s.Files {
		size += f.Length
	}

	return size
}

// ReadAt fills buf from the payload starting at byte start. A file shorter
// on disk than its declared length yields io.ErrUnexpectedEOF.
func (s *Storage) ReadAt(buf []byte, start int64) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}

	var offset int64
	var n int
	end := start + int64(len(buf))

	for _, file := range s.Files {
		nextOffset := offset + file.Length
		if start >= nextOffset {
			offset += file.Length
			continue
		}

		actualStart := start - offset
		if actualStart < 0 {
			actualStart = 0
		}

		actualEnd := file.Length
		if end <= nextOffset {
			actualEnd = end - offset
		}

		amount := actualEnd - actualStart
		if amount <= 0 {
			offset += file.Length
			continue
		}

		m, err := file.File.ReadAt(buf[n:n+int(amount)], actualStart)
		n += m
		if err != nil && !errors.Is(err, io.EOF) {
			return n, err
		}

		if int64(m) < amount {
			return n, io.ErrUnexpectedEOF
		}

		if n == len(buf) {
			return n, nil
		}

		offset += file.Length
	}

	return n, io.EOF
}

func (s *Storage) Close() error {
	return closeAll(s.Files)
}

func closeAll(files []File) error {
	var err error
	for _, sf := range files {
		e := sf.File.Close()
		if e != nil && err == nil {
			// record the first error encountered
			err = e
		}
	}
	return err
}
