package piece

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/danferreira/torrentinfo/internal/bitfield"
	"golang.org/x/sync/errgroup"
)

// Source is the payload a Verifier reads pieces from.
type Source interface {
	io.ReaderAt
	Size() int64
}

type Config struct {
	// Workers bounds how many pieces are hashed at once. Zero means one
	// per CPU.
	Workers int
}

type Result struct {
	Piece Piece
	OK    bool
	Err   error
}

type Verifier struct {
	storage Source
	workers int
}

func NewVerifier(storage Source, cfg Config) *Verifier {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Verifier{storage: storage, workers: workers}
}

// Verify hashes every piece against its expected hash and returns the set
// of pieces that matched. A piece that cannot be read counts as bad.
// onResult, if set, is called once per checked piece, never concurrently.
func (v *Verifier) Verify(ctx context.Context, pieces []Piece, onResult func(Result)) (bitfield.Bitfield, error) {
	size := 0
	for _, p := range pieces {
		size = max(size, p.Index+1)
	}
	bf := bitfield.New(size)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)

	for _, p := range pieces {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := v.check(p)

			mu.Lock()
			defer mu.Unlock()

			if res.OK {
				bf.SetPiece(p.Index)
			} else {
				slog.Debug("piece failed verification", "index", p.Index, "error", res.Err)
			}

			if onResult != nil {
				onResult(res)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return bf, err
	}

	return bf, ctx.Err()
}

func (v *Verifier) check(p Piece) Result {
	if p.Begin < 0 || p.Length < 0 {
		return Result{Piece: p, Err: fmt.Errorf("%w: begin %d, length %d", ErrInvalidPiece, p.Begin, p.Length)}
	}

	// checked before allocating so a bogus length cannot outgrow the payload
	if p.Begin > v.storage.Size()-int64(p.Length) {
		return Result{Piece: p, Err: io.ErrUnexpectedEOF}
	}

	buf := make([]byte, p.Length)

	n, err := v.storage.ReadAt(buf, p.Begin)
	if n < len(buf) {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Result{Piece: p, Err: err}
	}

	return Result{Piece: p, OK: checkIntegrity(p, buf)}
}

func checkIntegrity(p Piece, data []byte) bool {
	return sha1.Sum(data) == p.Hash
}
