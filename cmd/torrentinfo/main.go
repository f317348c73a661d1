package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"

	"github.com/danferreira/torrentinfo/internal/bencode"
	"github.com/danferreira/torrentinfo/internal/metadata"
	"github.com/danferreira/torrentinfo/internal/piece"
	"github.com/danferreira/torrentinfo/internal/render"
	"github.com/danferreira/torrentinfo/internal/storage"
	"github.com/schollz/progressbar/v3"
)

const usage = `usage: torrentinfo [-log-level level] <command> [arguments]

commands:
  decode <bencoded-text>     print the decoded value as JSON
  info <file.torrent>        print tracker, length, info hash and piece hashes
  verify [flags] <file.torrent>
                             hash the downloaded payload against the piece hashes
`

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("torrentinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(stderr, "invalid log level %q\n", *logLevel)
		return exitUsage
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	switch rest[0] {
	case "decode":
		return decodeCommand(rest[1:], stdout, stderr)
	case "info":
		return infoCommand(rest[1:], stdout, stderr)
	case "verify":
		return verifyCommand(ctx, rest[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", rest[0])
		fs.Usage()
		return exitUsage
	}
}

func decodeCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: torrentinfo decode <bencoded-text>")
		return exitUsage
	}

	v, err := bencode.Decode([]byte(args[0]))
	if err != nil {
		fmt.Fprintln(stderr, "error decoding bencoded value:", err)
		return exitFail
	}

	out, err := render.JSON(v)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	fmt.Fprintln(stdout, string(out))
	return exitOK
}

func infoCommand(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: torrentinfo info <file.torrent>")
		return exitUsage
	}

	m, err := metadata.Parse(args[0])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	if err := render.Info(stdout, m); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	return exitOK
}

func verifyCommand(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", "", "directory holding the payload (default: next to the torrent file)")
	workers := fs.Int("workers", 0, "pieces hashed in parallel (default: one per CPU)")
	progress := fs.Bool("progress", false, "show a progress bar on stderr")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: torrentinfo verify [-dir dir] [-workers n] [-progress] <file.torrent>")
		return exitUsage
	}

	path := fs.Arg(0)
	if *dir == "" {
		*dir = filepath.Dir(path)
	}

	m, err := metadata.Parse(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	pieces, err := piece.Plan(m)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	s, err := storage.Open(m.Files(*dir))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}
	defer s.Close()

	slog.Info("Verifying payload", "torrent", path, "pieces", len(pieces), "hash", m.Info.InfoHash)

	var bar *progressbar.ProgressBar
	if *progress {
		bar = progressbar.NewOptions(len(pieces),
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("verifying"),
			progressbar.OptionShowCount(),
		)
	}

	var failed []int
	v := piece.NewVerifier(s, piece.Config{Workers: *workers})
	bf, err := v.Verify(ctx, pieces, func(r piece.Result) {
		if !r.OK {
			failed = append(failed, r.Piece.Index)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	})
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(stderr)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFail
	}

	fmt.Fprintf(stdout, "Pieces: %d/%d verified\n", bf.Count(len(pieces)), len(pieces))

	if len(failed) > 0 {
		slices.Sort(failed)
		fmt.Fprintf(stdout, "Failed pieces: %v\n", failed)
		return exitFail
	}

	return exitOK
}
