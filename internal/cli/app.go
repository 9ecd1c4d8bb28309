// Package cli is the interactive shell over the data layer. It exists for
// development and manual testing; the same services back the mobile
// client's presentation layer.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"platescout/internal/config"
	"platescout/internal/logging"
	"platescout/internal/remote"
	"platescout/internal/services"
	"platescout/internal/session"
	"platescout/internal/storage"
)

// App wires the configuration into a running service stack and drives a
// line-oriented command loop against it.
type App struct {
	cfg     *config.Config
	svc     *services.Services
	session *session.TokenSession
	log     logging.Logger

	in  *bufio.Reader
	out io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewText(os.Stderr, slog.LevelInfo)

	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	store := remote.NewHTTPStore(cfg.RemoteBaseURL, cfg.RemoteAPIKey)

	var blobs remote.Blobs
	if cfg.S3Bucket != "" {
		b, err := remote.NewS3Blobs(ctx, remote.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			// image loading and uploads degrade, everything else works
			log.Warn(ctx, "object store unavailable", "error", err)
		} else {
			blobs = b
		}
	}

	sess := session.NewTokenSession()

	return &App{
		cfg:     cfg,
		svc:     services.New(cfg, db, store, blobs, sess, log),
		session: sess,
		log:     log,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run reads commands until EOF or "exit". Background refreshes are drained
// before returning.
func (a *App) Run(ctx context.Context) {
	defer a.svc.Wait()

	fmt.Fprintln(a.out, "platescout shell, type 'help' for commands")

	for {
		fmt.Fprint(a.out, "> ")
		line, err := a.in.ReadString('\n')
		if err != nil {
			return
		}

		cmd, rest := splitCommand(line)
		if cmd == "" {
			continue
		}
		if cmd == "exit" || cmd == "quit" {
			return
		}

		if err := a.dispatch(ctx, cmd, rest); err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
	}
}

// splitCommand separates the command word from the rest of the line.
func splitCommand(line string) (cmd, rest string) {
	line = strings.TrimSpace(line)
	cmd, rest, _ = strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}
