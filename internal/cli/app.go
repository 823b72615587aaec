package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/rcliao/sheria/internal/api"
	"github.com/rcliao/sheria/internal/auth"
	"github.com/rcliao/sheria/internal/chat"
	"github.com/rcliao/sheria/internal/config"
	"github.com/rcliao/sheria/internal/log"
	"github.com/rcliao/sheria/internal/store"
)

// app is everything a command needs, loaded from durable state.
type app struct {
	cfg    *config.Config
	blobs  store.Store
	chat   *chat.Store
	auth   *auth.Store
	client *api.Client
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	log.Init(cfg.LogLevel, cfg.LogPretty)

	var blobs store.Store
	if cfg.Ephemeral {
		blobs = store.NewMemoryStore()
	} else {
		s, err := store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		blobs = s
	}

	a := &app{cfg: cfg, blobs: blobs}
	a.chat = chat.NewStore(blobs, log.With("chat"))

	// The client reads the token from the auth store, and the auth store
	// logs in through the client.
	var authStore *auth.Store
	a.client = api.NewClient(cfg.APIURL, cfg.HTTPTimeout, tokenFunc(func() string {
		return authStore.AccessToken()
	}), log.With("api"))
	authStore = auth.NewStore(a.client, blobs, log.With("auth"))
	a.auth = authStore

	a.client.OnUnauthorized(func() {
		a.auth.Clear()
		fmt.Fprintln(os.Stderr, "session expired or invalid: run `sheria login` to sign in again")
	})

	if err := a.chat.Load(ctx); err != nil {
		blobs.Close()
		return nil, fmt.Errorf("load chat state: %w", err)
	}
	if err := a.auth.Load(ctx); err != nil {
		blobs.Close()
		return nil, fmt.Errorf("load auth state: %w", err)
	}

	log.Debug().Str("db", cfg.DBPath).Str("api_url", cfg.APIURL).Msg("state loaded")
	return a, nil
}

func (a *app) Close() error {
	return a.blobs.Close()
}

type tokenFunc func() string

func (f tokenFunc) AccessToken() string { return f() }

// readSecret prompts for a secret without echo when stdin is a terminal,
// otherwise reads one line from stdin.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// requireSecret reads a secret and rejects an empty one.
func requireSecret(prompt string) string {
	s, err := readSecret(prompt)
	if err != nil {
		exitErr("read password", err)
	}
	if s == "" {
		exitErr("read password", fmt.Errorf("password is required"))
	}
	return s
}
