// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pdiddy/bibrename/internal/bib"
	"github.com/pdiddy/bibrename/internal/history"
	"github.com/pdiddy/bibrename/internal/logging"
	"github.com/pdiddy/bibrename/pkg/types"
)

var errNoLibrary = errors.New("no library configured: pass --library or set library in bibrename.yaml")

// session is the loaded state a command works on.
type session struct {
	cfg    types.Config
	logger *slog.Logger
}

func (a *app) session(cmd *cobra.Command) (*session, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if cfg.Rename.Library == "" {
		return nil, errNoLibrary
	}
	return &session{cfg: cfg, logger: logger}, nil
}

// historyPath returns the configured journal path or the default one next
// to the library.
func (s *session) historyPath() string {
	if s.cfg.Rename.History != "" {
		return s.cfg.Rename.History
	}
	return history.DefaultPath(s.cfg.Rename.Library)
}

func (s *session) openHistory() (*history.Store, error) {
	store, err := history.Open(s.historyPath())
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return store, nil
}

// lockLibrary takes the library lock and loads the library. The returned
// function releases the lock.
func (s *session) lockLibrary() (*bib.Library, func(), error) {
	unlock, err := bib.Lock(s.cfg.Rename.Library)
	if err != nil {
		return nil, nil, fmt.Errorf("locking %s: %w", s.cfg.Rename.Library, err)
	}
	release := func() {
		if err := unlock(); err != nil {
			s.logger.Warn("releasing library lock", slog.String("error", err.Error()))
		}
	}

	lib, err := bib.Load(s.cfg.Rename.Library)
	if err != nil {
		release()
		return nil, nil, err
	}
	return lib, release, nil
}
