package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/kingrea/kanban/internal/config"
	"github.com/kingrea/kanban/internal/logbook"
	"github.com/kingrea/kanban/internal/persist"
	"github.com/kingrea/kanban/internal/session"
	"github.com/kingrea/kanban/internal/storage"
)

// environment is everything one command invocation needs, opened in
// dependency order and closed in reverse.
type environment struct {
	cfg     *config.Config
	log     *logbook.Logbook
	kv      storage.KV
	session *session.Session
}

func openEnvironment(opts *RootOptions) (*environment, error) {
	projectDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	dataDir := config.ResolveDataDir(projectDir, opts.Dir)
	if err := config.InitDataDir(dataDir); err != nil {
		return nil, err
	}
	cfg, err := config.NewConfig(projectDir, dataDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.OverrideBackend(opts.Storage); err != nil {
		return nil, err
	}
	if opts.NoMouse {
		cfg.DisableMouse()
	}

	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		return nil, err
	}
	kv, err := storage.Open(cfg.StorageBackend(), cfg.StateDir())
	if err != nil {
		lb.Close()
		return nil, err
	}

	adapter := persist.New(kv, cfg.StorageKey(), persist.WithLogbook(lb))
	return &environment{
		cfg:     cfg,
		log:     lb,
		kv:      kv,
		session: session.Open(adapter, session.WithLogbook(lb)),
	}, nil
}

func (e *environment) Close() error {
	return errors.Join(e.kv.Close(), e.log.Close())
}
