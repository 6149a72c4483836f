package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"wordclock.ai/internal/clock"
	"wordclock.ai/internal/overlay"
	"wordclock.ai/internal/persistence/indexdb"
)

type runtimeIndex interface {
	clock.MinuteIndex
	Close() error
	LoadSettings(ctx context.Context, fallback overlay.Settings) (overlay.Settings, bool, error)
	SaveSettings(ctx context.Context, s overlay.Settings) error
	RecentMinutes(ctx context.Context, limit int) ([]indexdb.MinuteRow, error)
	Stats() indexdb.IndexStats
}

func openRuntimeIndex(dataDir string, disableDB bool, logger *log.Logger) (runtimeIndex, error) {
	if disableDB {
		logger.Printf("index disabled; settings changes are not persisted")
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("WORDCLOCK_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		return indexdb.OpenSQLite(indexPath(dataDir))
	default:
		return nil, fmt.Errorf("unsupported WORDCLOCK_INDEX_BACKEND: %s", backend)
	}
}

func indexPath(dataDir string) string {
	return filepath.Join(dataDir, "index", "wordclock.sqlite")
}

// loadSettings reads the stored settings on top of fallback and writes the
// result back when the store was missing keys.
func loadSettings(ctx context.Context, idx runtimeIndex, fallback overlay.Settings, logger *log.Logger) (overlay.Settings, error) {
	st, complete, err := idx.LoadSettings(ctx, fallback)
	if err != nil {
		return fallback, err
	}
	if !complete {
		if err := idx.SaveSettings(ctx, st); err != nil {
			return st, err
		}
		logger.Printf("settings store incomplete; wrote active=%t word_color=%s", st.Active, st.Color.Hex())
	}
	return st, nil
}
