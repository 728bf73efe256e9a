package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MattEddy/coterie/internal/config"
	"github.com/MattEddy/coterie/internal/match"
	"github.com/MattEddy/coterie/internal/model"
	"github.com/MattEddy/coterie/internal/store"
)

var (
	flagDB      string
	flagBackend string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "coterie",
	Short: "Coterie industry graph: companies, people, projects, and how they connect",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Path to the coterie.db database")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Store backend: sqlite, remote, or memory")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// newLogger builds the process logger; --verbose switches to debug
// console output.
func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopmentConfig().Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// DiscoverDB finds the database path using priority: flag > env >
// walk-up > XDG fallback. The fallback directory is created on first
// use; the database itself is created at open.
func DiscoverDB() (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	if envPath := os.Getenv("COTERIE_DB"); envPath != "" {
		return envPath, nil
	}

	if dir, err := os.Getwd(); err == nil {
		for {
			candidate := filepath.Join(dir, "coterie.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no database path (set COTERIE_DB or use --db): %w", err)
	}
	dir := filepath.Join(home, ".local", "share", "coterie")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return filepath.Join(dir, "coterie.db"), nil
}

// OpenStore builds the configured store with a loaded snapshot. The
// caller owns Close.
func OpenStore(cmd *cobra.Command) (store.Store, *zap.Logger, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if flagBackend != "" {
		cfg.Backend = config.Backend(flagBackend)
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		path, err := DiscoverDB()
		if err != nil {
			return nil, nil, err
		}
		st, err := store.OpenSQLite(path, logger)
		if err != nil {
			return nil, nil, err
		}
		return st, logger, nil
	case config.BackendRemote:
		st := store.NewRemote(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.HTTPTimeout, logger)
		if err := st.FetchAll(cmd.Context()); err != nil {
			st.Close()
			return nil, nil, err
		}
		return st, logger, nil
	case config.BackendMemory:
		return store.NewMemory(), logger, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// ResolveObject finds an object by full id, id prefix, exact name, or
// fuzzy name match. Ambiguous references list their candidates.
func ResolveObject(snap *store.Snapshot, reference string) (model.GraphObject, error) {
	if o, ok := snap.Object(reference); ok {
		return o, nil
	}

	// id prefix, at least 6 hex/dash chars
	if len(reference) >= 6 && isHexDash(reference) {
		var matches []model.GraphObject
		for _, o := range snap.Objects {
			if strings.HasPrefix(o.ID, strings.ToLower(reference)) {
				matches = append(matches, o)
			}
		}
		switch len(matches) {
		case 1:
			return matches[0], nil
		case 0:
		default:
			return model.GraphObject{}, ambiguousErr(reference, matches)
		}
	}

	// exact name, case-insensitive, must be unique
	var named []model.GraphObject
	for _, o := range snap.Objects {
		if strings.EqualFold(o.Name, reference) {
			named = append(named, o)
		}
	}
	switch len(named) {
	case 1:
		return named[0], nil
	case 0:
	default:
		return model.GraphObject{}, ambiguousErr(reference, named)
	}

	// fuzzy name
	names := make([]string, len(snap.Objects))
	for i, o := range snap.Objects {
		names[i] = o.Name
	}
	if m, ok := match.BestMatch(reference, names, match.DefaultThreshold); ok {
		for _, o := range snap.Objects {
			if o.Name == m.Candidate {
				return o, nil
			}
		}
	}

	return model.GraphObject{}, fmt.Errorf("object not found: %s", reference)
}

func ambiguousErr(reference string, matches []model.GraphObject) error {
	limit := len(matches)
	if limit > 10 {
		limit = 10
	}
	lines := make([]string, limit)
	for i := 0; i < limit; i++ {
		lines[i] = fmt.Sprintf("  %s %s (%s)", shortID(matches[i].ID), matches[i].Name, matches[i].Class)
	}
	return fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a full object ID instead.",
		reference, len(matches), strings.Join(lines, "\n"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func isHexDash(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == '-') {
			return false
		}
	}
	return true
}
