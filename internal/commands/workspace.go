package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/config"
	"github.com/folio-dev/folio/internal/gitops"
	"github.com/folio-dev/folio/internal/ledger"
	"github.com/folio-dev/folio/internal/store"
)

// workspace is an opened ledger directory: the config, the loaded ledger,
// and enough context to write both back.
type workspace struct {
	Dir    string
	Config *config.Config
	Ledger *ledger.Ledger
}

func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(abs, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%s is not a folio directory: %w", abs, err)
	}

	l, err := store.Load(filepath.Join(abs, cfg.Ledger.Path))
	if err != nil {
		return nil, err
	}

	return &workspace{Dir: abs, Config: cfg, Ledger: l}, nil
}

func (w *workspace) ledgerPath() string {
	return filepath.Join(w.Dir, w.Config.Ledger.Path)
}

// save writes the snapshot and, when auto-commit is on and the directory is
// a git repository with pending changes, commits it.
func (w *workspace) save(message string) error {
	if err := store.Save(w.ledgerPath(), w.Ledger); err != nil {
		return err
	}

	if !w.Config.Git.AutoCommit || !gitops.IsRepo(w.Dir) {
		return nil
	}
	changed, err := gitops.HasChanges(w.Dir)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if _, err := gitops.CommitLedger(w.Dir, message, w.Config.Git.AuthorName, w.Config.Git.AuthorEmail); err != nil {
		return fmt.Errorf("committing ledger: %w", err)
	}
	return nil
}

const flagDateFormat = "2006-01-02"

func parseFlagDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(flagDateFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}
