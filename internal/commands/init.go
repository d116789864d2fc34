package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/folio-dev/folio/internal/config"
	"github.com/folio-dev/folio/internal/gitops"
	"github.com/folio-dev/folio/internal/ledger"
	"github.com/folio-dev/folio/internal/model"
	"github.com/folio-dev/folio/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var singleEntry bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new folio ledger directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, name, !singleEntry)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "ledger name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().BoolVar(&singleEntry, "single-entry", false, "allow transactions with a single entry")

	return cmd
}

func runInit(dir, name string, requireDoubleEntry bool) error {
	dirs := []string{
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Ledger.RequireDoubleEntry = requireDoubleEntry
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	l := ledger.New(name)
	l.SetSettings(model.Settings{RequireDoubleEntry: requireDoubleEntry})
	if err := store.Save(filepath.Join(dir, cfg.Ledger.Path), l); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}

	gitignore := "exports/\n*.bak\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	if err := gitops.SetUser(dir, cfg.Git.AuthorName, cfg.Git.AuthorEmail); err != nil {
		return err
	}

	hash, err := gitops.CommitLedger(dir, "init: "+name, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Printf("Initialized ledger %q at %s (%s)\n", name, dir, hash)
	return nil
}
