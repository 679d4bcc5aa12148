package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkwell/app/docstore"
	"inkwell/app/docstore/badgerstore"
	"inkwell/app/docstore/memstore"
	"inkwell/app/docstore/pgstore"
	"inkwell/app/docstore/sqlitestore"
	"inkwell/config"

	"github.com/spf13/cobra"
)

var errCancelled = errors.New("operation cancelled")

// NewDBCommand groups the database maintenance commands.
func NewDBCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}

	var yes bool
	cmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initDB(cmd, opts.Config.Store)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clean",
		Short: "Remove every post and comment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return clean(cmd, opts.Config.Store, yes)
		},
	})

	var backupDir string
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the badger database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return backup(cmd, opts.Config.Store, backupDir)
		},
	}
	backupCmd.Flags().StringVar(&backupDir, "dir", "data/backups", "directory for backup files")
	cmd.AddCommand(backupCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the badger database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return restore(cmd, opts.Config.Store, args[0], yes)
		},
	})

	return cmd
}

// confirm asks a yes/no question on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}

func initDB(cmd *cobra.Command, cfg config.StoreConfig) error {
	out := cmd.OutOrStdout()
	if cfg.Driver == config.DriverMemory {
		fmt.Fprintln(out, "The memory driver has nothing to initialize")
		return nil
	}
	if cfg.Driver == config.DriverBadger && storeExists(cfg) {
		fmt.Fprintln(out, "Database already exists. Use 'db clean' first if you want to reinitialize.")
		return nil
	}

	db, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	fmt.Fprintln(out, "Database initialized successfully")
	return nil
}

// truncater is implemented by the SQL backends.
type truncater interface {
	Truncate(ctx context.Context) error
}

func clean(cmd *cobra.Command, cfg config.StoreConfig, yes bool) error {
	out := cmd.OutOrStdout()
	if cfg.Driver == config.DriverMemory {
		fmt.Fprintln(out, "The memory driver keeps nothing to clean")
		return nil
	}
	if !storeExists(cfg) {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}
	if !yes && !confirm(cmd, "Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}

	db, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := dropAll(cmd.Context(), db.Backend()); err != nil {
		return fmt.Errorf("clean database: %w", err)
	}
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

func dropAll(ctx context.Context, backend docstore.Backend) error {
	switch b := backend.(type) {
	case *badgerstore.Backend:
		return b.DropAll()
	case truncater:
		return b.Truncate(ctx)
	case *memstore.Backend:
		b.Clear()
		return nil
	default:
		return fmt.Errorf("backend %T cannot be cleaned", backend)
	}
}

var (
	_ truncater = (*sqlitestore.Backend)(nil)
	_ truncater = (*pgstore.Backend)(nil)
)

func requireBadger(cfg config.StoreConfig, op string) error {
	if cfg.Driver != config.DriverBadger {
		return fmt.Errorf("%s is only supported for the badger driver (configured: %s)", op, cfg.Driver)
	}
	return nil
}

func backup(cmd *cobra.Command, cfg config.StoreConfig, dir string) error {
	if err := requireBadger(cfg, "backup"); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !storeExists(cfg) {
		fmt.Fprintln(out, "No database exists to backup")
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	store, err := badgerstore.Open(cfg.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	f, err := os.Create(backupFile)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		return fmt.Errorf("backup database: %w", err)
	}
	fmt.Fprintf(out, "Database backed up successfully to %s\n", backupFile)
	return nil
}

func restore(cmd *cobra.Command, cfg config.StoreConfig, backupFile string, yes bool) error {
	if err := requireBadger(cfg, "restore"); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat backup file: %w", err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	if storeExists(cfg) {
		if !yes && !confirm(cmd, "Existing database found. Do you want to replace it?") {
			fmt.Fprintln(out, "Operation cancelled")
			return errCancelled
		}
		if err := os.RemoveAll(cfg.Path); err != nil {
			return fmt.Errorf("remove existing database: %w", err)
		}
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}

	store, err := badgerstore.Open(cfg.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := loadBackup(store, f); err != nil {
		return fmt.Errorf("restore database: %w", err)
	}
	fmt.Fprintln(out, "Database restored successfully")
	return nil
}

// loadBackup turns a panic from a corrupt backup stream into an error.
func loadBackup(store *badgerstore.Backend, r io.Reader) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic occurred during restore: %v", p)
		}
	}()
	return store.Restore(r)
}
