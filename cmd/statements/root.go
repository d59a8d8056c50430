package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"payrolldocs/internal/domain/company"
	"payrolldocs/internal/domain/statements"
	"payrolldocs/internal/platform/logger"
	"payrolldocs/internal/render"
)

type rootOptions struct {
	dbPath      string
	outDir      string
	logLevel    string
	concurrency int

	store *company.LocalStore
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Generate payroll statements from a local record database",
		Long: `statements renders salary sheets, EPF/ETF statements, payslips and
member registration forms from records kept in a local SQLite file.

Records are loaded with the import command and documents are written to the
output directory using the same file names the API serves.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Setup(logger.Config{Level: opts.logLevel, Format: "console", Output: cmd.ErrOrStderr()})
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.store == nil {
				return nil
			}
			return opts.store.Close()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "payroll.db", "SQLite database holding company records")
	cmd.PersistentFlags().StringVarP(&opts.outDir, "out", "o", ".", "directory documents are written to")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().IntVar(&opts.concurrency, "concurrency", 4, "renders in flight at once")

	cmd.AddCommand(
		newImportCmd(opts),
		newStatementCmd(opts),
		newPayslipCmd(opts),
		newPayslipsCmd(opts),
		newBundleCmd(opts),
		newAllCmd(opts),
		newMemberFormCmd(opts),
	)
	return cmd
}

func (o *rootOptions) openStore() (*company.LocalStore, error) {
	if o.store != nil {
		return o.store, nil
	}
	store, err := company.OpenLocal(o.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.dbPath, err)
	}
	o.store = store
	return store, nil
}

func (o *rootOptions) documents(log zerolog.Logger) (*statements.Service, error) {
	store, err := o.openStore()
	if err != nil {
		return nil, err
	}
	return statements.NewService(store, render.NewPDFRenderer(), statements.Options{
		Concurrency: o.concurrency,
		Logger:      log,
	}), nil
}

func (o *rootOptions) write(cmd *cobra.Command, name string, data []byte) error {
	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(o.outDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// deliver writes a generated document and reports degraded fields.
func (o *rootOptions) deliver(cmd *cobra.Command, log zerolog.Logger) func(statements.Document, error) error {
	return func(doc statements.Document, err error) error {
		if err != nil {
			return err
		}
		if n := len(doc.Degradations); n > 0 {
			log.Warn().Int("fields", n).Str("document", doc.Name).Msg("document printed with fallback values")
		}
		return o.write(cmd, doc.Name, doc.Data)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
