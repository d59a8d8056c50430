package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"payrolldocs/internal/domain/company"
	"payrolldocs/internal/platform/logger"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <records.json>",
		Short: "Load company records into the local database",
		Long: `import reads a JSON company record, or an array of them, and stores each
one in the local database. A company already present is replaced together
with its employees and payments.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("import")
			companies, err := readCompanies(args[0])
			if err != nil {
				return err
			}
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			for _, c := range companies {
				if c.EmployerNo == "" {
					return fmt.Errorf("%s: company %q has no employer number", args[0], c.Name)
				}
				if err := store.Save(commandContext(cmd), c); err != nil {
					return fmt.Errorf("save %s: %w", c.EmployerNo, err)
				}
				log.Info().Str("employer_no", c.EmployerNo).Int("employees", len(c.Employees)).Msg("company imported")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d companies\n", len(companies))
			return nil
		},
	}
}

func readCompanies(path string) ([]company.Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var companies []company.Company
		if err := json.Unmarshal(data, &companies); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return companies, nil
	}
	var c company.Company
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []company.Company{c}, nil
}
