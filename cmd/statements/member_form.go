package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"payrolldocs/internal/domain/memberform"
)

func newMemberFormCmd(opts *rootOptions) *cobra.Command {
	var layoutPath, templatePath string
	cmd := &cobra.Command{
		Use:   "member-form <request.json>",
		Short: "Fill an EPF member registration form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var req memberform.Request
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			svc, err := memberform.Load(layoutPath, templatePath)
			if err != nil {
				return err
			}
			pdf, err := svc.Generate(commandContext(cmd), req)
			if err != nil {
				return err
			}
			return opts.write(cmd, strings.TrimSpace(req.FullName)+" - Member Form.pdf", pdf)
		},
	}
	cmd.Flags().StringVar(&layoutPath, "layout", "", "form layout YAML (defaults to the built-in layout)")
	cmd.Flags().StringVar(&templatePath, "template", "", "form template PDF (defaults to a blank form)")
	return cmd
}
