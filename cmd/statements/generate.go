package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"payrolldocs/internal/domain/projection"
	"payrolldocs/internal/platform/logger"
)

type docFlags struct {
	employerNo string
	period     string
}

func (f *docFlags) bind(cmd *cobra.Command, withEmployer bool) {
	if withEmployer {
		cmd.Flags().StringVarP(&f.employerNo, "employer", "e", "", "employer number")
		_ = cmd.MarkFlagRequired("employer")
	}
	cmd.Flags().StringVarP(&f.period, "period", "p", "", "pay period, YYYY-MM")
	_ = cmd.MarkFlagRequired("period")
}

func newStatementCmd(opts *rootOptions) *cobra.Command {
	var flags docFlags
	var docType string
	cmd := &cobra.Command{
		Use:     "statement",
		Short:   "Render one salary, EPF or ETF statement",
		Example: `  statements statement -e A/12345 -p 2024-03 --type epf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := projection.DocType(docType)
			if doc == projection.DocPayslip || !doc.Valid() {
				return fmt.Errorf("--type must be salary, epf or etf")
			}
			log := logger.WithComponent("statement")
			svc, err := opts.documents(log)
			if err != nil {
				return err
			}
			return opts.deliver(cmd, log)(svc.Statement(commandContext(cmd), flags.employerNo, flags.period, doc))
		},
	}
	flags.bind(cmd, true)
	cmd.Flags().StringVarP(&docType, "type", "t", "salary", "statement type: salary, epf or etf")
	return cmd
}

func newPayslipCmd(opts *rootOptions) *cobra.Command {
	var flags docFlags
	var epfNo int
	cmd := &cobra.Command{
		Use:   "payslip",
		Short: "Render a single employee's payslip",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("payslip")
			svc, err := opts.documents(log)
			if err != nil {
				return err
			}
			return opts.deliver(cmd, log)(svc.Payslip(commandContext(cmd), flags.employerNo, flags.period, epfNo))
		},
	}
	flags.bind(cmd, true)
	cmd.Flags().IntVar(&epfNo, "epf", 0, "employee EPF number")
	_ = cmd.MarkFlagRequired("epf")
	return cmd
}

func newPayslipsCmd(opts *rootOptions) *cobra.Command {
	var flags docFlags
	var tiled bool
	cmd := &cobra.Command{
		Use:   "payslips",
		Short: "Render every payslip of a company, optionally four to a page",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("payslips")
			svc, err := opts.documents(log)
			if err != nil {
				return err
			}
			return opts.deliver(cmd, log)(svc.Payslips(commandContext(cmd), flags.employerNo, flags.period, tiled))
		},
	}
	flags.bind(cmd, true)
	cmd.Flags().BoolVar(&tiled, "tiled", false, "place four payslips on each A4 page")
	return cmd
}

func newBundleCmd(opts *rootOptions) *cobra.Command {
	var flags docFlags
	var printable bool
	cmd := &cobra.Command{
		Use:     "bundle",
		Short:   "Assemble every statement a company requires for a period",
		Example: `  statements bundle -e A/12345 -p 2024-03 --printable -o out/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("bundle")
			svc, err := opts.documents(log)
			if err != nil {
				return err
			}
			return opts.deliver(cmd, log)(svc.Bundle(commandContext(cmd), flags.employerNo, flags.period, printable))
		},
	}
	flags.bind(cmd, true)
	cmd.Flags().BoolVar(&printable, "printable", false, "portrait salary sheet and duplicate EPF/ETF copies")
	return cmd
}

func newAllCmd(opts *rootOptions) *cobra.Command {
	var flags docFlags
	var printable bool
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Assemble the bundles of every active company into one document",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("all")
			svc, err := opts.documents(log)
			if err != nil {
				return err
			}
			return opts.deliver(cmd, log)(svc.AllCompanies(commandContext(cmd), flags.period, printable))
		},
	}
	flags.bind(cmd, false)
	cmd.Flags().BoolVar(&printable, "printable", false, "portrait salary sheets and duplicate EPF/ETF copies")
	return cmd
}
