package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/frahmantamala/ldc-construction/internal/audit"
	auditPostgres "github.com/frahmantamala/ldc-construction/internal/audit/postgres"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"github.com/frahmantamala/ldc-construction/pkg/logger"
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log maintenance",
}

var (
	exportFormat   string
	exportOutput   string
	exportAction   string
	exportResource string
	exportCG       string
	exportUser     string
	exportFrom     string
	exportTo       string
)

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write matching audit entries to a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := audit.ParseExportFormat(exportFormat)
		if err != nil {
			return err
		}
		start, err := audit.ParseDate(exportFrom, false)
		if err != nil {
			return err
		}
		end, err := audit.ParseDate(exportTo, true)
		if err != nil {
			return err
		}

		cfg, err := setup()
		if err != nil {
			return err
		}
		lg := logger.LoggerWrapper()

		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		gdb, err := initGorm(db)
		if err != nil {
			return err
		}

		repo := auditPostgres.NewAuditRepository(gdb)
		svc := audit.NewService(repo, audit.NewRecorder(audit.NewSyncSink(repo, lg), lg), lg)

		// Operator exports run with system scope and no acting user.
		system := tenancy.NewScope("", tenancy.RoleSuperAdmin, "", "", "", "")
		result, err := svc.Export(context.Background(), system, audit.Query{
			UserID:              exportUser,
			Action:              audit.Action(exportAction),
			Resource:            audit.Resource(exportResource),
			ConstructionGroupID: exportCG,
			StartDate:           start,
			EndDate:             end,
		}, format)
		if err != nil {
			return err
		}

		out := exportOutput
		if out == "" {
			out = result.Filename
		}
		if err := os.WriteFile(out, result.Data, 0o600); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Printf("wrote %d entries to %s\n", result.Count, out)
		return nil
	},
}

func init() {
	f := auditExportCmd.Flags()
	f.StringVarP(&exportFormat, "format", "f", "csv", "csv or xlsx")
	f.StringVarP(&exportOutput, "out", "o", "", "output file (defaults to a timestamped name)")
	f.StringVar(&exportAction, "action", "", "filter by action")
	f.StringVar(&exportResource, "resource", "", "filter by resource")
	f.StringVar(&exportCG, "construction-group", "", "filter by construction group id on either side")
	f.StringVar(&exportUser, "user", "", "filter by acting user id")
	f.StringVar(&exportFrom, "from", "", "start date, YYYY-MM-DD")
	f.StringVar(&exportTo, "to", "", "end date, YYYY-MM-DD, inclusive")

	auditCmd.AddCommand(auditExportCmd)
}
