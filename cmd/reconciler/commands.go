package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cerebulb/jjm-asset-reconciler/config"
)

func newIngestCmd(cfg *config.Config, logger ectologger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <metadata.xlsx>",
		Short: "Load a master metadata workbook into the asset store",
		Long: `Loads a master metadata workbook. Rows already present (same reservoir and
village) are reset to Inactive; new rows are inserted as Inactive. Duplicate
rows within the file keep their first occurrence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cfg, logger, false)
			if err != nil {
				return err
			}
			defer a.shutdown(context.Background())

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			summary, err := a.engine.IngestMetadata(ctx, filepath.Base(args[0]), data)
			if err != nil {
				return err
			}
			fmt.Printf("inserted %d, updated %d, duplicates %d (%s)\n",
				summary.Inserted, summary.Updated, summary.Duplicates, summary.Elapsed)
			return nil
		},
	}
}

func newValidateCmd(cfg *config.Config, logger ectologger.Logger) *cobra.Command {
	var sessionID string
	var reportPath string

	cmd := &cobra.Command{
		Use:   "validate <verification.xlsx>",
		Short: "Validate a verification upload against stored assets",
		Long: `Matches each verification row against the stored metadata on the full
location key and marks matched assets Validated. Writes an annotated copy of
the upload with a Validation_Status column. The upload is kept under the
session so a later finalize can reuse it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			a, err := bootstrap(ctx, cfg, logger, false)
			if err != nil {
				return err
			}
			defer a.shutdown(context.Background())

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			summary, err := a.engine.Validate(ctx, sessionID, filepath.Base(args[0]), data)
			if err != nil {
				return err
			}

			if reportPath == "" {
				reportPath = reportFileName(args[0], "validation_report")
			}
			if err := os.WriteFile(reportPath, summary.Report, 0o644); err != nil {
				return err
			}

			fmt.Printf("session %s: validated %d, invalidated %d (%s)\n",
				sessionID, summary.Validated, summary.Invalidated, summary.Elapsed)
			fmt.Printf("report written to %s\n", reportPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session id (defaults to a new id)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Validation report output path")
	return cmd
}

func newFinalizeCmd(cfg *config.Config, logger ectologger.Logger) *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "finalize <session>",
		Short: "Provision tags, check topic traffic and set final statuses",
		Long: `For every Validated asset in the session's verification upload: provisions
historian tags, runs one batched topic communication check over MQTT, sets the
asset Active if any of its topics communicated (Inactive otherwise), rewrites
the region mapping documents, and writes the color-coded tag status report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx, cfg, logger, true)
			if err != nil {
				return err
			}
			defer a.shutdown(context.Background())

			summary, err := a.engine.Finalize(ctx, args[0])
			if err != nil {
				return err
			}

			if reportPath == "" {
				reportPath = fmt.Sprintf("tag_report_%s.xlsx", args[0])
			}
			if err := os.WriteFile(reportPath, summary.Report, 0o644); err != nil {
				return err
			}

			fmt.Printf("active %d, inactive %d, skipped %d (%s)\n",
				summary.Active, summary.Inactive, summary.SkippedAssets, summary.Elapsed)
			fmt.Printf("tags created %d, skipped %d, errors %d\n",
				len(summary.TagResult.Created), len(summary.TagResult.Skipped), len(summary.TagResult.Errors))
			fmt.Printf("report written to %s\n", reportPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "Tag status report output path")
	return cmd
}

func newMigrateCmd(cfg *config.Config, logger ectologger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dep := &postgresDependency{cfg: cfg, logger: logger}
			if err := dep.Start(ctx); err != nil {
				return err
			}
			defer dep.Stop(context.Background())
			return dep.migrate()
		},
	}
}

// reportFileName derives an output name next to the input file, e.g.
// uploads/batch1.xlsx -> uploads/validation_report_batch1.xlsx.
func reportFileName(inputPath, prefix string) string {
	dir := filepath.Dir(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", prefix, base))
}
