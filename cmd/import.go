package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/permitfile"
)

var (
	importHomeID   string
	importCSVPath  string
	importXLSXPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import external records",
}

var importPermitsCmd = &cobra.Command{
	Use:   "permits",
	Short: "Import a county permit export (CSV or XLSX) for a home",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			permits []model.PermitRow
			err     error
		)
		switch {
		case importCSVPath != "" && importXLSXPath != "":
			return eris.New("pass either --csv or --xlsx, not both")
		case importCSVPath != "":
			permits, err = permitfile.ParseCSVFile(importCSVPath, importHomeID)
		case importXLSXPath != "":
			permits, err = permitfile.ParseXLSX(importXLSXPath, importHomeID)
		default:
			return eris.New("one of --csv or --xlsx is required")
		}
		if err != nil {
			return err
		}
		if len(permits) == 0 {
			zap.L().Warn("no permit rows found in export")
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		inserted, err := st.InsertPermits(ctx, permits)
		if err != nil {
			return eris.Wrap(err, "insert permits")
		}

		zap.L().Info("permit import complete",
			zap.String("home_id", importHomeID),
			zap.Int("parsed", len(permits)),
			zap.Int("inserted", inserted),
			zap.String("file", strings.TrimSpace(importCSVPath+importXLSXPath)),
		)
		return nil
	},
}

func init() {
	importPermitsCmd.Flags().StringVar(&importHomeID, "home", "", "home ID (required)")
	importPermitsCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV permit export")
	importPermitsCmd.Flags().StringVar(&importXLSXPath, "xlsx", "", "path to XLSX permit export")
	_ = importPermitsCmd.MarkFlagRequired("home")

	importCmd.AddCommand(importPermitsCmd)
	rootCmd.AddCommand(importCmd)
}
