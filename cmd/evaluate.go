package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/engine"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

var (
	evaluateHomeID string
	evaluateState  string
	evaluateDryRun bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run a full lifecycle evaluation for one home",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		state, ok := model.ParseAdvisorState(evaluateState)
		if !ok {
			return eris.Errorf("unknown advisor state: %s", evaluateState)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		table, err := initBaseline()
		if err != nil {
			return err
		}

		eng := engine.New(st, table)
		result, err := eng.Evaluate(ctx, evaluateHomeID, engine.Options{
			AdvisorState: state,
			Persist:      !evaluateDryRun,
		})
		if err != nil {
			return eris.Wrap(err, "evaluate home")
		}

		zap.L().Info("evaluation complete",
			zap.String("home_id", evaluateHomeID),
			zap.Int("systems", len(result.Systems)),
			zap.String("narrative", string(result.Narrative.Tag)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateHomeID, "home", "", "home ID (required)")
	evaluateCmd.Flags().StringVar(&evaluateState, "state", "observing", "advisor state (intake|observing|planning|execution|suspended)")
	evaluateCmd.Flags().BoolVar(&evaluateDryRun, "dry-run", false, "skip snapshot persistence and resolution write-back")
	_ = evaluateCmd.MarkFlagRequired("home")
	rootCmd.AddCommand(evaluateCmd)
}
