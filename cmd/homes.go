package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
)

var homesCmd = &cobra.Command{
	Use:   "homes",
	Short: "Manage home records",
}

var homesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered homes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		homes, err := st.ListHomes(ctx)
		if err != nil {
			return eris.Wrap(err, "list homes")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(homes)
	},
}

var (
	addAddress     string
	addCity        string
	addState       string
	addYear        int
	addClimateZone string
	addCoastal     bool
	addFreezeThaw  bool
	addOccupants   int
)

var homesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a home",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		home, err := st.CreateHome(ctx, model.Home{
			Address:          addAddress,
			City:             addCity,
			State:            addState,
			ConstructionYear: addYear,
			ClimateZone:      addClimateZone,
			Coastal:          addCoastal,
			FreezeThaw:       addFreezeThaw,
			Occupants:        addOccupants,
		})
		if err != nil {
			return eris.Wrap(err, "create home")
		}

		zap.L().Info("home created", zap.String("home_id", home.ID))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(home)
	},
}

var (
	sysHomeID    string
	sysType      string
	sysMaterial  string
	sysStatement string
)

var homesAddSystemCmd = &cobra.Command{
	Use:   "add-system",
	Short: "Attach or update a tracked system on a home",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		systemType, ok := model.ParseSystemType(sysType)
		if !ok {
			return eris.Errorf("unknown system type: %s", sysType)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		system, err := st.UpsertSystem(ctx, model.HomeSystem{
			HomeID:         sysHomeID,
			SystemType:     systemType,
			Material:       sysMaterial,
			OwnerStatement: sysStatement,
		})
		if err != nil {
			return eris.Wrap(err, "upsert system")
		}

		zap.L().Info("system saved",
			zap.String("home_id", sysHomeID),
			zap.String("system_type", string(systemType)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(system)
	},
}

var (
	maintHomeID string
	maintType   string
	maintDate   string
	maintDesc   string
)

var homesLogServiceCmd = &cobra.Command{
	Use:   "log-service",
	Short: "Record a maintenance event for a system",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st2, ok := model.ParseSystemType(maintType)
		if !ok {
			return eris.Errorf("unknown system type: %s", maintType)
		}

		servicedAt := time.Now().UTC()
		if maintDate != "" {
			t, err := time.Parse("2006-01-02", maintDate)
			if err != nil {
				return eris.Wrapf(err, "parse service date %s", maintDate)
			}
			servicedAt = t.UTC()
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		event, err := st.AddMaintenanceEvent(ctx, model.MaintenanceEvent{
			HomeID:      maintHomeID,
			SystemType:  st2,
			ServicedAt:  servicedAt,
			Description: maintDesc,
		})
		if err != nil {
			return eris.Wrap(err, "add maintenance event")
		}

		zap.L().Info("maintenance event recorded",
			zap.String("home_id", maintHomeID),
			zap.String("system_type", string(st2)),
			zap.Time("serviced_at", servicedAt),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(event)
	},
}

func init() {
	homesAddCmd.Flags().StringVar(&addAddress, "address", "", "street address (required)")
	homesAddCmd.Flags().StringVar(&addCity, "city", "", "city")
	homesAddCmd.Flags().StringVar(&addState, "state", "", "state")
	homesAddCmd.Flags().IntVar(&addYear, "year", 0, "construction year (required)")
	homesAddCmd.Flags().StringVar(&addClimateZone, "climate", "", "climate zone (hot_humid|hot_dry|cold|temperate)")
	homesAddCmd.Flags().BoolVar(&addCoastal, "coastal", false, "within coastal salt-air range")
	homesAddCmd.Flags().BoolVar(&addFreezeThaw, "freeze-thaw", false, "subject to freeze-thaw cycling")
	homesAddCmd.Flags().IntVar(&addOccupants, "occupants", 0, "occupant count (0 = unknown)")
	_ = homesAddCmd.MarkFlagRequired("address")
	_ = homesAddCmd.MarkFlagRequired("year")

	homesAddSystemCmd.Flags().StringVar(&sysHomeID, "home", "", "home ID (required)")
	homesAddSystemCmd.Flags().StringVar(&sysType, "type", "", "system type (required)")
	homesAddSystemCmd.Flags().StringVar(&sysMaterial, "material", "", "material or variant, e.g. asphalt, tank")
	homesAddSystemCmd.Flags().StringVar(&sysStatement, "statement", "", "owner statement about install or replacement")
	_ = homesAddSystemCmd.MarkFlagRequired("home")
	_ = homesAddSystemCmd.MarkFlagRequired("type")

	homesLogServiceCmd.Flags().StringVar(&maintHomeID, "home", "", "home ID (required)")
	homesLogServiceCmd.Flags().StringVar(&maintType, "type", "", "system type (required)")
	homesLogServiceCmd.Flags().StringVar(&maintDate, "date", "", "service date YYYY-MM-DD (default today)")
	homesLogServiceCmd.Flags().StringVar(&maintDesc, "description", "", "what was serviced")
	_ = homesLogServiceCmd.MarkFlagRequired("home")
	_ = homesLogServiceCmd.MarkFlagRequired("type")

	homesCmd.AddCommand(homesListCmd, homesAddCmd, homesAddSystemCmd, homesLogServiceCmd)
	rootCmd.AddCommand(homesCmd)
}
