package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/planner-contacts/internal/model"
	"github.com/sells-group/planner-contacts/internal/sink"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Walk the directory only and print listing stubs as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		start, _ := cmd.Flags().GetInt("start-page")
		maxPage, _ := cmd.Flags().GetInt("max-page")
		if !cmd.Flags().Changed("start-page") {
			start = cfg.Directory.StartPage
		}
		if !cmd.Flags().Changed("max-page") {
			maxPage = cfg.Directory.MaxPage
		}
		if start >= maxPage {
			return eris.Errorf("discover: start page %d must be below max page %d", start, maxPage)
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		session, err := initBrowser(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := session.Close(); cerr != nil {
				zap.L().Warn("close browser", zap.Error(cerr))
			}
		}()

		stubs, err := newWalker(session, cfg).Discover(ctx, start, maxPage)
		if err != nil {
			return eris.Wrap(err, "discover")
		}

		return sink.WriteCSV(os.Stdout, stubRecords(stubs))
	},
}

func stubRecords(stubs []model.ListingStub) []model.PlannerRecord {
	records := make([]model.PlannerRecord, len(stubs))
	for i, s := range stubs {
		records[i] = model.NewPlannerRecord(s)
	}
	return records
}

func init() {
	discoverCmd.Flags().Int("start-page", 0, "first directory page (default from config)")
	discoverCmd.Flags().Int("max-page", 0, "exclusive upper page bound (default from config)")
	rootCmd.AddCommand(discoverCmd)
}
