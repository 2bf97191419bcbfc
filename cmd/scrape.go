package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/planner-contacts/internal/pipeline"
	"github.com/sells-group/planner-contacts/internal/sink"
	"github.com/sells-group/planner-contacts/internal/store"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the directory end to end and write the contact sheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyOutputFlags(cmd)
		if v, _ := cmd.Flags().GetInt("start-page"); cmd.Flags().Changed("start-page") {
			cfg.Directory.StartPage = v
		}
		if v, _ := cmd.Flags().GetInt("max-page"); cmd.Flags().Changed("max-page") {
			cfg.Directory.MaxPage = v
		}
		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		out, err := sink.New(cfg.Output.Format, cfg.Output.Path)
		if err != nil {
			return err
		}

		var st store.Store
		if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		session, err := initBrowser(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := session.Close(); cerr != nil {
				zap.L().Warn("close browser", zap.Error(cerr))
			}
		}()

		resolver, err := newResolver(session, cfg)
		if err != nil {
			return err
		}

		p := pipeline.New(newWalker(session, cfg), newExtractor(session, cfg), resolver, out, st, pipeline.Options{
			StartPage:          cfg.Directory.StartPage,
			MaxPage:            cfg.Directory.MaxPage,
			ProfileConcurrency: cfg.Profile.Concurrency,
			ContactConcurrency: cfg.Contact.Concurrency,
		})

		result, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "scrape")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// applyOutputFlags overrides output config from --output and --format.
func applyOutputFlags(cmd *cobra.Command) {
	if v, _ := cmd.Flags().GetString("output"); cmd.Flags().Changed("output") {
		cfg.Output.Path = v
	}
	if v, _ := cmd.Flags().GetString("format"); cmd.Flags().Changed("format") {
		cfg.Output.Format = v
	}
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output file path (default from config)")
	cmd.Flags().String("format", "", "output format: csv or xlsx (default from config)")
}

func init() {
	scrapeCmd.Flags().Int("start-page", 0, "first directory page (default from config)")
	scrapeCmd.Flags().Int("max-page", 0, "exclusive upper page bound (default from config)")
	scrapeCmd.Flags().Bool("no-store", false, "skip recording the run in the store")
	addOutputFlags(scrapeCmd)
	rootCmd.AddCommand(scrapeCmd)
}
