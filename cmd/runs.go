package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/planner-contacts/internal/model"
	"github.com/sells-group/planner-contacts/internal/monitoring"
	"github.com/sells-group/planner-contacts/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect scrape run history",
	Long:  "Commands for listing, viewing, and health-checking recorded scrape runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scrape runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		asYAML, _ := cmd.Flags().GetBool("yaml")
		return writeRun(os.Stdout, run, asYAML)
	},
}

// -- runs check --

var runsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate recent run health and send alerts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if hours, _ := cmd.Flags().GetInt("lookback"); hours > 0 {
			cfg.Monitoring.LookbackWindowHours = hours
		}
		checker := monitoring.NewChecker(
			monitoring.NewCollector(st),
			monitoring.NewAlerter(cfg.Monitoring),
			cfg.Monitoring,
		)
		snap, alerts, err := checker.Check(ctx)
		if err != nil {
			return eris.Wrap(err, "runs check")
		}

		formatHealth(os.Stdout, snap, alerts)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (running, complete, failed)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsShowCmd.Flags().Bool("yaml", false, "print YAML instead of JSON")

	runsCheckCmd.Flags().Int("lookback", 0, "lookback window in hours (default from config)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsCheckCmd)
	rootCmd.AddCommand(runsCmd)
}

// writeRun encodes a run as indented JSON or YAML.
func writeRun(out io.Writer, run *model.Run, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(run); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(run)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPAGES\tSTATUS\tRECORDS\tEMAILS\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t-----\t------\t-------\t------\t-------\t--------")

	for _, r := range runs {
		dur := r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second).String()

		_, _ = fmt.Fprintf(w, "%s\t%d-%d\t%s\t%d\t%d\t%s\t%s\n",
			truncateID(r.ID),
			r.StartPage,
			r.MaxPage,
			r.Status,
			r.Records,
			r.EmailsFound,
			r.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// formatHealth writes a run health snapshot and any triggered alerts to w.
func formatHealth(out io.Writer, snap *monitoring.MetricsSnapshot, alerts []monitoring.Alert) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Window:\t%dh\n", snap.LookbackHours)
	_, _ = fmt.Fprintf(w, "Runs:\t%d\n", snap.RunsTotal)
	_, _ = fmt.Fprintf(w, "  Complete:\t%d\n", snap.RunsComplete)
	_, _ = fmt.Fprintf(w, "  Failed:\t%d\n", snap.RunsFailed)
	_, _ = fmt.Fprintf(w, "  Running:\t%d\n", snap.RunsRunning)
	_, _ = fmt.Fprintf(w, "Records:\t%d\n", snap.Records)
	_, _ = fmt.Fprintf(w, "Website yield:\t%.1f%%\n", snap.WebsiteYield*100)
	_, _ = fmt.Fprintf(w, "Email yield:\t%.1f%%\n", snap.EmailYield*100)
	if !snap.LastCompleteAt.IsZero() {
		_, _ = fmt.Fprintf(w, "Last complete:\t%s\n", snap.LastCompleteAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()

	if len(alerts) == 0 {
		_, _ = fmt.Fprintln(out, "No alerts.")
		return
	}
	for _, a := range alerts {
		_, _ = fmt.Fprintf(out, "[%s] %s\n", a.Severity, a.Message)
	}
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
