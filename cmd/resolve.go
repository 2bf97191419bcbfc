package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/planner-contacts/internal/model"
	"github.com/sells-group/planner-contacts/internal/pipeline"
	"github.com/sells-group/planner-contacts/internal/sink"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Find emails for an existing contact sheet",
	Long:  "Reads a CSV or XLSX file in the output column layout, runs contact resolution over every row with a website, and writes the result.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyOutputFlags(cmd)
		if err := cfg.Validate("resolve"); err != nil {
			return err
		}

		input, _ := cmd.Flags().GetString("input")
		records, err := sink.Read(input)
		if err != nil {
			return err
		}
		out, err := sink.New(cfg.Output.Format, cfg.Output.Path)
		if err != nil {
			return err
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

		resolver, err := newResolver(session, cfg)
		if err != nil {
			return err
		}
		var r pipeline.Resolver = resolver
		if all, _ := cmd.Flags().GetBool("all"); !all {
			r = skipResolved{r}
		}

		p := pipeline.New(nil, nil, r, out, nil, pipeline.Options{ContactConcurrency: cfg.Contact.Concurrency})
		resolved := p.ResolveAll(ctx, records)
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := out.Write(resolved); err != nil {
			return err
		}

		zap.L().Info("resolve complete",
			zap.Int("records", len(resolved)),
			zap.Int("emails_found", model.CountEmails(resolved)),
			zap.String("path", out.Path()),
		)
		return nil
	},
}

// skipResolved leaves records that already carry an email untouched.
type skipResolved struct {
	next pipeline.Resolver
}

func (s skipResolved) Resolve(ctx context.Context, rec model.PlannerRecord) model.PlannerRecord {
	if rec.HasEmail() {
		return rec
	}
	return s.next.Resolve(ctx, rec)
}

func init() {
	resolveCmd.Flags().StringP("input", "i", "", "input CSV or XLSX (required)")
	resolveCmd.Flags().Bool("all", false, "re-resolve rows that already have an email")
	addOutputFlags(resolveCmd)
	_ = resolveCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(resolveCmd)
}
