package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/planner-contacts/internal/outreach"
	"github.com/sells-group/planner-contacts/internal/resilience"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send outreach email to a recipient list",
	Long:  "Reads a CSV with email, subject, and body columns and sends one plain-text message per row over a single SMTP session.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("send"); err != nil {
			return err
		}

		input, _ := cmd.Flags().GetString("input")
		recipients, err := outreach.ReadRecipients(input)
		if err != nil {
			return err
		}
		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			zap.L().Info("dry run: recipients loaded", zap.Int("recipients", len(recipients)))
			return nil
		}

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		sender := outreach.NewSMTPSender(cfg.SMTP)
		defer func() {
			if cerr := sender.Close(); cerr != nil {
				zap.L().Warn("close smtp session", zap.Error(cerr))
			}
		}()

		mailer := outreach.NewMailer(sender, outreach.Options{
			Delay: time.Duration(cfg.SMTP.DelaySecs) * time.Second,
			Retry: resilience.FromRetryConfig(cfg.SMTP.MaxAttempts, 0),
		})

		summary, err := mailer.SendAll(ctx, recipients)
		if err != nil {
			return eris.Wrap(err, "send")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	sendCmd.Flags().StringP("input", "i", "emails.csv", "recipient CSV")
	sendCmd.Flags().Bool("dry-run", false, "load and validate recipients without sending")
	rootCmd.AddCommand(sendCmd)
}
