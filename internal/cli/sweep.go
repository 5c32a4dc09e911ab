package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"parent-care-assistant/internal/app"
)

func newSweepCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Queue due reminders once",
		Long: `Sweep looks for overdue actions, calls left open for over an hour and parents
who have not been called within their contact interval, and queues one
reminder for each. Reminders already queued in the last 24 hours are skipped.
Needs postgres.url; events go to NATS when nats.url is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, l, err := root.load()
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errors.New("sweep needs postgres.url")
			}

			ctx := cmd.Context()
			a, err := app.Build(ctx, cfg, l, app.Options{Name: "carectl"})
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Notification.Sweep(ctx, time.Now())
			if err != nil {
				return err
			}
			if a.Broker != nil {
				if err := a.Broker.Flush(ctx); err != nil {
					l.Warnf(ctx, "carectl sweep: flush events: %v", err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "inserted=%d action_due=%d call_incomplete=%d periodic=%d skipped=%d\n",
				out.Inserted, out.ActionDue, out.CallIncomplete, out.Periodic, out.Skipped)
			return nil
		},
	}
}
