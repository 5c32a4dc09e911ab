// Package cli implements carectl, the operator command line.
package cli

import (
	"github.com/spf13/cobra"

	"parent-care-assistant/config"
	"parent-care-assistant/pkg/log"
)

type rootOptions struct {
	cfgFile string
	verbose bool
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "carectl",
		Short: "Parent care assistant operator tool",
		Long: `carectl runs the parent care pipelines from the command line.

It can extract follow-up schedules from a saved call transcript without any
server, run one notification sweep against the configured database, and issue
the Google Calendar token used for calendar sync.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default: ./config/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newExtractCmd(opts), newSweepCmd(opts), newCalendarAuthCmd(opts))
	return root
}

// Execute runs carectl with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) load() (*config.Config, log.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.cfgFile != "" {
		cfg, err = config.LoadFile(o.cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	if !o.verbose {
		return cfg, log.NewNop(), nil
	}
	return cfg, log.Init(log.ZapConfig{
		Level:    cfg.Logger.Level,
		Mode:     cfg.Logger.Mode,
		Encoding: "console",
	}), nil
}
