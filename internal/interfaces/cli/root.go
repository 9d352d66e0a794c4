package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lite-lake/dnswatch/internal/constants"
	"github.com/lite-lake/dnswatch/internal/infrastructure/logger"
)

var (
	ShowVersion bool
	Version     = "dev"
)

func newRootCommand(ctx *Context, logCfg *logger.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.AppName,
		Short: "Route 53 DNS change monitor",
		Long: "dnswatch snapshots every record of every Route 53 hosted zone, compares it with\n" +
			"the previous snapshot and posts added, modified and deleted records to Slack.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if ShowVersion {
				fmt.Fprintln(cmd.OutOrStdout(), Version)
				os.Exit(0)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd, ctx, logCfg)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&ctx.ConfigFile, "config", "c", "", "YAML configuration file")
	pf.StringVar(&ctx.EnvFile, "env-file", ctx.EnvFile, "dotenv file with environment overrides")
	pf.BoolVarP(&ShowVersion, "version", "v", false, "Show version information")

	f := rootCmd.Flags()
	f.BoolVar(&ctx.Test, "test", false, "Send a test message to Slack and exit")
	f.BoolVar(&ctx.Loop, "loop", false, "Run continuously, pausing --interval between runs")
	f.StringVar(&ctx.Interval, "interval", constants.DefaultInterval.String(), "Pause between runs in loop mode")
	f.StringVar(&ctx.StateFile, "state-file", "", "Snapshot file (default "+constants.DefaultStateFile+")")
	f.StringVar(&ctx.LogFile, "log-file", "", "Log file (default "+constants.DefaultLogFile+")")
	f.StringVar(&ctx.LastRunFile, "last-run-file", "", "Last run timestamp file (default "+constants.DefaultLastRunFile+")")
	f.StringVar(&ctx.WebhookURL, "webhook-url", "", "Slack incoming webhook URL (default $SLACK_WEBHOOK_URL)")
	rootCmd.MarkFlagsMutuallyExclusive("test", "loop")

	rootCmd.AddCommand(newDiffCommand(ctx, logCfg))
	return rootCmd
}

func Execute(logCfg *logger.Config) {
	if logCfg == nil {
		logCfg = logger.DefaultConfig()
	}
	rootCmd := newRootCommand(NewContext(), logCfg)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
