package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lite-lake/dnswatch/internal/application/orchestrator"
	"github.com/lite-lake/dnswatch/internal/config"
	"github.com/lite-lake/dnswatch/internal/domain/contract"
	"github.com/lite-lake/dnswatch/internal/domain/retry"
	"github.com/lite-lake/dnswatch/internal/domain/service"
	"github.com/lite-lake/dnswatch/internal/infrastructure/logger"
	"github.com/lite-lake/dnswatch/internal/infrastructure/notify"
	"github.com/lite-lake/dnswatch/internal/infrastructure/state"
	"github.com/lite-lake/dnswatch/internal/providers/dns"
)

func runMonitor(cmd *cobra.Command, ctx *Context, logCfg *logger.Config) error {
	cfg, err := ctx.LoadConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(true); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logCfg.FilePath = cfg.LogFile
	closer, err := logger.Init(logCfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.L()
	log.Info("route53 monitor started", "state_file", cfg.StateFile, "log_file", cfg.LogFile)

	monitor, err := buildMonitor(runCtx, cfg, !ctx.Test)
	if err != nil {
		return err
	}

	switch {
	case ctx.Test:
		fmt.Fprintln(cmd.OutOrStdout(), "Sending test message to Slack...")
		return monitor.Probe(runCtx)
	case ctx.Loop:
		fmt.Fprintf(cmd.OutOrStdout(), "Running in loop mode every %s...\n", cfg.Interval)
		return monitor.Loop(runCtx, cfg.Interval)
	default:
		result, err := monitor.RunOnce(runCtx)
		if err != nil {
			return err
		}
		if result.NotifyErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error sending Slack notification: %v\n", result.NotifyErr)
		}
		log.Info("route53 monitor completed successfully")
		return nil
	}
}

// buildMonitor wires the collaborators from cfg. withSource is false for the
// probe, which never lists records and must not depend on AWS credentials.
func buildMonitor(ctx context.Context, cfg *config.Config, withSource bool) (*orchestrator.Monitor, error) {
	retryOpts := []retry.Option{
		retry.WithMaxAttempts(cfg.Retry.MaxAttempts),
		retry.WithInitialDelay(cfg.Retry.InitialDelay),
	}

	var source contract.RecordSource
	if withSource {
		r53, err := dns.NewRoute53SourceFromConfig(ctx, cfg.AWS.Region, cfg.AWS.Profile, dns.WithRetry(retryOpts...))
		if err != nil {
			return nil, err
		}
		source = r53
	}
	notifier := notify.NewSlackWebhook(cfg.WebhookURL, cfg.HTTPTimeout, notify.WithRetry(retryOpts...))

	return orchestrator.NewMonitor(
		source,
		state.NewFileStore(cfg.StateFile),
		notifier,
		service.NewDifferService(),
		orchestrator.Options{LastRunFile: cfg.LastRunFile},
	), nil
}
