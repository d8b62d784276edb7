// Command sitewatch polls a fixed list of HTTP sites and emails the
// responsible admin whenever a site cannot be reached.
//
// Usage:
//
//	sitewatch [config-file] [--debug]   # watch until SIGINT/SIGTERM
//	sitewatch validate [config-file]    # check a config file and exit
//	sitewatch version
//
// The config file defaults to $SITEWATCH_CONFIG, then monitor.yaml. Logs
// go to stderr and to $LOG_DIR/sitewatch.log.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/config"
	"github.com/hamed0406/sitewatch/internal/logging"
	"github.com/hamed0406/sitewatch/internal/notify"
	"github.com/hamed0406/sitewatch/internal/probe"
	"github.com/hamed0406/sitewatch/internal/scheduler"
)

// set via -ldflags "-X main.version=..."
var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "sitewatch [config-file]",
	Short: "Watch HTTP sites and email their admin when one goes down",
	Long: `sitewatch polls every configured site at its own interval. Each failed
poll sends an email to the site's admin.

Example config:
  client: {user_agent: sitewatch/1.0, timeout: 5}
  smtp:   {sender_name: Site Watcher, sender_email: watcher@example.com, smtp_host: localhost}
  admins: {joe: joe@bloggs.com}
  sites:
    - {name: TestSite, url: "http://testsite.com", interval: 60, admin: joe}`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runWatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sitewatch %s (commit %s)\n", version, commit)
	},
}

func init() {
	rootCmd.Flags().Bool("debug", false, "log at debug level")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func configPath(env config.Env, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return env.ConfigPath
}

func runWatch(cmd *cobra.Command, args []string) error {
	env := config.FromEnv()
	path := configPath(env, args)

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := logging.NewLogger(env.LogDir, debug)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var checker probe.Checker = probe.NewHTTPChecker(cfg.Client.Probe())
	if cfg.Client.DNSDiagnostics {
		checker = probe.NewDNSDiagnoser(checker)
	}

	emailer, err := notify.NewEmailer(cfg.SMTP.Notify(), logger)
	if err != nil {
		return fmt.Errorf("failed to set up email: %w", err)
	}
	defer func() { _ = emailer.Close() }()

	sites := cfg.BuildSites()
	logger.Info("config_loaded",
		zap.String("path", path),
		zap.Int("sites", len(sites)),
		zap.Int("admins", len(cfg.Admins)),
		zap.Bool("debug", debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler.NewSupervisor(logger, checker, emailer, sites).Run(ctx)
	logger.Info("shutdown_complete")
	return nil
}
