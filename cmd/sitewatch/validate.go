package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/sitewatch/internal/config"
	"github.com/hamed0406/sitewatch/internal/notify"
)

var validateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Check a config file without starting any watcher",
	Long: `Parse and validate a sitewatch config file, then print the watch list.

Exit codes:
  0 - config is valid
  1 - config is invalid (every problem is listed)`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := configPath(config.FromEnv(), args)

	cfg, err := config.Load(path)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(cmd.ErrOrStderr(), "✖", e)
		}
		return fmt.Errorf("invalid config %s", path)
	}
	// catches a malformed smtp_host port; no connection is made
	if _, err := notify.NewEmailer(cfg.SMTP.Notify(), zap.NewNop()); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "✖", err)
		return fmt.Errorf("invalid config %s", path)
	}

	fmt.Fprintf(out, "✔ %s is valid\n", path)
	fmt.Fprintf(out, "  client: user_agent=%q timeout=%s\n", cfg.Client.UserAgent, cfg.Client.Timeout.Duration())
	fmt.Fprintf(out, "  smtp:   %s <%s> via %s\n", cfg.SMTP.SenderName, cfg.SMTP.SenderEmail, cfg.SMTP.Host)

	admins := make([]string, 0, len(cfg.Admins))
	for _, a := range cfg.AdminContacts() {
		admins = append(admins, a.Name+"="+a.Email)
	}
	fmt.Fprintf(out, "  admins: %s\n", strings.Join(admins, ", "))

	for _, s := range cfg.BuildSites() {
		fmt.Fprintf(out, "  site %s: %s every %s -> %s\n", s.Name, s.URL, s.Interval, s.AdminEmail)
	}
	return nil
}
