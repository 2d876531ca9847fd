package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/badge"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/config"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/watcher"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/wizard"
	"github.com/felixgeelhaar/jacocogate/internal/mcp"
)

var (
	initWizard = wizard.Run
	newWatcher = func(logger *zap.Logger) (application.FileWatcher, error) {
		return watcher.New(watcher.WithLogger(logger))
	}
	serveMCP = func(ctx context.Context, svc mcp.Service, cfg mcp.Config) error {
		return mcp.New(svc, cfg).Run(ctx)
	}
)

func (a *app) checkCommand() *cobra.Command {
	var flags checkFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate the coverage report against the rules",
		Long: `Evaluate the coverage report against every rules table and write a report.

Exit codes: 0 all rules met, 1 rules violated, 2 usage or config error,
3 malformed report or rules input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(a.configPath)
			if err != nil {
				return err
			}
			return a.svc.Check(cmd.Context(), opts)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) watchCommand() *cobra.Command {
	var flags checkFlags
	var clear bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run check whenever the report or rules change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(a.configPath)
			if err != nil {
				return err
			}
			w, err := newWatcher(a.logger)
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer w.Close()

			fmt.Fprintln(a.stdout, "Watching for report and rules changes... (Ctrl+C to stop)")
			callback := func(run int, result application.CheckResult, runErr error) {
				if clear {
					fmt.Fprint(a.stdout, "\033[H\033[2J")
				}
				fmt.Fprintf(a.stdout, "\n--- Run #%d at %s ---\n", run, time.Now().Format("15:04:05"))
				if runErr != nil {
					fmt.Fprintf(a.stderr, "run failed: %v\n", runErr)
				}
			}

			err = a.svc.Watch(cmd.Context(), application.WatchOptions{Check: opts, Clear: clear}, w, callback)
			if errors.Is(err, context.Canceled) {
				fmt.Fprintln(a.stdout, "\nStopping watch mode...")
				return nil
			}
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&clear, "clear", false, "clear the terminal before each run")
	return cmd
}

func (a *app) initCommand() *cobra.Command {
	var (
		reportFlags   reportFlags
		metricName    string
		strategyName  string
		rulesPath     string
		writeConfig   bool
		force         bool
		noInteractive bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Propose package rules from the current report and write a rules table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := reportFlags.reportFormat()
			if err != nil {
				return err
			}
			metric, err := parseMetric(metricName)
			if err != nil {
				return err
			}
			strategy, err := domain.ParseSuggestStrategy(strategyName)
			if err != nil {
				return err
			}
			if rulesPath == "" {
				rulesPath = fmt.Sprintf("config/jacoco/%s-rules.csv", lower(metric))
			}
			if !force {
				if err := refuseOverwrite(rulesPath); err != nil {
					return err
				}
			}

			suggestions, err := a.svc.Suggest(cmd.Context(), application.SuggestOptions{
				ConfigPath:   a.configPath,
				ReportPath:   reportFlags.path,
				ReportFormat: format,
				Metric:       metric,
				Strategy:     strategy,
			})
			if err != nil {
				return err
			}
			if len(suggestions) == 0 {
				fmt.Fprintf(a.stdout, "No packages with %s data in the report; nothing to write.\n", metric)
				return nil
			}

			if !noInteractive {
				var confirmed bool
				suggestions, confirmed, err = initWizard(suggestions, a.stdout, a.stdin)
				if err != nil {
					return fmt.Errorf("init wizard: %w", err)
				}
				if !confirmed {
					fmt.Fprintln(a.stdout, "Init cancelled; no rules written.")
					return nil
				}
			} else {
				printSuggestions(a.stdout, suggestions)
			}

			if err := a.svc.SaveRules(rulesPath, metric, suggestions); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Wrote %d %s rules to %s\n", len(suggestions), metric, rulesPath)

			if writeConfig {
				if err := a.writeInitConfig(rulesPath, reportFlags.path, format, force); err != nil {
					return err
				}
			}
			return nil
		},
	}
	reportFlags.register(cmd)
	cmd.Flags().StringVar(&metricName, "metric", "LINE", "rule metric: LINE|BRANCH")
	cmd.Flags().StringVar(&strategyName, "strategy", string(domain.SuggestCurrent), "limit strategy: current|aggressive|conservative")
	cmd.Flags().StringVar(&rulesPath, "rules-out", "", "rules file to write (default config/jacoco/<metric>-rules.csv)")
	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "also write a config file referencing the rules")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "skip the interactive wizard")
	return cmd
}

func (a *app) writeInitConfig(rulesPath, reportPath string, format application.ReportFormat, force bool) error {
	if !force {
		if err := refuseOverwrite(a.configPath); err != nil {
			return err
		}
	}
	cfg := application.DefaultConfig()
	cfg.Report.Path = reportPath
	if format != "" {
		cfg.Report.Format = format
	}
	cfg.Rules = []string{rulesPath}
	if err := config.WriteFile(a.configPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Config written to %s\n", a.configPath)
	return nil
}

func (a *app) badgeCommand() *cobra.Command {
	var (
		reportFlags reportFlags
		metricName  string
		output      string
		label       string
		style       string
	)
	cmd := &cobra.Command{
		Use:   "badge",
		Short: "Generate an SVG badge for the overall coverage of one metric",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := reportFlags.reportFormat()
			if err != nil {
				return err
			}
			metric, err := domain.ParseMetricKind(metricName)
			if err != nil {
				return err
			}
			badgeStyle := badge.StyleFlat
			switch style {
			case string(badge.StyleFlat):
			case string(badge.StyleFlatSquare):
				badgeStyle = badge.StyleFlatSquare
			default:
				return fmt.Errorf("unknown badge style %q (want flat or flat-square)", style)
			}

			result, err := a.svc.Badge(cmd.Context(), application.BadgeOptions{
				ConfigPath:   a.configPath,
				ReportPath:   reportFlags.path,
				ReportFormat: format,
				Metric:       metric,
			})
			if err != nil {
				return err
			}
			if err := badge.WriteFile(output, badge.Options{
				Metric:  result.Metric,
				Label:   label,
				Percent: result.Percent,
				Style:   badgeStyle,
			}); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Badge written to %s (%s %.1f%%)\n", output, result.Metric, result.Percent)
			return nil
		},
	}
	reportFlags.register(cmd)
	cmd.Flags().StringVar(&metricName, "metric", "LINE", "metric: INSTRUCTION|BRANCH|LINE|COMPLEXITY|METHOD")
	cmd.Flags().StringVar(&output, "output", "coverage.svg", "output file path")
	cmd.Flags().StringVar(&label, "label", "", "badge label (default \"<metric> coverage\")")
	cmd.Flags().StringVar(&style, "style", string(badge.StyleFlat), "badge style: flat|flat-square")
	return cmd
}

func (a *app) historyCommand() *cobra.Command {
	var (
		historyPath string
		metricName  string
		days        int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs and coverage trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := domain.ParseMetricKind(metricName)
			if err != nil {
				return err
			}
			result, err := a.svc.History(cmd.Context(), application.HistoryOptions{
				ConfigPath:  a.configPath,
				HistoryPath: historyPath,
				Metric:      metric,
				Days:        days,
			})
			if err != nil {
				return err
			}
			printHistory(a.stdout, metric, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&historyPath, "history", "", "history file (default from config)")
	cmd.Flags().StringVar(&metricName, "metric", "LINE", "metric to analyze")
	cmd.Flags().IntVar(&days, "days", 0, "only include runs from the last N days (0 = all)")
	return cmd
}

func (a *app) mcpCommand() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the evaluate tool over the Model Context Protocol (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mcp.Version = Version
			err := serveMCP(cmd.Context(), a.svc, mcp.Config{ConfigPath: a.configPath, Workers: workers})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel evaluation workers for inline tables")
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, versionLine())
		},
	}
}
