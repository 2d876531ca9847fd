// Package cli wires the jacocogate commands onto the application service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/jacocogate/internal/application"
	"github.com/felixgeelhaar/jacocogate/internal/domain"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/autodetect"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/config"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/history"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/parsers"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/report"
	"github.com/felixgeelhaar/jacocogate/internal/infrastructure/rules"
	"github.com/felixgeelhaar/jacocogate/internal/logging"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitViolations = 1
	ExitUsage      = 2
	ExitInput      = 3
)

// Service is the application surface the commands drive.
type Service interface {
	Check(ctx context.Context, opts application.CheckOptions) error
	Evaluate(ctx context.Context, opts application.CheckOptions) (application.CheckResult, error)
	Watch(ctx context.Context, opts application.WatchOptions, watcher application.FileWatcher, callback application.WatchCallback) error
	Suggest(ctx context.Context, opts application.SuggestOptions) ([]domain.Suggestion, error)
	SaveRules(path string, metric domain.MetricKind, suggestions []domain.Suggestion) error
	Badge(ctx context.Context, opts application.BadgeOptions) (application.BadgeResult, error)
	History(ctx context.Context, opts application.HistoryOptions) (application.HistoryReport, error)
}

// ServiceFactory builds the service once the logger is configured.
type ServiceFactory func(logger *zap.Logger) Service

// errUsage signals that usage was already printed.
var errUsage = errors.New("usage")

type app struct {
	stdout  io.Writer
	stderr  io.Writer
	stdin   io.Reader
	factory ServiceFactory

	configPath string
	logLevel   string
	logFormat  string

	logger *zap.Logger
	svc    Service
}

// Run executes the command line and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer, factory ServiceFactory) int {
	a := &app{stdout: stdout, stderr: stderr, stdin: os.Stdin, factory: factory}

	root := a.rootCommand()
	root.SetArgs(args[1:])
	root.SetOut(stdout)
	root.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return a.exitCode(err)
}

// BuildService wires the production adapters.
func BuildService(out io.Writer, logger *zap.Logger) *application.Service {
	return &application.Service{
		ConfigLoader: config.Loader{},
		ReportReader: parsers.NewRegistry(),
		RulesReader:  rules.Reader{},
		RulesWriter:  rules.Writer{},
		Locator:      autodetect.Locator{},
		Reporter:     report.Writer{},
		OpenHistory:  history.Open,
		Logger:       logger,
		Out:          out,
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "jacocogate",
		Short: "Enforce JaCoCo coverage rules",
		Long: `jacocogate checks a JaCoCo coverage report against package and class
level LINE and BRANCH limits declared in rules tables.

Examples:
  jacocogate check --report build/reports/jacoco/test/jacocoTestReport.csv
  jacocogate check --rules config/line-rules.csv --rules config/branch-rules.csv -o json
  jacocogate init --report build/reports/jacoco/test/jacocoTestReport.xml`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errUsage
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", application.DefaultConfigPath, "config file path")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console|json")

	root.AddCommand(
		a.checkCommand(),
		a.watchCommand(),
		a.initCommand(),
		a.badgeCommand(),
		a.historyCommand(),
		a.mcpCommand(),
		a.versionCommand(),
	)
	return root
}

// setup builds the logger from the config file's log block, overridden by
// flags, and then the service.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if fileCfg, err := (config.Loader{}).Load(a.configPath); err == nil {
		if fileCfg.Log.Level != "" {
			cfg.Level = fileCfg.Log.Level
		}
		if fileCfg.Log.Format != "" {
			cfg.Format = fileCfg.Log.Format
		}
	}
	if a.logLevel != "" {
		cfg.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Format = a.logFormat
	}
	cfg.Output = a.stderr

	logger, err := logging.New(cfg)
	if err != nil {
		return err
	}
	a.logger = logger
	a.svc = a.factory(logger)
	return nil
}

func (a *app) exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errUsage):
		return ExitUsage
	case errors.Is(err, application.ErrRulesViolated):
		fmt.Fprintln(a.stderr, err)
		return ExitViolations
	case domain.IsInputError(err):
		fmt.Fprintf(a.stderr, "input error: %v\n", err)
		return ExitInput
	default:
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return ExitUsage
	}
}
