// Package cmd implements the floyd command.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/brimdata/floyd/compiler"
	"github.com/brimdata/floyd/pkg/config"
	"github.com/brimdata/floyd/pkg/storage"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	cfgFile  string
	prelude  []string
	maxDepth int
	logLevel string
	noColor  bool
	stats    bool

	conf   *config.Config
	logger *zap.Logger
	loader *compiler.Loader
	engine = storage.NewLocalEngine()

	registry = prometheus.NewRegistry()
)

var rootCmd = &cobra.Command{
	Use:   "floyd",
	Short: "parse and format Floyd programs",
	Long: `floyd parses Floyd programs and their JSON AST form.

A path of "-" reads the program text from standard input.  Paths ending
in ".json" hold a JSON AST, either an array of statements or an object
with "globals" and "function_defs".  Prelude files named by --prelude or by
the configuration file are parsed ahead of every program text.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		if logger != nil {
			logger.Sync()
		}
		if stats {
			return printStats(cmd.ErrOrStderr(), registry)
		}
		return nil
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "path of YAML configuration file")
	flags.StringSliceVar(&prelude, "prelude", nil, "prelude file parsed ahead of each program (may be repeated)")
	flags.IntVar(&maxDepth, "max-depth", 0, "nesting limit for expressions and statements (default from config)")
	flags.StringVar(&logLevel, "log-level", "", "logging level: debug, info, warn, or error (default from config)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored diagnostics")
	flags.BoolVar(&stats, "stats", false, "print loader counters to stderr on success")
}

// setup loads the configuration, applies flag overrides, and builds the
// logger and loader shared by the subcommands.
func setup(cmd *cobra.Command, _ []string) error {
	conf = config.Default()
	if cfgFile != "" {
		var err error
		if conf, err = config.Load(cfgFile); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("prelude") {
		conf.Prelude = prelude
	}
	if maxDepth != 0 {
		conf.MaxDepth = maxDepth
	}
	if logLevel != "" {
		conf.LogLevel = logLevel
	}
	if noColor {
		conf.NoColor = true
	}
	if err := conf.Validate(); err != nil {
		return err
	}
	color.NoColor = color.NoColor || conf.NoColor
	var err error
	if logger, err = newLogger(conf); err != nil {
		return err
	}
	if loader, err = compiler.NewLoader(cmd.Context(), conf, engine, logger); err != nil {
		return err
	}
	if stats {
		loader.SetMetrics(compiler.NewMetrics(registry))
	}
	return nil
}

func newLogger(conf *config.Config) (*zap.Logger, error) {
	level, err := conf.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.Encoding = "console"
	zc.DisableStacktrace = true
	if conf.LogFile == "" {
		return zc.Build()
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   conf.LogFile,
		MaxSize:    conf.LogMaxSize,
		MaxBackups: conf.LogMaxBackups,
	})
	return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(zc.EncoderConfig), w, level)), nil
}

var errorPrefix = color.New(color.FgRed, color.Bold).SprintFunc()

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", errorPrefix("error:"), err)
}
