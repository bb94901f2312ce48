package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/genv-lang/genv/internal/cli"
	"github.com/genv-lang/genv/internal/config"
	"github.com/genv-lang/genv/internal/metrics"
	"github.com/genv-lang/genv/internal/parser"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	debug     bool
	colorMode string
)

var rootCmd = &cobra.Command{
	Use:   "genv",
	Short: "genv - parser for the genv scripting language",
	Long: `genv parses indentation-sensitive genv sources, follows their
mod declarations and reports diagnostics.`,
	Version:       cli.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "colour output: auto, always, never")
}

// env is what every command builds once per invocation.
type env struct {
	cfg      *config.Config
	log      *cli.Logger
	renderer *cli.Renderer
	metrics  *metrics.Collector
}

func newEnv(out io.Writer) (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Log.Level = "debug"
	} else if verbose && cfg.Log.Level == "warn" {
		cfg.Log.Level = "info"
	}

	log := cli.NewLogger(cfg.Logger(), verbose, debug)
	// the parser logs through the config, so it must carry the tagged logger
	cfg.SetLogger(log.Slog())
	log.Debug("configuration loaded from %q", cfgFile)

	color, err := useColor(colorMode, out)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:      cfg,
		log:      log,
		renderer: &cli.Renderer{Color: color},
		metrics:  metrics.NewCollector(nil),
	}, nil
}

func useColor(mode string, out io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto":
		f, ok := out.(*os.File)
		return ok && isTerminal(f.Fd()), nil
	default:
		return false, fmt.Errorf("invalid --color value %q", mode)
	}
}

// parseFile parses path and records the outcome in the metrics.
func (e *env) parseFile(path string) (*parser.Result, error) {
	start := time.Now()
	res, err := parser.ParseFile(path, e.cfg)
	elapsed := time.Since(start)

	if res != nil {
		e.metrics.RecordParse(err == nil, res.Files.Len(), res.Diagnostics, elapsed)
	} else {
		e.metrics.RecordParse(false, 0, nil, elapsed)
	}
	e.log.Info("parsed %s in %s", path, elapsed)
	return res, err
}

// report renders the diagnostics of res to w.
func (e *env) report(w io.Writer, res *parser.Result) error {
	if res == nil || e.cfg.Quiet {
		return nil
	}
	r := *e.renderer
	r.Files = res.Files
	return r.Render(w, res.Diagnostics)
}
