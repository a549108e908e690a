// Package cli implements the picker command line.
package cli

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MJE43/powerball-superposition/internal/analysis"
	"github.com/MJE43/powerball-superposition/internal/config"
	"github.com/MJE43/powerball-superposition/internal/engine"
	"github.com/MJE43/powerball-superposition/internal/entropy"
	"github.com/MJE43/powerball-superposition/internal/logger"
	"github.com/MJE43/powerball-superposition/internal/secrets"
	"github.com/MJE43/powerball-superposition/internal/store"
)

const (
	appConfigDirName = "powerball-superposition"
	configFileName   = "config.yaml"
	sqliteFileName   = "picker.db"
	badgerDirName    = "badger"
	tokenFileName    = "token.json"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	dataDir    string
	debug      bool

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the picker command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "picker",
		Short: "Lottery number picker",
		Long: `picker draws distinct lottery numbers from mixed entropy, scores them
against historical drawings and keeps a short list of saved combinations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to config file (default: <config dir>/config.yaml when present)")
	flags.StringVar(&a.dataDir, "data-dir", "", "Directory for the database and token fallback")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newServeCommand(a),
		newGenerateCommand(a),
		newAnalyzeCommand(a),
		newCompareCommand(),
		newBenchCommand(a),
		newDrawsCommand(a),
		newSavedCommand(a),
		newTokenCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) init(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		if candidate := filepath.Join(a.dir(), configFileName); fileExists(candidate) {
			path = candidate
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = logger.New(logger.Options{
		Level:  level,
		Writer: cmd.ErrOrStderr(),
		JSON:   cfg.Log.JSON,
	})
	slog.SetDefault(a.logger)
	return nil
}

// dir resolves the data directory: the flag, then the user config dir, then
// a dot directory in home.
func (a *app) dir() string {
	if a.dataDir != "" {
		return a.dataDir
	}
	if d, err := os.UserConfigDir(); err == nil && d != "" {
		return filepath.Join(d, appConfigDirName)
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, "."+appConfigDirName)
	}
	return "."
}

func (a *app) storagePath() string {
	if a.cfg.Storage.Path != "" {
		return a.cfg.Storage.Path
	}
	if a.cfg.Storage.Driver == store.DriverBadger {
		return filepath.Join(a.dir(), badgerDirName)
	}
	return filepath.Join(a.dir(), sqliteFileName)
}

func (a *app) openStore() (store.DB, error) {
	path := a.storagePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := store.Open(a.cfg.Storage.Driver, path)
	if err != nil {
		return nil, fmt.Errorf("open %s store at %s: %w", a.cfg.Storage.Driver, path, err)
	}
	a.logger.Debug("store opened", "driver", a.cfg.Storage.Driver, "path", path)
	return db, nil
}

func (a *app) tokenStore() *secrets.TokenStore {
	return secrets.NewTokenStore("", filepath.Join(a.dir(), tokenFileName))
}

// defaults is the generation request configured under generator.
func (a *app) defaults() engine.Request {
	g := a.cfg.Generator
	return engine.Request{
		Main:    engine.Pick{Count: g.MainCount, Range: engine.Range{Min: g.MainMin, Max: g.MainMax}},
		Special: engine.Range{Min: g.SpecialMin, Max: g.SpecialMax},
	}
}

// primarySource builds the named entropy source, or the configured one when
// kind is empty.
func (a *app) primarySource(kind string) (entropy.Source, error) {
	if kind == "" {
		kind = a.cfg.Generator.Source
	}
	src, err := entropy.NewSource(entropy.Kind(kind), rand.Reader, nil)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("entropy source ready", "source", src.Kind())
	return src, nil
}

// newEngine builds an engine over primary, or the system CSPRNG when nil.
func (a *app) newEngine(primary entropy.Source, opts ...entropy.Option) *engine.Engine {
	if primary == nil {
		primary = entropy.NewCryptoSource(rand.Reader)
	}
	col := entropy.NewCollector(primary, append([]entropy.Option{entropy.WithLogger(a.logger)}, opts...)...)
	return engine.New(col,
		engine.WithLogger(a.logger),
		engine.WithPacing(a.cfg.Generator.Pacing),
		engine.WithHistorySize(a.cfg.Generator.HistorySize),
	)
}

func (a *app) newAnalyzer() (*analysis.Analyzer, error) {
	var draws []analysis.Draw
	if a.cfg.Analysis.DrawsFile != "" {
		var err error
		draws, err = analysis.LoadDraws(a.cfg.Analysis.DrawsFile)
		if err != nil {
			return nil, err
		}
	}
	return analysis.New(draws, a.cfg.Analysis.CacheSize, a.logger)
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
