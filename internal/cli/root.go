package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/config"
	"github.com/cvazquezfgc/planificacio-renovacio-via/internal/log"
)

// app carries state shared by the subcommands once flags are parsed
type app struct {
	v       *viper.Viper
	cfgFile string
	envFile string

	cfg    *config.Config
	logger *zap.Logger
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree with a fresh viper instance
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:          "renovacio",
		Short:        "Track renewal planning for the FGC network",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./.renovacio.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	addConfigFlags(flags, a.v)
	if err := a.v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("failed to bind flags: %v", err))
	}

	root.AddCommand(
		newServeCmd(a),
		newImportCmd(a),
		newSummaryCmd(a),
		newTokenCmd(a),
	)
	return root
}

// addConfigFlags exposes every config key as a flag; defaults come from v
func addConfigFlags(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String(config.KeyPort, v.GetString(config.KeyPort), "HTTP listen address")
	flags.String(config.KeyDBPath, v.GetString(config.KeyDBPath), "sqlite database file")
	flags.Int(config.KeyKeepSnapshots, v.GetInt(config.KeyKeepSnapshots), "stored snapshots kept after an import")
	flags.String(config.KeyJWTSecret, v.GetString(config.KeyJWTSecret), "HS256 secret for operator tokens")
	flags.Bool(config.KeyAllowDefault, v.GetBool(config.KeyAllowDefault), "accept the built-in jwt secret (development only)")
	flags.String(config.KeySegmentsURL, v.GetString(config.KeySegmentsURL), "segments dataset (URL or file)")
	flags.String(config.KeyStationsURL, v.GetString(config.KeyStationsURL), "stations dataset (URL or file)")
	flags.Duration(config.KeyHTTPTimeout, v.GetDuration(config.KeyHTTPTimeout), "timeout per upstream fetch")
	flags.Bool(config.KeyAutoImport, v.GetBool(config.KeyAutoImport), "import on startup when the store is empty")
	flags.Int(config.KeyReferenceYear, v.GetInt(config.KeyReferenceYear), "forecasts before this year count as overdue")
	flags.Int(config.KeyWindowStart, v.GetInt(config.KeyWindowStart), "first year of the forecast windows")
	flags.Int(config.KeyWindowEnd, v.GetInt(config.KeyWindowEnd), "last year of the forecast windows")
	flags.Int(config.KeyWindowSize, v.GetInt(config.KeyWindowSize), "years per forecast window")
	flags.Int(config.KeyRateLimit, v.GetInt(config.KeyRateLimit), "requests per client and window, 0 disables")
	flags.Duration(config.KeyRateWindow, v.GetDuration(config.KeyRateWindow), "rate limit window")
	flags.String(config.KeyLogLevel, v.GetString(config.KeyLogLevel), "controls the log level (debug, info, warn, error)")
	flags.String(config.KeyLogFormat, v.GetString(config.KeyLogFormat), "controls the log output format (json, text)")
}

func (a *app) setup() error {
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", a.envFile, err)
	}

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".renovacio")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := log.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	if used := a.v.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", zap.String("path", used))
	}
	return nil
}
