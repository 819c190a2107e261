package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xpense-dev/xpense/internal/api"
	"github.com/xpense-dev/xpense/internal/buildinfo"
	"github.com/xpense-dev/xpense/internal/config"
	"github.com/xpense-dev/xpense/internal/logger"
)

// app carries the global flags and what is built from them.
type app struct {
	configPath string
	envPath    string
	debug      bool

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "xpense",
		Short:   "Compose and submit Xpense transactions",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&a.envPath, "env", "", "env file (default ./.env when present)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newRefCommand(a))
	rootCmd.AddCommand(newTxnCommand(a))
	rootCmd.AddCommand(newFieldsCommand(a))

	return rootCmd
}

// load reads the env file and config, then builds the logger. Logs go to the
// command's stderr.
func (a *app) load(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(a.envPath); err != nil {
		return err
	}
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if a.debug {
		level = zerolog.DebugLevel
	}
	a.cfg = cfg
	a.log = logger.New(cmd.ErrOrStderr(), level)
	cmd.SetContext(logger.WithContext(cmd.Context(), a.log))

	a.log.Debug().Str("config", a.configPath).Str("base_url", cfg.API.BaseURL).Msg("config loaded")
	return nil
}

func (a *app) client() *api.Client {
	return api.NewClient(api.ClientConfig{
		BaseURL: a.cfg.API.BaseURL,
		Token:   a.cfg.API.Token,
		Timeout: a.cfg.API.Timeout,
	})
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
