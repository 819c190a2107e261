package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xpense-dev/xpense/internal/config"
	"github.com/xpense-dev/xpense/internal/model"
)

func newInitCommand() *cobra.Command {
	var baseURL string
	var mode string
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default xpense.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			path, err := runInit(absDir, baseURL, mode, force)
			if err != nil {
				return err
			}
			printf(cmd, "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "Xpense API base URL")
	cmd.Flags().StringVar(&mode, "mode", string(model.ModeStandard), "default mode for new drafts")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")

	return cmd
}

func runInit(dir, baseURL, mode string, force bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}

	path := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	m, err := model.ParseMode(mode)
	if err != nil {
		return "", err
	}
	cfg.Defaults.Mode = string(m)
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	if err := config.Save(path, cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}
