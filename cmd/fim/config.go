package main

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/fim/pkg/fim/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage fim configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/fim/config.yaml (if set)
  2. ~/.config/fim/config.yaml

Environment variables override config file settings using the FIM_ prefix:
  FIM_BASELINE=/var/lib/fim/baseline.json
  FIM_FORMAT=json
  FIM_JOURNAL_ENABLED=false`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Long:  `Display the effective configuration from all sources.`,
			Args:  ignoreArgs,
			RunE:  a.runConfigShow,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			Args:  ignoreArgs,
			RunE:  a.runConfigPath,
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create default configuration file",
			Long:  `Create a default configuration file if one doesn't exist.`,
			Args:  ignoreArgs,
			RunE:  a.runConfigInit,
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit configuration file",
			Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
			Args: ignoreArgs,
			RunE: a.runConfigEdit,
		},
	)
	return cmd
}

// configPath is the file config commands operate on: --config if given,
// otherwise the default location.
func (a *app) configPath() (string, error) {
	if a.cfgFile != "" {
		return a.cfgFile, nil
	}
	return config.ConfigPath()
}

func (a *app) runConfigShow(cmd *cobra.Command, _ []string) error {
	source := "(using defaults, no file found)"
	if used := a.v.ConfigFileUsed(); used != "" {
		if _, err := os.Stat(used); err == nil {
			source = used
		}
	}
	a.printResult(cmd, "# config file: %s", source)

	data, err := yaml.Marshal(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, _ = cmd.OutOrStdout().Write(data)

	overrides := envOverrides()
	if len(overrides) > 0 {
		a.printResult(cmd, "\n# environment overrides:")
		for _, kv := range overrides {
			a.printResult(cmd, "#   %s", kv)
		}
	}
	return nil
}

// envOverrides lists the FIM_ variables set in the environment, sorted.
func envOverrides() []string {
	var out []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "FIM_") {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}

func (a *app) runConfigPath(cmd *cobra.Command, _ []string) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	a.printResult(cmd, "%s", path)

	if _, err := os.Stat(path); err == nil {
		logger.Debug("config file exists", "path", path)
	} else if os.IsNotExist(err) {
		logger.Debug("config file does not exist, defaults apply", "path", path)
	}
	return nil
}

func (a *app) runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}

	created, err := config.WriteDefault(path)
	if err != nil {
		return err
	}
	if !created {
		a.printInfo(cmd, "Config file already exists: %s", path)
		a.printInfo(cmd, "Use 'fim config edit' to modify it.")
		return nil
	}
	a.printInfo(cmd, "Created default config file: %s", path)
	return nil
}

func (a *app) runConfigEdit(cmd *cobra.Command, _ []string) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	if _, err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	logger.Debug("opening config file", "path", path, "editor", editor)

	editorCmd := exec.Command(editor, path)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = cmd.OutOrStdout()
	editorCmd.Stderr = cmd.ErrOrStderr()

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}
