package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codecrafthq/codecraft/pkg/codecraft/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage codecraft configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/codecraft/config.yaml (if set)
  2. ~/.config/codecraft/config.yaml

Environment variables can override config file settings using the CODECRAFT_ prefix:
  CODECRAFT_API_BASE_URL=https://api.example.com
  CODECRAFT_SYNC_DEBOUNCE_MS=500`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("api.base_url:      %s\n", cfg.API.BaseURL)
	fmt.Printf("api.token_path:    %s\n", orDefault(cfg.API.TokenPath))
	fmt.Printf("cache.path:        %s\n", orDefault(cfg.Cache.Path))
	fmt.Printf("sync.debounce_ms:  %d\n", cfg.Sync.DebounceMS)
	fmt.Printf("logging.level:     %s\n", cfg.Logging.Level)
	fmt.Printf("logging.path:      %s\n", orDefault(cfg.Logging.Path))

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"CODECRAFT_API_BASE_URL",
		"CODECRAFT_API_TOKEN_PATH",
		"CODECRAFT_CACHE_PATH",
		"CODECRAFT_SYNC_DEBOUNCE_MS",
		"CODECRAFT_LOGGING_LEVEL",
	}
	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	fmt.Println(filepath.Join(configDir, "config.yaml"))
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}
