package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codecrafthq/codecraft/pkg/codecraft/cache"
	"github.com/codecrafthq/codecraft/pkg/codecraft/config"
	"github.com/codecrafthq/codecraft/pkg/codecraft/logging"
	"github.com/codecrafthq/codecraft/pkg/codecraft/remote"
	"github.com/codecrafthq/codecraft/pkg/codecraft/workspace"
)

var rootCmd = &cobra.Command{
	Use:   "codecraft",
	Short: "Manage browser IDE projects from the terminal",
	Long: `CodeCraft manages project file trees synced between a remote store
and a local cache.

Projects keep working offline: edits land in the local cache first and
are pushed to the remote store in the background.

Examples:
  codecraft create "My App"          # Create and activate a project
  codecraft list                     # List projects
  codecraft show                     # Print the active project's tree
  codecraft write /App.js < App.js   # Replace a file's content
  codecraft edit                     # Mirror the project to a directory
  codecraft import ./src my-src      # Import a directory as a project`,
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "remote store base URL")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")

	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles the wired-up application pieces a command needs.
type app struct {
	cfg      *config.Config
	projects *cache.Cache
	client   *remote.Client
	ws       *workspace.Workspace
}

// newApp loads configuration, initializes logging and opens the cache,
// the remote client and the workspace. The returned cleanup function
// must be deferred.
func newApp() (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if url := viper.GetString("api.base_url"); url != "" {
		cfg.API.BaseURL = url
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Components: cfg.Logging.Components,
		Console:    getVerbose(),
	}
	if getVerbose() {
		logCfg.Level = "debug"
	}
	if err := logging.Init(logCfg); err != nil {
		return nil, nil, fmt.Errorf("initializing logging: %w", err)
	}

	if err := config.EnsureDataDir(); err != nil {
		return nil, nil, err
	}
	cachePath := cfg.Cache.Path
	if cachePath == "" {
		cachePath = cache.DefaultPath()
	}
	projects, err := cache.Open(cachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening project cache: %w", err)
	}

	client := remote.NewClient(cfg.API.BaseURL, remote.NewTokenStore(cfg.API.TokenPath))
	ws := workspace.New(client, projects, time.Duration(cfg.Sync.DebounceMS)*time.Millisecond)

	cleanup := func() {
		ws.Close()
		_ = projects.Close()
		_ = logging.Close()
	}
	return &app{cfg: cfg, projects: projects, client: client, ws: ws}, cleanup, nil
}

// activateCurrent activates the project given by id, or the last
// active one when id is empty.
func (a *app) activateCurrent(cmd *cobra.Command, id string) error {
	if id == "" {
		var err error
		id, err = a.projects.ActiveProject()
		if err != nil {
			return err
		}
	}
	if id == "" {
		return fmt.Errorf("no active project; run 'codecraft use <id>' or 'codecraft create <name>'")
	}
	return a.ws.Activate(cmd.Context(), id)
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
