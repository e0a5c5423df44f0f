package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codecrafthq/codecraft/pkg/codecraft/bridge"
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Mirror a project to a directory for local editing",
	Long: `Mirror a project's tree into a directory as real files and fold
edits made there back into the project.

Changes are cached locally right away and pushed to the remote store
after the debounce window. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

var editDir string

func init() {
	editCmd.Flags().StringVarP(&editDir, "dir", "d", "", "mirror directory (default: temp dir)")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	if err := a.activateCurrent(cmd, id); err != nil {
		return err
	}

	dir := editDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "codecraft-"+a.ws.ProjectID())
	}

	mirror, err := bridge.NewMirror(a.ws, dir)
	if err != nil {
		return fmt.Errorf("mirroring project: %w", err)
	}
	defer mirror.Close()

	printInfo("Editing %s in %s", a.ws.ProjectID(), mirror.Dir())
	printInfo("Press Ctrl+C to stop.")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mirror.Run(ctx)

	// Push whatever is still inside the debounce window before exit.
	a.ws.Flush(cmd.Context())
	printInfo("Stopped.")
	return nil
}
