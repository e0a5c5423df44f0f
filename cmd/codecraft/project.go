package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codecrafthq/codecraft/pkg/codecraft/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long:  `List projects known to the remote store, falling back to the local cache when offline.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project and make it active",
	Long: `Create a project seeded with the starter files.

The project id is a slug derived from the name. When the remote store
is unreachable the project is created locally and pushed later.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

var useCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Switch the active project",
	Args:  cobra.ExactArgs(1),
	RunE:  runUse,
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a project's file tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Long: `Delete a project from the remote store and the local cache.

The remote delete is best-effort; the local copy is removed regardless.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := a.ws.ListProjects(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	active, err := a.projects.ActiveProject()
	if err != nil {
		return err
	}

	fmt.Print(output.ProjectList(entries, active))
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := a.ws.CreateProject(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	printInfo("Created project %s (active)", id)
	return nil
}

func runUse(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.ws.Activate(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("activating project: %w", err)
	}
	printInfo("Switched to %s", args[0])
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
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

	fmt.Print(output.Tree(a.ws.Tree(), a.ws.ProjectName()))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	id := args[0]
	if !deleteForce {
		fmt.Printf("Delete project %s? [y/N] ", id)
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			printInfo("Aborted.")
			return nil
		}
	}

	if err := a.ws.DeleteProject(cmd.Context(), id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	printInfo("Deleted %s", id)
	return nil
}
