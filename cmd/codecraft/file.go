package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
)

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a file's content",
	Args:  cobra.ExactArgs(1),
	RunE:  runCat,
}

var writeCmd = &cobra.Command{
	Use:   "write <path> [content]",
	Short: "Create or replace a file",
	Long: `Create or replace a file in the active project.

Content is taken from the argument, or from stdin when omitted.
Intermediate folders are created as needed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runWrite,
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <path>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runMkdir,
}

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete a file or folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

var renameCmd = &cobra.Command{
	Use:   "rename <path> <new-name>",
	Short: "Rename a file or folder",
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

var mvCmd = &cobra.Command{
	Use:   "mv <source> <target-folder>",
	Short: "Move a file or folder into another folder",
	Args:  cobra.ExactArgs(2),
	RunE:  runMv,
}

func init() {
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(mvCmd)
}

// withActiveProject wires up the app, activates the current project,
// runs fn and flushes pending pushes before exit. Without the flush a
// short-lived command would quit inside the debounce window and never
// reach the remote store.
func withActiveProject(cmd *cobra.Command, fn func(a *app) error) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := a.activateCurrent(cmd, ""); err != nil {
		return err
	}
	if err := fn(a); err != nil {
		return err
	}
	a.ws.Flush(cmd.Context())
	return nil
}

func runCat(cmd *cobra.Command, args []string) error {
	return withActiveProject(cmd, func(a *app) error {
		node := tree.Find(a.ws.Tree(), args[0])
		if node == nil {
			return fmt.Errorf("no file at %s", args[0])
		}
		if node.IsFolder() {
			return fmt.Errorf("%s is a folder", args[0])
		}
		fmt.Print(node.Content)
		return nil
	})
}

func runWrite(cmd *cobra.Command, args []string) error {
	return withActiveProject(cmd, func(a *app) error {
		var content string
		if len(args) == 2 {
			content = args[1]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			content = string(data)
		}
		if err := a.ws.WriteFile(args[0], content); err != nil {
			return err
		}
		printInfo("Wrote %s", args[0])
		return nil
	})
}

func runMkdir(cmd *cobra.Command, args []string) error {
	return withActiveProject(cmd, func(a *app) error {
		if err := a.ws.CreateFolder(args[0]); err != nil {
			return err
		}
		printInfo("Created %s/", args[0])
		return nil
	})
}

func runRm(cmd *cobra.Command, args []string) error {
	return withActiveProject(cmd, func(a *app) error {
		if tree.Find(a.ws.Tree(), args[0]) == nil {
			return fmt.Errorf("no node at %s", args[0])
		}
		if err := a.ws.Delete(args[0]); err != nil {
			return err
		}
		printInfo("Deleted %s", args[0])
		return nil
	})
}

func runRename(cmd *cobra.Command, args []string) error {
	return withActiveProject(cmd, func(a *app) error {
		if err := a.ws.Rename(args[0], args[1]); err != nil {
			return fmt.Errorf("renaming %s: %w", args[0], err)
		}
		printInfo("Renamed %s to %s", args[0], args[1])
		return nil
	})
}

func runMv(cmd *cobra.Command, args []string) error {
	return withActiveProject(cmd, func(a *app) error {
		before := a.ws.Tree()
		if err := a.ws.Move(args[0], args[1], tree.PositionInto); err != nil {
			return err
		}
		if a.ws.Tree() == before {
			return fmt.Errorf("cannot move %s into %s", args[0], args[1])
		}
		printInfo("Moved %s into %s", args[0], args[1])
		return nil
	})
}
