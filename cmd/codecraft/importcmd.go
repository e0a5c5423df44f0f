package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codecrafthq/codecraft/pkg/codecraft/bridge"
	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
)

var importCmd = &cobra.Command{
	Use:   "import <dir> <name>",
	Short: "Import a directory as a new project",
	Long: `Import a directory's files as a new project and make it active.

Symlinks are not followed. Hidden VCS metadata, node_modules, binary
files and files over the size cap are skipped.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

var importExclude []string

func init() {
	importCmd.Flags().StringSliceVarP(&importExclude, "exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, cleanup, err := newApp()
	if err != nil {
		return err
	}
	defer cleanup()

	opts := bridge.ImportOptions{}
	if len(importExclude) > 0 {
		opts.Exclude = append(bridge.DefaultExclusions, importExclude...)
	}
	root, err := bridge.ImportDir(args[0], opts)
	if err != nil {
		return fmt.Errorf("importing %s: %w", args[0], err)
	}

	id, err := a.ws.CreateProject(cmd.Context(), args[1])
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	// Replace the starter files with the imported tree.
	for _, record := range tree.FlatRecords(a.ws.Tree()) {
		if tree.Find(root, record.FileID) == nil {
			if err := a.ws.Delete(record.FileID); err != nil {
				return err
			}
		}
	}
	for _, record := range tree.FlatRecords(root) {
		if record.Kind == tree.KindFolder {
			if err := a.ws.CreateFolder(record.FileID); err != nil {
				return err
			}
			continue
		}
		if err := a.ws.WriteFile(record.FileID, record.Content); err != nil {
			return err
		}
	}

	a.ws.Flush(cmd.Context())
	printInfo("Imported %s as %s (%d files)", args[0], id, len(tree.ContentMap(root)))
	return nil
}
