// Package output renders projects and trees for terminal display.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/codecrafthq/codecraft/pkg/codecraft/cache"
	"github.com/codecrafthq/codecraft/pkg/codecraft/tree"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	folderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00D9FF"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#28A745")).
			Bold(true)
)

// ProjectList renders the project index as a table, marking the active
// project.
func ProjectList(entries []cache.IndexEntry, activeID string) string {
	if len(entries) == 0 {
		return mutedStyle.Render("No projects yet. Create one with: codecraft create <name>")
	}

	idWidth := len("ID")
	nameWidth := len("NAME")
	for _, entry := range entries {
		if len(entry.ID) > idWidth {
			idWidth = len(entry.ID)
		}
		if len(entry.Name) > nameWidth {
			nameWidth = len(entry.Name)
		}
	}

	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-*s  %-*s  %s", idWidth, "ID", nameWidth, "NAME", "MODIFIED")))
	b.WriteString("\n")
	for _, entry := range entries {
		marker := " "
		line := fmt.Sprintf("%-*s  %-*s  %s", idWidth, entry.ID, nameWidth, entry.Name, modifiedAgo(entry.LastModified))
		if entry.ID == activeID {
			marker = activeStyle.Render("*")
			line = activeStyle.Render(line)
		}
		b.WriteString(marker + " " + line + "\n")
	}
	return b.String()
}

// Tree renders the project tree with box-drawing connectors.
func Tree(root *tree.Node, projectName string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(projectName))
	b.WriteString("\n")
	renderChildren(&b, root, "")
	return b.String()
}

func renderChildren(b *strings.Builder, n *tree.Node, prefix string) {
	for i, child := range n.Children {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(n.Children)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}

		name := child.Name
		if child.IsFolder() {
			name = folderStyle.Render(name + "/")
		}
		b.WriteString(prefix + connector + name + "\n")
		if child.IsFolder() {
			renderChildren(b, child, childPrefix)
		}
	}
}

func modifiedAgo(unixMilli int64) string {
	if unixMilli == 0 {
		return mutedStyle.Render("unknown")
	}
	return humanize.Time(time.UnixMilli(unixMilli))
}
