package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kevinzwang/shellcfg/internal/store"
	"github.com/kevinzwang/shellcfg/internal/theme"
	"github.com/kevinzwang/shellcfg/internal/view"
)

// CLI output styles. lipgloss drops the colors when stdout is not a terminal.
var (
	palette       = theme.DefaultPalette()
	indexStyle    = lipgloss.NewStyle().Foreground(palette.Muted)
	valueStyle    = lipgloss.NewStyle().Foreground(palette.Text)
	disabledStyle = lipgloss.NewStyle().Foreground(palette.Dim).Strikethrough(true)
	titleStyle    = lipgloss.NewStyle().Foreground(palette.Primary).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(palette.Success)
)

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "list <view>",
		Short:     "Print the entries of a view",
		Args:      cobra.ExactArgs(1),
		ValidArgs: viewNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			items, err := e.service.List(cmd.Context(), view.ID(args[0]))
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), items)
			return nil
		},
	}
}

func addCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "add <view> <value>",
		Short:     "Append an entry to a view",
		Args:      cobra.ExactArgs(2),
		ValidArgs: viewNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			item, err := e.service.Add(cmd.Context(), view.ID(args[0]), args[1])
			if err != nil {
				return err
			}
			e.logger.Debug("item added", "view", item.View, "id", item.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s to %s\n",
				successStyle.Render("✓"), item.Value, item.View)
			return nil
		},
	}
}

func removeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <view> <index>",
		Aliases: []string{"rm"},
		Short:   "Remove the entry at a 1-based index (see list)",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}

			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			item, err := e.service.Remove(cmd.Context(), view.ID(args[0]), index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s from %s\n",
				successStyle.Render("✓"), item.Value, item.View)
			return nil
		},
	}
}

func toggleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <view> <index>",
		Short: "Enable or disable the entry at a 1-based index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}

			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			item, err := e.service.Toggle(cmd.Context(), view.ID(args[0]), index)
			if err != nil {
				return err
			}
			state := "disabled"
			if item.Enabled {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				successStyle.Render("✓"), item.Value, state)
			return nil
		},
	}
}

func viewsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the views and how many entries each holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			counts, err := e.service.CountItems(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, v := range store.Views() {
				fmt.Fprintf(w, "%-12s %s %s\n",
					string(v.ID), titleStyle.Render(v.Title), indexStyle.Render(strconv.Itoa(counts[v.ID])))
			}
			return nil
		},
	}
}

func exportCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the shell snippet built from the enabled entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts, false)
			if err != nil {
				return err
			}
			defer e.Close()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if err := e.service.Export(cmd.Context(), w, e.cfg.DataDir); err != nil {
				return err
			}
			if output != "" {
				abs, _ := filepath.Abs(output)
				e.logger.Info("export written", "path", abs)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return cmd
}

func printItems(w io.Writer, items []*store.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, indexStyle.Render("(empty)"))
		return
	}
	for i, it := range items {
		value := valueStyle.Render(it.Value)
		if !it.Enabled {
			value = disabledStyle.Render(it.Value)
		}
		fmt.Fprintf(w, "%s  %s\n", indexStyle.Render(fmt.Sprintf("%3d", i+1)), value)
	}
}

// parseIndex turns a 1-based index from the command line into a 0-based one.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid index %q: must be a positive number", s)
	}
	return n - 1, nil
}

func viewNames() []string {
	views := store.Views()
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = string(v.ID)
	}
	return names
}
