package store

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/kevinzwang/shellcfg/internal/view"
)

// Export writes the enabled items as a shell snippet meant to be sourced
// from .zshrc. Plugins and completions are looked up under pluginDir.
func (s *Service) Export(ctx context.Context, w io.Writer, pluginDir string) error {
	var b strings.Builder
	b.WriteString("# Generated by shellcfg. Edits will be overwritten.\n")

	paths, err := s.enabled(ctx, ViewPath)
	if err != nil {
		return err
	}
	if len(paths) > 0 {
		for i, p := range paths {
			if p == "~" || strings.HasPrefix(p, "~/") {
				paths[i] = "$HOME" + p[1:]
			}
		}
		fmt.Fprintf(&b, "\nexport PATH=\"%s:$PATH\"\n", strings.Join(paths, ":"))
	}

	aliases, err := s.enabled(ctx, ViewAliases)
	if err != nil {
		return err
	}
	if len(aliases) > 0 {
		b.WriteString("\n")
	}
	for _, def := range aliases {
		name, value, _ := strings.Cut(def, "=")
		fmt.Fprintf(&b, "alias %s=%s\n", name, shellQuote(value))
	}

	constants, err := s.enabled(ctx, ViewConstants)
	if err != nil {
		return err
	}
	if len(constants) > 0 {
		b.WriteString("\n")
	}
	for _, def := range constants {
		name, value, _ := strings.Cut(def, "=")
		fmt.Fprintf(&b, "export %s=%s\n", name, shellQuote(value))
	}

	completions, err := s.enabled(ctx, ViewCompletions)
	if err != nil {
		return err
	}
	if len(completions) > 0 {
		b.WriteString("\n")
	}
	for _, name := range completions {
		dir := path.Join(pluginDir, "completions", name)
		fmt.Fprintf(&b, "fpath=(%s $fpath)\n", shellQuote(dir))
	}

	plugins, err := s.enabled(ctx, ViewPlugins)
	if err != nil {
		return err
	}
	if len(plugins) > 0 {
		b.WriteString("\n")
	}
	for _, name := range plugins {
		file := path.Join(pluginDir, "plugins", name, path.Base(name)+".plugin.zsh")
		fmt.Fprintf(&b, "[ -f %[1]s ] && source %[1]s\n", shellQuote(file))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func (s *Service) enabled(ctx context.Context, id view.ID) ([]string, error) {
	items, err := s.List(ctx, id)
	if err != nil {
		return nil, err
	}
	var values []string
	for _, it := range items {
		if it.Enabled {
			values = append(values, it.Value)
		}
	}
	return values, nil
}

// shellQuote wraps s in single quotes, escaping embedded ones.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
