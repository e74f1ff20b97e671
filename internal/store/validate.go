package store

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePath checks a PATH entry. It must be absolute, or start with ~/ or
// an environment variable such as $HOME, and cannot contain ':'.
func ValidatePath(entry string) error {
	if entry == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.Contains(entry, ":") {
		return fmt.Errorf("path cannot contain ':'")
	}

	switch {
	case filepath.IsAbs(entry):
	case entry == "~" || strings.HasPrefix(entry, "~/"):
	case strings.HasPrefix(entry, "$"):
		name := strings.TrimPrefix(entry, "$")
		name = strings.TrimPrefix(name, "{")
		if name == "" || !isNameStart(rune(name[0])) {
			return fmt.Errorf("path must start with a variable name after '$'")
		}
	default:
		return fmt.Errorf("path must be absolute or start with ~ or $VAR")
	}
	return nil
}

// ValidateAssignment checks a NAME=value definition. Alias names may also
// contain '-' and '.'; constant names must be shell identifiers.
func ValidateAssignment(def string, alias bool) error {
	name, value, ok := strings.Cut(def, "=")
	if !ok {
		return fmt.Errorf("definition must have the form NAME=value")
	}

	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if !isNameStart(rune(name[0])) {
		return fmt.Errorf("name must start with a letter or '_'")
	}

	for _, r := range name {
		if isNameChar(r) || (alias && (r == '-' || r == '.')) {
			continue
		}
		return fmt.Errorf("name contains invalid character '%c'", r)
	}

	if alias && strings.TrimSpace(value) == "" {
		return fmt.Errorf("alias value cannot be empty")
	}
	return nil
}

// ValidateName checks a completion or plugin name, which ends up as a file
// or directory name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("name cannot start with '-'")
	}

	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("name cannot start with '.'")
	}

	if strings.Contains(name, "..") {
		return fmt.Errorf("name cannot contain '..'")
	}

	if strings.Contains(name, " ") {
		return fmt.Errorf("name cannot contain spaces")
	}

	// Check for valid characters: alphanumeric, -, _, /, .
	for _, r := range name {
		if !(isAlnum(r) || r == '-' || r == '_' || r == '/' || r == '.') {
			return fmt.Errorf("name contains invalid character '%c'", r)
		}
	}

	return nil
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isNameStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isNameChar(r rune) bool {
	return isAlnum(r) || r == '_'
}
