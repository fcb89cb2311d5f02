// Package validation holds checks on command-line inputs: paths, output
// formats and file permissions.
package validation

import (
	"fmt"
	"os"
	"strings"
)

// IsValidPath checks that path exists and is a regular file or a directory.
func IsValidPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is neither a file nor a directory", path)
	}
	return nil
}

// IsValidOutputFormat checks format against the supported formats,
// ignoring case.
func IsValidOutputFormat(format string, supported ...string) error {
	for _, s := range supported {
		if strings.EqualFold(format, s) {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %s. Supported formats are '%s'", format, strings.Join(supported, "', '"))
}

// IsValidFilePermissions rejects modes that grant any access to others.
// Files holding an API token should be 0600.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0o007 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0640", mode.String())
	}
	return nil
}
