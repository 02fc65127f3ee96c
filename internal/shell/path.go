package shell

import (
	"fmt"
	"os"
	"path/filepath"
)

// InPath reports whether dir is one of the entries of pathList, a
// colon-separated list in the form of $PATH.
func InPath(dir, pathList string) bool {
	want := filepath.Clean(dir)
	for _, entry := range filepath.SplitList(pathList) {
		if entry != "" && filepath.Clean(entry) == want {
			return true
		}
	}
	return false
}

// PathHint tells the user how to put dir on PATH for the shell in $SHELL.
func PathHint(dir string) string {
	kind := Current()
	line := kind.ExportLine(dir)

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Sprintf("Add it to your PATH by adding this line to your shell startup file:\n  %s", line)
	}
	return fmt.Sprintf("Add it to your PATH by appending this line to %s:\n  %s", kind.StartupFile(home), line)
}
