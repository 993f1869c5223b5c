package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// SandboxDir is the directory under os.TempDir that dev runs write into.
const SandboxDir = "quire-dev"

// IsDevRun reports whether the process was built by `go run` or `go test`.
// Both place the binary in a temporary directory; test binaries also end in
// ".test".
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}
	return isWithin(os.TempDir(), exe)
}

// SandboxPath maps dataDir into the dev sandbox so development runs never
// touch a real notes collection. Paths already under the temp directory are
// returned unchanged.
func SandboxPath(dataDir string) string {
	clean := filepath.Clean(dataDir)
	if isWithin(os.TempDir(), clean) {
		return clean
	}

	name := filepath.Base(clean)
	if dataDir == "" || name == "." || name == string(os.PathSeparator) {
		name = "default"
	}
	return filepath.Join(os.TempDir(), SandboxDir, name)
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(strings.ToLower(root), strings.ToLower(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
