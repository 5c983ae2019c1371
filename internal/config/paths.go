package config

import (
	"os"
	"path/filepath"
	"strings"
)

// baseDir is where relative runtime paths are anchored: the directory of the
// executable, or the working directory when the binary was built into the
// temp dir by `go run`.
func baseDir() string {
	wd, wdErr := os.Getwd()
	exe, err := os.Executable()
	if err != nil || strings.TrimSpace(exe) == "" {
		if wdErr == nil {
			return wd
		}
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)
	if wdErr == nil && strings.HasPrefix(dir, filepath.Clean(os.TempDir())+string(filepath.Separator)) {
		return wd
	}
	return dir
}

// ResolveRuntimePath makes raw absolute, using fallback when raw is empty.
func ResolveRuntimePath(raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallback)
	}
	if target == "" {
		return baseDir()
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(baseDir(), target)
}
