package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kt2saint-sec/ragcheck/internal/check"
)

// FileExists passes when path exists and is a regular file.
func FileExists(path string) check.Probe {
	return func(context.Context) check.Outcome {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return check.Failf("%s does not exist", path)
			}
			return check.Failf("cannot stat %s: %v", path, err)
		}
		if info.IsDir() {
			return check.Failf("%s is a directory, expected a file", path)
		}
		return check.Pass()
	}
}

// FileExecutable passes when path exists and has an executable bit set.
func FileExecutable(path string) check.Probe {
	return func(context.Context) check.Outcome {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return check.Failf("%s does not exist", path)
			}
			return check.Failf("cannot stat %s: %v", path, err)
		}
		if info.Mode().Perm()&0o111 == 0 {
			return check.Failf("%s is not executable", path)
		}
		return check.Pass()
	}
}

// DirWritable passes when a file can be created in dir.
func DirWritable(dir string) check.Probe {
	return func(context.Context) check.Outcome {
		testFile := filepath.Join(dir, ".ragcheck-writetest")
		f, err := os.Create(testFile)
		if err != nil {
			return check.Failf("not writable: %v", err)
		}
		_ = f.Close()
		_ = os.Remove(testFile)
		return check.Pass()
	}
}

// JSONFileValid passes when the file exists and parses as JSON.
func JSONFileValid(path string) check.Probe {
	return func(context.Context) check.Outcome {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return check.Failf("%s does not exist", path)
			}
			return check.Failf("cannot read %s: %v", path, err)
		}
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return check.Failf("invalid JSON: %v", err)
		}
		return check.Pass()
	}
}

// YAMLFileValid passes when the file exists and parses as YAML.
func YAMLFileValid(path string) check.Probe {
	return func(context.Context) check.Outcome {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return check.Failf("%s does not exist", path)
			}
			return check.Failf("cannot read %s: %v", path, err)
		}
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return check.Failf("invalid YAML: %v", err)
		}
		return check.Pass()
	}
}

// FileFresh passes when the newest file matching glob was modified
// within maxAge. Used for backup freshness.
func FileFresh(glob string, maxAge time.Duration) check.Probe {
	return func(context.Context) check.Outcome {
		matches, err := filepath.Glob(glob)
		if err != nil {
			return check.Failf("bad pattern %q: %v", glob, err)
		}
		if len(matches) == 0 {
			return check.Failf("no files matching %s", glob)
		}

		var newest time.Time
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				continue
			}
			if info.ModTime().After(newest) {
				newest = info.ModTime()
			}
		}

		age := time.Since(newest)
		if age > maxAge {
			return check.Failf("newest is %s old (max %s)", age.Round(time.Minute), maxAge)
		}
		return check.Passf("newest is %s old", age.Round(time.Minute))
	}
}

// DiskSpace passes when the filesystem holding path has at least
// minBytes available.
func DiskSpace(path string, minBytes uint64) check.Probe {
	return func(context.Context) check.Outcome {
		var stat syscall.Statfs_t
		if err := syscall.Statfs(path, &stat); err != nil {
			return check.Failf("cannot check disk space: %v", err)
		}

		available := stat.Bavail * uint64(stat.Bsize)
		if available < minBytes {
			return check.Failf("%s free (minimum: %s)", formatBytes(available), formatBytes(minBytes))
		}
		return check.Passf("%s free", formatBytes(available))
	}
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
		tb = 1024 * gb
	)

	switch {
	case bytes >= tb:
		return fmt.Sprintf("%.1f TB", float64(bytes)/tb)
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
