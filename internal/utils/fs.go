package utils

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// FileExists reports whether path names an existing file.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates dirPath and any missing parents.
func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0755)
}

// SaveTOMLFile encodes data as TOML into filePath, replacing any previous
// contents.
func SaveTOMLFile(data any, filePath string) error {
	f, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(data)
}

// GetAbsolutePath resolves a config path for display. A relative path is
// made absolute when possible; an empty one reads as "unknown".
func GetAbsolutePath(configPath string) string {
	if configPath == "" {
		return "unknown"
	}
	if !filepath.IsAbs(configPath) {
		if abs, err := filepath.Abs(configPath); err == nil {
			return abs
		}
	}
	return configPath
}

// GetExecutableDir returns the directory holding the running binary. It is
// the last-resort config home when no user directory is writable.
func GetExecutableDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// DirWritable reports whether dirPath accepts new files, creating the
// directory first when it does not exist. The check file is removed before
// returning.
func DirWritable(dirPath string) bool {
	if _, err := os.Stat(dirPath); err != nil {
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			log.Warnf("Cannot create directory %s: %v", dirPath, err)
			return false
		}
	}
	checkFile := filepath.Join(dirPath, ".glyphseg_write_check")
	f, err := os.Create(checkFile)
	if err != nil {
		log.Warnf("Cannot write to directory %s: %v", dirPath, err)
		return false
	}
	f.Close()
	os.Remove(checkFile)
	return true
}
