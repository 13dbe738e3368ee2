package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/fftscope/logging"
)

// Load reads settings from path, layered over the defaults so that keys
// absent from the file keep their default values. A missing file yields the
// defaults and no error. A file that cannot be read, decoded or validated
// yields the defaults together with the error.
func Load(path string) (*Settings, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "config",
		"function":  "Load",
		"path":      path,
	})

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("No settings file, using defaults")
		return Default(), nil
	}
	if err != nil {
		logger.Error(err, "Failed to read settings, using defaults")
		return Default(), fmt.Errorf("reading settings: %w", err)
	}

	s, err := Decode(data, isYAML(path))
	if err != nil {
		logger.Error(err, "Failed to load settings, using defaults")
		return Default(), err
	}

	logger.Info("Settings loaded", logging.Fields{
		"threshold_mode": s.PeakThresholdMode,
		"window":         s.WindowFunction,
	})
	return s, nil
}

// Decode parses a settings document over the defaults and validates it
func Decode(data []byte, asYAML bool) (*Settings, error) {
	s := Default()

	var err error
	if asYAML {
		err = yaml.Unmarshal(data, s)
	} else {
		err = json.Unmarshal(data, s)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Encode renders s in the format selected by asYAML
func (s *Settings) Encode(asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(s)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Save validates s and atomically replaces the file at path
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}

	data, err := s.Encode(isYAML(path))
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	logging.Info("Settings saved", logging.Fields{
		"component": "config",
		"path":      path,
	})
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// writeFileAtomic writes to a temp file beside path and renames it into place
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
