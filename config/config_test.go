package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/RyanBlaney/fftscope/algorithms/peaks"
	"github.com/RyanBlaney/fftscope/algorithms/windowing"
	"github.com/RyanBlaney/fftscope/logging"
)

func init() {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
}

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}

	cfg, err := s.DetectorConfig()
	if err != nil {
		t.Fatalf("DetectorConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg, peaks.DefaultConfig()) {
		t.Errorf("detector config = %+v, want %+v", cfg, peaks.DefaultConfig())
	}

	w, err := s.Window()
	if err != nil || w != windowing.None {
		t.Errorf("window = %q, %v", w, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(s, Default()) {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	doc := `{"peak_threshold_mode": "statistical", "peak_statistical_factor": 2.5, "window_function": "hann"}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.PeakThresholdMode != "statistical" || s.PeakStatisticalFactor != 2.5 || s.WindowFunction != "hann" {
		t.Errorf("file values not applied: %+v", s)
	}
	if s.PeakMinDistance != 10 || s.PinFaceColor != "yellow" || len(s.DefaultColors) != 6 {
		t.Errorf("absent keys lost their defaults: %+v", s)
	}

	p, err := s.Policy()
	if err != nil {
		t.Fatalf("Policy: %v", err)
	}
	if p != peaks.StatisticalThreshold(2.5) {
		t.Errorf("policy = %+v", p)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	doc := "peak_labels_count: 0\nskip_dc_component: false\ndefault_colors: [\"#111111\", \"#222222\"]\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.PeakLabelsCount != 0 || s.SkipDCComponent {
		t.Errorf("yaml values not applied: %+v", s)
	}
	if !reflect.DeepEqual(s.DefaultColors, []string{"#111111", "#222222"}) {
		t.Errorf("colors = %v", s.DefaultColors)
	}
}

func TestLoadBadFileFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		invalid bool
	}{
		{"corrupt", `{"peak_labels_count": `, false},
		{"wrong type", `{"peak_labels_count": "many"}`, false},
		{"out of range", `{"peak_relative_threshold": 1.5}`, true},
		{"unknown mode", `{"peak_threshold_mode": "loudest"}`, true},
		{"unknown window", `{"window_function": "kaiser"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			if err := os.WriteFile(path, []byte(tt.doc), 0o644); err != nil {
				t.Fatal(err)
			}

			s, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.invalid && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("err = %v, want ErrInvalidSettings", err)
			}
			if !reflect.DeepEqual(s, Default()) {
				t.Errorf("settings = %+v, want defaults", s)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	s := Default()
	s.PeakMinDistance = 0
	s.PeakWindowSize = 0
	s.DefaultColors = nil

	err := s.Validate()
	if !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("err = %v, want ErrInvalidSettings", err)
	}
	for _, key := range []string{"peak_min_distance", "peak_window_size", "default_colors"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.yml"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, name)

			s := Default()
			s.PeakThresholdMode = "absolute"
			s.PeakAbsoluteThreshold = 0.25
			s.PinEdgeColor = "red"
			if err := s.Save(path); err != nil {
				t.Fatalf("Save: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(loaded, s) {
				t.Errorf("loaded = %+v, want %+v", loaded, s)
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 1 {
				t.Errorf("temp files left behind: %v", entries)
			}
		})
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"peak_labels_count": 7}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Default()
	s.PeakStatisticalFactor = -1
	if err := s.Save(path); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("err = %v, want ErrInvalidSettings", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"peak_labels_count": 7}` {
		t.Errorf("existing file was modified: %s", data)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := Default()
	c := s.Clone()
	c.DefaultColors[0] = "#000000"
	if s.DefaultColors[0] != "#0095ff" {
		t.Error("clone shares the color slice")
	}
}
