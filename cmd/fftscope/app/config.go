package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/RyanBlaney/fftscope/algorithms/windowing"
	"github.com/RyanBlaney/fftscope/config"
)

// Config holds the command-line options
type Config struct {
	File         string
	Column       string
	Name         string
	SamplingRate float64
	StartRow     int
	RowCount     int // 0 reads to the end of the table
	Window       string
	SettingsPath string
	CSVPath      string
	PlotPath     string
	Interactive  bool
	Verbose      bool
}

func NewConfig() *Config {
	return &Config{
		StartRow:     1,
		SettingsPath: config.DefaultPath,
	}
}

// NewConfigFromCLI parses the process arguments
func NewConfigFromCLI() (*Config, error) {
	return ParseConfig(os.Args[1:], os.Stderr)
}

// ParseConfig parses args into a Config and checks that batch mode has
// everything it needs
func ParseConfig(args []string, output io.Writer) (*Config, error) {
	c := NewConfig()

	fs := flag.NewFlagSet("fftscope", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&c.File, "file", "", "Path to a CSV or Parquet table")
	fs.StringVar(&c.Column, "column", "", "Column to analyze")
	fs.StringVar(&c.Name, "name", "", "Analysis name shown in titles and legends")
	fs.Float64Var(&c.SamplingRate, "fs", 0, "Sampling frequency in Hz")
	fs.IntVar(&c.StartRow, "start", c.StartRow, "First row to analyze (1-based)")
	fs.IntVar(&c.RowCount, "rows", 0, "Number of rows to analyze, 0 for all remaining")
	fs.StringVar(&c.Window, "window", "", "Window function [none, blackman, hann, hamming]; empty uses the settings")
	fs.StringVar(&c.SettingsPath, "settings", c.SettingsPath, "Settings file (.json, .yaml)")
	fs.StringVar(&c.CSVPath, "csv", "", "Export the spectrum as CSV to this path")
	fs.StringVar(&c.PlotPath, "plot", "", "Export the plot to this path (.png, .jpg, .svg)")
	fs.BoolVar(&c.Interactive, "i", false, "Read commands from stdin")
	fs.BoolVar(&c.Verbose, "verbose", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		fs.Usage()
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Window != "" {
		if _, err := windowing.ParseType(c.Window); err != nil {
			return err
		}
	}
	if c.RowCount < 0 {
		return fmt.Errorf("rows must be >= 0, got %d", c.RowCount)
	}
	if c.Interactive {
		return nil
	}

	switch {
	case c.File == "":
		return errors.New("file is required")
	case c.Column == "":
		return errors.New("column is required")
	case c.SamplingRate <= 0:
		return errors.New("fs must be a positive sampling frequency")
	case c.StartRow < 1:
		return errors.New("start must be >= 1")
	}
	return nil
}
