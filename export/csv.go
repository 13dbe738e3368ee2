// Package export writes spectra and rendered plots to files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RyanBlaney/fftscope/algorithms/spectral"
)

// ErrUnsupportedFormat is returned for file extensions no writer handles
var ErrUnsupportedFormat = errors.New("unsupported export format")

var spectrumHeader = []string{"Frequency_Hz", "Amplitude"}

// WriteSpectrumCSV writes one row per bin with full float precision
func WriteSpectrumCSV(w io.Writer, s *spectral.Spectrum) error {
	if s == nil {
		return errors.New("no spectrum to export")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(spectrumHeader); err != nil {
		return err
	}

	record := make([]string, 2)
	for i := 0; i < s.Len(); i++ {
		record[0] = strconv.FormatFloat(s.Frequency(i), 'g', -1, 64)
		record[1] = strconv.FormatFloat(s.Amplitude(i), 'g', -1, 64)
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadSpectrumCSV parses a file written by WriteSpectrumCSV
func ReadSpectrumCSV(r io.Reader) (*spectral.Spectrum, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(spectrumHeader)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, name := range spectrumHeader {
		if strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")) != name {
			return nil, fmt.Errorf("unexpected header %q, want %q", strings.Join(header, ","), strings.Join(spectrumHeader, ","))
		}
	}

	var frequencies, amplitudes []float64
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		f, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: frequency: %w", line, err)
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: amplitude: %w", line, err)
		}
		frequencies = append(frequencies, f)
		amplitudes = append(amplitudes, a)
	}

	return spectral.NewSpectrum(frequencies, amplitudes)
}

// SaveSpectrum writes s as CSV to path
func SaveSpectrum(path string, s *spectral.Spectrum) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSpectrumCSV(out, s); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

func LoadSpectrum(path string) (*spectral.Spectrum, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return ReadSpectrumCSV(in)
}
