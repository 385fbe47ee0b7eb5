// Package export provides helpers for saving retrieved MPDS result
// rows: CSV for external tooling and plot-payload JSON for the visavis
// web application at https://mpds.io/visavis.
package export

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tilde-lab/mpds-client-go/pkg/projection"
)

// DefaultDir is where exports land unless overridden.
const DefaultDir = "/tmp/_MPDS"

const basenameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// humanNames maps terse column identifiers to plot axis titles.
var humanNames = map[string]string{
	"length":     "Bond lengths, A",
	"occurrence": "Counts",
	"bandgap":    "Band gap, eV",
}

// Exporter writes result rows to files under a target directory.
type Exporter struct {
	// Dir is the export directory, created on demand.
	Dir string

	logger zerolog.Logger
}

// New creates an exporter for dir, DefaultDir when empty.
func New(dir string) *Exporter {
	if dir == "" {
		dir = DefaultDir
	}
	return &Exporter{
		Dir:    dir,
		logger: log.With().Str("component", "mpds-export").Logger(),
	}
}

// ensureDir creates the export directory and verifies it is writable.
func (e *Exporter) ensureDir() error {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	probe := filepath.Join(e.Dir, ".probe-"+genBasename())
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return fmt.Errorf("%s is not writable: %w", e.Dir, err)
	}
	return os.Remove(probe)
}

// genBasename produces a random 12-character file basename.
func genBasename() string {
	var sb strings.Builder
	for i := 0; i < 12; i++ {
		sb.WriteByte(basenameAlphabet[rand.Intn(len(basenameAlphabet))])
	}
	return sb.String()
}

// Title renders a column identifier as a human-readable axis title.
func Title(term string) string {
	if name, ok := humanNames[term]; ok {
		return name
	}
	if term == "" {
		return term
	}
	return strings.ToUpper(term[:1]) + term[1:]
}

// SaveCSV writes rows under the given column headers and returns the
// file path.
func (e *Exporter) SaveCSV(rows []projection.Row, columns []string) (string, error) {
	if err := e.ensureDir(); err != nil {
		return "", err
	}

	path := filepath.Join(e.Dir, genBasename()+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i := range record {
			record[i] = ""
			if i < len(row) && row[i] != nil {
				record[i] = fmt.Sprint(row[i])
			}
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	e.logger.Info().Str("path", path).Int("rows", len(rows)).Msg("CSV export written")
	return path, nil
}
