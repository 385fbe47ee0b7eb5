package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tilde-lab/mpds-client-go/pkg/projection"
)

// Plot types understood by the visavis web application.
const (
	PlotBar = "bar"
	Plot3D  = "plot3d"
)

// plotEnvelope is the top-level visavis payload format.
type plotEnvelope struct {
	UseVisavisType string         `json:"use_visavis_type"`
	Payload        map[string]any `json:"payload"`
}

// SavePlot writes rows as a plot payload for the given plot type and
// returns the file path. Column indices select the plotted values:
// bar uses columns 0 (x) and 1 (y); plot3d uses columns 0-2 as
// coordinates, 3 as point labels and 4 as the mesh discriminator.
func (e *Exporter) SavePlot(rows []projection.Row, columns []string, plotType string) (string, error) {
	if err := e.ensureDir(); err != nil {
		return "", err
	}

	var payload map[string]any
	switch plotType {
	case PlotBar:
		if len(columns) < 2 {
			return "", fmt.Errorf("bar plot needs 2 columns, got %d", len(columns))
		}
		payload = barPayload(rows, columns)
	case Plot3D:
		if len(columns) < 5 {
			return "", fmt.Errorf("plot3d needs 5 columns, got %d", len(columns))
		}
		payload = plot3DPayload(rows, columns)
	default:
		return "", fmt.Errorf("%s is an unknown plot type", plotType)
	}

	data, err := json.MarshalIndent(plotEnvelope{
		UseVisavisType: plotType,
		Payload:        payload,
	}, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal plot payload: %w", err)
	}

	path := filepath.Join(e.Dir, genBasename()+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write plot payload: %w", err)
	}

	e.logger.Info().Str("path", path).Str("plot_type", plotType).Msg("Plot export written")
	return path, nil
}

func barPayload(rows []projection.Row, columns []string) map[string]any {
	x := make([]any, 0, len(rows))
	y := make([]any, 0, len(rows))
	for _, row := range rows {
		x = append(x, cell(row, 0))
		y = append(y, cell(row, 1))
	}

	return map[string]any{
		"x":      []any{x},
		"y":      y,
		"xtitle": Title(columns[0]),
		"ytitle": Title(columns[1]),
	}
}

func plot3DPayload(rows []projection.Row, columns []string) map[string]any {
	points := map[string]any{}
	var px, py, pz, labels []any
	var meshes []map[string][]any

	// Consecutive rows sharing the mesh discriminator column belong to
	// one mesh. Discriminators are compared by rendered key, so
	// non-comparable column values (decoded JSON arrays) group fine. A
	// nil discriminator opens no mesh: rows before the first named mesh
	// contribute points only.
	recentMesh := meshKey(nil)
	for _, row := range rows {
		px = append(px, cell(row, 0))
		py = append(py, cell(row, 1))
		pz = append(pz, cell(row, 2))
		labels = append(labels, cell(row, 3))

		key := meshKey(cell(row, 4))
		if key != recentMesh {
			meshes = append(meshes, map[string][]any{"x": {}, "y": {}, "z": {}})
		}
		recentMesh = key

		if len(meshes) == 0 {
			continue
		}
		last := meshes[len(meshes)-1]
		last["x"] = append(last["x"], cell(row, 0))
		last["y"] = append(last["y"], cell(row, 1))
		last["z"] = append(last["z"], cell(row, 2))
	}

	points["x"] = px
	points["y"] = py
	points["z"] = pz
	points["labels"] = labels

	return map[string]any{
		"points": points,
		"meshes": meshes,
		"xtitle": Title(columns[0]),
		"ytitle": Title(columns[1]),
		"ztitle": Title(columns[2]),
	}
}

func cell(row projection.Row, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

// meshKey renders a mesh discriminator as a comparable grouping key.
func meshKey(v any) string {
	return fmt.Sprint(v)
}
