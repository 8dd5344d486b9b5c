package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/boatsim/internal/dynamo"
)

type ExportData struct {
	RunInfo
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Controls [][]float64        `json:"controls"`
	Metrics  map[string]float64 `json:"metrics"`
}

// ExportJSON writes a full run as indented JSON.
func ExportJSON(w io.Writer, info RunInfo, result *dynamo.Result) error {
	data := ExportData{
		RunInfo:  info,
		Steps:    len(result.Times),
		Times:    result.Times,
		States:   make([][]float64, len(result.States)),
		Controls: make([][]float64, len(result.Controls)),
		Metrics:  result.Metrics,
	}

	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Controls[i] = c
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV writes one row per recorded state. The control applied from a
// state onwards shares its row; the final state has zero controls.
func WriteCSV(out io.Writer, info RunInfo, result *dynamo.Result) error {
	w := csv.NewWriter(out)

	if len(result.States) == 0 {
		w.Flush()
		return w.Error()
	}

	numControls := len(info.ControlColumns)
	if numControls == 0 && len(result.Controls) > 0 {
		numControls = len(result.Controls[0])
	}

	header := []string{"time"}
	header = append(header, columnNames(info.StateColumns, len(result.States[0]), "x")...)
	header = append(header, columnNames(info.ControlColumns, numControls, "u")...)

	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}

		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'g', 10, 64))
		}

		for j := 0; j < numControls; j++ {
			val := 0.0
			if i < len(result.Controls) && j < len(result.Controls[i]) {
				val = result.Controls[i][j]
			}
			row = append(row, strconv.FormatFloat(val, 'g', 10, 64))
		}

		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func columnNames(names []string, n int, prefix string) []string {
	out := make([]string, n)
	for i := range out {
		if i < len(names) {
			out[i] = names[i]
		} else {
			out[i] = fmt.Sprintf("%s%d", prefix, i)
		}
	}
	return out
}
