package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Times  []float64   `json:"times"`
	X      []float64   `json:"x"`
	Levels [][]float64 `json:"levels"`
}

// WriteCSV writes one record per time level: t followed by every point.
func WriteCSV(w io.Writer, rows [][]float64, times []float64) error {
	if len(rows) != len(times) {
		return fmt.Errorf("%d levels but %d times", len(rows), len(times))
	}
	cw := csv.NewWriter(w)
	if len(rows) > 0 {
		header := []string{"t"}
		for j := range rows[0] {
			header = append(header, fmt.Sprintf("x%d", j))
		}
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	for i, row := range rows {
		record := make([]string, 0, len(row)+1)
		record = append(record, formatFloat(times[i]))
		for _, v := range row {
			record = append(record, formatFloat(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportJSON writes a run with its node positions j·dx.
func ExportJSON(w io.Writer, meta RunMetadata, rows [][]float64, times []float64) error {
	data := ExportData{
		Run:    meta,
		Times:  times,
		X:      make([]float64, meta.Points),
		Levels: rows,
	}
	for j := range data.X {
		data.X[j] = float64(j) * meta.Dx
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
