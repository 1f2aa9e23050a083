package segio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TemplatesPath builds the conventional templates filename for a chosen
// cluster count k: baseDir/base.<k, zero-padded to width 2>.ep.
func TemplatesPath(baseDir, base string, k int) string {
	return filepath.Join(baseDir, fmt.Sprintf("%s.%02d.ep", base, k))
}

// WriteTemplates writes a flat row-major K×R matrix of template values,
// one row per cluster, tab-delimited.
func WriteTemplates(path string, templates [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	defer w.Flush()

	for _, row := range templates {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(cells); err != nil {
			return err
		}
	}
	return w.Error()
}

// ReadTemplates reads a flat K×R matrix back, validating every row has
// exactly r columns.
func ReadTemplates(path string, r int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.Comma = '\t'
	rd.FieldsPerRecord = -1

	var out [][]float64
	for {
		row, err := rd.Read()
		if err != nil {
			break
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) != r {
			return nil, fmt.Errorf("segio: template row has %d columns, expected %d", len(row), r)
		}
		vals := make([]float64, r)
		for i, cell := range row {
			vals[i], err = strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, vals)
	}
	return out, nil
}
