package segio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Record is one timepoint's row of a .seg file: sample GFP, a polarity
// indicator (+1 Direct / -1 Invert), the 1-based segment id (0 means
// Undefined), the GEV share, and the correlation with the assigned
// template. Column order on disk is GFP, Polarity, Segment, GEV, Corr.
type Record struct {
	GFP      float64
	Polarity float64
	Segment  int
	GEV      float64
	Corr     float64
}

var segHeader = []string{"GFP", "Polarity", "Segment", "GEV", "Corr"}

// legacyDisHeader is accepted on read in place of "Polarity" for files
// written by older tooling.
const legacyDisHeader = "Dis"

// WriteSeg writes one row per timepoint to path, tab-delimited, with a
// header row.
func WriteSeg(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	defer w.Flush()

	if err := w.Write(segHeader); err != nil {
		return err
	}
	row := make([]string, 5)
	for _, r := range records {
		row[0] = strconv.FormatFloat(r.GFP, 'g', -1, 64)
		row[1] = strconv.FormatFloat(r.Polarity, 'g', -1, 64)
		row[2] = strconv.Itoa(r.Segment)
		row[3] = strconv.FormatFloat(r.GEV, 'g', -1, 64)
		row[4] = strconv.FormatFloat(r.Corr, 'g', -1, 64)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// ReadSeg reads a .seg file back into Records. A header using the legacy
// "Dis" column name in place of "Polarity" is accepted transparently;
// its values are interpreted identically (-1 means Invert).
func ReadSeg(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if h == legacyDisHeader {
			h = "Polarity"
		}
		cols[h] = i
	}
	for _, want := range []string{"GFP", "Polarity", "Segment", "GEV", "Corr"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("segio: .seg file missing column %q", want)
		}
	}

	var out []Record
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		gfp, _ := strconv.ParseFloat(row[cols["GFP"]], 64)
		pol, _ := strconv.ParseFloat(row[cols["Polarity"]], 64)
		seg, _ := strconv.Atoi(row[cols["Segment"]])
		gev, _ := strconv.ParseFloat(row[cols["GEV"]], 64)
		corr, _ := strconv.ParseFloat(row[cols["Corr"]], 64)
		out = append(out, Record{GFP: gfp, Polarity: pol, Segment: seg, GEV: gev, Corr: corr})
	}
	return out, nil
}
