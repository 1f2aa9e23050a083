package segio

import (
	"os"
	"strings"
	"testing"
)

func TestWriteReadSegRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/test.seg"

	records := []Record{
		{GFP: 1.5, Polarity: 1, Segment: 1, GEV: 0.8, Corr: 0.9},
		{GFP: 2.1, Polarity: -1, Segment: 0, GEV: 0, Corr: 0},
	}
	if err := WriteSeg(path, records); err != nil {
		t.Fatalf("WriteSeg: %v", err)
	}

	got, err := ReadSeg(path)
	if err != nil {
		t.Fatalf("ReadSeg: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Segment != 1 || got[1].Polarity != -1 {
		t.Errorf("round-tripped records mismatch: %+v", got)
	}
}

func TestReadSegAcceptsLegacyDisColumn(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/legacy.seg"
	content := "GFP\tDis\tSegment\tGEV\tCorr\n1.0\t-1\t2\t0.5\t0.7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	got, err := ReadSeg(path)
	if err != nil {
		t.Fatalf("ReadSeg: %v", err)
	}
	if len(got) != 1 || got[0].Polarity != -1 || got[0].Segment != 2 {
		t.Errorf("legacy Dis column not interpreted as Polarity: %+v", got)
	}
}

func TestReadSegMissingColumnErrors(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/bad.seg"
	os.WriteFile(path, []byte("GFP\tPolarity\tSegment\n1\t1\t1\n"), 0o644)

	if _, err := ReadSeg(path); err == nil || !strings.Contains(err.Error(), "GEV") {
		t.Errorf("expected a missing-column error mentioning GEV, got %v", err)
	}
}
