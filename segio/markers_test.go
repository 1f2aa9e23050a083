package segio

import "testing"

func TestWriteReadErrorMarkerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/subject01.error.data.mrk"

	if err := WriteErrorMarker(path, 5); err != nil {
		t.Fatalf("WriteErrorMarker: %v", err)
	}
	got, err := ReadErrorMarker(path)
	if err != nil {
		t.Fatalf("ReadErrorMarker: %v", err)
	}
	if got != 5 {
		t.Errorf("ReadErrorMarker = %d, want 5", got)
	}
}
