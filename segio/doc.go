// Package segio implements the three persistence formats at the core's
// external boundary: the per-timepoint segmentation (.seg)
// file, the flat K×R templates file, and the criteria error marker
// (.error.data.mrk) file. None of these are wire protocols; they are
// plain tab-delimited text tables. The .seg and templates files are read
// and written with encoding/csv, the marker file with bufio and fmt.
package segio
