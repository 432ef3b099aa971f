package annotate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{"frame_index", "feature_id", "x", "y", "visible"}

// ImportError reports rows that were skipped during import. The import
// itself succeeds; the caller decides how to surface the count.
type ImportError struct {
	Skipped int
	Total   int
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("skipped %d of %d feature rows", e.Skipped, e.Total)
}

// ExportCSV writes the table with columns
// {frame_index, feature_id, x, y, visible}.
func ExportCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range t.Rows() {
		rec := []string{
			strconv.Itoa(row.Frame),
			strconv.FormatInt(row.Feature.ID, 10),
			strconv.FormatFloat(row.Feature.X, 'f', 3, 64),
			strconv.FormatFloat(row.Feature.Y, 'f', 3, 64),
			strconv.FormatBool(row.Feature.Visible),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads the export schema back. Malformed rows are skipped, not
// fatal: the table is returned alongside an *ImportError carrying the
// skipped count when any row was dropped.
func ImportCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	t := NewTable()
	skipped, total := 0, 0
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			total++
			continue
		}
		if first {
			first = false
			if len(rec) > 0 && rec[0] == csvHeader[0] {
				continue // header row
			}
		}
		total++
		row, ok := parseRow(rec)
		if !ok {
			skipped++
			continue
		}
		t.Insert(row.Frame, row.Feature)
	}
	if skipped > 0 {
		return t, &ImportError{Skipped: skipped, Total: total}
	}
	return t, nil
}

func parseRow(rec []string) (Row, bool) {
	if len(rec) < 5 {
		return Row{}, false
	}
	frame, err := strconv.Atoi(rec[0])
	if err != nil || frame < 0 {
		return Row{}, false
	}
	id, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil || id <= 0 {
		return Row{}, false
	}
	x, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return Row{}, false
	}
	y, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return Row{}, false
	}
	visible, err := strconv.ParseBool(rec[4])
	if err != nil {
		return Row{}, false
	}
	return Row{Frame: frame, Feature: Feature{ID: id, X: x, Y: y, Visible: visible}}, true
}
