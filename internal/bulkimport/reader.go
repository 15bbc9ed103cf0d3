package bulkimport

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrInvalidWorkbook = errors.New("invalid_workbook")

// row is one data line of the active sheet. Number is the 1-based sheet row.
type row struct {
	Number int
	cells  []string
}

// readRows returns every row after the header of the active sheet. Raw cell
// values are used so numbers and dates are not run through display formats.
func readRows(r io.Reader) ([]row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}

	rows := make([]row, 0, len(raw))
	for i, cells := range raw {
		if i == 0 {
			continue
		}
		rows = append(rows, row{Number: i + 1, cells: cells})
	}
	return rows, nil
}

func (r row) text(i int) string {
	if i < 0 || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r row) optional(i int) *string {
	v := r.text(i)
	if v == "" {
		return nil
	}
	return &v
}

// number returns 0 for an empty cell.
func (r row) number(i int) (float64, error) {
	v := r.text(i)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return n, nil
}

// date accepts ISO text or an Excel serial date and returns YYYY-MM-DD.
// Other text is passed through for the service to reject.
func (r row) date(i int) string {
	v := r.text(i)
	if v == "" {
		return ""
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			if serial != math.Trunc(serial) {
				return t.Format("2006-01-02T15:04")
			}
			return t.Format("2006-01-02")
		}
	}
	if len(v) > 10 && strings.HasSuffix(v, " 00:00:00") {
		return v[:10]
	}
	return v
}

func rowError(n int, format string, args ...any) string {
	return fmt.Sprintf("Row %d: %s", n, fmt.Sprintf(format, args...))
}
