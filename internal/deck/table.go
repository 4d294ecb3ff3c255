package deck

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

func parseCSVFile(path string) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open deck: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV reads front,back rows. A first row of "front,back" is treated
// as a header.
func ParseCSV(r io.Reader) (*Deck, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv deck: %w", err)
	}
	return fromRows(rows), nil
}

func parseExcelFile(path string) (*Deck, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel deck: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel deck has no sheets")
	}

	// Column A is the front, column B the back, on the first sheet.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	d := fromRows(rows)
	d.Title = sheets[0]
	if strings.EqualFold(d.Title, "Sheet1") {
		d.Title = ""
	}
	return d, nil
}

func fromRows(rows [][]string) *Deck {
	d := &Deck{}
	for i, row := range rows {
		var front, back string
		if len(row) > 0 {
			front = row[0]
		}
		if len(row) > 1 {
			back = row[1]
		}
		if i == 0 && isHeader(front, back) {
			continue
		}
		d.add(front, back)
	}
	return d
}

func isHeader(front, back string) bool {
	return strings.EqualFold(strings.TrimSpace(front), "front") &&
		strings.EqualFold(strings.TrimSpace(back), "back")
}
