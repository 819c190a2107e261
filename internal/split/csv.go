package split

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xpense-dev/xpense/internal/id"
	"github.com/xpense-dev/xpense/internal/model"
)

// Header is the CSV header for split line files.
const Header = "account,amount,type,note,expense_category,income_source,loan_record"

const (
	numFields   = 7
	colAccount  = 0
	colAmount   = 1
	colType     = 2
	colNote     = 3
	colExpCat   = 4
	colIncSrc   = 5
	colLoanRecd = 6
)

// ReadLines reads split lines from r. The header row is required.
// A blank type cell leaves Type empty for the caller to inherit.
func ReadLines(r io.Reader) ([]model.SplitLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading split CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}
	if !isHeader(records[0]) {
		return nil, fmt.Errorf("reading split CSV: first row must be the header %q", Header)
	}

	var lines []model.SplitLine
	for i, rec := range records[1:] {
		line, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// WriteLines writes lines (including header) to w.
func WriteLines(w io.Writer, lines []model.SplitLine) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, line := range lines {
		if err := cw.Write(MarshalLine(line)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func isHeader(rec []string) bool {
	want := strings.Split(Header, ",")
	if len(rec) != len(want) {
		return false
	}
	for i, col := range rec {
		if !strings.EqualFold(strings.TrimSpace(col), want[i]) {
			return false
		}
	}
	return true
}

// MarshalLine converts a line to a CSV row.
func MarshalLine(line model.SplitLine) []string {
	row := make([]string, numFields)
	row[colAccount] = line.Account.String()
	row[colAmount] = line.Amount
	row[colType] = string(line.Type)
	row[colNote] = line.Note
	row[colExpCat] = line.ExpenseCategory.String()
	row[colIncSrc] = line.IncomeSource.String()
	row[colLoanRecd] = line.LoanRecord.String()
	return row
}

// UnmarshalLine converts a CSV row to a line.
func UnmarshalLine(record []string) (model.SplitLine, error) {
	if len(record) != numFields {
		return model.SplitLine{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var line model.SplitLine
	refs := []struct {
		col int
		dst *id.ID
	}{
		{colAccount, &line.Account},
		{colExpCat, &line.ExpenseCategory},
		{colIncSrc, &line.IncomeSource},
		{colLoanRecd, &line.LoanRecord},
	}
	for _, ref := range refs {
		v, err := id.Parse(record[ref.col])
		if err != nil {
			return model.SplitLine{}, err
		}
		*ref.dst = v
	}

	if t := strings.TrimSpace(record[colType]); t != "" {
		et, err := model.ParseEntryType(t)
		if err != nil {
			return model.SplitLine{}, err
		}
		line.Type = et
	}

	line.Amount = strings.TrimSpace(record[colAmount])
	line.Note = record[colNote]
	return line, nil
}
