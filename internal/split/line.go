package split

import (
	"fmt"

	"github.com/xpense-dev/xpense/internal/id"
	"github.com/xpense-dev/xpense/internal/model"
)

// Create returns a new line prefilled from the draft so the user edits
// deltas. Account and amount start empty.
func Create(d model.Draft) model.SplitLine {
	line := model.SplitLine{
		Type: d.EntryType,
		Note: d.Note,
	}
	switch d.Mode {
	case model.ModeStandard:
		if d.EntryType == model.EntryIncome {
			line.IncomeSource = d.IncomeSource
		} else {
			line.ExpenseCategory = d.ExpenseCategory
		}
	case model.ModeLoan:
		if d.EntryType.NeedsLoanRecord() {
			line.LoanRecord = d.LoanRecord
		}
	}
	return line
}

// Fill returns line with its blank fields taken from defaults, usually the
// result of Create. A loan record is only inherited by a line of the same type.
func Fill(line, defaults model.SplitLine) model.SplitLine {
	if line.Type == "" {
		line.Type = defaults.Type
	}
	if line.Note == "" {
		line.Note = defaults.Note
	}
	if !line.ExpenseCategory.IsSet() {
		line.ExpenseCategory = defaults.ExpenseCategory
	}
	if !line.IncomeSource.IsSet() {
		line.IncomeSource = defaults.IncomeSource
	}
	if !line.LoanRecord.IsSet() && line.Type == defaults.Type {
		line.LoanRecord = defaults.LoanRecord
	}
	return line
}

// Update returns a copy of line with field set to value.
func Update(line model.SplitLine, field model.Field, value string) (model.SplitLine, error) {
	switch field {
	case model.FieldAmount:
		line.Amount = value
	case model.FieldNote:
		line.Note = value
	case model.FieldType:
		t, err := model.ParseEntryType(value)
		if err != nil {
			return line, err
		}
		return withType(line, t), nil
	case model.FieldAccount, model.FieldExpenseCategory, model.FieldIncomeSource, model.FieldLoanRecord:
		ref, err := id.Parse(value)
		if err != nil {
			return line, fmt.Errorf("split line %s: %w", field, err)
		}
		switch field {
		case model.FieldAccount:
			line.Account = ref
		case model.FieldExpenseCategory:
			line.ExpenseCategory = ref
		case model.FieldIncomeSource:
			line.IncomeSource = ref
		case model.FieldLoanRecord:
			line.LoanRecord = ref
		}
	default:
		return line, fmt.Errorf("split line has no field %q", field)
	}
	return line, nil
}

// Remove returns a new slice without lines[i]. An out-of-range index
// returns an unchanged copy.
func Remove(lines []model.SplitLine, i int) []model.SplitLine {
	out := make([]model.SplitLine, 0, len(lines))
	for j, l := range lines {
		if j != i {
			out = append(out, l)
		}
	}
	return out
}

// Retype applies a draft entry-type switch to a line. STANDARD lines follow
// the draft type; LOAN lines keep their own type unless it left the mode.
func Retype(line model.SplitLine, mode model.Mode, t model.EntryType) model.SplitLine {
	if mode == model.ModeStandard || !mode.Allows(line.Type) {
		return withType(line, t)
	}
	return line
}

// withType sets the line type and clears references the new type cannot carry.
func withType(line model.SplitLine, t model.EntryType) model.SplitLine {
	old := line.Type
	line.Type = t
	if t != model.EntryExpense {
		line.ExpenseCategory = ""
	}
	if t != model.EntryIncome {
		line.IncomeSource = ""
	}
	if !t.NeedsLoanRecord() || t.LoanDirection() != old.LoanDirection() {
		line.LoanRecord = ""
	}
	return line
}
