// Package validate decides whether a draft can be submitted. Submittable is
// the only predicate used by the submit action and the split editor.
package validate

import (
	"fmt"
	"strings"

	"github.com/xpense-dev/xpense/internal/id"
	"github.com/xpense-dev/xpense/internal/model"
)

// DraftLevel is the Line value of problems that concern the draft itself.
const DraftLevel = -1

// Problem describes one reason a draft cannot be submitted.
type Problem struct {
	Line        int // split line index, or DraftLevel
	Field       model.Field
	Description string
}

func (p Problem) Error() string {
	if p.Line == DraftLevel {
		return fmt.Sprintf("%s: %s", p.Field, p.Description)
	}
	return fmt.Sprintf("split line %d %s: %s", p.Line+1, p.Field, p.Description)
}

// Submittable reports whether d passes every rule.
func Submittable(d model.Draft) bool {
	return len(Check(d)) == 0
}

// Check returns every rule d violates, draft-level problems first.
func Check(d model.Draft) []Problem {
	var probs []Problem
	add := func(line int, f model.Field, desc string) {
		probs = append(probs, Problem{Line: line, Field: f, Description: desc})
	}

	if !d.Mode.Valid() {
		add(DraftLevel, model.FieldEntryType, fmt.Sprintf("unknown mode %q", d.Mode))
		return probs
	}
	if !d.Mode.Allows(d.EntryType) {
		add(DraftLevel, model.FieldEntryType, fmt.Sprintf("%s is not a %s entry", d.EntryType, d.Mode))
		return probs
	}

	if d.Mode == model.ModeTransfer {
		checkBasic(d.Account, d.Amount, DraftLevel, add)
		switch {
		case !d.ToAccount.IsSet():
			add(DraftLevel, model.FieldToAccount, "required")
		case d.ToAccount == d.Account:
			add(DraftLevel, model.FieldToAccount, "must differ from the source account")
		}
		if d.Attachment != nil {
			add(DraftLevel, model.FieldAttachment, "not allowed on transfers")
		}
		if d.SplitEnabled {
			add(DraftLevel, model.FieldSplit, "not available for transfers")
		}
		return probs
	}

	if d.Mode == model.ModeLoan {
		if !d.Contact.IsSet() {
			add(DraftLevel, model.FieldContact, "required")
		}
		if !d.ContactAccount.IsSet() {
			add(DraftLevel, model.FieldContactAccount, "required")
		}
	}

	if !d.SplitEnabled {
		checkBasic(d.Account, d.Amount, DraftLevel, add)
		checkTyped(d.Mode, d.EntryType, d.ExpenseCategory, d.IncomeSource, d.LoanRecord, DraftLevel, add)
		return probs
	}

	if len(d.Lines) == 0 {
		add(DraftLevel, model.FieldSplit, "add at least one split line")
		return probs
	}
	for i, line := range d.Lines {
		checkBasic(line.Account, line.Amount, i, add)
		t := line.Type
		if d.Mode == model.ModeStandard {
			t = d.EntryType
		} else if !d.Mode.Allows(t) {
			add(i, model.FieldType, fmt.Sprintf("%q is not a %s entry", t, d.Mode))
			continue
		}
		checkTyped(d.Mode, t, line.ExpenseCategory, line.IncomeSource, line.LoanRecord, i, add)
	}
	return probs
}

type addFunc func(line int, f model.Field, desc string)

// checkBasic applies the rule every mode shares: account set, amount > 0.
func checkBasic(account id.ID, amount string, line int, add addFunc) {
	if !account.IsSet() {
		add(line, model.FieldAccount, "required")
	}
	if _, ok := model.ParseAmount(amount); !ok {
		if strings.TrimSpace(amount) == "" {
			add(line, model.FieldAmount, "required")
		} else {
			add(line, model.FieldAmount, fmt.Sprintf("%q is not an amount greater than zero", amount))
		}
	}
}

// checkTyped applies the entry-type specific reference rules.
func checkTyped(mode model.Mode, t model.EntryType, expenseCategory, incomeSource, loanRecord id.ID, line int, add addFunc) {
	switch mode {
	case model.ModeStandard:
		if t == model.EntryIncome {
			if !incomeSource.IsSet() {
				add(line, model.FieldIncomeSource, "required")
			}
		} else if !expenseCategory.IsSet() {
			add(line, model.FieldExpenseCategory, "required")
		}
	case model.ModeLoan:
		if t.NeedsLoanRecord() && !loanRecord.IsSet() {
			add(line, model.FieldLoanRecord, "required")
		}
	}
}
