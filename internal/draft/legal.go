package draft

import "github.com/xpense-dev/xpense/internal/model"

// FieldSet is a set of draft fields.
type FieldSet map[model.Field]bool

// Has reports whether f is in the set.
func (s FieldSet) Has(f model.Field) bool { return s[f] }

// scalarFields lists the clearable draft fields in a stable order.
var scalarFields = []model.Field{
	model.FieldAccount,
	model.FieldToAccount,
	model.FieldAmount,
	model.FieldNote,
	model.FieldContact,
	model.FieldContactAccount,
	model.FieldLoanRecord,
	model.FieldExpenseCategory,
	model.FieldIncomeSource,
	model.FieldAttachment,
}

// Fields returns every scalar draft field.
func Fields() []model.Field {
	out := make([]model.Field, len(scalarFields))
	copy(out, scalarFields)
	return out
}

// Legal returns the fields a draft of (mode, t) may carry. It is the single
// policy deciding what survives a mode or entry type switch.
func Legal(mode model.Mode, t model.EntryType) FieldSet {
	set := FieldSet{
		model.FieldDate:    true,
		model.FieldAccount: true,
		model.FieldAmount:  true,
		model.FieldNote:    true,
	}
	switch mode {
	case model.ModeStandard:
		set[model.FieldAttachment] = true
		if t == model.EntryIncome {
			set[model.FieldIncomeSource] = true
		} else {
			set[model.FieldExpenseCategory] = true
		}
	case model.ModeLoan:
		set[model.FieldAttachment] = true
		set[model.FieldContact] = true
		set[model.FieldContactAccount] = true
		if t.NeedsLoanRecord() {
			set[model.FieldLoanRecord] = true
		}
	case model.ModeTransfer:
		set[model.FieldToAccount] = true
	}
	return set
}

// Clean zeroes every field outside Legal(d.Mode, d.EntryType).
func Clean(d model.Draft) model.Draft {
	legal := Legal(d.Mode, d.EntryType)
	for _, f := range scalarFields {
		if !legal.Has(f) {
			d = zero(d, f)
		}
	}
	return d
}

func zero(d model.Draft, f model.Field) model.Draft {
	switch f {
	case model.FieldAccount:
		d.Account = ""
	case model.FieldToAccount:
		d.ToAccount = ""
	case model.FieldAmount:
		d.Amount = ""
	case model.FieldNote:
		d.Note = ""
	case model.FieldContact:
		d.Contact = ""
	case model.FieldContactAccount:
		d.ContactAccount = ""
	case model.FieldLoanRecord:
		d.LoanRecord = ""
	case model.FieldExpenseCategory:
		d.ExpenseCategory = ""
	case model.FieldIncomeSource:
		d.IncomeSource = ""
	case model.FieldAttachment:
		d.Attachment = nil
	}
	return d
}
