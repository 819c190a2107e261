package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/xpense-dev/xpense/internal/id"
)

// Field names a draft or split line field.
type Field string

const (
	FieldDate            Field = "date"
	FieldAccount         Field = "account"
	FieldToAccount       Field = "to_account"
	FieldAmount          Field = "amount"
	FieldNote            Field = "note"
	FieldContact         Field = "contact"
	FieldContactAccount  Field = "contact_account"
	FieldLoanRecord      Field = "loan_record"
	FieldExpenseCategory Field = "expense_category"
	FieldIncomeSource    Field = "income_source"
	FieldAttachment      Field = "attachment"
	FieldType            Field = "type"
	FieldSplit           Field = "split"
	FieldEntryType       Field = "entry_type"
)

// Attachment is an optional receipt image uploaded with a transaction.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// SplitLine is one allocation of a split transaction.
type SplitLine struct {
	Account         id.ID
	Amount          string // decimal as typed
	Type            EntryType
	Note            string
	ExpenseCategory id.ID
	IncomeSource    id.ID
	LoanRecord      id.ID
}

// Draft is the in-memory state of a transaction being composed.
type Draft struct {
	ID        uuid.UUID
	Mode      Mode
	EntryType EntryType
	Date      time.Time

	Account   id.ID
	ToAccount id.ID // TRANSFER only
	Amount    string
	Note      string

	Contact        id.ID // LOAN only
	ContactAccount id.ID // LOAN only
	LoanRecord     id.ID // LOAN_REPAYMENT / REIMBURSEMENT only

	ExpenseCategory id.ID
	IncomeSource    id.ID

	Attachment *Attachment

	SplitEnabled bool
	Lines        []SplitLine
}

// Get returns the string form of a scalar field, "" when unset.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldAccount:
		return d.Account.String()
	case FieldToAccount:
		return d.ToAccount.String()
	case FieldAmount:
		return d.Amount
	case FieldNote:
		return d.Note
	case FieldContact:
		return d.Contact.String()
	case FieldContactAccount:
		return d.ContactAccount.String()
	case FieldLoanRecord:
		return d.LoanRecord.String()
	case FieldExpenseCategory:
		return d.ExpenseCategory.String()
	case FieldIncomeSource:
		return d.IncomeSource.String()
	case FieldAttachment:
		if d.Attachment != nil {
			return d.Attachment.Name
		}
		return ""
	case FieldDate:
		if d.Date.IsZero() {
			return ""
		}
		return d.Date.Format(DateLayout)
	default:
		return ""
	}
}

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02T15:04"
