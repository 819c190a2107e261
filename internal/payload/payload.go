// Package payload turns a submittable draft into the request the Xpense API
// expects.
package payload

import (
	"strings"

	"github.com/xpense-dev/xpense/internal/id"
	"github.com/xpense-dev/xpense/internal/model"
)

// API endpoints written to.
const (
	TransactionsEndpoint         = "/transactions/"
	InternalTransactionsEndpoint = "/internal-transactions/"
)

// Split is one ledger entry on one account.
type Split struct {
	Type            model.EntryType `json:"type"`
	Amount          string          `json:"amount"`
	Note            string          `json:"note"`
	ExpenseCategory *string         `json:"expense_category"`
	IncomeSource    *string         `json:"income_source"`
	Loan            *string         `json:"loan"`
}

// AccountEntry groups the splits booked on one account.
type AccountEntry struct {
	Account string  `json:"account"`
	Splits  []Split `json:"splits"`
}

// Transaction is the body of POST /transactions/.
type Transaction struct {
	Date           string         `json:"date"`
	Contact        *string        `json:"contact"`
	ContactAccount *string        `json:"contact_account"`
	Accounts       []AccountEntry `json:"accounts"`
}

// Transfer is the body of POST /internal-transactions/.
type Transfer struct {
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Amount      string `json:"amount"`
	Note        string `json:"note"`
	Date        string `json:"date"`
}

// Request is an assembled submission. Exactly one of Transaction and
// Transfer is set.
type Request struct {
	Endpoint    string
	Transaction *Transaction
	Transfer    *Transfer
	Attachment  *model.Attachment // never set for transfers
}

// Assemble builds the request for d. Callers check validate.Submittable first;
// Assemble itself does not validate.
func Assemble(d model.Draft) Request {
	date := d.Get(model.FieldDate)

	if d.Mode == model.ModeTransfer {
		return Request{
			Endpoint: InternalTransactionsEndpoint,
			Transfer: &Transfer{
				FromAccount: d.Account.String(),
				ToAccount:   d.ToAccount.String(),
				Amount:      strings.TrimSpace(d.Amount),
				Note:        d.Note,
				Date:        date,
			},
		}
	}

	txn := &Transaction{
		Date: date,
	}
	if d.Mode == model.ModeLoan {
		txn.Contact = d.Contact.Ptr()
		txn.ContactAccount = d.ContactAccount.Ptr()
	}

	if d.SplitEnabled {
		txn.Accounts = groupLines(d)
	} else {
		txn.Accounts = []AccountEntry{{
			Account: d.Account.String(),
			Splits: []Split{newSplit(d.EntryType, d.Amount, d.Note,
				d.ExpenseCategory, d.IncomeSource, d.LoanRecord)},
		}}
	}

	return Request{
		Endpoint:    TransactionsEndpoint,
		Transaction: txn,
		Attachment:  d.Attachment,
	}
}

// groupLines groups split lines by account in first-seen order.
func groupLines(d model.Draft) []AccountEntry {
	var entries []AccountEntry
	index := make(map[id.ID]int)
	for _, line := range d.Lines {
		t, note := line.Type, line.Note
		if d.Mode == model.ModeStandard {
			// STANDARD splits share the draft's type and note.
			t, note = d.EntryType, d.Note
		}
		s := newSplit(t, line.Amount, note, line.ExpenseCategory, line.IncomeSource, line.LoanRecord)

		i, seen := index[line.Account]
		if !seen {
			i = len(entries)
			index[line.Account] = i
			entries = append(entries, AccountEntry{Account: line.Account.String()})
		}
		entries[i].Splits = append(entries[i].Splits, s)
	}
	return entries
}

// newSplit keeps only the references relevant to t; the rest go out as null.
func newSplit(t model.EntryType, amount, note string, expenseCategory, incomeSource, loan id.ID) Split {
	s := Split{
		Type:   t,
		Amount: strings.TrimSpace(amount),
		Note:   note,
	}
	switch {
	case t == model.EntryExpense:
		s.ExpenseCategory = expenseCategory.Ptr()
	case t == model.EntryIncome:
		s.IncomeSource = incomeSource.Ptr()
	case t.NeedsLoanRecord():
		s.Loan = loan.Ptr()
	}
	return s
}
