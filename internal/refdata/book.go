// Package refdata holds the lookup tables a draft's ids refer to.
package refdata

import (
	"github.com/xpense-dev/xpense/internal/id"
	"github.com/xpense-dev/xpense/internal/model"
)

// table keeps items in API order with an id index.
type table[T any] struct {
	items []T
	byID  map[id.ID]T
}

func newTable[T any](items []T, key func(T) id.ID) table[T] {
	byID := make(map[id.ID]T, len(items))
	for _, it := range items {
		byID[key(it)] = it
	}
	return table[T]{items: items, byID: byID}
}

func (t table[T]) get(i id.ID) (T, bool) {
	v, ok := t.byID[i]
	return v, ok
}

// Tables are the raw lists a Book is built from.
type Tables struct {
	Accounts          []model.Account
	Contacts          []model.Contact
	ContactAccounts   []model.ContactAccount
	Loans             []model.Loan
	ExpenseCategories []model.ExpenseCategory
	IncomeSources     []model.IncomeSource
}

// Book provides in-memory lookup over the reference tables.
type Book struct {
	accounts          table[model.Account]
	contacts          table[model.Contact]
	contactAccounts   table[model.ContactAccount]
	loans             table[model.Loan]
	expenseCategories table[model.ExpenseCategory]
	incomeSources     table[model.IncomeSource]
}

// NewBook indexes t.
func NewBook(t Tables) *Book {
	return &Book{
		accounts:          newTable(t.Accounts, func(a model.Account) id.ID { return a.ID }),
		contacts:          newTable(t.Contacts, func(c model.Contact) id.ID { return c.ID }),
		contactAccounts:   newTable(t.ContactAccounts, func(c model.ContactAccount) id.ID { return c.ID }),
		loans:             newTable(t.Loans, func(l model.Loan) id.ID { return l.ID }),
		expenseCategories: newTable(t.ExpenseCategories, func(c model.ExpenseCategory) id.ID { return c.ID }),
		incomeSources:     newTable(t.IncomeSources, func(s model.IncomeSource) id.ID { return s.ID }),
	}
}

// Accounts returns all accounts.
func (b *Book) Accounts() []model.Account { return b.accounts.items }

// Contacts returns all contacts.
func (b *Book) Contacts() []model.Contact { return b.contacts.items }

// ContactAccounts returns every contact account.
func (b *Book) ContactAccounts() []model.ContactAccount { return b.contactAccounts.items }

// Loans returns every loan.
func (b *Book) Loans() []model.Loan { return b.loans.items }

// ExpenseCategories returns all expense categories.
func (b *Book) ExpenseCategories() []model.ExpenseCategory { return b.expenseCategories.items }

// IncomeSources returns all income sources.
func (b *Book) IncomeSources() []model.IncomeSource { return b.incomeSources.items }

// Account returns an account by ID.
func (b *Book) Account(i id.ID) (model.Account, bool) { return b.accounts.get(i) }

// Contact returns a contact by ID.
func (b *Book) Contact(i id.ID) (model.Contact, bool) { return b.contacts.get(i) }

// ContactAccount returns a contact account by ID.
func (b *Book) ContactAccount(i id.ID) (model.ContactAccount, bool) { return b.contactAccounts.get(i) }

// Loan returns a loan by ID.
func (b *Book) Loan(i id.ID) (model.Loan, bool) { return b.loans.get(i) }

// ExpenseCategory returns an expense category by ID.
func (b *Book) ExpenseCategory(i id.ID) (model.ExpenseCategory, bool) {
	return b.expenseCategories.get(i)
}

// IncomeSource returns an income source by ID.
func (b *Book) IncomeSource(i id.ID) (model.IncomeSource, bool) { return b.incomeSources.get(i) }

// ContactAccountsFor returns the accounts owned by contact.
func (b *Book) ContactAccountsFor(contact id.ID) []model.ContactAccount {
	var result []model.ContactAccount
	for _, ca := range b.contactAccounts.items {
		if ca.Contact == contact {
			result = append(result, ca)
		}
	}
	return result
}

// LoansFor returns the open loans with contact that an entry of type t can
// settle. Types that settle nothing get no loans.
func (b *Book) LoansFor(contact id.ID, t model.EntryType) []model.Loan {
	dir := t.LoanDirection()
	if dir == "" {
		return nil
	}
	var result []model.Loan
	for _, l := range b.loans.items {
		if l.Contact == contact && l.Type == dir && !l.IsClosed {
			result = append(result, l)
		}
	}
	return result
}

// LoanAllowed reports whether loan is one of LoansFor(contact, t).
func (b *Book) LoanAllowed(contact id.ID, t model.EntryType, loan id.ID) bool {
	for _, l := range b.LoansFor(contact, t) {
		if l.ID == loan {
			return true
		}
	}
	return false
}

// ContactAccountAllowed reports whether account belongs to contact.
func (b *Book) ContactAccountAllowed(contact, account id.ID) bool {
	ca, ok := b.contactAccounts.get(account)
	return ok && ca.Contact == contact
}
