package model

import (
	"github.com/shopspring/decimal"

	"github.com/xpense-dev/xpense/internal/id"
)

// Account is one of the user's own bank or wallet accounts.
type Account struct {
	ID      id.ID           `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// Contact is a person the user lends to or borrows from.
type Contact struct {
	ID   id.ID  `json:"id"`
	Name string `json:"name"`
}

// ContactAccount is an account owned by a contact, the counterparty side of loan entries.
type ContactAccount struct {
	ID      id.ID  `json:"id"`
	Contact id.ID  `json:"contact"`
	Name    string `json:"name"`
}

// Loan is a tracked debt between the user and a contact.
type Loan struct {
	ID        id.ID           `json:"id"`
	Contact   id.ID           `json:"contact"`
	Type      LoanType        `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining_amount"`
	IsClosed  bool            `json:"is_closed"`
}

// ExpenseCategory classifies an expense.
type ExpenseCategory struct {
	ID   id.ID  `json:"id"`
	Name string `json:"name"`
}

// IncomeSource classifies an income.
type IncomeSource struct {
	ID   id.ID  `json:"id"`
	Name string `json:"name"`
}
