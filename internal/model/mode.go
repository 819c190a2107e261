package model

import (
	"fmt"
	"strings"
)

// Mode selects which entry types and fields a draft may use.
type Mode string

const (
	ModeStandard Mode = "STANDARD"
	ModeLoan     Mode = "LOAN"
	ModeTransfer Mode = "TRANSFER"
)

// EntryType is the kind of ledger entry a draft or split line records.
type EntryType string

const (
	EntryExpense       EntryType = "EXPENSE"
	EntryIncome        EntryType = "INCOME"
	EntryLoanRepayment EntryType = "LOAN_REPAYMENT"
	EntryReimbursement EntryType = "REIMBURSEMENT"
	EntryLoanTaken     EntryType = "LOAN_TAKEN"
	EntryMoneyLent     EntryType = "MONEY_LENT"
	EntryTransfer      EntryType = "TRANSFER"
)

// LoanType is the direction of a loan record.
type LoanType string

const (
	LoanTaken LoanType = "TAKEN" // money owed by the user
	LoanLent  LoanType = "LENT"  // money owed to the user
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeStandard, ModeLoan, ModeTransfer}

var modeEntryTypes = map[Mode][]EntryType{
	ModeStandard: {EntryExpense, EntryIncome},
	ModeLoan:     {EntryLoanTaken, EntryMoneyLent, EntryLoanRepayment, EntryReimbursement},
	ModeTransfer: {EntryTransfer},
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeEntryTypes[m]
	return ok
}

// EntryTypes returns the legal entry types for m. The first is the mode's default.
func (m Mode) EntryTypes() []EntryType {
	types := modeEntryTypes[m]
	out := make([]EntryType, len(types))
	copy(out, types)
	return out
}

// DefaultEntryType returns the first legal entry type for m.
func (m Mode) DefaultEntryType() EntryType {
	types := modeEntryTypes[m]
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

// Allows reports whether t belongs to m.
func (m Mode) Allows(t EntryType) bool {
	for _, et := range modeEntryTypes[m] {
		if et == t {
			return true
		}
	}
	return false
}

// ParseEntryType parses an entry type name. Dashes are accepted for underscores.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	if t.Mode() == "" {
		return "", fmt.Errorf("unknown entry type %q", s)
	}
	return t, nil
}

// Mode returns the mode t belongs to, or "" for an unknown type.
func (t EntryType) Mode() Mode {
	for _, m := range Modes {
		if m.Allows(t) {
			return m
		}
	}
	return ""
}

// NeedsLoanRecord reports whether t settles an existing loan record.
func (t EntryType) NeedsLoanRecord() bool {
	return t == EntryLoanRepayment || t == EntryReimbursement
}

// LoanDirection returns the loan type a settling entry applies to.
// Repayments pay back loans taken; reimbursements collect money lent.
func (t EntryType) LoanDirection() LoanType {
	switch t {
	case EntryLoanRepayment:
		return LoanTaken
	case EntryReimbursement:
		return LoanLent
	default:
		return ""
	}
}
