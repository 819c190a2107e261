// Package draft holds the state transitions of a transaction draft. Every
// function is pure: it takes a draft and returns a new one.
package draft

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xpense-dev/xpense/internal/id"
	"github.com/xpense-dev/xpense/internal/model"
	"github.com/xpense-dev/xpense/internal/split"
)

var (
	ErrFieldNotLegal       = errors.New("field not legal for this transaction")
	ErrEntryTypeNotAllowed = errors.New("entry type not allowed in this mode")
	ErrSplitNotAllowed     = errors.New("split is not available for transfers")
	ErrLineIndex           = errors.New("split line index out of range")
)

// New starts a STANDARD expense dated now.
func New(now time.Time) model.Draft {
	return model.Draft{
		ID:        uuid.New(),
		Mode:      model.ModeStandard,
		EntryType: model.ModeStandard.DefaultEntryType(),
		Date:      now.Truncate(time.Minute),
	}
}

// SetMode switches mode, resets the entry type to the mode's default and
// clears everything the new mode cannot carry, split lines included.
func SetMode(d model.Draft, mode model.Mode) (model.Draft, error) {
	if !mode.Valid() {
		return d, fmt.Errorf("unknown mode %q", mode)
	}
	if mode == d.Mode {
		return d, nil
	}
	d.Mode = mode
	d.EntryType = mode.DefaultEntryType()
	d.LoanRecord = ""
	d.Lines = nil
	if mode == model.ModeTransfer {
		d.SplitEnabled = false
	}
	return Clean(d), nil
}

// SetEntryType switches entry type within the current mode.
func SetEntryType(d model.Draft, t model.EntryType) (model.Draft, error) {
	if !d.Mode.Allows(t) {
		return d, fmt.Errorf("%w: %s in %s", ErrEntryTypeNotAllowed, t, d.Mode)
	}
	if t == d.EntryType {
		return d, nil
	}
	d.EntryType = t
	// Loan records are filtered by direction, so a type change invalidates them.
	d.LoanRecord = ""
	if len(d.Lines) > 0 {
		lines := make([]model.SplitLine, len(d.Lines))
		for i, l := range d.Lines {
			lines[i] = split.Retype(l, d.Mode, t)
		}
		d.Lines = lines
	}
	return Clean(d), nil
}

// Set assigns one scalar field from its string form.
func Set(d model.Draft, field model.Field, value string) (model.Draft, error) {
	if !Legal(d.Mode, d.EntryType).Has(field) || field == model.FieldAttachment {
		return d, fmt.Errorf("%w: %s for %s", ErrFieldNotLegal, field, d.EntryType)
	}

	switch field {
	case model.FieldDate:
		t, err := ParseDate(value)
		if err != nil {
			return d, err
		}
		return SetDate(d, t), nil
	case model.FieldAmount:
		d.Amount = strings.TrimSpace(value)
		return d, nil
	case model.FieldNote:
		d.Note = value
		return d, nil
	}

	ref, err := id.Parse(value)
	if err != nil {
		return d, fmt.Errorf("setting %s: %w", field, err)
	}
	switch field {
	case model.FieldAccount:
		d.Account = ref
	case model.FieldToAccount:
		d.ToAccount = ref
	case model.FieldContact:
		if ref != d.Contact {
			// Both belong to the previous contact.
			d.ContactAccount = ""
			d.LoanRecord = ""
			d.Lines = clearLineLoans(d.Lines)
		}
		d.Contact = ref
	case model.FieldContactAccount:
		d.ContactAccount = ref
	case model.FieldLoanRecord:
		d.LoanRecord = ref
	case model.FieldExpenseCategory:
		d.ExpenseCategory = ref
	case model.FieldIncomeSource:
		d.IncomeSource = ref
	}
	return d, nil
}

// SetDate sets the date. The zero time is ignored: a draft always has a date.
func SetDate(d model.Draft, t time.Time) model.Draft {
	if !t.IsZero() {
		d.Date = t
	}
	return d
}

// ParseDate accepts "2006-01-02T15:04" or a bare "2006-01-02".
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{model.DateLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: want YYYY-MM-DDTHH:MM or YYYY-MM-DD", s)
}

// SetAttachment attaches (or with nil, removes) a receipt image.
func SetAttachment(d model.Draft, a *model.Attachment) (model.Draft, error) {
	if a != nil && !Legal(d.Mode, d.EntryType).Has(model.FieldAttachment) {
		return d, fmt.Errorf("%w: attachment for %s", ErrFieldNotLegal, d.EntryType)
	}
	d.Attachment = a
	return d, nil
}

// EnableSplit toggles split mode. Turning it off drops the lines.
func EnableSplit(d model.Draft, on bool) (model.Draft, error) {
	if on && d.Mode == model.ModeTransfer {
		return d, ErrSplitNotAllowed
	}
	d.SplitEnabled = on
	if !on {
		d.Lines = nil
	}
	return d, nil
}

// SetLines replaces the split lines and enables split mode. Blank line fields
// are prefilled from the draft as AddLine would; STANDARD lines always follow
// the draft type.
func SetLines(d model.Draft, lines []model.SplitLine) (model.Draft, error) {
	if d.Mode == model.ModeTransfer {
		return d, ErrSplitNotAllowed
	}
	defaults := split.Create(d)
	out := make([]model.SplitLine, len(lines))
	for i, l := range lines {
		out[i] = split.Retype(split.Fill(l, defaults), d.Mode, d.EntryType)
	}
	d.SplitEnabled = true
	d.Lines = out
	return d, nil
}

// AddLine appends a line prefilled from the draft.
func AddLine(d model.Draft) (model.Draft, error) {
	if d.Mode == model.ModeTransfer {
		return d, ErrSplitNotAllowed
	}
	lines := make([]model.SplitLine, len(d.Lines), len(d.Lines)+1)
	copy(lines, d.Lines)
	d.Lines = append(lines, split.Create(d))
	d.SplitEnabled = true
	return d, nil
}

// UpdateLine sets one field of line i.
func UpdateLine(d model.Draft, i int, field model.Field, value string) (model.Draft, error) {
	if i < 0 || i >= len(d.Lines) {
		return d, fmt.Errorf("%w: %d", ErrLineIndex, i)
	}
	if field == model.FieldType && d.Mode == model.ModeStandard {
		return d, fmt.Errorf("%w: standard split lines share the draft type", ErrFieldNotLegal)
	}
	line, err := split.Update(d.Lines[i], field, value)
	if err != nil {
		return d, err
	}
	if field == model.FieldType && !d.Mode.Allows(line.Type) {
		return d, fmt.Errorf("%w: %s in %s", ErrEntryTypeNotAllowed, line.Type, d.Mode)
	}
	lines := make([]model.SplitLine, len(d.Lines))
	copy(lines, d.Lines)
	lines[i] = line
	d.Lines = lines
	return d, nil
}

// RemoveLine drops line i.
func RemoveLine(d model.Draft, i int) (model.Draft, error) {
	if i < 0 || i >= len(d.Lines) {
		return d, fmt.Errorf("%w: %d", ErrLineIndex, i)
	}
	d.Lines = split.Remove(d.Lines, i)
	return d, nil
}

func clearLineLoans(lines []model.SplitLine) []model.SplitLine {
	if len(lines) == 0 {
		return lines
	}
	out := make([]model.SplitLine, len(lines))
	for i, l := range lines {
		l.LoanRecord = ""
		out[i] = l
	}
	return out
}
