package draft

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xpense-dev/xpense/internal/model"
)

var now = time.Date(2024, 1, 1, 10, 0, 37, 0, time.UTC)

// fullDraft sets every scalar field regardless of legality.
func fullDraft(mode model.Mode, t model.EntryType) model.Draft {
	return model.Draft{
		ID:              uuid.New(),
		Mode:            mode,
		EntryType:       t,
		Date:            now,
		Account:         "1",
		ToAccount:       "2",
		Amount:          "500",
		Note:            "note",
		Contact:         "5",
		ContactAccount:  "6",
		LoanRecord:      "7",
		ExpenseCategory: "3",
		IncomeSource:    "4",
		Attachment:      &model.Attachment{Name: "r.png", Data: []byte{1}},
		SplitEnabled:    true,
		Lines:           []model.SplitLine{{Account: "1", Amount: "10", Type: t}},
	}
}

func requireOnlyLegal(t *testing.T, d model.Draft) {
	t.Helper()
	legal := Legal(d.Mode, d.EntryType)
	for _, f := range Fields() {
		if !legal.Has(f) {
			assert.Empty(t, d.Get(f), "%s must be empty for %s/%s", f, d.Mode, d.EntryType)
		}
	}
	assert.True(t, d.Mode.Allows(d.EntryType), "entry type %s not in mode %s", d.EntryType, d.Mode)
}

func TestNew(t *testing.T) {
	d := New(now)
	assert.Equal(t, model.ModeStandard, d.Mode)
	assert.Equal(t, model.EntryExpense, d.EntryType)
	assert.Equal(t, "2024-01-01T10:00", d.Get(model.FieldDate))
	assert.NotEqual(t, uuid.Nil, d.ID)
	assert.False(t, d.SplitEnabled)

	assert.NotEqual(t, d.ID, New(now).ID)
}

func TestSetMode_ClearsOutOfScopeFields(t *testing.T) {
	for _, from := range model.Modes {
		for _, fromType := range from.EntryTypes() {
			for _, to := range model.Modes {
				if to == from {
					continue
				}
				d, err := SetMode(fullDraft(from, fromType), to)
				require.NoError(t, err)
				assert.Equal(t, to, d.Mode)
				assert.Equal(t, to.DefaultEntryType(), d.EntryType)
				requireOnlyLegal(t, d)
				assert.Empty(t, d.Lines, "%s -> %s keeps no split lines", from, to)
				assert.Equal(t, "1", d.Account.String(), "account survives")
				assert.Equal(t, "500", d.Amount, "amount survives")
				assert.Equal(t, now, d.Date, "date survives")
			}
		}
	}
}

func TestSetMode_LoanToStandardDropsContact(t *testing.T) {
	d, err := SetMode(fullDraft(model.ModeLoan, model.EntryLoanRepayment), model.ModeStandard)
	require.NoError(t, err)
	assert.False(t, d.Contact.IsSet())
	assert.False(t, d.ContactAccount.IsSet())
	assert.False(t, d.LoanRecord.IsSet())
	assert.Equal(t, "3", d.ExpenseCategory.String())
}

func TestSetMode_StandardToLoanDropsLoanRecord(t *testing.T) {
	d, err := SetMode(fullDraft(model.ModeStandard, model.EntryExpense), model.ModeLoan)
	require.NoError(t, err)
	assert.Equal(t, model.EntryLoanTaken, d.EntryType)
	assert.False(t, d.LoanRecord.IsSet())
	assert.False(t, d.ExpenseCategory.IsSet())
	assert.False(t, d.IncomeSource.IsSet())
	assert.True(t, d.SplitEnabled, "split stays on outside transfers")
}

func TestSetMode_TransferDisablesSplitAndAttachment(t *testing.T) {
	d, err := SetMode(fullDraft(model.ModeStandard, model.EntryExpense), model.ModeTransfer)
	require.NoError(t, err)
	assert.False(t, d.SplitEnabled)
	assert.Nil(t, d.Attachment)
	assert.Equal(t, model.EntryTransfer, d.EntryType)
}

func TestSetMode_SameModeIsNoop(t *testing.T) {
	orig := fullDraft(model.ModeLoan, model.EntryReimbursement)
	d, err := SetMode(orig, model.ModeLoan)
	require.NoError(t, err)
	assert.Equal(t, orig, d)
}

func TestSetMode_Unknown(t *testing.T) {
	_, err := SetMode(New(now), model.Mode("SPLIT"))
	assert.Error(t, err)
}

func TestSetEntryType_ExpenseToIncome(t *testing.T) {
	d := fullDraft(model.ModeStandard, model.EntryExpense)
	d = Clean(d)
	d.Lines = []model.SplitLine{{Account: "1", Amount: "10", Type: model.EntryExpense, ExpenseCategory: "3"}}

	got, err := SetEntryType(d, model.EntryIncome)
	require.NoError(t, err)
	assert.False(t, got.ExpenseCategory.IsSet())
	requireOnlyLegal(t, got)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, model.EntryIncome, got.Lines[0].Type)
	assert.False(t, got.Lines[0].ExpenseCategory.IsSet())
	assert.Equal(t, model.EntryExpense, d.Lines[0].Type, "input draft untouched")
}

func TestSetEntryType_RepaymentToReimbursementClearsLoan(t *testing.T) {
	d := Clean(fullDraft(model.ModeLoan, model.EntryLoanRepayment))
	require.True(t, d.LoanRecord.IsSet())

	got, err := SetEntryType(d, model.EntryReimbursement)
	require.NoError(t, err)
	assert.False(t, got.LoanRecord.IsSet())
	assert.Equal(t, "5", got.Contact.String(), "contact stays within LOAN mode")
}

func TestSetEntryType_NotInMode(t *testing.T) {
	_, err := SetEntryType(New(now), model.EntryLoanTaken)
	assert.ErrorIs(t, err, ErrEntryTypeNotAllowed)
}

func TestSet(t *testing.T) {
	d := New(now)
	d, err := Set(d, model.FieldAccount, "1")
	require.NoError(t, err)
	d, err = Set(d, model.FieldAmount, " 500 ")
	require.NoError(t, err)
	d, err = Set(d, model.FieldExpenseCategory, "3")
	require.NoError(t, err)
	d, err = Set(d, model.FieldNote, "groceries")
	require.NoError(t, err)

	assert.Equal(t, "1", d.Account.String())
	assert.Equal(t, "500", d.Amount)
	assert.Equal(t, "3", d.ExpenseCategory.String())
	assert.Equal(t, "groceries", d.Note)
}

func TestSet_NotLegal(t *testing.T) {
	d := New(now)
	for _, f := range []model.Field{model.FieldContact, model.FieldToAccount, model.FieldIncomeSource, model.FieldLoanRecord, model.FieldAttachment} {
		_, err := Set(d, f, "1")
		assert.ErrorIs(t, err, ErrFieldNotLegal, "field %s", f)
	}
}

func TestSet_ContactChangeClearsDependents(t *testing.T) {
	d := Clean(fullDraft(model.ModeLoan, model.EntryLoanRepayment))
	d.Lines = []model.SplitLine{{Account: "1", Amount: "5", Type: model.EntryLoanRepayment, LoanRecord: "7"}}

	same, err := Set(d, model.FieldContact, "5")
	require.NoError(t, err)
	assert.Equal(t, "6", same.ContactAccount.String())
	assert.Equal(t, "7", same.LoanRecord.String())

	other, err := Set(d, model.FieldContact, "8")
	require.NoError(t, err)
	assert.Equal(t, "8", other.Contact.String())
	assert.False(t, other.ContactAccount.IsSet())
	assert.False(t, other.LoanRecord.IsSet())
	assert.False(t, other.Lines[0].LoanRecord.IsSet())
	assert.True(t, d.Lines[0].LoanRecord.IsSet(), "input draft untouched")
}

func TestSet_Date(t *testing.T) {
	d, err := Set(New(now), model.FieldDate, "2024-03-05T08:30")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05T08:30", d.Get(model.FieldDate))

	d, err = Set(d, model.FieldDate, "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06T00:00", d.Get(model.FieldDate))

	_, err = Set(d, model.FieldDate, "yesterday")
	assert.Error(t, err)
}

func TestSetDate_IgnoresZero(t *testing.T) {
	d := SetDate(New(now), time.Time{})
	assert.False(t, d.Date.IsZero())
}

func TestSetAttachment(t *testing.T) {
	a := &model.Attachment{Name: "r.png"}
	d, err := SetAttachment(New(now), a)
	require.NoError(t, err)
	assert.Equal(t, a, d.Attachment)

	tr, err := SetMode(New(now), model.ModeTransfer)
	require.NoError(t, err)
	_, err = SetAttachment(tr, a)
	assert.ErrorIs(t, err, ErrFieldNotLegal)

	tr, err = SetAttachment(tr, nil)
	require.NoError(t, err)
	assert.Nil(t, tr.Attachment)
}

func TestEnableSplit(t *testing.T) {
	d, err := EnableSplit(New(now), true)
	require.NoError(t, err)
	assert.True(t, d.SplitEnabled)
	assert.Empty(t, d.Lines)

	d, err = AddLine(d)
	require.NoError(t, err)
	d, err = EnableSplit(d, false)
	require.NoError(t, err)
	assert.False(t, d.SplitEnabled)
	assert.Nil(t, d.Lines)

	tr, err := SetMode(New(now), model.ModeTransfer)
	require.NoError(t, err)
	_, err = EnableSplit(tr, true)
	assert.ErrorIs(t, err, ErrSplitNotAllowed)
}

func TestSetLines(t *testing.T) {
	d := New(now)
	d.ExpenseCategory = "3"
	lines := []model.SplitLine{
		{Account: "1", Amount: "100", ExpenseCategory: "3"},
		{Account: "1", Amount: "50", Type: model.EntryIncome, ExpenseCategory: "3", IncomeSource: "4"},
	}
	got, err := SetLines(d, lines)
	require.NoError(t, err)
	assert.True(t, got.SplitEnabled)
	require.Len(t, got.Lines, 2)
	for _, l := range got.Lines {
		assert.Equal(t, model.EntryExpense, l.Type, "standard lines follow the draft type")
		assert.False(t, l.IncomeSource.IsSet())
	}
	assert.Equal(t, "3", got.Lines[1].ExpenseCategory.String())
}

func TestSetLines_LoanKeepsLineTypes(t *testing.T) {
	d, err := SetMode(New(now), model.ModeLoan)
	require.NoError(t, err)
	got, err := SetLines(d, []model.SplitLine{
		{Account: "1", Amount: "10"},
		{Account: "2", Amount: "20", Type: model.EntryLoanRepayment, LoanRecord: "7"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.EntryLoanTaken, got.Lines[0].Type)
	assert.Equal(t, model.EntryLoanRepayment, got.Lines[1].Type)
	assert.Equal(t, "7", got.Lines[1].LoanRecord.String())
}

func TestSetLines_InheritsDraftDefaults(t *testing.T) {
	d := New(now)
	d.ExpenseCategory = "3"
	d.Note = "groceries"
	got, err := SetLines(d, []model.SplitLine{
		{Account: "1", Amount: "100"},
		{Account: "1", Amount: "50", ExpenseCategory: "9", Note: "wine"},
	})
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "3", got.Lines[0].ExpenseCategory.String())
	assert.Equal(t, "groceries", got.Lines[0].Note)
	assert.Equal(t, "9", got.Lines[1].ExpenseCategory.String(), "explicit cells win")
	assert.Equal(t, "wine", got.Lines[1].Note)
}

func TestSetLines_LoanRecordFollowsType(t *testing.T) {
	d, err := SetMode(New(now), model.ModeLoan)
	require.NoError(t, err)
	d, err = SetEntryType(d, model.EntryLoanRepayment)
	require.NoError(t, err)
	d.LoanRecord = "7"

	got, err := SetLines(d, []model.SplitLine{
		{Account: "1", Amount: "10"},
		{Account: "2", Amount: "20", Type: model.EntryReimbursement},
	})
	require.NoError(t, err)
	assert.Equal(t, "7", got.Lines[0].LoanRecord.String())
	assert.False(t, got.Lines[1].LoanRecord.IsSet(), "a lent loan cannot carry a taken loan's record")
}

func TestAddUpdateRemoveLine(t *testing.T) {
	d := New(now)
	d.ExpenseCategory = "3"
	d.Note = "shared"

	d, err := AddLine(d)
	require.NoError(t, err)
	d, err = AddLine(d)
	require.NoError(t, err)
	require.Len(t, d.Lines, 2)
	assert.Equal(t, "shared", d.Lines[0].Note)
	assert.Equal(t, "3", d.Lines[1].ExpenseCategory.String())

	before := d
	d, err = UpdateLine(d, 1, model.FieldAmount, "50")
	require.NoError(t, err)
	assert.Equal(t, "50", d.Lines[1].Amount)
	assert.Empty(t, before.Lines[1].Amount, "previous draft untouched")

	_, err = UpdateLine(d, 2, model.FieldAmount, "1")
	assert.ErrorIs(t, err, ErrLineIndex)

	_, err = UpdateLine(d, 0, model.FieldType, "INCOME")
	assert.ErrorIs(t, err, ErrFieldNotLegal)

	d, err = RemoveLine(d, 0)
	require.NoError(t, err)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, "50", d.Lines[0].Amount)

	_, err = RemoveLine(d, 3)
	assert.ErrorIs(t, err, ErrLineIndex)
}

func TestUpdateLine_LoanTypeMustStayInMode(t *testing.T) {
	d, err := SetMode(New(now), model.ModeLoan)
	require.NoError(t, err)
	d, err = AddLine(d)
	require.NoError(t, err)

	d, err = UpdateLine(d, 0, model.FieldType, "REIMBURSEMENT")
	require.NoError(t, err)
	assert.Equal(t, model.EntryReimbursement, d.Lines[0].Type)

	_, err = UpdateLine(d, 0, model.FieldType, "EXPENSE")
	assert.ErrorIs(t, err, ErrEntryTypeNotAllowed)
}

func TestAddLine_Transfer(t *testing.T) {
	d, err := SetMode(New(now), model.ModeTransfer)
	require.NoError(t, err)
	_, err = AddLine(d)
	assert.ErrorIs(t, err, ErrSplitNotAllowed)
}
