package refdata

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/xpense-dev/xpense/internal/model"
)

// Source fetches the reference tables. *api.Client implements it.
type Source interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	ListContacts(ctx context.Context) ([]model.Contact, error)
	ListContactAccounts(ctx context.Context) ([]model.ContactAccount, error)
	ListLoans(ctx context.Context) ([]model.Loan, error)
	ListExpenseCategories(ctx context.Context) ([]model.ExpenseCategory, error)
	ListIncomeSources(ctx context.Context) ([]model.IncomeSource, error)
}

// Load fetches every table concurrently and returns a Book. The first failure
// cancels the rest.
func Load(ctx context.Context, src Source) (*Book, error) {
	var t Tables
	g, ctx := errgroup.WithContext(ctx)

	fetch := func(name string, f func(context.Context) error) {
		g.Go(func() error {
			if err := f(ctx); err != nil {
				return fmt.Errorf("loading %s: %w", name, err)
			}
			return nil
		})
	}

	fetch("accounts", func(ctx context.Context) (err error) {
		t.Accounts, err = src.ListAccounts(ctx)
		return err
	})
	fetch("contacts", func(ctx context.Context) (err error) {
		t.Contacts, err = src.ListContacts(ctx)
		return err
	})
	fetch("contact accounts", func(ctx context.Context) (err error) {
		t.ContactAccounts, err = src.ListContactAccounts(ctx)
		return err
	})
	fetch("loans", func(ctx context.Context) (err error) {
		t.Loans, err = src.ListLoans(ctx)
		return err
	})
	fetch("expense categories", func(ctx context.Context) (err error) {
		t.ExpenseCategories, err = src.ListExpenseCategories(ctx)
		return err
	})
	fetch("income sources", func(ctx context.Context) (err error) {
		t.IncomeSources, err = src.ListIncomeSources(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewBook(t), nil
}
