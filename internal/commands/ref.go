package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xpense-dev/xpense/internal/api"
	"github.com/xpense-dev/xpense/internal/id"
	"github.com/xpense-dev/xpense/internal/model"
	"github.com/xpense-dev/xpense/internal/refdata"
)

var refTables = []string{
	"accounts",
	"contacts",
	"contact-accounts",
	"loans",
	"expense-categories",
	"income-sources",
}

type refOptions struct {
	contact   string
	entryType string
}

func newRefCommand(a *app) *cobra.Command {
	var opts refOptions

	cmd := &cobra.Command{
		Use:       "ref <table>",
		Short:     "Print a reference table",
		Long:      "Print one of: accounts, contacts, contact-accounts, loans, expense-categories, income-sources.",
		ValidArgs: refTables,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			return runRef(cmd.Context(), cmd.OutOrStdout(), a.client(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.contact, "contact", "", "only rows of this contact (contact-accounts, loans)")
	cmd.Flags().StringVar(&opts.entryType, "type", "", "only open loans an entry of this type can settle (loan-repayment, reimbursement)")

	return cmd
}

func runRef(ctx context.Context, out io.Writer, client *api.Client, table string, opts refOptions) error {
	contact, err := id.Parse(opts.contact)
	if err != nil {
		return fmt.Errorf("--contact: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	switch table {
	case "accounts":
		rows, err := client.ListAccounts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tNAME\tBALANCE")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name, r.Balance.StringFixed(2))
		}
	case "contacts":
		rows, err := client.ListContacts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tNAME")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", r.ID, r.Name)
		}
	case "contact-accounts":
		rows, err := client.ListContactAccounts(ctx)
		if err != nil {
			return err
		}
		if contact.IsSet() {
			rows = refdata.NewBook(refdata.Tables{ContactAccounts: rows}).ContactAccountsFor(contact)
		}
		fmt.Fprintln(tw, "ID\tCONTACT\tNAME")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Contact, r.Name)
		}
	case "loans":
		rows, err := client.ListLoans(ctx)
		if err != nil {
			return err
		}
		rows, err = filterLoans(rows, contact, opts.entryType)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tCONTACT\tTYPE\tAMOUNT\tREMAINING\tSTATUS")
		for _, r := range rows {
			status := "open"
			if r.IsClosed {
				status = "closed"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.ID, r.Contact, r.Type, r.Amount.StringFixed(2), r.Remaining.StringFixed(2), status)
		}
	case "expense-categories":
		rows, err := client.ListExpenseCategories(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tNAME")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", r.ID, r.Name)
		}
	case "income-sources":
		rows, err := client.ListIncomeSources(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "ID\tNAME")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\n", r.ID, r.Name)
		}
	default:
		return fmt.Errorf("unknown table %q", table)
	}
	return tw.Flush()
}

// filterLoans applies --contact and --type. With --type only open loans in the
// settling direction remain, which requires --contact.
func filterLoans(loans []model.Loan, contact id.ID, entryType string) ([]model.Loan, error) {
	if entryType == "" {
		if !contact.IsSet() {
			return loans, nil
		}
		var result []model.Loan
		for _, l := range loans {
			if l.Contact == contact {
				result = append(result, l)
			}
		}
		return result, nil
	}

	t, err := model.ParseEntryType(entryType)
	if err != nil {
		return nil, fmt.Errorf("--type: %w", err)
	}
	if !t.NeedsLoanRecord() {
		return nil, fmt.Errorf("--type: %s does not settle a loan", t)
	}
	if !contact.IsSet() {
		return nil, fmt.Errorf("--type needs --contact")
	}
	return refdata.NewBook(refdata.Tables{Loans: loans}).LoansFor(contact, t), nil
}
