package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xpense-dev/xpense/internal/composer"
	"github.com/xpense-dev/xpense/internal/model"
	"github.com/xpense-dev/xpense/internal/payload"
	"github.com/xpense-dev/xpense/internal/refdata"
	"github.com/xpense-dev/xpense/internal/split"
	"github.com/xpense-dev/xpense/internal/validate"
)

var errNotSaved = errors.New("transaction not saved")

type txnKind struct {
	name      string
	short     string
	mode      model.Mode
	entryType model.EntryType // fixed type; LOAN takes --type
}

var txnKinds = []txnKind{
	{"expense", "Record an expense", model.ModeStandard, model.EntryExpense},
	{"income", "Record an income", model.ModeStandard, model.EntryIncome},
	{"loan", "Record a loan, repayment or reimbursement", model.ModeLoan, ""},
	{"transfer", "Move money between two of your accounts", model.ModeTransfer, model.EntryTransfer},
}

type txnOptions struct {
	date      string
	account   string
	amount    string
	note      string
	attach    string
	splitFile string
	dryRun    bool

	category string
	source   string

	loanType       string
	contact        string
	contactAccount string
	loan           string

	to string
}

func newTxnCommand(a *app) *cobra.Command {
	txnCmd := &cobra.Command{
		Use:   "txn",
		Short: "Compose and submit a transaction",
	}
	for _, k := range txnKinds {
		txnCmd.AddCommand(newTxnKindCommand(a, k))
	}
	return txnCmd
}

func newTxnKindCommand(a *app, kind txnKind) *cobra.Command {
	var opts txnOptions

	cmd := &cobra.Command{
		Use:   kind.name,
		Short: kind.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			return runTxn(cmd, a, kind, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.date, "date", "", "date as YYYY-MM-DD or YYYY-MM-DDTHH:MM (default now)")
	f.StringVar(&opts.account, "account", "", "account id")
	f.StringVar(&opts.amount, "amount", "", "amount greater than zero")
	f.StringVar(&opts.note, "note", "", "free-text note")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the payload instead of submitting")

	switch kind.mode {
	case model.ModeStandard:
		if kind.entryType == model.EntryIncome {
			f.StringVar(&opts.source, "source", "", "income source id")
		} else {
			f.StringVar(&opts.category, "category", "", "expense category id")
		}
	case model.ModeLoan:
		f.StringVar(&opts.loanType, "type", "loan-taken", "loan-taken, money-lent, loan-repayment or reimbursement")
		f.StringVar(&opts.contact, "contact", "", "contact id")
		f.StringVar(&opts.contactAccount, "contact-account", "", "contact account id")
		f.StringVar(&opts.loan, "loan", "", "loan record id (repayments and reimbursements)")
	case model.ModeTransfer:
		f.StringVar(&opts.to, "to", "", "destination account id")
	}
	if kind.mode != model.ModeTransfer {
		f.StringVar(&opts.attach, "attach", "", "receipt image to upload")
		f.StringVar(&opts.splitFile, "split", "", "CSV of split lines ("+split.Header+")")
	}

	return cmd
}

func runTxn(cmd *cobra.Command, a *app, kind txnKind, opts txnOptions) error {
	ctx := cmd.Context()
	client := a.client()

	var book *refdata.Book
	if kind.mode == model.ModeLoan && !opts.dryRun {
		var err error
		if book, err = refdata.Load(ctx, client); err != nil {
			return err
		}
	}

	sess, err := composer.NewSession(composer.SessionParams{
		Submitter:   client,
		Book:        book,
		Logger:      a.log,
		DefaultMode: kind.mode,
	})
	if err != nil {
		return err
	}

	entryType := kind.entryType
	if entryType == "" {
		if entryType, err = model.ParseEntryType(opts.loanType); err != nil {
			return fmt.Errorf("--type: %w", err)
		}
	}
	if err := sess.SetEntryType(entryType); err != nil {
		return err
	}

	// Contact goes before contact account and loan: changing it clears both.
	fields := []struct {
		field model.Field
		value string
	}{
		{model.FieldDate, opts.date},
		{model.FieldAccount, opts.account},
		{model.FieldToAccount, opts.to},
		{model.FieldAmount, opts.amount},
		{model.FieldNote, opts.note},
		{model.FieldContact, opts.contact},
		{model.FieldContactAccount, opts.contactAccount},
		{model.FieldLoanRecord, opts.loan},
		{model.FieldExpenseCategory, opts.category},
		{model.FieldIncomeSource, opts.source},
	}
	for _, fv := range fields {
		if fv.value == "" {
			continue
		}
		if err := sess.Set(fv.field, fv.value); err != nil {
			return fmt.Errorf("setting %s: %w", fv.field, err)
		}
	}

	if opts.attach != "" {
		att, err := readAttachment(opts.attach)
		if err != nil {
			return err
		}
		if err := sess.SetAttachment(att); err != nil {
			return err
		}
	}

	if opts.splitFile != "" {
		f, err := os.Open(opts.splitFile)
		if err != nil {
			return fmt.Errorf("opening split file: %w", err)
		}
		lines, err := split.ReadLines(f)
		f.Close()
		if err != nil {
			return err
		}
		probs, err := sess.ApplySplit(lines)
		if errors.Is(err, composer.ErrNotSubmittable) {
			printProblems(cmd, probs)
			return errNotSaved
		}
		if err != nil {
			return err
		}
		d := sess.Draft()
		a.log.Debug().Int("lines", len(d.Lines)).Str("total", model.SumLines(d.Lines).String()).Msg("split applied")
	}

	if opts.dryRun {
		return printDryRun(cmd, sess)
	}

	n := sess.Submit(ctx)
	printf(cmd, "%s\n", n.Message)
	if !n.OK() {
		return errNotSaved
	}
	return nil
}

func printDryRun(cmd *cobra.Command, sess *composer.Session) error {
	if probs := sess.Problems(); len(probs) > 0 {
		printProblems(cmd, probs)
		return errNotSaved
	}

	req := payload.Assemble(sess.Draft())
	var body any = req.Transaction
	if req.Transfer != nil {
		body = req.Transfer
	}
	data, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	printf(cmd, "POST %s\n%s\n", req.Endpoint, data)
	if req.Attachment != nil {
		printf(cmd, "image: %s (%d bytes, multipart)\n", req.Attachment.Name, len(req.Attachment.Data))
	}
	return nil
}

func printProblems(cmd *cobra.Command, probs []validate.Problem) {
	printf(cmd, "Transaction is incomplete:\n")
	for _, p := range probs {
		printf(cmd, "  - %s\n", p.Error())
	}
}

func readAttachment(path string) (*model.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &model.Attachment{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}
