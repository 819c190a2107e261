// Package composer drives one transaction draft from first edit to submission.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/xpense-dev/xpense/internal/api"
	"github.com/xpense-dev/xpense/internal/draft"
	"github.com/xpense-dev/xpense/internal/id"
	"github.com/xpense-dev/xpense/internal/logger"
	"github.com/xpense-dev/xpense/internal/model"
	"github.com/xpense-dev/xpense/internal/payload"
	"github.com/xpense-dev/xpense/internal/refdata"
	"github.com/xpense-dev/xpense/internal/validate"
)

var (
	ErrLoanNotAllowed           = errors.New("loan record is not an open loan of this contact for this entry type")
	ErrContactAccountNotAllowed = errors.New("contact account does not belong to the contact")
	ErrNotSubmittable           = errors.New("draft is not submittable")
	ErrSubmitInFlight           = errors.New("draft is locked while a submission is in flight")
)

// GenericFailure is shown for failures that carry no server message.
const GenericFailure = "Something went wrong. Please try again."

// Level is the severity of a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is the user-facing outcome of a submission.
type Notification struct {
	Level   Level
	Message string
}

// OK reports whether the notification reports a saved transaction.
func (n Notification) OK() bool { return n.Level == LevelSuccess }

func (n Notification) String() string {
	return fmt.Sprintf("%s: %s", n.Level, n.Message)
}

// Submitter sends an assembled request. *api.Client implements it.
type Submitter interface {
	Submit(ctx context.Context, req payload.Request, idempotencyKey string) error
}

// SessionParams holds the dependencies of a Session.
type SessionParams struct {
	Submitter   Submitter
	Book        *refdata.Book // nil skips reference checks
	Logger      zerolog.Logger
	DefaultMode model.Mode       // mode of every fresh draft; STANDARD when empty
	Now         func() time.Time // time.Now when nil
}

// Session owns one draft. Edits are synchronous; Submit may run concurrently
// with reads but at most one submission is outstanding, and edits fail with
// ErrSubmitInFlight until it settles.
type Session struct {
	api         Submitter
	book        *refdata.Book
	log         zerolog.Logger
	defaultMode model.Mode
	now         func() time.Time

	submitting *semaphore.Weighted
	inFlight   atomic.Bool

	mu    sync.Mutex
	draft model.Draft
}

// NewSession creates a Session with a fresh draft.
func NewSession(p SessionParams) (*Session, error) {
	mode := p.DefaultMode
	if mode == "" {
		mode = model.ModeStandard
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown default mode %q", mode)
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	s := &Session{
		api:         p.Submitter,
		book:        p.Book,
		log:         p.Logger.With().Str(logger.FieldComponent, "composer").Logger(),
		defaultMode: mode,
		now:         now,
		submitting:  semaphore.NewWeighted(1),
	}
	s.draft = s.fresh()
	return s, nil
}

func (s *Session) fresh() model.Draft {
	d := draft.New(s.now())
	d, _ = draft.SetMode(d, s.defaultMode)
	return d
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// update applies f to the draft and keeps the result only when f succeeds.
func (s *Session) update(f func(model.Draft) (model.Draft, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight.Load() {
		return ErrSubmitInFlight
	}
	d, err := f(s.draft)
	if err != nil {
		return err
	}
	s.draft = d
	return nil
}

// SetMode switches the draft's mode.
func (s *Session) SetMode(m model.Mode) error {
	return s.update(func(d model.Draft) (model.Draft, error) { return draft.SetMode(d, m) })
}

// SetEntryType switches the entry type within the current mode.
func (s *Session) SetEntryType(t model.EntryType) error {
	return s.update(func(d model.Draft) (model.Draft, error) { return draft.SetEntryType(d, t) })
}

// Set assigns a scalar field. Contact accounts and loan records are checked
// against the reference book.
func (s *Session) Set(f model.Field, value string) error {
	return s.update(func(d model.Draft) (model.Draft, error) {
		next, err := draft.Set(d, f, value)
		if err != nil {
			return d, err
		}
		switch f {
		case model.FieldContactAccount:
			if err := s.checkContactAccount(next.Contact, next.ContactAccount); err != nil {
				return d, err
			}
		case model.FieldLoanRecord:
			if err := s.checkLoan(next.Contact, next.EntryType, next.LoanRecord); err != nil {
				return d, err
			}
		}
		return next, nil
	})
}

// SetDate sets the draft date; the zero time is ignored.
func (s *Session) SetDate(t time.Time) error {
	return s.update(func(d model.Draft) (model.Draft, error) { return draft.SetDate(d, t), nil })
}

// SetAttachment attaches a receipt image, or removes it with nil.
func (s *Session) SetAttachment(a *model.Attachment) error {
	return s.update(func(d model.Draft) (model.Draft, error) { return draft.SetAttachment(d, a) })
}

// EnableSplit toggles split mode.
func (s *Session) EnableSplit(on bool) error {
	return s.update(func(d model.Draft) (model.Draft, error) { return draft.EnableSplit(d, on) })
}

// AddLine appends a split line prefilled from the draft.
func (s *Session) AddLine() error {
	return s.update(draft.AddLine)
}

// UpdateLine sets one field of split line i.
func (s *Session) UpdateLine(i int, f model.Field, value string) error {
	return s.update(func(d model.Draft) (model.Draft, error) {
		next, err := draft.UpdateLine(d, i, f, value)
		if err != nil {
			return d, err
		}
		if f == model.FieldLoanRecord {
			line := next.Lines[i]
			if err := s.checkLoan(next.Contact, line.Type, line.LoanRecord); err != nil {
				return d, fmt.Errorf("split line %d: %w", i+1, err)
			}
		}
		return next, nil
	})
}

// RemoveLine drops split line i.
func (s *Session) RemoveLine(i int) error {
	return s.update(func(d model.Draft) (model.Draft, error) { return draft.RemoveLine(d, i) })
}

// ApplySplit replaces the split lines, but only when the resulting draft is
// submittable. Otherwise the draft is unchanged and the problems are returned
// with ErrNotSubmittable.
func (s *Session) ApplySplit(lines []model.SplitLine) ([]validate.Problem, error) {
	var probs []validate.Problem
	err := s.update(func(d model.Draft) (model.Draft, error) {
		next, err := draft.SetLines(d, lines)
		if err != nil {
			return d, err
		}
		for i, l := range next.Lines {
			if err := s.checkLoan(next.Contact, l.Type, l.LoanRecord); err != nil {
				return d, fmt.Errorf("split line %d: %w", i+1, err)
			}
		}
		if probs = validate.Check(next); len(probs) > 0 {
			return d, ErrNotSubmittable
		}
		return next, nil
	})
	return probs, err
}

// Problems returns everything that keeps the draft from being submitted.
func (s *Session) Problems() []validate.Problem {
	return validate.Check(s.Draft())
}

// CanSubmit reports whether the draft is submittable and no submission is in
// flight.
func (s *Session) CanSubmit() bool {
	return !s.inFlight.Load() && validate.Submittable(s.Draft())
}

// InFlight reports whether a submission is outstanding.
func (s *Session) InFlight() bool {
	return s.inFlight.Load()
}

// Cancel discards the draft and starts a fresh one.
func (s *Session) Cancel() error {
	return s.update(func(d model.Draft) (model.Draft, error) {
		s.log.Debug().Str(logger.FieldDraftID, d.ID.String()).Msg("draft discarded")
		return s.fresh(), nil
	})
}

// Submit sends the draft. It never returns an error: every outcome is a
// notification. On success the draft is replaced with a fresh one; on failure
// it is kept so the user can retry.
func (s *Session) Submit(ctx context.Context) Notification {
	if !s.submitting.TryAcquire(1) {
		s.log.Warn().Msg("submit ignored: a submission is already in flight")
		return Notification{Level: LevelWarning, Message: "A submission is already in progress."}
	}
	s.mu.Lock()
	s.inFlight.Store(true)
	s.mu.Unlock()
	defer func() {
		s.inFlight.Store(false)
		s.submitting.Release(1)
	}()

	d := s.Draft()
	log := s.log.With().
		Str(logger.FieldDraftID, d.ID.String()).
		Str(logger.FieldMode, string(d.Mode)).
		Str(logger.FieldEntryType, string(d.EntryType)).
		Logger()

	if probs := validate.Check(d); len(probs) > 0 {
		msgs := make([]string, len(probs))
		for i, p := range probs {
			msgs[i] = p.Error()
		}
		log.Warn().Strs("problems", msgs).Msg("submit rejected: draft incomplete")
		return Notification{Level: LevelWarning, Message: "Transaction is incomplete: " + strings.Join(msgs, "; ")}
	}

	req := payload.Assemble(d)
	log = log.With().Str(logger.FieldEndpoint, req.Endpoint).Logger()
	if d.SplitEnabled {
		log = log.With().Int(logger.FieldLines, len(d.Lines)).Logger()
	}
	log.Info().Msg("submitting transaction")

	if err := s.api.Submit(ctx, req, d.ID.String()); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			log.Error().Err(err).Int(logger.FieldStatus, apiErr.Status).Msg("submission rejected by server")
			msg := apiErr.Message
			if msg == "" {
				msg = GenericFailure
			}
			return Notification{Level: LevelError, Message: msg}
		}
		log.Error().Err(err).Msg("submission failed")
		return Notification{Level: LevelError, Message: GenericFailure}
	}

	log.Info().Msg("transaction saved")
	s.mu.Lock()
	s.draft = s.fresh()
	s.mu.Unlock()

	if d.Mode == model.ModeTransfer {
		return Notification{Level: LevelSuccess, Message: "Transfer saved."}
	}
	return Notification{Level: LevelSuccess, Message: "Transaction saved."}
}

func (s *Session) checkContactAccount(contact, account id.ID) error {
	if s.book == nil || !account.IsSet() {
		return nil
	}
	if !s.book.ContactAccountAllowed(contact, account) {
		return fmt.Errorf("%w: %s", ErrContactAccountNotAllowed, account)
	}
	return nil
}

func (s *Session) checkLoan(contact id.ID, t model.EntryType, loan id.ID) error {
	if s.book == nil || !loan.IsSet() {
		return nil
	}
	if !s.book.LoanAllowed(contact, t, loan) {
		return fmt.Errorf("%w: %s", ErrLoanNotAllowed, loan)
	}
	return nil
}
