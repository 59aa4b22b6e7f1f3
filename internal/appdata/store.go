// Package appdata holds the signed-in user's three record collections and
// keeps them in step with the remote store.
package appdata

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/business-tracker/internal/analytics"
	"github.com/valeriaulyamaeva/business-tracker/internal/remote"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

// Remote is the part of the remote store adapter the data store uses.
type Remote interface {
	WritePayment(ctx context.Context, userID string, p models.Payment) (string, error)
	WriteExpense(ctx context.Context, userID string, e models.Expense) (string, error)
	WriteSelfPayment(ctx context.Context, userID string, s models.SelfPayment) (string, error)
	Remove(ctx context.Context, kind models.Kind, userID, recordID string) error
	SubscribePayments(ctx context.Context, userID string, onChange func([]models.Payment), onError func(error)) (remote.Subscription, error)
	SubscribeExpenses(ctx context.Context, userID string, onChange func([]models.Expense), onError func(error)) (remote.Subscription, error)
	SubscribeSelfPayments(ctx context.Context, userID string, onChange func([]models.SelfPayment), onError func(error)) (remote.Subscription, error)
}

// Snapshot is a consistent copy of the three collections.
type Snapshot struct {
	UserID       string
	Payments     []models.Payment
	Expenses     []models.Expense
	SelfPayments []models.SelfPayment
}

func (s Snapshot) Summary() analytics.Summary {
	return analytics.Summarize(s.Payments, s.Expenses, s.SelfPayments)
}

func (s Snapshot) Transactions() []models.Transaction {
	return analytics.Transactions(s.Payments, s.Expenses, s.SelfPayments)
}

type Store struct {
	remote Remote

	mu           sync.Mutex
	userID       string
	generation   uint64
	subs         []remote.Subscription
	payments     []models.Payment
	expenses     []models.Expense
	selfPayments []models.SelfPayment

	observersMu sync.Mutex
	nextObs     int
	observers   map[int]func(Snapshot)
}

func New(r Remote) *Store {
	return &Store{remote: r, observers: make(map[int]func(Snapshot))}
}

// Subscribe registers fn to run after every accepted snapshot or mutation.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.observersMu.Lock()
	defer s.observersMu.Unlock()

	s.nextObs++
	id := s.nextObs
	s.observers[id] = fn
	return func() {
		s.observersMu.Lock()
		delete(s.observers, id)
		s.observersMu.Unlock()
	}
}

func (s *Store) notify() {
	snap := s.Snapshot()

	s.observersMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.observersMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// StartSession opens one subscription per kind for userID. A running
// session for another user is ended first.
func (s *Store) StartSession(ctx context.Context, userID string) error {
	s.mu.Lock()
	if s.userID == userID && len(s.subs) > 0 {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	s.EndSession()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.userID = userID
	s.mu.Unlock()

	log.Printf("Открываем подписки для user_id=%s", userID)

	var subs []remote.Subscription
	fail := func(err error) error {
		for _, sub := range subs {
			sub.Cancel()
		}
		return err
	}
	// abort drops whatever the partial session delivered, unless another
	// session has already replaced it.
	abort := func(err error) error {
		fail(err)
		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			return err
		}
		s.generation++
		s.userID = ""
		s.payments = nil
		s.expenses = nil
		s.selfPayments = nil
		s.mu.Unlock()
		log.Printf("Не удалось открыть подписки для user_id=%s: %v", userID, err)
		s.notify()
		return err
	}

	sub, err := s.remote.SubscribePayments(ctx, userID, func(ps []models.Payment) {
		s.apply(gen, func() { s.payments = ps })
	}, s.onSubscriptionError(models.KindPayment))
	if err != nil {
		return abort(err)
	}
	subs = append(subs, sub)

	sub, err = s.remote.SubscribeExpenses(ctx, userID, func(es []models.Expense) {
		s.apply(gen, func() { s.expenses = es })
	}, s.onSubscriptionError(models.KindExpense))
	if err != nil {
		return abort(err)
	}
	subs = append(subs, sub)

	sub, err = s.remote.SubscribeSelfPayments(ctx, userID, func(sp []models.SelfPayment) {
		s.apply(gen, func() { s.selfPayments = sp })
	}, s.onSubscriptionError(models.KindSelfPayment))
	if err != nil {
		return abort(err)
	}
	subs = append(subs, sub)

	s.mu.Lock()
	if s.generation != gen {
		// the session ended while subscribing
		s.mu.Unlock()
		return fail(nil)
	}
	s.subs = subs
	s.mu.Unlock()
	return nil
}

// EndSession cancels every subscription and clears all collections.
func (s *Store) EndSession() {
	s.mu.Lock()
	subs := s.subs
	hadSession := s.userID != ""
	s.subs = nil
	s.generation++
	s.userID = ""
	s.payments = nil
	s.expenses = nil
	s.selfPayments = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	if hadSession {
		log.Println("Сессия завершена, данные очищены")
		s.notify()
	}
}

// apply runs mutate if gen is still the current session.
func (s *Store) apply(gen uint64, mutate func()) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	mutate()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) onSubscriptionError(kind models.Kind) func(error) {
	return func(err error) {
		log.Printf("Коллекция %s остаётся в последнем состоянии: %v", kind, err)
	}
}

// session returns the signed-in user or "" after logging the skipped operation.
func (s *Store) session(op string) string {
	userID := s.UserID()
	if userID == "" {
		log.Printf("Операция %s пропущена: пользователь не вошёл в систему", op)
	}
	return userID
}

// AddPayment writes a new payment. It becomes visible once the subscription
// echoes it back.
func (s *Store) AddPayment(ctx context.Context, amount decimal.Decimal, method string, date time.Time, notes string) (string, error) {
	userID := s.session("AddPayment")
	if userID == "" {
		return "", nil
	}
	return s.remote.WritePayment(ctx, userID, models.Payment{Amount: amount, Method: method, Date: date, Notes: notes})
}

func (s *Store) AddExpense(ctx context.Context, amount decimal.Decimal, category string, date time.Time, notes string) (string, error) {
	userID := s.session("AddExpense")
	if userID == "" {
		return "", nil
	}
	return s.remote.WriteExpense(ctx, userID, models.Expense{Amount: amount, Category: category, Date: date, Notes: notes})
}

func (s *Store) AddSelfPayment(ctx context.Context, amount decimal.Decimal, date time.Time, notes string) (string, error) {
	userID := s.session("AddSelfPayment")
	if userID == "" {
		return "", nil
	}
	return s.remote.WriteSelfPayment(ctx, userID, models.SelfPayment{Amount: amount, Date: date, Notes: notes})
}

func (s *Store) DeletePayment(ctx context.Context, p models.Payment) error {
	return s.Delete(ctx, models.KindPayment, p.ID)
}

func (s *Store) DeleteExpense(ctx context.Context, e models.Expense) error {
	return s.Delete(ctx, models.KindExpense, e.ID)
}

func (s *Store) DeleteSelfPayment(ctx context.Context, sp models.SelfPayment) error {
	return s.Delete(ctx, models.KindSelfPayment, sp.ID)
}

// Delete removes the record remotely and then from local state. Removing an
// id that is no longer present locally is a no-op.
func (s *Store) Delete(ctx context.Context, kind models.Kind, id string) error {
	userID := s.session("Delete")
	if userID == "" {
		return nil
	}
	if id == "" {
		return remote.ErrPendingRecord
	}
	if err := s.remote.Remove(ctx, kind, userID, id); err != nil {
		return err
	}

	s.mu.Lock()
	if s.userID != userID {
		s.mu.Unlock()
		return nil
	}
	removed := false
	switch kind {
	case models.KindPayment:
		s.payments, removed = removeByID(s.payments, id)
	case models.KindExpense:
		s.expenses, removed = removeByID(s.expenses, id)
	case models.KindSelfPayment:
		s.selfPayments, removed = removeByID(s.selfPayments, id)
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
	return nil
}

// removeByID returns a new slice without the record, leaving the old one
// untouched for snapshots that still reference it.
func removeByID[R models.Record](records []R, id string) ([]R, bool) {
	for i, r := range records {
		if r.RecordID() == id {
			out := make([]R, 0, len(records)-1)
			out = append(out, records[:i]...)
			return append(out, records[i+1:]...), true
		}
	}
	return records, false
}

func (s *Store) Payments() []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Payment(nil), s.payments...)
}

func (s *Store) Expenses() []models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Expense(nil), s.expenses...)
}

func (s *Store) SelfPayments() []models.SelfPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SelfPayment(nil), s.selfPayments...)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		UserID:       s.userID,
		Payments:     append([]models.Payment(nil), s.payments...),
		Expenses:     append([]models.Expense(nil), s.expenses...),
		SelfPayments: append([]models.SelfPayment(nil), s.selfPayments...),
	}
}

func (s *Store) Summary() analytics.Summary {
	return s.Snapshot().Summary()
}

func (s *Store) Transactions() []models.Transaction {
	return s.Snapshot().Transactions()
}
