// Package session follows the auth state and starts or tears down the
// user's data accordingly.
package session

import (
	"context"
	"log"
	"sync"
)

type State int

const (
	SignedOut State = iota
	SignedIn
)

func (s State) String() string {
	if s == SignedIn {
		return "signed_in"
	}
	return "signed_out"
}

// Auth is the part of the auth collaborator the observer watches.
type Auth interface {
	CurrentUser() string
	OnChange(fn func(userID string)) (cancel func())
}

// Sink receives session transitions. appdata.Store implements it.
type Sink interface {
	StartSession(ctx context.Context, userID string) error
	EndSession()
}

type Observer struct {
	auth Auth
	sink Sink

	mu     sync.Mutex
	ctx    context.Context
	state  State
	userID string
	detach func()
}

func NewObserver(auth Auth, sink Sink) *Observer {
	return &Observer{auth: auth, sink: sink}
}

// Start applies the current auth state and then follows every change.
// ctx bounds the subscription setup of each new session.
func (o *Observer) Start(ctx context.Context) {
	o.mu.Lock()
	o.ctx = ctx
	o.mu.Unlock()

	o.handle(o.auth.CurrentUser())
	detach := o.auth.OnChange(o.handle)

	o.mu.Lock()
	o.detach = detach
	o.mu.Unlock()
}

// State returns the current state and, when signed in, the user id.
func (o *Observer) State() (State, string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state, o.userID
}

func (o *Observer) handle(userID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case userID == "" && o.state == SignedOut:
		return
	case userID != "" && o.state == SignedIn && userID == o.userID:
		return
	}

	if o.state == SignedIn {
		log.Printf("Выход пользователя user_id=%s", o.userID)
		o.sink.EndSession()
		o.state, o.userID = SignedOut, ""
	}
	if userID == "" {
		return
	}

	log.Printf("Вход пользователя user_id=%s", userID)
	o.state, o.userID = SignedIn, userID
	if err := o.sink.StartSession(o.ctx, userID); err != nil {
		// auth still reports the user; data stays empty until the next transition
		log.Printf("Не удалось открыть подписки для user_id=%s: %v", userID, err)
	}
}

// Close stops following auth changes and ends any running session.
func (o *Observer) Close() {
	o.mu.Lock()
	detach := o.detach
	o.detach = nil
	o.mu.Unlock()

	if detach != nil {
		detach()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == SignedIn {
		o.sink.EndSession()
		o.state, o.userID = SignedOut, ""
	}
}
