package database

import (
	"context"
	"errors"
	"time"

	"github.com/valeriaulyamaeva/business-tracker/models"
)

var (
	ErrNotFound   = errors.New("документ не найден")
	ErrEmailTaken = errors.New("пользователь с таким email уже существует")
)

// Document is one remote document of a user's collection.
type Document struct {
	ID        string
	Data      map[string]any
	UpdatedAt time.Time
}

// Listener is a live subscription handle. Stop blocks until no further
// snapshot will be delivered and must not be called from inside onSnapshot.
type Listener interface {
	Stop()
}

// DocumentStore keeps per-user collections of schemaless documents.
type DocumentStore interface {
	// Write creates or overwrites a document. An empty id lets the store
	// assign one; the final id is returned.
	Write(ctx context.Context, userID, collection, id string, data map[string]any) (string, error)
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, userID, collection, id string) error
	// Subscribe delivers the complete current collection once registered and
	// again after every change to it, ordered by document id.
	Subscribe(ctx context.Context, userID, collection string, onSnapshot func([]Document), onError func(error)) (Listener, error)

	GetDocument(ctx context.Context, userID, name string) (*Document, error)
	SetDocument(ctx context.Context, userID, name string, data map[string]any) error
}

type Blob struct {
	ContentType string
	Data        []byte
	UpdatedAt   time.Time
}

type BlobStore interface {
	Upload(ctx context.Context, userID, name, contentType string, data []byte) error
	Download(ctx context.Context, userID, name string) (*Blob, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store is everything a backend provides.
type Store interface {
	DocumentStore
	BlobStore
	UserStore
}

func partitionKey(userID, collection string) string {
	return userID + "/" + collection
}
