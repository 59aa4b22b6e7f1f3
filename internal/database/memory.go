package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

// MemoryStore keeps everything in process memory. It serves tests and the
// "memory" driver.
type MemoryStore struct {
	mu        sync.Mutex
	docs      map[string]map[string]Document
	settings  map[string]Document
	blobs     map[string]Blob
	users     map[string]models.User
	writeErr  error
	listeners *hub
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:      make(map[string]map[string]Document),
		settings:  make(map[string]Document),
		blobs:     make(map[string]Blob),
		users:     make(map[string]models.User),
		listeners: newHub(),
	}
}

// FailWrites makes every following Write and Delete return err. nil restores normal behavior.
func (s *MemoryStore) FailWrites(err error) {
	s.mu.Lock()
	s.writeErr = err
	s.mu.Unlock()
}

// BreakListeners reports err to every live subscription on the partition and detaches it.
func (s *MemoryStore) BreakListeners(userID, collection string, err error) {
	s.listeners.fail(partitionKey(userID, collection), err)
}

// ListenerCount returns the number of live subscriptions on the partition.
func (s *MemoryStore) ListenerCount(userID, collection string) int {
	return len(s.listeners.snapshot(partitionKey(userID, collection)))
}

func (s *MemoryStore) Write(ctx context.Context, userID, collection, id string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := partitionKey(userID, collection)

	s.mu.Lock()
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}
	if s.docs[key] == nil {
		s.docs[key] = make(map[string]Document)
	}
	s.docs[key][id] = Document{ID: id, Data: copyData(data), UpdatedAt: time.Now()}
	s.mu.Unlock()

	s.listeners.publish(key)
	return id, nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := partitionKey(userID, collection)

	s.mu.Lock()
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return err
	}
	_, existed := s.docs[key][id]
	delete(s.docs[key], id)
	s.mu.Unlock()

	if existed {
		s.listeners.publish(key)
	}
	return nil
}

func (s *MemoryStore) load(key string) []Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Document, 0, len(s.docs[key]))
	for _, d := range s.docs[key] {
		out = append(out, Document{ID: d.ID, Data: copyData(d.Data), UpdatedAt: d.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemoryStore) Subscribe(ctx context.Context, userID, collection string, onSnapshot func([]Document), onError func(error)) (Listener, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := partitionKey(userID, collection)
	l := &hubListener{
		load:       func() ([]Document, error) { return s.load(key), nil },
		onSnapshot: onSnapshot,
		onError:    onError,
	}
	s.listeners.add(key, l)
	l.deliver()
	return l, nil
}

func (s *MemoryStore) GetDocument(ctx context.Context, userID, name string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.settings[partitionKey(userID, name)]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: d.ID, Data: copyData(d.Data), UpdatedAt: d.UpdatedAt}, nil
}

func (s *MemoryStore) SetDocument(ctx context.Context, userID, name string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}
	s.settings[partitionKey(userID, name)] = Document{ID: name, Data: copyData(data), UpdatedAt: time.Now()}
	return nil
}

func (s *MemoryStore) Upload(ctx context.Context, userID, name, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}
	s.blobs[partitionKey(userID, name)] = Blob{
		ContentType: contentType,
		Data:        append([]byte(nil), data...),
		UpdatedAt:   time.Now(),
	}
	return nil
}

func (s *MemoryStore) Download(ctx context.Context, userID, name string) (*Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blobs[partitionKey(userID, name)]
	if !ok {
		return nil, ErrNotFound
	}
	b.Data = append([]byte(nil), b.Data...)
	return &b, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email {
			return ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("пользователь %s: %w", email, ErrNotFound)
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("пользователь с ID %s: %w", id, ErrNotFound)
	}
	return &u, nil
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
