package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/valeriaulyamaeva/business-tracker/models"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	user_id    TEXT NOT NULL,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (user_id, collection, id)
);

CREATE TABLE IF NOT EXISTS settings (
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (user_id, name)
);

CREATE TABLE IF NOT EXISTS blobs (
	user_id      TEXT NOT NULL,
	name         TEXT NOT NULL,
	content_type TEXT NOT NULL,
	data         BLOB NOT NULL,
	updated_at   DATETIME NOT NULL,
	PRIMARY KEY (user_id, name)
);`

// SQLiteStore is the single-process local backend. Changes are only observed
// when they are made through this store.
type SQLiteStore struct {
	db        *sql.DB
	listeners *hub
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ошибка создания каталога %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time keeps sqlite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания схемы: %w", err)
	}
	return &SQLiteStore{db: db, listeners: newHub()}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Write(ctx context.Context, userID, collection, id string, data map[string]any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("ошибка кодирования документа: %w", err)
	}
	query := `
		INSERT INTO documents (user_id, collection, id, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, collection, id)
		DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, userID, collection, id, string(payload), time.Now().UTC()); err != nil {
		return "", fmt.Errorf("ошибка записи документа %s/%s: %w", collection, id, err)
	}

	s.listeners.publish(partitionKey(userID, collection))
	return id, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, userID, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE user_id = ? AND collection = ? AND id = ?`,
		userID, collection, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления документа %s/%s: %w", collection, id, err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		s.listeners.publish(partitionKey(userID, collection))
	}
	return nil
}

func (s *SQLiteStore) load(ctx context.Context, userID, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, updated_at FROM documents WHERE user_id = ? AND collection = ? ORDER BY id`,
		userID, collection)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения коллекции %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc Document
			raw string
		)
		if err := rows.Scan(&doc.ID, &raw, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения документа: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &doc.Data); err != nil {
			log.Printf("Документ %s/%s не разобран: %v", collection, doc.ID, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStore) Subscribe(ctx context.Context, userID, collection string, onSnapshot func([]Document), onError func(error)) (Listener, error) {
	l := &hubListener{
		load: func() ([]Document, error) {
			return s.load(context.Background(), userID, collection)
		},
		onSnapshot: onSnapshot,
		onError:    onError,
	}
	s.listeners.add(partitionKey(userID, collection), l)
	l.deliver()
	return l, nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, userID, name string) (*Document, error) {
	var (
		doc Document
		raw string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, data, updated_at FROM settings WHERE user_id = ? AND name = ?`,
		userID, name).Scan(&doc.ID, &raw, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения документа %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), &doc.Data); err != nil {
		return nil, fmt.Errorf("ошибка разбора документа %s: %w", name, err)
	}
	return &doc, nil
}

func (s *SQLiteStore) SetDocument(ctx context.Context, userID, name string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("ошибка кодирования документа: %w", err)
	}
	query := `
		INSERT INTO settings (user_id, name, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, name)
		DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, userID, name, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("ошибка сохранения документа %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Upload(ctx context.Context, userID, name, contentType string, data []byte) error {
	query := `
		INSERT INTO blobs (user_id, name, content_type, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, name)
		DO UPDATE SET content_type = excluded.content_type, data = excluded.data, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, userID, name, contentType, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("ошибка загрузки файла %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Download(ctx context.Context, userID, name string) (*Blob, error) {
	var b Blob
	err := s.db.QueryRowContext(ctx,
		`SELECT content_type, data, updated_at FROM blobs WHERE user_id = ? AND name = ?`,
		userID, name).Scan(&b.ContentType, &b.Data, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла %s: %w", name, err)
	}
	return &b, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, strings.ToLower(user.Email), user.PasswordHash, user.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrEmailTaken
		}
		return fmt.Errorf("ошибка при добавлении пользователя: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, password, created_at FROM users WHERE email = ?`, strings.ToLower(email))
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, email, password, created_at FROM users WHERE id = ?`, id)
}

func (s *SQLiteStore) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь %s: %w", arg, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return &user, nil
}
