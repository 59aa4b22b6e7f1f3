package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// notifyChannel carries "user/collection" payloads for every document change.
const notifyChannel = "documents"

const pgSchema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	user_id    TEXT NOT NULL,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, collection, id)
);

CREATE TABLE IF NOT EXISTS settings (
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, name)
);

CREATE TABLE IF NOT EXISTS blobs (
	user_id      TEXT NOT NULL,
	name         TEXT NOT NULL,
	content_type TEXT NOT NULL,
	data         BYTEA NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, name)
);`

// PGStore is the document store backed by Postgres JSONB rows. Live
// subscriptions use LISTEN/NOTIFY, so writes from any process are observed.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Bootstrap(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("ошибка создания схемы: %w", err)
	}
	return nil
}

func (s *PGStore) Write(ctx context.Context, userID, collection, id string, data map[string]any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("ошибка кодирования документа: %w", err)
	}

	query := `
		INSERT INTO documents (user_id, collection, id, data, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, now())
		ON CONFLICT (user_id, collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, userID, collection, id, string(payload)); err != nil {
			return fmt.Errorf("ошибка записи документа %s/%s: %w", collection, id, err)
		}
		return notify(ctx, tx, userID, collection)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *PGStore) Delete(ctx context.Context, userID, collection, id string) error {
	query := `
		DELETE FROM documents
		WHERE user_id = $1 AND collection = $2 AND id = $3`

	return s.inTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, query, userID, collection, id)
		if err != nil {
			return fmt.Errorf("ошибка удаления документа %s/%s: %w", collection, id, err)
		}
		if result.RowsAffected() == 0 {
			return nil
		}
		return notify(ctx, tx, userID, collection)
	})
}

// inTx commits fn's statements together. Notifications queued inside fn are
// delivered only on commit, so a change and its notification land or fail
// as one.
func (s *PGStore) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

func notify(ctx context.Context, tx pgx.Tx, userID, collection string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, partitionKey(userID, collection)); err != nil {
		return fmt.Errorf("ошибка отправки уведомления: %w", err)
	}
	return nil
}

func (s *PGStore) load(ctx context.Context, userID, collection string) ([]Document, error) {
	query := `
		SELECT id, data, updated_at
		FROM documents
		WHERE user_id = $1 AND collection = $2
		ORDER BY id`

	rows, err := s.pool.Query(ctx, query, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения коллекции %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc Document
			raw []byte
		)
		if err := rows.Scan(&doc.ID, &raw, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка чтения документа: %w", err)
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			log.Printf("Документ %s/%s не разобран: %v", collection, doc.ID, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type pgListener struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *pgListener) Stop() {
	l.cancel()
	<-l.done
}

func (s *PGStore) Subscribe(ctx context.Context, userID, collection string, onSnapshot func([]Document), onError func(error)) (Listener, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения соединения: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("ошибка подписки на %s: %w", notifyChannel, err)
	}
	initial, err := s.load(ctx, userID, collection)
	if err != nil {
		conn.Release()
		return nil, err
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	l := &pgListener{cancel: cancel, done: make(chan struct{})}
	key := partitionKey(userID, collection)

	go func() {
		defer close(l.done)
		defer func() {
			unlistenCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
			defer stop()
			_, _ = conn.Exec(unlistenCtx, "UNLISTEN "+notifyChannel)
			conn.Release()
		}()

		onSnapshot(initial)
		for {
			n, err := conn.Conn().WaitForNotification(listenCtx)
			if err != nil {
				if listenCtx.Err() == nil && onError != nil {
					onError(fmt.Errorf("ошибка ожидания уведомления: %w", err))
				}
				return
			}
			if n.Payload != key {
				continue
			}
			docs, err := s.load(listenCtx, userID, collection)
			if err != nil {
				if listenCtx.Err() == nil && onError != nil {
					onError(err)
				}
				return
			}
			if listenCtx.Err() != nil {
				return
			}
			onSnapshot(docs)
		}
	}()
	return l, nil
}

func (s *PGStore) GetDocument(ctx context.Context, userID, name string) (*Document, error) {
	query := `SELECT name, data, updated_at FROM settings WHERE user_id = $1 AND name = $2`

	var (
		doc Document
		raw []byte
	)
	err := s.pool.QueryRow(ctx, query, userID, name).Scan(&doc.ID, &raw, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения документа %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return nil, fmt.Errorf("ошибка разбора документа %s: %w", name, err)
	}
	return &doc, nil
}

func (s *PGStore) SetDocument(ctx context.Context, userID, name string, data map[string]any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("ошибка кодирования документа: %w", err)
	}
	query := `
		INSERT INTO settings (user_id, name, data, updated_at)
		VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (user_id, name)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
	if _, err := s.pool.Exec(ctx, query, userID, name, string(payload)); err != nil {
		return fmt.Errorf("ошибка сохранения документа %s: %w", name, err)
	}
	return nil
}

func (s *PGStore) Upload(ctx context.Context, userID, name, contentType string, data []byte) error {
	query := `
		INSERT INTO blobs (user_id, name, content_type, data, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, name)
		DO UPDATE SET content_type = EXCLUDED.content_type, data = EXCLUDED.data, updated_at = now()`
	if _, err := s.pool.Exec(ctx, query, userID, name, contentType, data); err != nil {
		return fmt.Errorf("ошибка загрузки файла %s: %w", name, err)
	}
	return nil
}

func (s *PGStore) Download(ctx context.Context, userID, name string) (*Blob, error) {
	query := `SELECT content_type, data, updated_at FROM blobs WHERE user_id = $1 AND name = $2`

	var b Blob
	err := s.pool.QueryRow(ctx, query, userID, name).Scan(&b.ContentType, &b.Data, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения файла %s: %w", name, err)
	}
	return &b, nil
}
