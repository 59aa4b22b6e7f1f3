package database_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/valeriaulyamaeva/business-tracker/internal/database"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

const waitTimeout = 2 * time.Second

func waitSnapshot(t *testing.T, ch <-chan []database.Document, want int) []database.Document {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case docs := <-ch:
			if len(docs) == want {
				return docs
			}
		case <-deadline:
			t.Fatalf("не дождались снимка из %d документов", want)
			return nil
		}
	}
}

// testStoreContract runs the behavior every backend must share.
func testStoreContract(t *testing.T, s database.Store) {
	ctx := context.Background()
	userID := fmt.Sprintf("user-%d", time.Now().UnixNano())
	other := userID + "-other"

	snapshots := make(chan []database.Document, 16)
	l, err := s.Subscribe(ctx, userID, "payments", func(docs []database.Document) { snapshots <- docs }, func(err error) {
		t.Errorf("неожиданная ошибка подписки: %v", err)
	})
	if err != nil {
		t.Fatalf("ошибка подписки: %v", err)
	}
	waitSnapshot(t, snapshots, 0)

	id, err := s.Write(ctx, userID, "payments", "", map[string]any{"amount": "10", "method": "Cash"})
	if err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}
	if id == "" {
		t.Fatalf("ожидали назначенный ID документа")
	}
	docs := waitSnapshot(t, snapshots, 1)
	if docs[0].ID != id || docs[0].Data["amount"] != "10" || docs[0].Data["method"] != "Cash" {
		t.Errorf("получили %+v, хотели документ %s с amount=10", docs[0], id)
	}

	if _, err := s.Write(ctx, other, "payments", "", map[string]any{"amount": "99"}); err != nil {
		t.Fatalf("ошибка записи другого пользователя: %v", err)
	}

	if err := s.Delete(ctx, userID, "payments", id); err != nil {
		t.Fatalf("ошибка удаления: %v", err)
	}
	waitSnapshot(t, snapshots, 0)

	if err := s.Delete(ctx, userID, "payments", "missing"); err != nil {
		t.Errorf("удаление отсутствующего документа: получили %v, хотели nil", err)
	}

	l.Stop()
	if _, err := s.Write(ctx, userID, "payments", "", map[string]any{"amount": "1"}); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}
	select {
	case docs := <-snapshots:
		t.Errorf("снимок после остановки подписки: %+v", docs)
	case <-time.After(200 * time.Millisecond):
	}

	if _, err := s.GetDocument(ctx, userID, "settings"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("получили %v, хотели ErrNotFound", err)
	}
	if err := s.SetDocument(ctx, userID, "settings", map[string]any{"businessName": "Acme"}); err != nil {
		t.Fatalf("ошибка сохранения настроек: %v", err)
	}
	doc, err := s.GetDocument(ctx, userID, "settings")
	if err != nil {
		t.Fatalf("ошибка получения настроек: %v", err)
	}
	if doc.Data["businessName"] != "Acme" {
		t.Errorf("получили %+v, хотели businessName=Acme", doc.Data)
	}

	if _, err := s.Download(ctx, userID, "profile_image"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("получили %v, хотели ErrNotFound", err)
	}
	if err := s.Upload(ctx, userID, "profile_image", "image/png", []byte{1, 2, 3}); err != nil {
		t.Fatalf("ошибка загрузки: %v", err)
	}
	blob, err := s.Download(ctx, userID, "profile_image")
	if err != nil {
		t.Fatalf("ошибка скачивания: %v", err)
	}
	if blob.ContentType != "image/png" || len(blob.Data) != 3 {
		t.Errorf("получили %+v, хотели image/png из 3 байт", blob)
	}

	email := fmt.Sprintf("owner.%d@example.com", time.Now().UnixNano())
	user := &models.User{Email: email, PasswordHash: "hash"}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("ошибка создания пользователя: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("ожидали назначенный ID пользователя")
	}
	dup := &models.User{Email: "OWNER" + email[len("owner"):], PasswordHash: "hash"}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, database.ErrEmailTaken) {
		t.Errorf("получили %v, хотели ErrEmailTaken", err)
	}
	found, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("ошибка поиска по email: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("получили %s, хотели %s", found.ID, user.ID)
	}
	if _, err := s.GetUserByID(ctx, "no-such-user"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("получили %v, хотели ErrNotFound", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, database.NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := database.NewSQLiteStore(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("ошибка открытия sqlite: %v", err)
	}
	defer s.Close()
	testStoreContract(t, s)
}

func TestMemoryStoreFailWrites(t *testing.T) {
	s := database.NewMemoryStore()
	boom := errors.New("offline")
	s.FailWrites(boom)

	if _, err := s.Write(context.Background(), "u", "payments", "", map[string]any{}); !errors.Is(err, boom) {
		t.Errorf("получили %v, хотели %v", err, boom)
	}
	s.FailWrites(nil)
	if _, err := s.Write(context.Background(), "u", "payments", "", map[string]any{}); err != nil {
		t.Errorf("неожиданная ошибка: %v", err)
	}
}

func TestMemoryStoreBreakListeners(t *testing.T) {
	s := database.NewMemoryStore()
	ctx := context.Background()

	var failures []error
	_, err := s.Subscribe(ctx, "u", "expenses", func([]database.Document) {}, func(err error) { failures = append(failures, err) })
	if err != nil {
		t.Fatalf("ошибка подписки: %v", err)
	}
	if n := s.ListenerCount("u", "expenses"); n != 1 {
		t.Fatalf("получили %d подписок, хотели 1", n)
	}

	boom := errors.New("permission denied")
	s.BreakListeners("u", "expenses", boom)
	if len(failures) != 1 || !errors.Is(failures[0], boom) {
		t.Errorf("получили %v, хотели одну ошибку %v", failures, boom)
	}
	if n := s.ListenerCount("u", "expenses"); n != 0 {
		t.Errorf("получили %d подписок после сбоя, хотели 0", n)
	}
}

func TestMemoryStoreCopiesData(t *testing.T) {
	s := database.NewMemoryStore()
	ctx := context.Background()

	data := map[string]any{"amount": "5"}
	if _, err := s.Write(ctx, "u", "payments", "a", data); err != nil {
		t.Fatalf("ошибка записи: %v", err)
	}
	data["amount"] = "500"

	var got []database.Document
	l, err := s.Subscribe(ctx, "u", "payments", func(docs []database.Document) { got = docs }, nil)
	if err != nil {
		t.Fatalf("ошибка подписки: %v", err)
	}
	defer l.Stop()
	if len(got) != 1 || got[0].Data["amount"] != "5" {
		t.Errorf("получили %+v, хотели amount=5", got)
	}
}
