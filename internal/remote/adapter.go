// Package remote translates records to and from store documents and manages
// the live subscriptions of one user's collections.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/valeriaulyamaeva/business-tracker/internal/database"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

var (
	ErrAuthRequired  = errors.New("требуется вход в систему")
	ErrRemoteWrite   = errors.New("хранилище отклонило запись")
	ErrPendingRecord = errors.New("запись ещё не сохранена и не имеет ID")
	ErrInvalidRecord = errors.New("некорректная запись")
	ErrInvalidImage  = errors.New("файл не является изображением")
)

const (
	settingsDocument = "settings"
	profileImageBlob = "profile_image"
)

// Subscription is a live listener on one collection.
type Subscription interface {
	Cancel()
}

type listenerSubscription struct {
	listener database.Listener
}

func (s listenerSubscription) Cancel() { s.listener.Stop() }

// Adapter is the remote store adapter. Every call names the user explicitly.
type Adapter struct {
	docs  database.DocumentStore
	blobs database.BlobStore
}

func NewAdapter(docs database.DocumentStore, blobs database.BlobStore) *Adapter {
	return &Adapter{docs: docs, blobs: blobs}
}

func checkRecord(rec models.Record) error {
	if rec.RecordAmount().IsNegative() {
		return fmt.Errorf("%w: отрицательная сумма %s", ErrInvalidRecord, rec.RecordAmount())
	}
	if rec.RecordDate().IsZero() {
		return fmt.Errorf("%w: не указана дата", ErrInvalidRecord)
	}
	return nil
}

func (a *Adapter) write(ctx context.Context, userID string, rec models.Record, data map[string]any) (string, error) {
	if userID == "" {
		return "", ErrAuthRequired
	}
	if err := checkRecord(rec); err != nil {
		return "", err
	}
	id, err := a.docs.Write(ctx, userID, string(rec.RecordKind()), rec.RecordID(), data)
	if err != nil {
		log.Printf("Ошибка записи в %s для user_id=%s: %v", rec.RecordKind(), userID, err)
		return "", fmt.Errorf("%w: %w", ErrRemoteWrite, err)
	}
	return id, nil
}

func (a *Adapter) WritePayment(ctx context.Context, userID string, p models.Payment) (string, error) {
	return a.write(ctx, userID, p, encodePayment(p))
}

func (a *Adapter) WriteExpense(ctx context.Context, userID string, e models.Expense) (string, error) {
	return a.write(ctx, userID, e, encodeExpense(e))
}

func (a *Adapter) WriteSelfPayment(ctx context.Context, userID string, s models.SelfPayment) (string, error) {
	return a.write(ctx, userID, s, encodeSelfPayment(s))
}

// Remove deletes one record by id. Records that were never stored cannot be removed.
func (a *Adapter) Remove(ctx context.Context, kind models.Kind, userID, recordID string) error {
	if userID == "" {
		return ErrAuthRequired
	}
	if recordID == "" {
		return ErrPendingRecord
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: неизвестный тип %q", ErrInvalidRecord, kind)
	}
	if err := a.docs.Delete(ctx, userID, string(kind), recordID); err != nil {
		log.Printf("Ошибка удаления %s/%s для user_id=%s: %v", kind, recordID, userID, err)
		return fmt.Errorf("%w: %w", ErrRemoteWrite, err)
	}
	return nil
}

func subscribe[T any](ctx context.Context, a *Adapter, kind models.Kind, userID string,
	decode func(database.Document) (T, bool), onChange func([]T), onError func(error)) (Subscription, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	l, err := a.docs.Subscribe(ctx, userID, string(kind),
		func(docs []database.Document) { onChange(decodeAll(kind, docs, decode)) },
		func(err error) {
			log.Printf("Подписка на %s для user_id=%s прервана: %v", kind, userID, err)
			if onError != nil {
				onError(err)
			}
		})
	if err != nil {
		return nil, fmt.Errorf("ошибка подписки на %s: %w", kind, err)
	}
	return listenerSubscription{listener: l}, nil
}

// SubscribePayments calls onChange with the complete decoded set after every change.
func (a *Adapter) SubscribePayments(ctx context.Context, userID string, onChange func([]models.Payment), onError func(error)) (Subscription, error) {
	return subscribe(ctx, a, models.KindPayment, userID, decodePayment, onChange, onError)
}

func (a *Adapter) SubscribeExpenses(ctx context.Context, userID string, onChange func([]models.Expense), onError func(error)) (Subscription, error) {
	return subscribe(ctx, a, models.KindExpense, userID, decodeExpense, onChange, onError)
}

func (a *Adapter) SubscribeSelfPayments(ctx context.Context, userID string, onChange func([]models.SelfPayment), onError func(error)) (Subscription, error) {
	return subscribe(ctx, a, models.KindSelfPayment, userID, decodeSelfPayment, onChange, onError)
}

// FetchSettings returns empty settings when none were saved yet.
func (a *Adapter) FetchSettings(ctx context.Context, userID string) (*models.Settings, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	doc, err := a.docs.GetDocument(ctx, userID, settingsDocument)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &models.Settings{}, nil
		}
		return nil, fmt.Errorf("ошибка получения настроек: %w", err)
	}

	settings := &models.Settings{}
	settings.ProfileName, _ = doc.Data["profileName"].(string)
	settings.BusinessName, _ = doc.Data["businessName"].(string)
	settings.Email, _ = doc.Data["email"].(string)
	if t, ok := decodeDate(doc.Data["updatedAt"]); ok {
		settings.UpdatedAt = t
	}
	return settings, nil
}

// SaveSettings overwrites the settings document and stamps UpdatedAt.
func (a *Adapter) SaveSettings(ctx context.Context, userID string, settings *models.Settings) error {
	if userID == "" {
		return ErrAuthRequired
	}
	settings.UpdatedAt = time.Now().UTC()
	data := map[string]any{
		"profileName":  settings.ProfileName,
		"businessName": settings.BusinessName,
		"email":        settings.Email,
		"updatedAt":    settings.UpdatedAt.Format(time.RFC3339Nano),
	}
	if err := a.docs.SetDocument(ctx, userID, settingsDocument, data); err != nil {
		log.Printf("Ошибка сохранения настроек для user_id=%s: %v", userID, err)
		return fmt.Errorf("%w: %w", ErrRemoteWrite, err)
	}
	return nil
}

func (a *Adapter) UploadProfileImage(ctx context.Context, userID, contentType string, data []byte) error {
	if userID == "" {
		return ErrAuthRequired
	}
	if !strings.HasPrefix(contentType, "image/") || len(data) == 0 {
		return ErrInvalidImage
	}
	if err := a.blobs.Upload(ctx, userID, profileImageBlob, contentType, data); err != nil {
		log.Printf("Ошибка загрузки изображения профиля для user_id=%s: %v", userID, err)
		return fmt.Errorf("%w: %w", ErrRemoteWrite, err)
	}
	return nil
}

// DownloadProfileImage returns database.ErrNotFound when no image was uploaded.
func (a *Adapter) DownloadProfileImage(ctx context.Context, userID string) (*database.Blob, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	return a.blobs.Download(ctx, userID, profileImageBlob)
}

func logDecodeFailure(kind models.Kind, id string) {
	log.Printf("Документ %s/%s пропущен: отсутствуют или некорректны обязательные поля", kind, id)
}
