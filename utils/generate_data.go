package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/valeriaulyamaeva/business-tracker/models"
)

// RecordWriter is satisfied by remote.Adapter.
type RecordWriter interface {
	WritePayment(ctx context.Context, userID string, p models.Payment) (string, error)
	WriteExpense(ctx context.Context, userID string, e models.Expense) (string, error)
	WriteSelfPayment(ctx context.Context, userID string, s models.SelfPayment) (string, error)
}

// Counts is how many records of each kind to generate.
type Counts struct {
	Payments     int
	Expenses     int
	SelfPayments int
}

func randomAmount(f *gofakeit.Faker, max float64) decimal.Decimal {
	return decimal.NewFromFloat(f.Price(1, max)).Round(2)
}

func randomDate(f *gofakeit.Faker, now time.Time, days int) time.Time {
	return f.DateRange(now.AddDate(0, 0, -days), now)
}

func randomNotes(f *gofakeit.Faker) string {
	if f.Bool() {
		return ""
	}
	return f.Sentence(4)
}

// GeneratePayments builds n random payments dated within the last year.
func GeneratePayments(f *gofakeit.Faker, n int, now time.Time) []models.Payment {
	out := make([]models.Payment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Payment{
			Amount: randomAmount(f, 1000),
			Method: f.RandomString(models.DefaultPaymentMethods),
			Date:   randomDate(f, now, 365),
			Notes:  randomNotes(f),
		})
	}
	return out
}

func GenerateExpenses(f *gofakeit.Faker, n int, now time.Time) []models.Expense {
	out := make([]models.Expense, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Expense{
			Amount:   randomAmount(f, 300),
			Category: f.RandomString(models.DefaultExpenseCategories),
			Date:     randomDate(f, now, 365),
			Notes:    randomNotes(f),
		})
	}
	return out
}

func GenerateSelfPayments(f *gofakeit.Faker, n int, now time.Time) []models.SelfPayment {
	out := make([]models.SelfPayment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.SelfPayment{
			Amount: randomAmount(f, 500),
			Date:   randomDate(f, now, 365),
			Notes:  randomNotes(f),
		})
	}
	return out
}

// GenerateTestRecords writes random records of every kind for userID.
func GenerateTestRecords(ctx context.Context, w RecordWriter, f *gofakeit.Faker, userID string, c Counts) error {
	now := time.Now()
	for _, p := range GeneratePayments(f, c.Payments, now) {
		if _, err := w.WritePayment(ctx, userID, p); err != nil {
			return fmt.Errorf("ошибка при добавлении платежа: %w", err)
		}
	}
	for _, e := range GenerateExpenses(f, c.Expenses, now) {
		if _, err := w.WriteExpense(ctx, userID, e); err != nil {
			return fmt.Errorf("ошибка при добавлении расхода: %w", err)
		}
	}
	for _, s := range GenerateSelfPayments(f, c.SelfPayments, now) {
		if _, err := w.WriteSelfPayment(ctx, userID, s); err != nil {
			return fmt.Errorf("ошибка при добавлении выплаты себе: %w", err)
		}
	}
	return nil
}
