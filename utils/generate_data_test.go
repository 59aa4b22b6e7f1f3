package utils_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/valeriaulyamaeva/business-tracker/internal/database"
	"github.com/valeriaulyamaeva/business-tracker/internal/remote"
	"github.com/valeriaulyamaeva/business-tracker/models"
	"github.com/valeriaulyamaeva/business-tracker/utils"
)

func TestGeneratedRecordsAreValid(t *testing.T) {
	f := gofakeit.New(7)
	now := time.Now()
	yearAgo := now.AddDate(-1, 0, 0)

	for _, p := range utils.GeneratePayments(f, 30, now) {
		if p.Amount.IsNegative() || p.Date.Before(yearAgo) || p.Date.After(now) {
			t.Errorf("некорректный платёж %+v", p)
		}
		if !slices.Contains(models.DefaultPaymentMethods, p.Method) {
			t.Errorf("неожиданный способ оплаты %q", p.Method)
		}
	}
	for _, e := range utils.GenerateExpenses(f, 30, now) {
		if !slices.Contains(models.DefaultExpenseCategories, e.Category) {
			t.Errorf("неожиданная категория %q", e.Category)
		}
	}
	if n := len(utils.GenerateSelfPayments(f, 4, now)); n != 4 {
		t.Errorf("получили %d, хотели 4", n)
	}
}

func TestGenerateTestRecords(t *testing.T) {
	backend := database.NewMemoryStore()
	adapter := remote.NewAdapter(backend, backend)
	ctx := context.Background()

	counts := utils.Counts{Payments: 5, Expenses: 3, SelfPayments: 2}
	if err := utils.GenerateTestRecords(ctx, adapter, gofakeit.New(1), "seed-user", counts); err != nil {
		t.Fatalf("ошибка генерации: %v", err)
	}

	var payments []models.Payment
	sub, err := adapter.SubscribePayments(ctx, "seed-user", func(ps []models.Payment) { payments = ps }, nil)
	if err != nil {
		t.Fatalf("ошибка подписки: %v", err)
	}
	defer sub.Cancel()
	if len(payments) != 5 {
		t.Errorf("получили %d платежей, хотели 5", len(payments))
	}
	if n := backend.ListenerCount("seed-user", "payments"); n != 1 {
		t.Errorf("получили %d подписок, хотели 1", n)
	}
}
