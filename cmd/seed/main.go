package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/valeriaulyamaeva/business-tracker/internal/auth"
	"github.com/valeriaulyamaeva/business-tracker/internal/config"
	"github.com/valeriaulyamaeva/business-tracker/internal/database"
	"github.com/valeriaulyamaeva/business-tracker/internal/remote"
	"github.com/valeriaulyamaeva/business-tracker/utils"
)

func main() {
	email := flag.String("email", "demo@example.com", "account to seed")
	password := flag.String("password", "demo-password", "account password")
	payments := flag.Int("payments", 40, "number of payments")
	expenses := flag.Int("expenses", 25, "number of expenses")
	selfPayments := flag.Int("self-payments", 10, "number of self payments")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if cfg.StoreDriver == config.DriverMemory {
		log.Fatalf("Заполнение хранилища в памяти не имеет смысла, укажите STORE_DRIVER")
	}

	ctx := context.Background()
	db, closeDB, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к БД: %v", err)
	}
	defer closeDB()

	manager := auth.NewManager(db, []byte(cfg.JWTSecret), cfg.TokenTTL)
	if _, err := manager.SignIn(ctx, *email, *password); err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			log.Fatalf("Ошибка входа: %v", err)
		}
		if _, err := manager.SignUp(ctx, *email, *password); err != nil {
			log.Fatalf("Ошибка регистрации: %v", err)
		}
	}
	userID := manager.CurrentUser()

	counts := utils.Counts{Payments: *payments, Expenses: *expenses, SelfPayments: *selfPayments}
	if err := utils.GenerateTestRecords(ctx, remote.NewAdapter(db, db), gofakeit.New(*seed), userID, counts); err != nil {
		log.Fatalf("Ошибка генерации данных: %v", err)
	}
	log.Printf("Тестовые данные созданы для %s (user_id=%s)", *email, userID)
}
