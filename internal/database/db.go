package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valeriaulyamaeva/business-tracker/internal/config"
)

const minPoolConns = 10

// ConnectDB opens the backend selected by cfg.StoreDriver. The returned
// func releases it.
func ConnectDB(ctx context.Context, cfg config.Config) (Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Println("Используется хранилище в памяти, данные не сохраняются между запусками")
		return NewMemoryStore(), func() {}, nil

	case config.DriverSQLite:
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	default:
		poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("некорректный DATABASE_URL: %w", err)
		}
		// every live subscription holds a connection for LISTEN
		if poolCfg.MaxConns < minPoolConns {
			poolCfg.MaxConns = minPoolConns
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("БД недоступна: %w", err)
		}
		s := NewPGStore(pool)
		if err := s.Bootstrap(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return s, pool.Close, nil
	}
}
