package main

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// restoreSession signs the saved token's user back in. A missing or stale
// file leaves the process signed out.
func (s *server) restoreSession(ctx context.Context) {
	if s.sessionFile == "" {
		return
	}
	raw, err := os.ReadFile(s.sessionFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Ошибка чтения файла сессии: %v", err)
		}
		return
	}
	if err := s.auth.Restore(ctx, strings.TrimSpace(string(raw))); err != nil {
		log.Printf("Сохранённая сессия недействительна: %v", err)
		s.clearToken()
		return
	}
	log.Printf("Сессия восстановлена для user_id=%s", s.auth.CurrentUser())
}

func (s *server) persistToken(token string) {
	if s.sessionFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.sessionFile), 0o700); err != nil {
		log.Printf("Ошибка создания каталога сессии: %v", err)
		return
	}
	if err := os.WriteFile(s.sessionFile, []byte(token), 0o600); err != nil {
		log.Printf("Ошибка сохранения сессии: %v", err)
	}
}

func (s *server) clearToken() {
	if s.sessionFile == "" {
		return
	}
	if err := os.Remove(s.sessionFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Ошибка удаления файла сессии: %v", err)
	}
}
