// Package auth is the authentication collaborator: accounts, the current
// user and signed session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/valeriaulyamaeva/business-tracker/internal/database"
	"github.com/valeriaulyamaeva/business-tracker/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrWeakPassword       = errors.New("пароль должен содержать не менее 6 символов")
	ErrInvalidEmail       = errors.New("некорректный email")
	ErrInvalidToken       = errors.New("недействительный токен")
)

const minPasswordLength = 6

type Manager struct {
	users  database.UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	// deliverMu orders user changes together with their notifications, so
	// listeners see changes in the order they were made.
	deliverMu sync.Mutex

	mu        sync.Mutex
	current   *models.User
	nextID    int
	listeners map[int]func(string)
}

func NewManager(users database.UserStore, secret []byte, ttl time.Duration) *Manager {
	return &Manager{
		users:     users,
		secret:    secret,
		ttl:       ttl,
		now:       time.Now,
		listeners: make(map[int]func(string)),
	}
}

// CurrentUser returns the signed-in user id, or "" when signed out.
func (m *Manager) CurrentUser() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.ID
}

// CurrentEmail returns the signed-in user's email, or "".
func (m *Manager) CurrentEmail() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Email
}

// OnChange registers fn to run whenever the current user changes.
func (m *Manager) OnChange(fn func(userID string)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// setCurrent must not be called from a change listener.
func (m *Manager) setCurrent(user *models.User) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	prev := ""
	if m.current != nil {
		prev = m.current.ID
	}
	m.current = user
	next := ""
	if user != nil {
		next = user.ID
	}
	fns := make([]func(string), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	if prev == next {
		return
	}
	for _, fn := range fns {
		fn(next)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates the account, signs it in and returns a session token.
func (m *Manager) SignUp(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return "", ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    m.now(),
	}
	if err := m.users.CreateUser(ctx, user); err != nil {
		return "", err
	}
	log.Printf("Пользователь успешно зарегистрирован: ID = %s", user.ID)

	token, err := m.issue(user.ID)
	if err != nil {
		return "", err
	}
	m.setCurrent(user)
	return token, nil
}

// SignIn checks the credentials, makes the user current and returns a session token.
func (m *Manager) SignIn(ctx context.Context, email, password string) (string, error) {
	user, err := m.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := m.issue(user.ID)
	if err != nil {
		return "", err
	}
	m.setCurrent(user)
	return token, nil
}

func (m *Manager) SignOut() {
	m.setCurrent(nil)
}

// Restore signs the token's user back in, as after an app restart.
func (m *Manager) Restore(ctx context.Context, token string) error {
	userID, err := m.Verify(token)
	if err != nil {
		return err
	}
	user, err := m.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	m.setCurrent(user)
	return nil
}

func (m *Manager) issue(userID string) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     now.Add(m.ttl).Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Verify validates a session token and returns its user id.
func (m *Manager) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	userID, ok := claims["user_id"].(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return "", ErrInvalidToken
	}
	return userID, nil
}
