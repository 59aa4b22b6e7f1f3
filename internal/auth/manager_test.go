package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/valeriaulyamaeva/business-tracker/internal/auth"
	"github.com/valeriaulyamaeva/business-tracker/internal/database"
)

var secret = []byte("test-secret")

func TestSignUpSignsIn(t *testing.T) {
	m := auth.NewManager(database.NewMemoryStore(), secret, time.Hour)
	ctx := context.Background()

	var changes []string
	m.OnChange(func(userID string) { changes = append(changes, userID) })

	token, err := m.SignUp(ctx, "  Owner@Example.com ", "hunter22")
	if err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	userID := m.CurrentUser()
	if userID == "" || m.CurrentEmail() != "owner@example.com" {
		t.Fatalf("получили %q %q, хотели вошедшего пользователя", userID, m.CurrentEmail())
	}
	got, err := m.Verify(token)
	if err != nil || got != userID {
		t.Errorf("получили %q %v, хотели %q", got, err, userID)
	}
	if len(changes) != 1 || changes[0] != userID {
		t.Errorf("получили %v, хотели одно уведомление", changes)
	}

	m.SignOut()
	m.SignOut()
	if m.CurrentUser() != "" {
		t.Errorf("ожидали выход")
	}
	if len(changes) != 2 || changes[1] != "" {
		t.Errorf("получили %v, хотели уведомление о выходе ровно один раз", changes)
	}
}

func TestSignUpValidation(t *testing.T) {
	m := auth.NewManager(database.NewMemoryStore(), secret, time.Hour)
	ctx := context.Background()

	if _, err := m.SignUp(ctx, "nobody", "hunter22"); !errors.Is(err, auth.ErrInvalidEmail) {
		t.Errorf("получили %v, хотели ErrInvalidEmail", err)
	}
	if _, err := m.SignUp(ctx, "a@b.c", "123"); !errors.Is(err, auth.ErrWeakPassword) {
		t.Errorf("получили %v, хотели ErrWeakPassword", err)
	}
	if _, err := m.SignUp(ctx, "a@b.c", "hunter22"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	if _, err := m.SignUp(ctx, "A@B.C", "hunter22"); !errors.Is(err, database.ErrEmailTaken) {
		t.Errorf("получили %v, хотели ErrEmailTaken", err)
	}
}

func TestSignIn(t *testing.T) {
	users := database.NewMemoryStore()
	m := auth.NewManager(users, secret, time.Hour)
	ctx := context.Background()

	if _, err := m.SignUp(ctx, "owner@example.com", "hunter22"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	userID := m.CurrentUser()
	m.SignOut()

	if _, err := m.SignIn(ctx, "owner@example.com", "wrong-password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("получили %v, хотели ErrInvalidCredentials", err)
	}
	if _, err := m.SignIn(ctx, "stranger@example.com", "hunter22"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("получили %v, хотели ErrInvalidCredentials", err)
	}
	if m.CurrentUser() != "" {
		t.Errorf("неудачный вход не должен менять пользователя")
	}
	if _, err := m.SignIn(ctx, "OWNER@example.com", "hunter22"); err != nil {
		t.Fatalf("ошибка входа: %v", err)
	}
	if m.CurrentUser() != userID {
		t.Errorf("получили %q, хотели %q", m.CurrentUser(), userID)
	}
}

func TestRestore(t *testing.T) {
	users := database.NewMemoryStore()
	m := auth.NewManager(users, secret, time.Hour)
	ctx := context.Background()

	token, err := m.SignUp(ctx, "owner@example.com", "hunter22")
	if err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	userID := m.CurrentUser()

	restarted := auth.NewManager(users, secret, time.Hour)
	if err := restarted.Restore(ctx, token); err != nil {
		t.Fatalf("ошибка восстановления: %v", err)
	}
	if restarted.CurrentUser() != userID {
		t.Errorf("получили %q, хотели %q", restarted.CurrentUser(), userID)
	}

	other := auth.NewManager(users, []byte("another-secret"), time.Hour)
	if err := other.Restore(ctx, token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("получили %v, хотели ErrInvalidToken", err)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	expired := auth.NewManager(database.NewMemoryStore(), secret, -time.Minute)
	token, err := expired.SignUp(ctx, "late@example.com", "hunter22")
	if err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	if _, err := expired.Verify(token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("просроченный токен: получили %v, хотели ErrInvalidToken", err)
	}

	m := auth.NewManager(database.NewMemoryStore(), secret, time.Hour)
	if _, err := m.Verify("not-a-token"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("получили %v, хотели ErrInvalidToken", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"user_id": "x", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("ошибка подписи: %v", err)
	}
	if _, err := m.Verify(unsigned); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("токен без подписи: получили %v, хотели ErrInvalidToken", err)
	}

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	signed, err := noUser.SignedString(secret)
	if err != nil {
		t.Fatalf("ошибка подписи: %v", err)
	}
	if _, err := m.Verify(signed); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("токен без user_id: получили %v, хотели ErrInvalidToken", err)
	}
}

func TestChangesAreDeliveredInOrder(t *testing.T) {
	m := auth.NewManager(database.NewMemoryStore(), secret, time.Hour)
	ctx := context.Background()

	if _, err := m.SignUp(ctx, "alice@example.com", "hunter22"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	alice := m.CurrentUser()
	if _, err := m.SignUp(ctx, "bob@example.com", "hunter22"); err != nil {
		t.Fatalf("ошибка регистрации: %v", err)
	}
	bob := m.CurrentUser()
	m.SignOut()

	var (
		mu        sync.Mutex
		delivered []string
	)
	aliceStarted := make(chan struct{})
	m.OnChange(func(userID string) {
		if userID == alice {
			close(aliceStarted)
			time.Sleep(200 * time.Millisecond)
		}
		mu.Lock()
		delivered = append(delivered, userID)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := m.SignIn(ctx, "alice@example.com", "hunter22"); err != nil {
			t.Errorf("ошибка входа: %v", err)
		}
	}()
	<-aliceStarted
	go func() {
		defer wg.Done()
		if _, err := m.SignIn(ctx, "bob@example.com", "hunter22"); err != nil {
			t.Errorf("ошибка входа: %v", err)
		}
	}()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 2 || delivered[0] != alice || delivered[1] != bob {
		t.Fatalf("получили %v, хотели [%s %s]", delivered, alice, bob)
	}
	if last := delivered[len(delivered)-1]; last != m.CurrentUser() {
		t.Errorf("последнее уведомление %s, текущий пользователь %s", last, m.CurrentUser())
	}
}
