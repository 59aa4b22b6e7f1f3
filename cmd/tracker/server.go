package main

import (
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/valeriaulyamaeva/business-tracker/internal/analytics"
	"github.com/valeriaulyamaeva/business-tracker/internal/appdata"
	"github.com/valeriaulyamaeva/business-tracker/internal/auth"
	"github.com/valeriaulyamaeva/business-tracker/internal/database"
	"github.com/valeriaulyamaeva/business-tracker/internal/remote"
	"github.com/valeriaulyamaeva/business-tracker/internal/routes"
	"github.com/valeriaulyamaeva/business-tracker/internal/session"
)

type server struct {
	auth        *auth.Manager
	store       *appdata.Store
	remote      *remote.Adapter
	observer    *session.Observer
	calendar    analytics.Calendar
	origins     []string
	sessionFile string
	now         func() time.Time
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func CORSMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if slices.Contains(allowed, origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// requireSession is the gin counterpart of handlers.RequireSession.
func (s *server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			return
		}
		userID, err := s.auth.Verify(token)
		if err != nil || userID != s.auth.CurrentUser() || userID != s.store.UserID() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session is not active"})
			return
		}
		c.Next()
	}
}

func (s *server) engine() *gin.Engine {
	r := gin.Default()
	r.Use(CORSMiddleware(s.origins))

	r.POST("/register", func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный формат данных. Проверьте введённые значения."})
			return
		}
		token, err := s.auth.SignUp(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			log.Printf("Ошибка при регистрации пользователя: %v", err)
			switch {
			case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, database.ErrEmailTaken):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка регистрации"})
			}
			return
		}
		s.persistToken(token)
		c.JSON(http.StatusOK, gin.H{"message": "Пользователь успешно зарегистрирован", "user_id": s.auth.CurrentUser(), "token": token})
	})

	r.POST("/login", func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ошибка ввода данных"})
			return
		}
		token, err := s.auth.SignIn(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Ошибка авторизации: неверный email или пароль"})
				return
			}
			log.Printf("Ошибка при входе пользователя: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка авторизации"})
			return
		}
		s.persistToken(token)
		c.JSON(http.StatusOK, gin.H{"message": "Авторизация успешна", "user_id": s.auth.CurrentUser(), "token": token})
	})

	authed := r.Group("/", s.requireSession())

	authed.POST("/logout", func(c *gin.Context) {
		s.auth.SignOut()
		s.clearToken()
		c.JSON(http.StatusOK, gin.H{"message": "Выход выполнен"})
	})

	authed.GET("/me", func(c *gin.Context) {
		state, userID := s.observer.State()
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "email": s.auth.CurrentEmail(), "state": state.String()})
	})

	dashboard := authed.Group("/dashboard")
	dashboard.GET("/summary", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.store.Summary())
	})
	dashboard.GET("/earnings_by_method", func(c *gin.Context) {
		c.JSON(http.StatusOK, analytics.ByMethod(s.store.Payments()))
	})
	dashboard.GET("/expenses_by_category", func(c *gin.Context) {
		c.JSON(http.StatusOK, analytics.ByCategory(s.store.Expenses()))
	})
	dashboard.GET("/earnings_over_time", func(c *gin.Context) {
		c.JSON(http.StatusOK, analytics.DailySeries(s.store.Payments(), s.calendar))
	})
	dashboard.GET("/monthly", func(c *gin.Context) {
		snap := s.store.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"earnings":      analytics.MonthlySeries(snap.Payments, s.calendar),
			"expenses":      analytics.MonthlySeries(snap.Expenses, s.calendar),
			"self_payments": analytics.MonthlySeries(snap.SelfPayments, s.calendar),
		})
	})

	api := routes.SetupRouter(routes.Deps{
		Store:    s.store,
		Remote:   s.remote,
		Sessions: s.auth,
		Calendar: s.calendar,
		Now:      s.now,
	})
	r.Any("/api/*path", gin.WrapH(api))

	return r
}
