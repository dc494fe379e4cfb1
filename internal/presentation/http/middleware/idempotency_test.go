package middleware_test

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/flightworks/aeroops-api/internal/infrastructure/repository"
	"github.com/flightworks/aeroops-api/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newIdempotencyRouter builds a router with two guarded POST routes sharing
// one key store, and a counter recording how often the handlers really ran.
func newIdempotencyRouter(t *testing.T, userID uuid.UUID, calls *int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:idem_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&entity.IdempotencyKey{}))

	cfg := middleware.IdempotencyConfig{Repo: repository.NewIdempotencyRepository(db)}

	handlerFor := func(op string) gin.HandlerFunc {
		return func(c *gin.Context) {
			*calls++
			c.JSON(201, gin.H{"op": op, "call": *calls})
		}
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		// Stand-in for AuthMiddleware; tests may impersonate another caller
		// through the X-Test-User header
		if other := c.GetHeader("X-Test-User"); other != "" {
			c.Set("user_id", uuid.MustParse(other))
		} else {
			c.Set("user_id", userID)
		}
	})
	router.POST("/invoices", middleware.IdempotencyRequired(cfg), handlerFor("create-invoice"))
	router.POST("/payments", middleware.IdempotencyRequired(cfg), handlerFor("record-payment"))
	return router
}

func postWithKey(router *gin.Engine, path, key string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, nil)
	if key != "" {
		req.Header.Set(middleware.IdempotencyKeyHeader, key)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyRequired(t *testing.T) {
	t.Run("missing key is rejected", func(t *testing.T) {
		calls := 0
		router := newIdempotencyRouter(t, uuid.New(), &calls)

		w := postWithKey(router, "/invoices", "")
		assert.Equal(t, 400, w.Code)
		assert.Equal(t, 0, calls)
	})

	t.Run("retry with the same key replays the stored response", func(t *testing.T) {
		calls := 0
		router := newIdempotencyRouter(t, uuid.New(), &calls)

		first := postWithKey(router, "/invoices", "retry-7")
		require.Equal(t, 201, first.Code)

		second := postWithKey(router, "/invoices", "retry-7")
		assert.Equal(t, 201, second.Code)
		assert.Equal(t, "true", second.Header().Get(middleware.IdempotencyReplayedHeader))
		assert.Equal(t, first.Body.String(), second.Body.String())
		assert.Equal(t, 1, calls, "the handler must not run again")
	})

	t.Run("keys are scoped to the route", func(t *testing.T) {
		calls := 0
		router := newIdempotencyRouter(t, uuid.New(), &calls)

		w := postWithKey(router, "/invoices", "shared-key")
		require.Equal(t, 201, w.Code)

		// The same key against a different operation must execute, not replay
		w = postWithKey(router, "/payments", "shared-key")
		assert.Equal(t, 201, w.Code)
		assert.Empty(t, w.Header().Get(middleware.IdempotencyReplayedHeader))
		assert.Equal(t, 2, calls)
	})

	t.Run("keys are scoped to the user", func(t *testing.T) {
		calls := 0
		router := newIdempotencyRouter(t, uuid.New(), &calls)

		w := postWithKey(router, "/invoices", "member-key")
		require.Equal(t, 201, w.Code)
		require.Equal(t, 1, calls)

		// A different member presenting the same key gets a fresh execution
		w = postWithKey(router, "/invoices", "member-key", "X-Test-User", uuid.NewString())
		assert.Equal(t, 201, w.Code)
		assert.Empty(t, w.Header().Get(middleware.IdempotencyReplayedHeader))
		assert.Equal(t, 2, calls)
	})
}
