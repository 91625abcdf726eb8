package webserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pollwire/pollwire/src/api/config"
	"github.com/pollwire/pollwire/src/api/data"
	"github.com/pollwire/pollwire/src/api/feed"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestDB opens a uniquely named shared in-memory database so every
// pool connection sees the same data. MaxOpenConns(1) serializes writes,
// which sqlite would otherwise reject under concurrent load.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:test%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := data.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB, *feed.MemoryFeed) {
	t.Helper()
	db := newTestDB(t)
	f := feed.NewMemoryFeed()
	cfg := config.Config{
		Port:        "0",
		SiteURL:     "http://poll.test",
		CORSOrigins: []string{"http://poll.test"},
	}
	return New(cfg, db, f), db, f
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// createPoll drives the real creation endpoint and returns the new id.
func createPoll(t *testing.T, router *gin.Engine, question string, options []string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/v1/polls", map[string]any{
		"question": question,
		"options":  options,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create poll: status %d body %s", w.Code, w.Body.String())
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return out.ID
}
