package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbook "github.com/xiebiao/library/internal/application/book"
	appborrow "github.com/xiebiao/library/internal/application/borrow"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/interface/http/router"
	"github.com/xiebiao/library/internal/testutil"
	"github.com/xiebiao/library/pkg/jwt"
)

// memBlacklist 内存版令牌黑名单
type memBlacklist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (b *memBlacklist) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[tokenID] = true
	return nil
}

func (b *memBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revoked[tokenID], nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type server struct {
	t      *testing.T
	engine *gin.Engine
	users  user.Service
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testutil.NewDB(t)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Mode: "test",
			CORS: config.CORSConfig{
				Enabled:      true,
				AllowOrigins: []string{"http://localhost:3000"},
				AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
				AllowHeaders: []string{"Authorization", "Content-Type"},
			},
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	bookRepo := mysql.NewBookRepository(db)
	userRepo := mysql.NewUserRepository(db)
	slipRepo := mysql.NewBorrowSlipRepository(db)
	tx := mysql.NewTxManager(db)
	blacklist := &memBlacklist{revoked: map[string]bool{}}
	jwtManager := jwt.NewManager("router-test-secret", time.Hour)

	bookService := book.NewService(bookRepo)
	userService := user.NewService(userRepo)

	deps := appborrow.Deps{
		Slips:    slipRepo,
		Books:    bookRepo,
		Users:    userRepo,
		Tx:       tx,
		LoanDays: 14,
	}

	handlers := router.Handlers{
		Borrow: handler.NewBorrowHandler(
			appborrow.NewCreateSlipUseCase(deps),
			appborrow.NewReturnBookUseCase(deps),
			appborrow.NewUpdateSlipUseCase(deps),
			appborrow.NewDeleteSlipUseCase(deps),
			appborrow.NewDeleteUserSlipsUseCase(deps),
			appborrow.NewQuerySlipsUseCase(deps),
		),
		Book: handler.NewBookHandler(
			appbook.NewCreateBookUseCase(bookService),
			appbook.NewUpdateBookUseCase(bookService, tx),
			appbook.NewDeleteBookUseCase(bookRepo, slipRepo, tx),
			appbook.NewQueryBooksUseCase(bookService),
		),
		User: handler.NewUserHandler(
			appuser.NewRegisterUseCase(userService),
			appuser.NewManageUsersUseCase(userService),
			appuser.NewDeleteUserUseCase(userRepo, slipRepo, tx),
		),
		Auth: handler.NewAuthHandler(
			appuser.NewLoginUseCase(userService, jwtManager),
			appuser.NewIntrospectUseCase(jwtManager, blacklist),
			appuser.NewLogoutUseCase(jwtManager, blacklist),
		),
	}

	auth := middleware.NewAuthMiddleware(jwtManager, blacklist)
	return &server{
		t:      t,
		engine: router.New(cfg, handlers, auth),
		users:  userService,
	}
}

func (s *server) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

// register 注册并登录，admin=true 时先授予管理员再登录
func (s *server) register(username string, admin bool) (uint, string) {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/users", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(s.t, http.StatusOK, status, env.Message)

	var u appuser.UserResponse
	require.NoError(s.t, json.Unmarshal(env.Result, &u))

	if admin {
		_, err := s.users.GrantAdmin(context.Background(), u.ID)
		require.NoError(s.t, err)
	}

	status, env = s.do(http.MethodPost, "/authentication/token", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(s.t, http.StatusOK, status, env.Message)

	var login appuser.LoginResponse
	require.NoError(s.t, json.Unmarshal(env.Result, &login))
	return u.ID, login.Token
}

func (s *server) createBook(adminToken, code string, qty int) appbook.BookResponse {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/books", adminToken, map[string]interface{}{
		"bookCode": code,
		"title":    "书-" + code,
		"quantity": qty,
	})
	require.Equal(s.t, http.StatusOK, status, env.Message)

	var b appbook.BookResponse
	require.NoError(s.t, json.Unmarshal(env.Result, &b))
	return b
}

func (s *server) getBook(id uint) appbook.BookResponse {
	s.t.Helper()
	status, env := s.do(http.MethodGet, fmt.Sprintf("/api/books/%d", id), "", nil)
	require.Equal(s.t, http.StatusOK, status)

	var b appbook.BookResponse
	require.NoError(s.t, json.Unmarshal(env.Result, &b))
	return b
}

func TestPing(t *testing.T) {
	s := newServer(t)
	status, env := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, env.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)
	aliceID, aliceToken := s.register("alice", false)
	bobID, _ := s.register("bob", false)

	status, env := s.do(http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 40100, env.Code)

	status, _ = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d", bobID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 40104, env.Code)

	status, _ = s.do(http.MethodGet, "/api/users", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = s.do(http.MethodPost, "/authentication/token", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 40103, env.Code)

	status, env = s.do(http.MethodPost, "/api/users", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, 40009, env.Code)

	t.Run("注销后令牌失效", func(t *testing.T) {
		status, env := s.do(http.MethodPost, "/authentication/introspect", "", map[string]string{"token": aliceToken})
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"valid":true}`, string(env.Result))

		status, _ = s.do(http.MethodPost, "/authentication/logout", aliceToken, nil)
		require.Equal(t, http.StatusOK, status)

		status, env = s.do(http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), aliceToken, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, 40101, env.Code)

		_, env = s.do(http.MethodPost, "/authentication/introspect", "", map[string]string{"token": aliceToken})
		assert.JSONEq(t, `{"valid":false}`, string(env.Result))
	})
}

func TestBorrowFlow(t *testing.T) {
	s := newServer(t)
	_, adminToken := s.register("admin", true)
	readerID, readerToken := s.register("reader", false)
	a := s.createBook(adminToken, "A", 1)
	b := s.createBook(adminToken, "B", 2)

	status, env := s.do(http.MethodPost, "/api/borrowSlips", "", map[string]interface{}{
		"readerId": readerID,
		"bookIds":  []uint{a.ID, b.ID},
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	var slip appborrow.SlipResponse
	require.NoError(t, json.Unmarshal(env.Result, &slip))
	require.Len(t, slip.Details, 2)
	assert.Equal(t, 0, s.getBook(a.ID).AvailableQuantity)
	assert.Equal(t, 1, s.getBook(b.ID).AvailableQuantity)

	t.Run("无库存", func(t *testing.T) {
		status, env := s.do(http.MethodPost, "/api/borrowSlips", "", map[string]interface{}{
			"readerId": readerID,
			"bookIds":  []uint{b.ID, a.ID},
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, 40001, env.Code)
		assert.Contains(t, env.Message, "书-A")
		assert.Equal(t, 1, s.getBook(b.ID).AvailableQuantity)
	})

	t.Run("空图书列表", func(t *testing.T) {
		status, env := s.do(http.MethodPost, "/api/borrowSlips", "", map[string]interface{}{
			"readerId": readerID,
			"bookIds":  []uint{},
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, 40900, env.Code)
	})

	t.Run("公开查询", func(t *testing.T) {
		status, env := s.do(http.MethodGet, fmt.Sprintf("/api/borrowSlips/user/%d", readerID), "", nil)
		require.Equal(t, http.StatusOK, status)
		var slips []appborrow.SlipResponse
		require.NoError(t, json.Unmarshal(env.Result, &slips))
		assert.Len(t, slips, 1)

		status, _ = s.do(http.MethodGet, fmt.Sprintf("/api/borrowSlips/book/%d", a.ID), "", nil)
		assert.Equal(t, http.StatusOK, status)

		status, _ = s.do(http.MethodGet, fmt.Sprintf("/api/borrowSlips/%d", slip.ID), "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)

		status, _ = s.do(http.MethodGet, fmt.Sprintf("/api/borrowSlips/%d", slip.ID), readerToken, nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("创建时间参数", func(t *testing.T) {
		status, env := s.do(http.MethodGet, "/api/borrowSlips/createdAt?createdAt=2025/03/10", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, 40902, env.Code)

		status, env = s.do(http.MethodGet, "/api/borrowSlips/createdAt", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, 40900, env.Code)
	})

	t.Run("归还", func(t *testing.T) {
		path := fmt.Sprintf("/api/borrowSlips/return/%d", slip.Details[0].ID)

		status, _ := s.do(http.MethodPut, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)

		status, env := s.do(http.MethodPut, path, readerToken, nil)
		require.Equal(t, http.StatusOK, status, env.Message)
		assert.Equal(t, "归还成功", env.Message)
		var detail appborrow.DetailResponse
		require.NoError(t, json.Unmarshal(env.Result, &detail))
		assert.Equal(t, "RETURNED", detail.Status)
		assert.Equal(t, 1, s.getBook(a.ID).AvailableQuantity)

		status, env = s.do(http.MethodPut, path, readerToken, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, 40006, env.Code)
		assert.Equal(t, 1, s.getBook(a.ID).AvailableQuantity)
	})

	t.Run("修改需要管理员", func(t *testing.T) {
		body := map[string]interface{}{
			"readerId":   readerID,
			"bookIds":    []uint{b.ID},
			"borrowDate": "2025-03-01",
			"dueDate":    "2025-03-20",
		}
		path := fmt.Sprintf("/api/borrowSlips/%d", slip.ID)

		status, _ := s.do(http.MethodPut, path, readerToken, body)
		assert.Equal(t, http.StatusForbidden, status)

		body["dueDate"] = "20-03-2025"
		status, env := s.do(http.MethodPut, path, adminToken, body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, 40902, env.Code)

		body["dueDate"] = "2025-03-20"
		status, env = s.do(http.MethodPut, path, adminToken, body)
		require.Equal(t, http.StatusOK, status, env.Message)

		var updated appborrow.SlipResponse
		require.NoError(t, json.Unmarshal(env.Result, &updated))
		require.Len(t, updated.Details, 1)
		assert.Equal(t, "2025-03-20", updated.Details[0].DueDate)
		// 移除的A已归还，在架数不变
		assert.Equal(t, 1, s.getBook(a.ID).AvailableQuantity)
		assert.Equal(t, 1, s.getBook(b.ID).AvailableQuantity)

		// 只传图书列表：读者与备注不变，日期取今天与今天 + 借期
		status, env = s.do(http.MethodPut, path, adminToken, map[string]interface{}{
			"bookIds": []uint{b.ID},
		})
		require.Equal(t, http.StatusOK, status, env.Message)
		require.NoError(t, json.Unmarshal(env.Result, &updated))
		assert.Equal(t, readerID, updated.ReaderID)
		today := time.Now()
		assert.Equal(t, today.Format("2006-01-02"), updated.Details[0].BorrowDate)
		assert.Equal(t, today.AddDate(0, 0, 14).Format("2006-01-02"), updated.Details[0].DueDate)
	})

	t.Run("删除读者仍有借阅单", func(t *testing.T) {
		status, env := s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", readerID), adminToken, nil)
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, 40010, env.Code)
	})

	t.Run("删除借阅单", func(t *testing.T) {
		path := fmt.Sprintf("/api/borrowSlips/%d", slip.ID)

		status, _ := s.do(http.MethodDelete, path, readerToken, nil)
		assert.Equal(t, http.StatusForbidden, status)

		status, _ = s.do(http.MethodDelete, path, adminToken, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2, s.getBook(b.ID).AvailableQuantity)

		status, env := s.do(http.MethodDelete, path, adminToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, 40403, env.Code)
	})

	t.Run("读者已无借阅单", func(t *testing.T) {
		status, env := s.do(http.MethodDelete, fmt.Sprintf("/api/borrowSlips/user/%d", readerID), adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, 40011, env.Code)
	})

	t.Run("删除读者", func(t *testing.T) {
		status, _ := s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", readerID), adminToken, nil)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestBookAdmin(t *testing.T) {
	s := newServer(t)
	adminID, adminToken := s.register("admin", true)
	readerID, readerToken := s.register("reader", false)

	status, _ := s.do(http.MethodPost, "/api/books", readerToken, map[string]interface{}{
		"bookCode": "A",
		"title":    "A",
	})
	assert.Equal(t, http.StatusForbidden, status)

	a := s.createBook(adminToken, "A", 2)
	unused := s.createBook(adminToken, "U", 1)

	status, env := s.do(http.MethodPost, "/api/books", adminToken, map[string]interface{}{
		"bookCode": "A",
		"title":    "重复",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, 40009, env.Code)

	status, env = s.do(http.MethodPost, "/api/borrowSlips", "", map[string]interface{}{
		"readerId": readerID,
		"bookIds":  []uint{a.ID, a.ID},
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = s.do(http.MethodPut, fmt.Sprintf("/api/books/%d", a.ID), adminToken, map[string]interface{}{
		"totalQuantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 40007, env.Code)

	status, env = s.do(http.MethodPut, fmt.Sprintf("/api/books/%d", a.ID), adminToken, map[string]interface{}{
		"totalQuantity": 4,
	})
	require.Equal(t, http.StatusOK, status, env.Message)
	got := s.getBook(a.ID)
	assert.Equal(t, 4, got.TotalQuantity)
	assert.Equal(t, 2, got.AvailableQuantity)

	status, env = s.do(http.MethodDelete, fmt.Sprintf("/api/books/%d", a.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"soft":true}`, string(env.Result))

	status, env = s.do(http.MethodDelete, fmt.Sprintf("/api/books/%d", unused.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"soft":false}`, string(env.Result))

	status, env = s.do(http.MethodGet, "/api/books", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Result))

	status, env = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", adminID), adminToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 40104, env.Code)
}

func TestInvalidPathID(t *testing.T) {
	s := newServer(t)
	status, env := s.do(http.MethodGet, "/api/books/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 40900, env.Code)
}

func TestCORS(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/books", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestIDAndMetrics(t *testing.T) {
	s := newServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
