//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试直连已启动的服务：go test -tags integration ./test/integration/...
//
//	LIBRARY_BASE_URL        默认 http://localhost:8080
//	LIBRARY_ADMIN_USERNAME  管理员账号，未设置时跳过需要管理员的用例
//	LIBRARY_ADMIN_PASSWORD
const timeout = 10 * time.Second

var client = &http.Client{Timeout: timeout}

func baseURL() string {
	if u := os.Getenv("LIBRARY_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:8080"
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (r *Response) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Result, v), "解析result失败")
}

// Do 发送请求并解析统一响应
func Do(t *testing.T, method, path string, body interface{}, token string) (int, *Response) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL()+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err, "服务未启动？")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out Response
	require.NoError(t, json.Unmarshal(raw, &out), "响应不是JSON: %s", raw)
	return resp.StatusCode, &out
}

// tryPost 不做断言，供并发用例在 goroutine 中使用
func tryPost(path string, body interface{}) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	resp, err := client.Post(baseURL()+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// unique 带时间戳后缀，重复运行不冲突
func unique(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, time.Now().UnixNano()%1_000_000_000)
}

type userResult struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type tokenResult struct {
	Token         string `json:"token"`
	Authenticated bool   `json:"authenticated"`
}

type bookResult struct {
	ID                uint `json:"id"`
	TotalQuantity     int  `json:"totalQuantity"`
	AvailableQuantity int  `json:"availableQuantity"`
}

type detailResult struct {
	ID     uint   `json:"id"`
	BookID uint   `json:"bookId"`
	Status string `json:"status"`
}

type slipResult struct {
	ID       uint           `json:"id"`
	SlipCode string         `json:"slipCode"`
	ReaderID uint           `json:"readerId"`
	Details  []detailResult `json:"details"`
}

func login(t *testing.T, username, password string) string {
	t.Helper()
	status, resp := Do(t, http.MethodPost, "/authentication/token",
		map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, status, resp.Message)

	var tok tokenResult
	resp.decode(t, &tok)
	require.True(t, tok.Authenticated)
	return tok.Token
}

// RegisterReader 注册读者并登录
func RegisterReader(t *testing.T) (uint, string) {
	t.Helper()
	username := unique("reader")
	status, resp := Do(t, http.MethodPost, "/api/users",
		map[string]string{"username": username, "password": "password123"}, "")
	require.Equal(t, http.StatusOK, status, resp.Message)

	var u userResult
	resp.decode(t, &u)
	return u.ID, login(t, username, "password123")
}

// AdminToken 未配置管理员账号时跳过
func AdminToken(t *testing.T) string {
	t.Helper()
	username := os.Getenv("LIBRARY_ADMIN_USERNAME")
	if username == "" {
		t.Skip("未设置 LIBRARY_ADMIN_USERNAME")
	}
	return login(t, username, os.Getenv("LIBRARY_ADMIN_PASSWORD"))
}

func CreateBook(t *testing.T, adminToken string, quantity int) bookResult {
	t.Helper()
	code := unique("IT-")
	status, resp := Do(t, http.MethodPost, "/api/books", map[string]interface{}{
		"bookCode": code,
		"title":    "集成测试-" + code,
		"quantity": quantity,
	}, adminToken)
	require.Equal(t, http.StatusOK, status, resp.Message)

	var b bookResult
	resp.decode(t, &b)
	return b
}

func GetBook(t *testing.T, id uint) bookResult {
	t.Helper()
	status, resp := Do(t, http.MethodGet, fmt.Sprintf("/api/books/%d", id), nil, "")
	require.Equal(t, http.StatusOK, status, resp.Message)

	var b bookResult
	resp.decode(t, &b)
	return b
}
