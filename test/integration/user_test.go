//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAuth(t *testing.T) {
	readerID, token := RegisterReader(t)

	t.Run("查看本人", func(t *testing.T) {
		status, resp := Do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", readerID), nil, token)
		require.Equal(t, http.StatusOK, status, resp.Message)

		var u userResult
		resp.decode(t, &u)
		assert.Equal(t, readerID, u.ID)
	})

	t.Run("未登录", func(t *testing.T) {
		status, resp := Do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", readerID), nil, "")
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, 40100, resp.Code)
	})

	t.Run("普通用户不能列出用户", func(t *testing.T) {
		status, _ := Do(t, http.MethodGet, "/api/users", nil, token)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("注销", func(t *testing.T) {
		status, _ := Do(t, http.MethodPost, "/authentication/logout", nil, token)
		require.Equal(t, http.StatusOK, status)

		status, resp := Do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", readerID), nil, token)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, 40101, resp.Code)
	})
}
