package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"userhub/internal/repo"
	"userhub/internal/testutil"
	"userhub/internal/transport/http/router"
	"userhub/pkg/api"
)

type apiEnv struct {
	h  http.Handler
	fx testutil.Fixture
	st *repo.Store
}

func newAPI(t *testing.T) apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := testutil.OpenStore(t)
	fx := testutil.Seed(t, st, []string{"A", "B", "C"}, []string{"Read", "Write"})
	return apiEnv{h: router.NewAPIEngine(zaptest.NewLogger(t), st, router.Limits{}), fx: fx, st: st}
}

func call[T any](t *testing.T, h http.Handler, method, path string, body any) (int, api.Envelope[T]) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var env api.Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestUsersHTTP(t *testing.T) {
	e := newAPI(t)
	a, b, c := e.fx.Groups["A"].ID, e.fx.Groups["B"].ID, e.fx.Groups["C"].ID

	code, created := call[api.User](t, e.h, http.MethodPost, "/api/users",
		api.CreateUserRequest{Email: "web@example.com", GroupIDs: []string{a, b, "missing"}})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 0, created.Code)
	u := created.Data
	assert.True(t, u.Active)
	assert.False(t, u.Deleted)
	assert.Nil(t, u.UpdatedAt)
	assert.Len(t, u.Groups, 2)

	code, env := call[struct{}](t, e.h, http.MethodPost, "/api/users", api.CreateUserRequest{Email: "web@example.com"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 409, env.Code)
	assert.Equal(t, "User with email 'web@example.com' already exists", env.Msg)

	code, env = call[struct{}](t, e.h, http.MethodPost, "/api/users", api.CreateUserRequest{Email: "  "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Email is required", env.Msg)

	code, env = call[struct{}](t, e.h, http.MethodPost, "/api/users", "not an object")
	assert.Equal(t, http.StatusBadRequest, code)

	code, got := call[api.User](t, e.h, http.MethodGet, "/api/users/"+u.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, u.ID, got.Data.ID)

	// groupIds omitted: memberships untouched
	code, got = call[api.User](t, e.h, http.MethodPut, "/api/users/"+u.ID, map[string]any{"active": false})
	require.Equal(t, http.StatusOK, code)
	assert.False(t, got.Data.Active)
	assert.Len(t, got.Data.Groups, 2)
	assert.NotNil(t, got.Data.UpdatedAt)

	code, got = call[api.User](t, e.h, http.MethodPut, "/api/users/"+u.ID, map[string]any{"groupIds": []string{c}})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, got.Data.Groups, 1)
	assert.Equal(t, "C", got.Data.Groups[0].Name)

	code, got = call[api.User](t, e.h, http.MethodPut, "/api/users/"+u.ID, map[string]any{"groupIds": []string{}})
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, got.Data.Groups)

	code, list := call[[]api.User](t, e.h, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, list.Data, 1)

	code, del := call[api.Deleted](t, e.h, http.MethodDelete, "/api/users/"+u.ID, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, u.ID, del.Data.ID)

	code, env = call[struct{}](t, e.h, http.MethodDelete, "/api/users/"+u.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 404, env.Code)

	code, _ = call[struct{}](t, e.h, http.MethodGet, "/api/users/"+u.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, gs := call[[]api.Group](t, e.h, http.MethodGet, "/api/users/groups", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, gs.Data, 3)
}

func TestGroupsHTTP(t *testing.T) {
	e := newAPI(t)
	a := e.fx.Groups["A"].ID
	read, write := e.fx.Permissions["Read"].ID, e.fx.Permissions["Write"].ID

	code, gs := call[[]api.Group](t, e.h, http.MethodGet, "/api/groups", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, gs.Data, 3)

	code, ps := call[[]api.Permission](t, e.h, http.MethodGet, "/api/groups/permissions", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, ps.Data, 2)

	code, d := call[api.GroupDetail](t, e.h, http.MethodPost, "/api/groups/"+a+"/permissions", api.AddPermissionRequest{PermissionID: read})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, d.Data.Permissions, 1)
	assert.Equal(t, "Read", d.Data.Permissions[0].Name)
	assert.NotNil(t, d.Data.UpdatedAt)

	code, env := call[struct{}](t, e.h, http.MethodPost, "/api/groups/"+a+"/permissions", api.AddPermissionRequest{PermissionID: read})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Permission 'Read' is already assigned to group 'A'", env.Msg)

	code, _ = call[struct{}](t, e.h, http.MethodPost, "/api/groups/"+a+"/permissions", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, avail := call[[]api.Permission](t, e.h, http.MethodGet, "/api/groups/"+a+"/available-permissions", nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, avail.Data, 1)
	assert.Equal(t, write, avail.Data[0].ID)

	code, d = call[api.GroupDetail](t, e.h, http.MethodDelete, "/api/groups/"+a+"/permissions/"+read, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, d.Data.Permissions)

	code, _ = call[struct{}](t, e.h, http.MethodDelete, "/api/groups/"+a+"/permissions/"+read, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call[struct{}](t, e.h, http.MethodGet, "/api/groups/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = call[struct{}](t, e.h, http.MethodGet, "/api/groups/nope/available-permissions", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStatsHTTP(t *testing.T) {
	e := newAPI(t)
	a := e.fx.Groups["A"].ID

	for _, email := range []string{"s1@example.com", "s2@example.com"} {
		code, _ := call[api.User](t, e.h, http.MethodPost, "/api/users", api.CreateUserRequest{Email: email, GroupIDs: []string{a}})
		require.Equal(t, http.StatusCreated, code)
	}
	_, list := call[[]api.User](t, e.h, http.MethodGet, "/api/users", nil)
	require.Len(t, list.Data, 2)
	code, _ := call[api.Deleted](t, e.h, http.MethodDelete, "/api/users/"+list.Data[1].ID, nil)
	require.Equal(t, http.StatusOK, code)

	_, n := call[api.Count](t, e.h, http.MethodGet, "/api/users/count", nil)
	assert.EqualValues(t, 1, n.Data.Count)
	_, n = call[api.Count](t, e.h, http.MethodGet, "/api/users/count/active", nil)
	assert.EqualValues(t, 1, n.Data.Count)
	_, n = call[api.Count](t, e.h, http.MethodGet, "/api/users/count/group/"+a, nil)
	assert.EqualValues(t, 1, n.Data.Count)
	code, _ = call[struct{}](t, e.h, http.MethodGet, "/api/users/count/group/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)

	_, pg := call[map[string]int64](t, e.h, http.MethodGet, "/api/users/count/per-group", nil)
	assert.Equal(t, map[string]int64{"A": 1, "B": 0, "C": 0}, pg.Data)

	_, st := call[api.Statistics](t, e.h, http.MethodGet, "/api/users/statistics", nil)
	assert.EqualValues(t, 1, st.Data.TotalUsers)
	assert.EqualValues(t, 1, st.Data.DeletedUsers)
	assert.EqualValues(t, 2, st.Data.TotalIncludingDeleted)
	assert.EqualValues(t, 0, st.Data.InactiveUsers)
}

func TestHealthAndRequestID(t *testing.T) {
	e := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil).WithContext(context.Background())
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "userhub_http_requests_total")
}
