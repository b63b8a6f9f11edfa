// Package client is a typed HTTP client for the userhub API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"userhub/pkg/api"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status int
	Code   int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Msg)
}

type Client struct {
	rc *resty.Client
}

type Option func(*resty.Client)

func WithTimeout(d time.Duration) Option { return func(rc *resty.Client) { rc.SetTimeout(d) } }

// WithToken sends a bearer token on every request (admin endpoints).
func WithToken(tok string) Option { return func(rc *resty.Client) { rc.SetAuthToken(tok) } }

func New(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "userhub-client/1.0")
	for _, o := range opts {
		o(rc)
	}
	return &Client{rc: rc}
}

func (c *Client) SetToken(tok string) { c.rc.SetAuthToken(tok) }

func do[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var (
		zero T
		ok   api.Envelope[T]
		bad  api.Envelope[struct{}]
	)
	req := c.rc.R().SetContext(ctx).SetResult(&ok).SetError(&bad)
	if body != nil {
		req.SetBody(body)
	}
	res, err := req.Execute(method, path)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if res.IsError() {
		msg := bad.Msg
		if msg == "" {
			msg = http.StatusText(res.StatusCode())
		}
		return zero, &APIError{Status: res.StatusCode(), Code: bad.Code, Msg: msg}
	}
	return ok.Data, nil
}

func esc(s string) string { return url.PathEscape(s) }

// ---- users ----

func (c *Client) ListUsers(ctx context.Context) ([]api.User, error) {
	return do[[]api.User](ctx, c, http.MethodGet, "/api/users", nil)
}

func (c *Client) GetUser(ctx context.Context, id string) (api.User, error) {
	return do[api.User](ctx, c, http.MethodGet, "/api/users/"+esc(id), nil)
}

func (c *Client) CreateUser(ctx context.Context, in api.CreateUserRequest) (api.User, error) {
	return do[api.User](ctx, c, http.MethodPost, "/api/users", in)
}

func (c *Client) UpdateUser(ctx context.Context, id string, in api.UpdateUserRequest) (api.User, error) {
	return do[api.User](ctx, c, http.MethodPut, "/api/users/"+esc(id), in)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := do[api.Deleted](ctx, c, http.MethodDelete, "/api/users/"+esc(id), nil)
	return err
}

// ---- groups ----

func (c *Client) ListGroups(ctx context.Context) ([]api.Group, error) {
	return do[[]api.Group](ctx, c, http.MethodGet, "/api/groups", nil)
}

func (c *Client) GetGroup(ctx context.Context, id string) (api.GroupDetail, error) {
	return do[api.GroupDetail](ctx, c, http.MethodGet, "/api/groups/"+esc(id), nil)
}

func (c *Client) ListPermissions(ctx context.Context) ([]api.Permission, error) {
	return do[[]api.Permission](ctx, c, http.MethodGet, "/api/groups/permissions", nil)
}

func (c *Client) AvailablePermissions(ctx context.Context, groupID string) ([]api.Permission, error) {
	return do[[]api.Permission](ctx, c, http.MethodGet, "/api/groups/"+esc(groupID)+"/available-permissions", nil)
}

func (c *Client) AddPermission(ctx context.Context, groupID, permissionID string) (api.GroupDetail, error) {
	return do[api.GroupDetail](ctx, c, http.MethodPost, "/api/groups/"+esc(groupID)+"/permissions",
		api.AddPermissionRequest{PermissionID: permissionID})
}

func (c *Client) RemovePermission(ctx context.Context, groupID, permissionID string) (api.GroupDetail, error) {
	return do[api.GroupDetail](ctx, c, http.MethodDelete,
		"/api/groups/"+esc(groupID)+"/permissions/"+esc(permissionID), nil)
}

// ---- stats ----

func (c *Client) TotalUsers(ctx context.Context) (int64, error) {
	n, err := do[api.Count](ctx, c, http.MethodGet, "/api/users/count", nil)
	return n.Count, err
}

func (c *Client) ActiveUsers(ctx context.Context) (int64, error) {
	n, err := do[api.Count](ctx, c, http.MethodGet, "/api/users/count/active", nil)
	return n.Count, err
}

func (c *Client) GroupCount(ctx context.Context, groupID string) (int64, error) {
	n, err := do[api.Count](ctx, c, http.MethodGet, "/api/users/count/group/"+esc(groupID), nil)
	return n.Count, err
}

func (c *Client) PerGroup(ctx context.Context) (map[string]int64, error) {
	return do[map[string]int64](ctx, c, http.MethodGet, "/api/users/count/per-group", nil)
}

func (c *Client) Statistics(ctx context.Context) (api.Statistics, error) {
	return do[api.Statistics](ctx, c, http.MethodGet, "/api/users/statistics", nil)
}

// ---- admin ----

// Login exchanges operator credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	out, err := do[api.LoginResponse](ctx, c, http.MethodPost, "/admin/v1/auth/login",
		api.LoginRequest{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

type AdminQuery struct {
	Q           string
	WithDeleted bool
	Offset      int
	Limit       int
}

func (c *Client) AdminListUsers(ctx context.Context, q AdminQuery) (api.UserPage, error) {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.WithDeleted {
		v.Set("with_deleted", "true")
	}
	if q.Offset > 0 {
		v.Set("offset", fmt.Sprint(q.Offset))
	}
	if q.Limit > 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}
	path := "/admin/v1/users"
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}
	return do[api.UserPage](ctx, c, http.MethodGet, path, nil)
}

func (c *Client) PurgeUser(ctx context.Context, id string) error {
	_, err := do[api.Deleted](ctx, c, http.MethodDelete, "/admin/v1/users/"+esc(id)+"/purge", nil)
	return err
}
