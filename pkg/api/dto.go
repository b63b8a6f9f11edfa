// Package api holds the JSON shapes exchanged between the HTTP API and its clients.
package api

import "time"

// Envelope wraps every response body. Code is 0 on success, the HTTP status otherwise.
type Envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Active    bool       `json:"active"`
	Deleted   bool       `json:"deleted"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
	Groups    []Group    `json:"groups"`
}

type GroupDetail struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   *time.Time   `json:"updatedAt"`
	Permissions []Permission `json:"permissions"`
	Users       []User       `json:"users"`
}

type CreateUserRequest struct {
	Email    string   `json:"email"`
	GroupIDs []string `json:"groupIds"`
}

// UpdateUserRequest: omitted or null fields are left unchanged; "groupIds": [] clears memberships.
type UpdateUserRequest struct {
	Email    *string  `json:"email,omitempty"`
	GroupIDs []string `json:"groupIds"`
	Active   *bool    `json:"active,omitempty"`
}

type AddPermissionRequest struct {
	PermissionID string `json:"permissionId" binding:"required"`
}

type Statistics struct {
	TotalUsers            int64            `json:"totalUsers"`
	ActiveUsers           int64            `json:"activeUsers"`
	InactiveUsers         int64            `json:"inactiveUsers"`
	DeletedUsers          int64            `json:"deletedUsers"`
	TotalIncludingDeleted int64            `json:"totalIncludingDeleted"`
	UsersPerGroup         map[string]int64 `json:"usersPerGroup"`
}

type Count struct {
	Count int64 `json:"count"`
}

type Deleted struct {
	ID string `json:"id"`
}

type UserPage struct {
	Total int64  `json:"total"`
	Items []User `json:"items"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
