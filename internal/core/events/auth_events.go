package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLoginSucceeded  = "auth.login_succeeded"
	EventTypeLoginFailed     = "auth.login_failed"
	EventTypeRolesReassigned = "user.roles_reassigned"
	EventTypeUserDeleted     = "user.deleted"
)

// LoginSucceededEvent is emitted after a successful credential check.
// It never carries the password or the issued token.
type LoginSucceededEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Code   string `json:"code"`
}

func NewLoginSucceededEvent(userID int64, code string) *LoginSucceededEvent {
	return &LoginSucceededEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLoginSucceeded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"code":    code,
			},
		},
		UserID: userID,
		Code:   code,
	}
}

// LoginFailedEvent is emitted for any rejected login. The cause is not
// recorded: unknown code and wrong password are indistinguishable here,
// same as in the login response.
type LoginFailedEvent struct {
	BaseEvent
	Code string `json:"code"`
}

func NewLoginFailedEvent(code string) *LoginFailedEvent {
	return &LoginFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLoginFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"code": code,
			},
		},
		Code: code,
	}
}

type RolesReassignedEvent struct {
	BaseEvent
	UserID  int64   `json:"user_id"`
	RoleIDs []int64 `json:"role_ids"`
}

func NewRolesReassignedEvent(userID int64, roleIDs []int64) *RolesReassignedEvent {
	return &RolesReassignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRolesReassigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":  userID,
				"role_ids": roleIDs,
			},
		},
		UserID:  userID,
		RoleIDs: roleIDs,
	}
}

type UserDeletedEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
}

func NewUserDeletedEvent(userID int64) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
			},
		},
		UserID: userID,
	}
}
