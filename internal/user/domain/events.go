package domain

import (
	"time"
)

const (
	TopicUserCreated = "user.created"
	TopicUserUpdated = "user.updated"
	TopicUserDeleted = "user.deleted"
)

// UserCreatedEvent 用户创建事件
type UserCreatedEvent struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserUpdatedEvent 用户更新事件
type UserUpdatedEvent struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role,omitempty"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserDeletedEvent 用户删除事件
type UserDeletedEvent struct {
	UserID    uint      `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}
