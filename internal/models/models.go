package models

import "time"

type UserRole string

const (
	RoleBaseUser  UserRole = "BASE_USER"
	RoleModerator UserRole = "MODERATOR"
	RoleAdmin     UserRole = "ADMIN"
)

type User struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:BASE_USER" json:"role"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	ApiKeys   []ApiKey  `gorm:"foreignKey:UserID" json:"-"`
	Actions   []Action  `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ApiKey struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Action struct {
	ID          string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	URL         string    `gorm:"not null" json:"url"`
	PathURL     string    `gorm:"not null" json:"path_url"`
	BodyVersion string    `gorm:"not null" json:"body_version"`
	UserID      string    `gorm:"type:uuid;index;not null" json:"user_id"`
	// WebHook rows are removed together with their action.
	WebHook     *WebHook  `gorm:"foreignKey:ActionID;constraint:OnDelete:CASCADE" json:"-"`
	FileMapping *string   `json:"file_mapping"`
	Schedule    *string   `json:"schedule"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type WebHook struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	ActionID  string    `gorm:"type:uuid;uniqueIndex;not null" json:"action_id"`
	Action    *Action   `gorm:"foreignKey:ActionID" json:"-"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Orderable database columns per table, checked when building list queries.
var (
	UserColumns    = []string{"id", "email", "username", "password", "role", "is_active", "created_at", "updated_at"}
	ApiKeyColumns  = []string{"id", "name", "token", "user_id", "is_active", "created_at", "updated_at"}
	ActionColumns  = []string{"id", "name", "url", "path_url", "body_version", "user_id", "file_mapping", "schedule", "created_at", "updated_at"}
	WebHookColumns = []string{"id", "name", "action_id", "is_active", "created_at", "updated_at"}
)
