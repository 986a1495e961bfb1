package user

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Email        string    `bun:"email,unique,notnull" json:"email" validate:"required,email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"` // Never expose password in JSON
	Role         string    `bun:"role,notnull" json:"role" validate:"oneof=student teacher"`
	FirstName    string    `bun:"first_name,notnull" json:"firstName"`
	LastName     string    `bun:"last_name,notnull" json:"lastName"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}
