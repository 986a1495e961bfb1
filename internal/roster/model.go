package roster

import (
	"time"

	"github.com/uptrace/bun"
)

type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name,notnull" json:"name" validate:"required,max=200"`
	TeacherID int64     `bun:"teacher_id,notnull" json:"teacherId" validate:"required,gt=0"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

type Enrollment struct {
	bun.BaseModel `bun:"table:enrollments,alias:e"`

	StudentID  int64     `bun:"student_id,pk" json:"studentId"`
	CourseID   int64     `bun:"course_id,pk" json:"courseId"`
	AssignedAt time.Time `bun:"assigned_at,nullzero,notnull,default:current_timestamp" json:"assignedAt"`
}

// StudentSummary is a roster entry.
type StudentSummary struct {
	ID         int64     `bun:"id" json:"id"`
	Email      string    `bun:"email" json:"email"`
	FirstName  string    `bun:"first_name" json:"firstName"`
	LastName   string    `bun:"last_name" json:"lastName"`
	AssignedAt time.Time `bun:"assigned_at" json:"assignedAt"`
}
