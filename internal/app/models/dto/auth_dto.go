package dto

import (
	"time"

	"github.com/yigit/schoolportal/internal/app/models"
)

// LoginRequest represents login credentials. For students and parents the
// password is the date of birth in DDMMYYYY form.
type LoginRequest struct {
	Regno    string `json:"regno" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// MemberSummary is the login view of a student or teacher.
type MemberSummary struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Regno string      `json:"regno"`
	Role  models.Role `json:"role"`
}

// ParentSummary is the login view of a parent.
type ParentSummary struct {
	ID           string      `json:"id"`
	StudentRegno string      `json:"student_regno"`
	Role         models.Role `json:"role"`
}

// LoginResponse represents successful authentication response
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"-"`
	User      interface{} `json:"user"`
}

// NewLoginUser returns the role-shaped user part of a login response.
func NewLoginUser(identity models.Identity) interface{} {
	switch u := identity.(type) {
	case *models.Student:
		return MemberSummary{ID: u.ID, Name: u.Name, Regno: u.Regno, Role: models.RoleStudent}
	case *models.Teacher:
		return MemberSummary{ID: u.ID, Name: u.Name, Regno: u.Regno, Role: models.RoleTeacher}
	case *models.Parent:
		return ParentSummary{ID: u.ID, StudentRegno: u.StudentRegno, Role: models.RoleParent}
	}
	return nil
}

// StudentProfile is the /me view of a student.
type StudentProfile struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Regno     string      `json:"regno"`
	DOB       string      `json:"dob"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// TeacherProfile is the /me view of a teacher.
type TeacherProfile struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Regno     string      `json:"regno"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ParentProfile is the /me view of a parent.
type ParentProfile struct {
	ID           string      `json:"id"`
	StudentRegno string      `json:"student_regno"`
	StudentDOB   string      `json:"student_dob"`
	Role         models.Role `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// NewProfile returns the profile of identity without its secret.
func NewProfile(identity models.Identity) interface{} {
	switch u := identity.(type) {
	case *models.Student:
		return StudentProfile{ID: u.ID, Name: u.Name, Regno: u.Regno, DOB: u.DOB, Role: models.RoleStudent, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
	case *models.Teacher:
		return TeacherProfile{ID: u.ID, Name: u.Name, Regno: u.Regno, Role: models.RoleTeacher, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
	case *models.Parent:
		return ParentProfile{ID: u.ID, StudentRegno: u.StudentRegno, StudentDOB: u.StudentDOB, Role: models.RoleParent, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
	}
	return nil
}
