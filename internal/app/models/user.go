package models

import (
	"time"
)

// Identity is the common view over Student, Teacher and Parent records.
type Identity interface {
	IdentityID() string
	Role() Role
	SecretHash() string
}

// Student defines the student model based on the 'students' table
type Student struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Regno        string    `json:"regno" db:"regno"`
	DOB          string    `json:"dob" db:"dob"` // DDMMYYYY
	PasswordHash string    `json:"-" db:"password"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

func (s *Student) IdentityID() string { return s.ID }
func (s *Student) Role() Role         { return RoleStudent }
func (s *Student) SecretHash() string { return s.PasswordHash }

// Teacher defines the teacher model based on the 'teachers' table
type Teacher struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Regno        string    `json:"regno" db:"regno"`
	PasswordHash string    `json:"-" db:"password"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

func (t *Teacher) IdentityID() string { return t.ID }
func (t *Teacher) Role() Role         { return RoleTeacher }
func (t *Teacher) SecretHash() string { return t.PasswordHash }

// Parent defines the parent model based on the 'parents' table.
// StudentRegno references students.regno but is not a foreign key.
type Parent struct {
	ID           string    `json:"id" db:"id"`
	StudentRegno string    `json:"student_regno" db:"student_regno"`
	StudentDOB   string    `json:"student_dob" db:"student_dob"` // DDMMYYYY
	PasswordHash string    `json:"-" db:"password"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

func (p *Parent) IdentityID() string { return p.ID }
func (p *Parent) Role() Role         { return RoleParent }
func (p *Parent) SecretHash() string { return p.PasswordHash }
