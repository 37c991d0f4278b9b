package dto

// CreateStudentRequest creates a student. Without Password the DOB becomes the secret.
type CreateStudentRequest struct {
	Name     string  `json:"name" validate:"required"`
	Regno    string  `json:"regno" validate:"required"`
	DOB      string  `json:"dob" validate:"required"`
	Password *string `json:"password,omitempty"`
}

// CreateTeacherRequest creates a teacher; teachers always need an explicit password.
type CreateTeacherRequest struct {
	Name     string `json:"name" validate:"required"`
	Regno    string `json:"regno" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CreateParentRequest creates a parent linked to a student regno.
type CreateParentRequest struct {
	StudentRegno string  `json:"student_regno" validate:"required"`
	StudentDOB   string  `json:"student_dob" validate:"required"`
	Password     *string `json:"password,omitempty"`
}

// UpdateStudentRequest changes a student; nil fields stay unchanged.
type UpdateStudentRequest struct {
	Name     *string `json:"name,omitempty"`
	Regno    *string `json:"regno,omitempty"`
	DOB      *string `json:"dob,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UpdateTeacherRequest changes a teacher; nil fields stay unchanged.
type UpdateTeacherRequest struct {
	Name     *string `json:"name,omitempty"`
	Regno    *string `json:"regno,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UpdateParentRequest changes a parent; nil fields stay unchanged.
type UpdateParentRequest struct {
	StudentRegno *string `json:"student_regno,omitempty"`
	StudentDOB   *string `json:"student_dob,omitempty"`
	Password     *string `json:"password,omitempty"`
}
