package auth

// Field names used in validation errors.
const (
	FieldDOB        = "dob"
	FieldStudentDOB = "student_dob"
)

// SecretWrite describes the credential-relevant part of a single write to an identity record.
//
// Password is set when the caller explicitly supplies a password in this write.
// DOB is set when the date field (dob or student_dob) changes in this write.
// DOBField names that date field; it is empty for teachers, whose secret never follows a date.
type SecretWrite struct {
	Password *string
	DOB      *string
	DOBField string
}

// PasswordPolicy keeps stored secrets hashed and, for students and parents,
// in step with the stored date of birth.
type PasswordPolicy struct {
	cost int
}

// NewPasswordPolicy creates a policy hashing at cost (raised to MinBcryptCost if lower).
func NewPasswordPolicy(cost int) *PasswordPolicy {
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	return &PasswordPolicy{cost: cost}
}

// Apply validates w and returns the new hash. changed is false when the write does not touch the secret.
func (p *PasswordPolicy) Apply(w SecretWrite) (hash string, changed bool, err error) {
	if w.DOB != nil && w.DOBField != "" && !IsValidDate(*w.DOB) {
		return "", false, &ValidationError{Field: w.DOBField, Value: *w.DOB}
	}

	var secret string
	switch {
	case w.Password != nil:
		secret = *w.Password
	case w.DOB != nil && w.DOBField != "":
		secret = *w.DOB
	default:
		return "", false, nil
	}

	hash, err = HashPassword(secret, p.cost)
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

// Compare checks candidate against an identity's stored hash.
func (p *PasswordPolicy) Compare(storedHash, candidate string) bool {
	return CheckPassword(storedHash, candidate)
}
