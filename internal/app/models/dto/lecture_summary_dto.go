package dto

import "github.com/yigit/schoolportal/internal/app/models"

// Defaults applied to uploads that omit title or subject.
const (
	DefaultLectureTitle   = "Untitled Lecture"
	DefaultLectureSubject = "General"
)

// UploadLectureRequest holds the text fields of the multipart upload form.
type UploadLectureRequest struct {
	Title   string `form:"title" binding:"max=255"`
	Subject string `form:"subject" binding:"max=255"`
}

// UpdateLectureRequest edits title and subject. Absent fields stay unchanged.
type UpdateLectureRequest struct {
	Title   *string `json:"title" binding:"omitempty,min=1,max=255"`
	Subject *string `json:"subject" binding:"omitempty,min=1,max=255"`
}

// Patch converts the request to a repository patch.
func (r *UpdateLectureRequest) Patch() models.LectureSummaryPatch {
	return models.LectureSummaryPatch{Title: r.Title, Subject: r.Subject}
}

// PublishLectureResponse is returned by the publish endpoint.
type PublishLectureResponse struct {
	Message string                 `json:"message"`
	Summary *models.LectureSummary `json:"summary"`
}
