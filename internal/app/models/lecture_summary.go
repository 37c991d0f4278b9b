package models

import "time"

// LectureStatus controls student visibility of a lecture summary.
type LectureStatus string

const (
	LectureStatusDraft     LectureStatus = "draft"
	LectureStatusPublished LectureStatus = "published"
)

// EnrichmentStatus tracks the out-of-band transcription of an uploaded recording.
type EnrichmentStatus string

const (
	EnrichmentPending EnrichmentStatus = "pending"
	EnrichmentDone    EnrichmentStatus = "done"
	EnrichmentFailed  EnrichmentStatus = "failed"
)

// AudioFile points at the stored recording.
type AudioFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Summary is the structured output of the transcription collaborator.
type Summary struct {
	Overview            string   `json:"overview"`
	KeyPoints           []string `json:"keyPoints"`
	DetailedExplanation string   `json:"detailedExplanation"`
}

// Enrichment is the observable state of the background transcription job.
type Enrichment struct {
	Status EnrichmentStatus `json:"status"`
	Error  string           `json:"error,omitempty"`
}

// LectureSummary defines the lecture summary model based on the 'lecture_summaries' table
type LectureSummary struct {
	ID            string        `json:"id" db:"id"`
	Title         string        `json:"title" db:"title"`
	Subject       string        `json:"subject" db:"subject"`
	TeacherID     string        `json:"teacherId" db:"teacher_id"`
	AudioFile     AudioFile     `json:"audioFile"`
	Transcription *string       `json:"transcription,omitempty" db:"transcription"`
	Summary       *Summary      `json:"summary,omitempty" db:"summary"`
	Status        LectureStatus `json:"status" db:"status"`
	PublishedAt   *time.Time    `json:"publishedAt,omitempty" db:"published_at"`
	Enrichment    Enrichment    `json:"enrichment"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// IsPublished reports whether students can see the summary.
func (l *LectureSummary) IsPublished() bool {
	return l.Status == LectureStatusPublished
}

// LectureSummaryPatch carries the editable fields; nil means unchanged.
type LectureSummaryPatch struct {
	Title   *string
	Subject *string
}

// EnrichmentResult is what the background worker writes back.
type EnrichmentResult struct {
	Status        EnrichmentStatus
	Transcription *string
	Summary       *Summary
	Error         string
}
