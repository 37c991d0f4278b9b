package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/schoolportal/internal/app/models/dto"
	"github.com/yigit/schoolportal/internal/app/services"
	"github.com/yigit/schoolportal/internal/middleware"
	"github.com/yigit/schoolportal/internal/pkg/apperrors"
)

// LectureSummaryController handles lecture summary endpoints
type LectureSummaryController struct {
	lectureService services.LectureSummaryService
	logger         zerolog.Logger
}

// NewLectureSummaryController creates a new LectureSummaryController
func NewLectureSummaryController(lectureService services.LectureSummaryService, logger zerolog.Logger) *LectureSummaryController {
	return &LectureSummaryController{
		lectureService: lectureService,
		logger:         logger,
	}
}

// Upload handles a lecture recording upload
// @Summary Upload a lecture recording
// @Description Stores the recording and creates a draft. Transcription runs in the background.
// @Tags lecture-summaries
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param audio formData file true "MP3 or WAV recording"
// @Param title formData string false "Lecture title"
// @Param subject formData string false "Subject"
// @Success 201 {object} models.LectureSummary
// @Failure 400 {object} dto.ErrorResponse "No file or unsupported file type"
// @Router /lecture-summaries/upload [post]
func (c *LectureSummaryController) Upload(ctx *gin.Context) {
	teacherID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrNoToken)
		return
	}

	file, err := ctx.FormFile("audio")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Upload without audio file")
		middleware.HandleAPIError(ctx, apperrors.ErrNoAudioFile)
		return
	}

	var req dto.UploadLectureRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	summary, err := c.lectureService.Upload(ctx.Request.Context(), teacherID, &req, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, summary)
}

// ListTeacher lists the caller's own summaries
// @Summary List the teacher's lecture summaries
// @Tags lecture-summaries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.LectureSummary
// @Router /lecture-summaries/teacher [get]
func (c *LectureSummaryController) ListTeacher(ctx *gin.Context) {
	teacherID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrNoToken)
		return
	}

	items, err := c.lectureService.ListForTeacher(ctx.Request.Context(), teacherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// ListStudent lists published summaries
// @Summary List published lecture summaries
// @Tags lecture-summaries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.LectureSummary
// @Router /lecture-summaries/student [get]
func (c *LectureSummaryController) ListStudent(ctx *gin.Context) {
	items, err := c.lectureService.ListPublished(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// Publish makes a draft visible to students
// @Summary Publish a lecture summary
// @Tags lecture-summaries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture summary ID"
// @Success 200 {object} dto.PublishLectureResponse
// @Failure 404 {object} dto.ErrorResponse "Lecture summary not found"
// @Router /lecture-summaries/{id}/publish [patch]
func (c *LectureSummaryController) Publish(ctx *gin.Context) {
	teacherID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrNoToken)
		return
	}

	summary, err := c.lectureService.Publish(ctx.Request.Context(), ctx.Param("id"), teacherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.PublishLectureResponse{
		Message: "Lecture summary published successfully",
		Summary: summary,
	})
}

// Update edits title and subject
// @Summary Update a lecture summary
// @Tags lecture-summaries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture summary ID"
// @Param request body dto.UpdateLectureRequest true "Fields to change"
// @Success 200 {object} models.LectureSummary
// @Failure 404 {object} dto.ErrorResponse "Lecture summary not found"
// @Router /lecture-summaries/{id} [patch]
func (c *LectureSummaryController) Update(ctx *gin.Context) {
	teacherID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrNoToken)
		return
	}

	id := ctx.Param("id")

	// An empty body is an empty patch.
	var req dto.UpdateLectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		// Non-owners get 404 whatever they send.
		if _, ownErr := c.lectureService.GetOwned(ctx.Request.Context(), id, teacherID); ownErr != nil {
			middleware.HandleAPIError(ctx, ownErr)
			return
		}
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	summary, err := c.lectureService.Update(ctx.Request.Context(), id, teacherID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// Delete removes a lecture summary
// @Summary Delete a lecture summary
// @Tags lecture-summaries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lecture summary ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} dto.ErrorResponse "Lecture summary not found"
// @Router /lecture-summaries/{id} [delete]
func (c *LectureSummaryController) Delete(ctx *gin.Context) {
	teacherID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrNoToken)
		return
	}

	if err := c.lectureService.Delete(ctx.Request.Context(), ctx.Param("id"), teacherID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Lecture summary deleted successfully"})
}
