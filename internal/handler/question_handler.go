package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/leavedesk/leavegate-backend/internal/model"
	"github.com/leavedesk/leavegate-backend/internal/response"
	"github.com/leavedesk/leavegate-backend/internal/service"
	"github.com/leavedesk/leavegate-backend/internal/validator"
)

// QuestionHandler handles admin question bank management plus the
// public subject listing used by the leave form.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// Add godoc
// POST /api/v1/admin/questions
func (h *QuestionHandler) Add(c *gin.Context) {
	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Add(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuestion) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// Delete godoc
// DELETE /api/v1/admin/questions/:question_id
func (h *QuestionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		if errors.Is(err, service.ErrQuestionInUse) {
			response.Fail(c, http.StatusConflict, response.ErrQuestionInUse)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// List godoc
// GET /api/v1/admin/questions?subject=&type=&difficulty=&page=&per_page=
func (h *QuestionHandler) List(c *gin.Context) {
	var subject *string
	if raw := c.Query("subject"); raw != "" {
		subject = &raw
	}
	var qtype *model.QuestionType
	if raw := c.Query("type"); raw != "" {
		t := model.QuestionType(raw)
		qtype = &t
	}
	var difficulty *model.Difficulty
	if raw := c.Query("difficulty"); raw != "" {
		d := model.Difficulty(raw)
		difficulty = &d
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	questions, total, err := h.questionService.List(c.Request.Context(), subject, qtype, difficulty, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: totalPages,
	})
}

// Subjects godoc
// GET /api/v1/employee/subjects
// Lists the distinct subjects available for the leave form.
func (h *QuestionHandler) Subjects(c *gin.Context) {
	subjects, err := h.questionService.Subjects(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if subjects == nil {
		subjects = []string{}
	}

	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}
