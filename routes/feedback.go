package routes

import (
	"errors"
	"net/http"
	"strings"

	"event-feedback-server/models"
	"event-feedback-server/services"
	"event-feedback-server/storage"
	"event-feedback-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// firstFeedback loads the record by id and writes the response when that
// fails, telling a missing row apart from a database failure.
func firstFeedback(ctx iris.Context, id uint, fb *models.Feedback) bool {
	if err := storage.DB.First(fb, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, http.StatusNotFound, "not_found", "feedback not found")
		} else {
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		}
		return false
	}
	return true
}

// GET /api/feedback?q=&status=&division=&page=&per_page=
// Public. Paging happens here, not in the panel: the list can outgrow what a
// client should fetch in one response.
func ListFeedback(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page <= 0 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("per_page", 10)
	if perPage <= 0 || perPage > 100 {
		perPage = 10
	}

	q := strings.TrimSpace(ctx.URLParamDefault("q", ""))
	status := strings.TrimSpace(ctx.URLParamDefault("status", ""))
	division := strings.TrimSpace(ctx.URLParamDefault("division", ""))

	query := storage.DB.Model(&models.Feedback{})
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if division != "" {
		query = query.Where("division = ?", division)
	}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("lower(name) LIKE ? OR lower(email) LIKE ? OR lower(event_name) LIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)

	var items []models.Feedback
	if err := query.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&items).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, "feedbacks", items, page, perPage, total)
}

// GET /api/feedback/:id (public)
func GetFeedback(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var fb models.Feedback
	if !firstFeedback(ctx, id, &fb) {
		return
	}
	ctx.JSON(iris.Map{"data": fb})
}

type CreateFeedbackInput struct {
	Name       string  `json:"name" validate:"required,max=255"`
	Email      string  `json:"email" validate:"required,email,max=255"`
	EventName  string  `json:"eventName" validate:"required,max=255"`
	Division   string  `json:"division" validate:"required"`
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	Comment    *string `json:"comment"`
	Suggestion *string `json:"suggestion"`
}

// POST /api/feedback, public, no auth required
func CreateFeedback(ctx iris.Context) {
	var input CreateFeedbackInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if !services.ValidDivision(input.Division) {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_division",
			"division must be one of: "+strings.Join(services.Divisions(), ", "))
		return
	}

	fb := models.Feedback{
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		EventName: strings.TrimSpace(input.EventName),
		Division:  input.Division,
		Rating:    input.Rating,
		Status:    models.FeedbackStatusOpen,
	}
	if input.Comment != nil {
		fb.Comment = *input.Comment
	}
	if input.Suggestion != nil {
		fb.Suggestion = *input.Suggestion
	}

	if err := storage.DB.Create(&fb).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": fb})
}

type UpdateFeedbackInput struct {
	Name       *string `json:"name" validate:"omitempty,max=255"`
	Email      *string `json:"email" validate:"omitempty,email,max=255"`
	EventName  *string `json:"eventName" validate:"omitempty,max=255"`
	Division   *string `json:"division"`
	Rating     *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment    *string `json:"comment"`
	Suggestion *string `json:"suggestion"`
	Status     *string `json:"status"`
}

// PUT /api/feedback/:id, partial update, bearer token required
func UpdateFeedback(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}

	var input UpdateFeedbackInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Division != nil && !services.ValidDivision(*input.Division) {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_division",
			"division must be one of: "+strings.Join(services.Divisions(), ", "))
		return
	}
	if input.Status != nil && !models.ValidFeedbackStatus(*input.Status) {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_status",
			"status must be open, in-review or resolved")
		return
	}

	var fb models.Feedback
	if !firstFeedback(ctx, id, &fb) {
		return
	}

	before := fb
	if input.Name != nil {
		fb.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		fb.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.EventName != nil {
		fb.EventName = strings.TrimSpace(*input.EventName)
	}
	if input.Division != nil {
		fb.Division = *input.Division
	}
	if input.Rating != nil {
		fb.Rating = *input.Rating
	}
	if input.Comment != nil {
		fb.Comment = *input.Comment
	}
	if input.Suggestion != nil {
		fb.Suggestion = *input.Suggestion
	}
	if input.Status != nil {
		fb.Status = *input.Status
	}

	if err := storage.DB.Save(&fb).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.Audit(ctx, "feedback.update", "feedback", fb.ID, before, fb)
	ctx.JSON(iris.Map{"data": fb})
}

// DELETE /api/feedback/:id, bearer token required
func DeleteFeedback(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_id", "invalid id")
		return
	}
	var fb models.Feedback
	if !firstFeedback(ctx, id, &fb) {
		return
	}
	if err := storage.DB.Delete(&fb).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.Audit(ctx, "feedback.delete", "feedback", fb.ID, fb, nil)
	ctx.JSON(iris.Map{"data": fb})
}
