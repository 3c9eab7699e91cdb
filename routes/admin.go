package routes

import (
	"net/http"

	"event-feedback-server/models"
	"event-feedback-server/services"
	"event-feedback-server/storage"
	"event-feedback-server/utils"

	"github.com/kataras/iris/v12"
)

// GET /api/admin/stats returns feedback totals for the panel header.
func AdminStats(ctx iris.Context) {
	var total int64
	storage.DB.Model(&models.Feedback{}).Count(&total)

	byStatus := iris.Map{}
	for _, s := range []string{models.FeedbackStatusOpen, models.FeedbackStatusInReview, models.FeedbackStatusResolved} {
		var n int64
		storage.DB.Model(&models.Feedback{}).Where("status = ?", s).Count(&n)
		byStatus[s] = n
	}

	byDivision := iris.Map{}
	for _, d := range services.Divisions() {
		var n int64
		storage.DB.Model(&models.Feedback{}).Where("division = ?", d).Count(&n)
		byDivision[d] = n
	}

	var avgRating float64
	storage.DB.Model(&models.Feedback{}).Select("COALESCE(AVG(rating), 0)").Scan(&avgRating)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"total":       total,
			"by_status":   byStatus,
			"by_division": byDivision,
			"avg_rating":  avgRating,
		},
	})
}

// GET /api/admin/activity returns the audit trail of panel mutations.
func AdminActivity(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page <= 0 {
		page = 1
	}
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	query := storage.DB.Model(&models.AuditLog{})
	var total int64
	query.Count(&total)

	var logs []models.AuditLog
	if err := query.Offset((page - 1) * perPage).Limit(perPage).Order("created_at DESC").Find(&logs).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	utils.JSONPage(ctx, "activity", logs, page, perPage, total)
}
