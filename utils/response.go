package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

type PageMeta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// JSONPage writes a paged data envelope with pagination metadata inside data,
// matching what panel clients expect: { data: { feedbacks: [...], pagination: {...} } }.
func JSONPage(ctx iris.Context, key string, data interface{}, page, perPage int, total int64) {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	ctx.JSON(iris.Map{
		"data": iris.Map{
			key:          data,
			"pagination": PageMeta{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages},
		},
	})
}

// JSONError writes { "error": code, "message": msg } with the given status.
// Every non-2xx response goes through here so clients can rely on "message".
func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

// HandleValidationErrors converts validator/v10 failures from ctx.ReadJSON
// into a 422 with a field list in the message. Any other decode error is a 400.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(errs))
		for _, fe := range errs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		JSONError(ctx, iris.StatusUnprocessableEntity, "validation_error",
			"validation failed: "+strings.Join(fields, ", "))
		return
	}
	JSONError(ctx, iris.StatusBadRequest, "invalid_payload", "invalid request body")
}

func CreateInternalServerError(ctx iris.Context) {
	JSONError(ctx, iris.StatusInternalServerError, "server_error", "an internal server error occurred")
}

func CreateNotFound(ctx iris.Context) {
	JSONError(ctx, iris.StatusNotFound, "not_found", "resource not found")
}
