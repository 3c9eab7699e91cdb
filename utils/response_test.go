package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kataras/iris/v12"
)

func TestJSONPageEnvelope(t *testing.T) {
	app := iris.New()
	app.Get("/list", func(ctx iris.Context) {
		JSONPage(ctx, "feedbacks", []string{"a", "b"}, 2, 10, 23)
	})
	app.Build()

	req := httptest.NewRequest(http.MethodGet, "/list", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	var body struct {
		Data struct {
			Feedbacks  []string `json:"feedbacks"`
			Pagination PageMeta `json:"pagination"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, resp.Body.String())
	}
	if len(body.Data.Feedbacks) != 2 {
		t.Fatalf("expected 2 items, got %d", len(body.Data.Feedbacks))
	}
	if body.Data.Pagination.Page != 2 || body.Data.Pagination.Total != 23 {
		t.Fatalf("unexpected pagination: %+v", body.Data.Pagination)
	}
	if body.Data.Pagination.TotalPages != 3 {
		t.Fatalf("expected 3 total pages for 23/10, got %d", body.Data.Pagination.TotalPages)
	}
}

func TestJSONErrorCarriesMessage(t *testing.T) {
	app := iris.New()
	app.Get("/fail", func(ctx iris.Context) {
		JSONError(ctx, http.StatusNotFound, "not_found", "feedback not found")
	})
	app.Build()

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "feedback not found" {
		t.Fatalf("expected message to surface verbatim, got %q", body["message"])
	}
	if body["error"] != "not_found" {
		t.Fatalf("expected error code, got %q", body["error"])
	}
}
