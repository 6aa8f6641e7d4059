package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/dentest-backend/internal/platform/apierr"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	return env
}

func TestRespondServiceErrorPassesAPIErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	err := apierr.WithFields(apierr.BadRequest("invalid_request", errors.New("bad option")), map[string]string{"selected": "bad option"})
	RespondServiceError(c, err)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400 got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error.Code != "invalid_request" || env.Error.Message != "bad option" || env.Error.Fields["selected"] != "bad option" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestRespondServiceErrorHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondServiceError(c, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: want 500 got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Error.Message != "internal server error" {
		t.Fatalf("internal detail leaked: %+v", env)
	}
}

func TestRespondBindErrorListsFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	UseJSONFieldNames()

	type body struct {
		QuestionID string `json:"question_id" binding:"required"`
		Selected   string `json:"selected" binding:"required,oneof=option1 option2 option3 option4"`
	}
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var req body
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondBindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"selected":"option9"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400 got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error.Fields["question_id"] != "this field is required" {
		t.Fatalf("question_id field: %+v", env.Error.Fields)
	}
	if env.Error.Fields["selected"] == "" {
		t.Fatalf("selected field missing: %+v", env.Error.Fields)
	}
}
