package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		t.Fatal(err)
	}
	c.Request = req
	return c, w
}

func TestSlotHandlerResourceSlotsMissingDate(t *testing.T) {
	handler := NewSlotHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/resources/res-1/slots")
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}

	handler.ResourceSlots(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "date query parameter is required")
}

func TestSlotHandlerResourceSlotsBadDate(t *testing.T) {
	handler := NewSlotHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/resources/res-1/slots?date=03-04-2024")
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}

	handler.ResourceSlots(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}

func TestSlotHandlerCheckMissingParams(t *testing.T) {
	handler := NewSlotHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/slots/check?resourceId=res-1")

	handler.Check(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlotHandlerCheckBadStart(t *testing.T) {
	handler := NewSlotHandler(nil)
	c, w := newTestContext(t, http.MethodGet, "/slots/check?resourceId=res-1&typeId=type-1&start=tomorrow")

	handler.Check(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "RFC3339")
}
