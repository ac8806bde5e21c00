package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/course-admin/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestListNeverSendsNull(t *testing.T) {
	c, w := newContext()
	List[string](c, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"meta":{"count":0}}`, w.Body.String())
}

func TestErrorEnvelope(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Clone(appErrors.ErrConflict, "course id already exists"))

	require.Equal(t, http.StatusConflict, w.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestAttachment(t *testing.T) {
	c, w := newContext()
	Attachment(c, "courses.pdf", "application/pdf", []byte("%PDF"))

	assert.Equal(t, `attachment; filename=courses.pdf`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF", w.Body.String())
}
