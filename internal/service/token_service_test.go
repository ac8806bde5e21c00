package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-admin/internal/models"
	appErrors "github.com/noah-isme/course-admin/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "course-admin", Expiry: time.Hour})

	token, err := svc.Issue(1001, models.RoleInstructor)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, claims.Role)
	assert.Equal(t, int64(1001), claims.InstructorID)
	assert.Equal(t, "1001", claims.Subject)
}

func TestTokenServiceRejects(t *testing.T) {
	issuer := NewTokenService(TokenConfig{Secret: "secret", Issuer: "course-admin", Expiry: time.Hour})
	token, err := issuer.Issue(7, models.RoleAdmin)
	require.NoError(t, err)

	wrongSecret := NewTokenService(TokenConfig{Secret: "other", Issuer: "course-admin"})
	_, err = wrongSecret.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, appErrors.IsStatus(err, http.StatusUnauthorized))

	wrongIssuer := NewTokenService(TokenConfig{Secret: "secret", Issuer: "someone-else"})
	_, err = wrongIssuer.ValidateToken(token)
	assert.Error(t, err)

	expired := NewTokenService(TokenConfig{Secret: "secret", Issuer: "course-admin"})
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.ValidateToken(token)
	assert.Error(t, err)

	_, err = issuer.ValidateToken("not-a-token")
	assert.Error(t, err)
}
