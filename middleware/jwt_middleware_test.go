package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AOladipo/thriftcircle_backend/models"
)

const testSecret = "test-secret"

// newProtectedRouter builds an echo instance with one member route and one
// admin route behind the real middleware chain.
func newProtectedRouter() *echo.Echo {
	e := echo.New()
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, GetUserIDFromToken(c)+"|"+ExtractUserType(c))
	}
	e.GET("/protected", handler, JWTMiddleware())
	e.GET("/admin", handler, JWTMiddleware(), RequireUserType(models.UserTypeAdmin))
	return e
}

func TestJWTMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	e := newProtectedRouter()
	userID := primitive.NewObjectID().Hex()

	token, _, err := GenerateJWT(userID, "ada@example.com", models.UserTypeMember)
	require.NoError(t, err)

	t.Run("accepts a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID+"|"+models.UserTypeMember, rec.Body.String())
	})

	t.Run("accepts the token query parameter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects a missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a mangled token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer not.a.token")
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaims{
			UserID:   userID,
			UserType: models.UserTypeAdmin,
			StandardClaims: jwt.StandardClaims{
				ExpiresAt: time.Now().Add(time.Hour).Unix(),
			},
		})
		forgedString, err := forged.SignedString([]byte("wrong-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+forgedString)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a blacklisted token", func(t *testing.T) {
		// Distinct claims so the token string differs from the shared one.
		loggedOut, _, err := GenerateJWT(primitive.NewObjectID().Hex(), "out@example.com", models.UserTypeMember)
		require.NoError(t, err)
		BlacklistToken(loggedOut, time.Now().Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+loggedOut)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireUserType(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	e := newProtectedRouter()

	memberToken, _, err := GenerateJWT(primitive.NewObjectID().Hex(), "member@example.com", models.UserTypeMember)
	require.NoError(t, err)
	adminToken, _, err := GenerateJWT(primitive.NewObjectID().Hex(), "admin@example.com", models.UserTypeAdmin)
	require.NoError(t, err)

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+adminToken)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("member is denied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+memberToken)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestGenerateJWT_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	userID := primitive.NewObjectID().Hex()

	token, refresh, err := GenerateJWT(userID, "ada@example.com", models.UserTypeMember)
	require.NoError(t, err)
	require.NotEmpty(t, refresh)

	claims := &JwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, models.UserTypeMember, claims.UserType)

	wantExpiry := time.Now().Add(72 * time.Hour).Unix()
	assert.InDelta(t, wantExpiry, claims.ExpiresAt, 60)
}

func TestGenerateJWT_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, _, err := GenerateJWT(primitive.NewObjectID().Hex(), "ada@example.com", models.UserTypeMember)
	assert.Error(t, err)
}

func TestBlacklistToken_ExpiredIsIgnored(t *testing.T) {
	BlacklistToken("stale-token", time.Now().Add(-time.Minute))
	assert.False(t, IsTokenBlacklisted("stale-token"))

	BlacklistToken("live-token", time.Now().Add(time.Minute))
	assert.True(t, IsTokenBlacklisted("live-token"))
}
