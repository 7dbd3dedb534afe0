package middleware_test

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/parking-lot-reservation/internal/middleware"
    "github.com/iliyamo/parking-lot-reservation/internal/utils"
)

const testSecret = "unit-test-secret"

func runProtected(t *testing.T, authz string, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    handler := func(c echo.Context) error {
        return c.JSON(http.StatusOK, echo.Map{
            "user_id": c.Get("user_id"),
            "role":    c.Get("role"),
        })
    }
    e.GET("/protected", handler, mw...)

    req := httptest.NewRequest(http.MethodGet, "/protected", nil)
    if authz != "" {
        req.Header.Set("Authorization", authz)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func TestJWTAuthMissingToken(t *testing.T) {
    rec := runProtected(t, "", middleware.JWTAuth(testSecret))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMalformedToken(t *testing.T) {
    rec := runProtected(t, "Bearer not.a.jwt", middleware.JWTAuth(testSecret))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
    at, err := utils.NewAccessToken("other-secret", 7, "user", 15)
    require.NoError(t, err)

    rec := runProtected(t, "Bearer "+at.Token, middleware.JWTAuth(testSecret))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidToken(t *testing.T) {
    at, err := utils.NewAccessToken(testSecret, 7, "user", 15)
    require.NoError(t, err)

    rec := runProtected(t, "Bearer "+at.Token, middleware.JWTAuth(testSecret))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"user_id":7,"role":"user"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
    admin, err := utils.NewAccessToken(testSecret, 1, "admin", 15)
    require.NoError(t, err)
    user, err := utils.NewAccessToken(testSecret, 2, "user", 15)
    require.NoError(t, err)

    mw := []echo.MiddlewareFunc{middleware.JWTAuth(testSecret), middleware.RequireRole("admin")}

    rec := runProtected(t, "Bearer "+admin.Token, mw...)
    assert.Equal(t, http.StatusOK, rec.Code)

    rec = runProtected(t, "Bearer "+user.Token, mw...)
    assert.Equal(t, http.StatusForbidden, rec.Code)
}
