package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"juneberry/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const ctxAdminKey = "admin"

// Admin は管理画面トークンから取り出した操作者。
type Admin struct {
	ID   int64
	Role string
}

func (a Admin) IsAdmin() bool { return a.Role == RoleAdmin }

// AdminFrom は AuthJWT が保存した操作者を返す。
func AdminFrom(c echo.Context) (Admin, bool) {
	a, ok := c.Get(ctxAdminKey).(Admin)
	if !ok || a.ID <= 0 {
		return Admin{}, false
	}
	return a, true
}

// AdminClaims は管理画面トークンの中身。sub は数値でも文字列でもよい。
type AdminClaims struct {
	AdminID adminID `json:"sub"`
	Role    string  `json:"role"`
	jwt.RegisteredClaims
}

type adminID int64

func (id *adminID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("invalid sub")
	}
	v, err := n.Int64()
	if err != nil {
		return errors.New("invalid sub")
	}
	*id = adminID(v)
	return nil
}

// 管理画面用のBearer JWT検証ミドルウェア。
// トークンの発行は別システムで行い、ここでは署名と期限だけを見る。
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			admin, err := parseAdminToken(rawToken, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(ctxAdminKey, admin)
			return next(c)
		}
	}
}

func bearerToken(authz string) (string, bool) {
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// HS256 のみ受け付ける
func parseAdminToken(raw string, secret []byte) (Admin, error) {
	var claims AdminClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Admin{}, errors.New("invalid token")
	}
	if claims.AdminID <= 0 || claims.Role == "" {
		return Admin{}, errors.New("missing sub or role")
	}
	return Admin{ID: int64(claims.AdminID), Role: claims.Role}, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
