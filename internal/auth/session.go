package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "innkeep_admin"

// Sessions — админская сессия в виде подписанной HS256-куки.
// Выдача и проверка только здесь; хэндлеры видят bool.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttlMinutes int) *Sessions {
	if ttlMinutes <= 0 {
		ttlMinutes = 60
	}
	return &Sessions{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

func (s *Sessions) Issue(w http.ResponseWriter) error {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    "innkeep",
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Sessions) IsAuthenticated(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return false
	}
	token, err := jwt.ParseWithClaims(c.Value, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("innkeep"),
		jwt.WithSubject("admin"),
	)
	return err == nil && token.Valid
}

// RequirePage — гард HTML-страниц: неавторизованных уводит на логин.
func (s *Sessions) RequirePage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.IsAuthenticated(r) {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// RequireAction — гард POST-действий: без сессии 403, без редиректа.
func (s *Sessions) RequireAction(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.IsAuthenticated(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}
