package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/videoteca/cloud-import/services/common"
)

const (
	jwtSecretFlag = "jwt-secret"
	userKey       = "auth_user"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   jwtSecretFlag,
			Usage:  "HS256 secret of platform issued bearer tokens, empty disables verification",
			EnvVar: "JWT_SECRET",
		},
	)
}

type User struct {
	Subject string
	Claims  jwt.MapClaims
}

func (s *User) HasAuth() bool {
	return s.Subject != ""
}

type Auth struct {
	secret string
}

func New(c *cli.Context) *Auth {
	return &Auth{
		secret: c.String(jwtSecretFlag),
	}
}

func (s *Auth) Enabled() bool {
	return s.secret != ""
}

// Verify parses an HS256 token and returns the caller it was issued to.
func (s *Auth) Verify(data string) (*User, error) {
	token, err := jwt.Parse(data, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(common.ErrUnauthorized, err.Error())
	}
	clms, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.Wrap(common.ErrUnauthorized, "invalid token claims")
	}
	sub, _ := clms["sub"].(string)
	if sub == "" {
		return nil, errors.Wrap(common.ErrUnauthorized, "missing subject")
	}
	return &User{
		Subject: sub,
		Claims:  clms,
	}, nil
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (s *Auth) verify(c *gin.Context) {
	u, err := s.Verify(bearer(c))
	if err != nil {
		log.WithError(err).
			WithField("path", c.Request.URL.Path).
			Warn("failed to verify caller")
		c.AbortWithStatusJSON(http.StatusUnauthorized, common.MakeErrorBody(common.ErrUnauthorized))
		return
	}
	c.Set(userKey, u)
	c.Next()
}

func GetUserFromContext(c *gin.Context) *User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*User); ok {
			return u
		}
	}
	return &User{}
}

func (s *Auth) RegisterHandler(r *gin.Engine) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"content-type", "authorization"},
		MaxAge:       1 * time.Minute,
	}))
	if !s.Enabled() {
		log.Warn("caller verification disabled")
		return
	}
	r.Use(s.verify)
}
