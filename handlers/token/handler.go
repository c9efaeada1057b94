package token

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	hc "github.com/videoteca/cloud-import/handlers/common"
	"github.com/videoteca/cloud-import/services/common"
	tb "github.com/videoteca/cloud-import/services/token_broker"
)

type broker interface {
	GetAccessToken(ctx context.Context, teamID string) (*tb.Token, error)
}

type Handler struct {
	tb broker
}

type tokenRequest struct {
	TeamID string `json:"equipoId"`
}

func RegisterHandler(r *gin.Engine, b *tb.Broker) {
	h := &Handler{
		tb: b,
	}
	r.POST("/token", h.post)
}

func (s *Handler) post(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		hc.AbortWithError(c, errors.Wrap(common.ErrValidation, err.Error()), "failed to parse token request")
		return
	}
	t, err := s.tb.GetAccessToken(c.Request.Context(), req.TeamID)
	if err != nil {
		hc.AbortWithError(c, err, "failed to get access token")
		return
	}
	c.JSON(http.StatusOK, t)
}
