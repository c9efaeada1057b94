package importer

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	hc "github.com/videoteca/cloud-import/handlers/common"
	"github.com/videoteca/cloud-import/services/common"
	"github.com/videoteca/cloud-import/services/session"
)

type sessions interface {
	Create(ctx context.Context, r session.CreateRequest) (*session.View, error)
	Get(ctx context.Context, id string) (*session.View, error)
	Dispatch(ctx context.Context, id string, r session.EventRequest) (*session.View, error)
}

type Handler struct {
	sessions sessions
}

func RegisterHandler(r *gin.Engine, m *session.Manager) {
	h := &Handler{
		sessions: m,
	}
	gr := r.Group("/import/sessions")
	gr.POST("", h.create)
	gr.GET("/:id", h.get)
	gr.POST("/:id/events", h.dispatch)
}

func (s *Handler) create(c *gin.Context) {
	var req session.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		hc.AbortWithError(c, errors.Wrap(common.ErrValidation, err.Error()), "failed to parse session request")
		return
	}
	v, err := s.sessions.Create(c.Request.Context(), req)
	if err != nil {
		hc.AbortWithError(c, err, "failed to create import session")
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (s *Handler) get(c *gin.Context) {
	v, err := s.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		hc.AbortWithError(c, err, "failed to get import session")
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Handler) dispatch(c *gin.Context) {
	var req session.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		hc.AbortWithError(c, errors.Wrap(common.ErrValidation, err.Error()), "failed to parse session event")
		return
	}
	v, err := s.sessions.Dispatch(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		hc.AbortWithError(c, err, "failed to dispatch session event")
		return
	}
	c.JSON(http.StatusOK, v)
}
