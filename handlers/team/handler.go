package team

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	hc "github.com/videoteca/cloud-import/handlers/common"
	"github.com/videoteca/cloud-import/models"
	"github.com/videoteca/cloud-import/services/assignment"
	"github.com/videoteca/cloud-import/services/channel"
	"github.com/videoteca/cloud-import/services/common"
	"github.com/videoteca/cloud-import/services/youtube"
)

type resolver interface {
	ResolveChannel(ctx context.Context, teamID string) (string, error)
}

type lister interface {
	ListVideos(ctx context.Context, teamID string, pageSize int64, pageToken string) (*youtube.VideoPage, error)
}

type assignments interface {
	List(ctx context.Context, teamID string, t models.ContentType) ([]assignment.Record, error)
}

type Handler struct {
	channels    resolver
	lister      lister
	assignments assignments
}

type channelResponse struct {
	TeamID    string `json:"team_id"`
	ChannelID string `json:"channel_id"`
}

func RegisterHandler(r *gin.Engine, ch *channel.Resolver, l *youtube.Lister, as *assignment.Store) {
	h := &Handler{
		channels:    ch,
		lister:      l,
		assignments: as,
	}
	gr := r.Group("/teams/:team_id")
	gr.GET("/channel", h.channel)
	gr.GET("/videos", h.videos)
	gr.GET("/assignments", h.list)
}

func (s *Handler) channel(c *gin.Context) {
	teamID := c.Param("team_id")
	id, err := s.channels.ResolveChannel(c.Request.Context(), teamID)
	if err != nil {
		hc.AbortWithError(c, err, "failed to resolve channel")
		return
	}
	c.JSON(http.StatusOK, channelResponse{
		TeamID:    teamID,
		ChannelID: id,
	})
}

func (s *Handler) videos(c *gin.Context) {
	var pageSize int64
	if ps := c.Query("page_size"); ps != "" {
		var err error
		pageSize, err = strconv.ParseInt(ps, 10, 64)
		if err != nil {
			hc.AbortWithError(c, errors.Wrapf(common.ErrValidation, "bad page_size %q", ps), "failed to parse page size")
			return
		}
	}
	page, err := s.lister.ListVideos(c.Request.Context(), c.Param("team_id"), pageSize, c.Query("page_token"))
	if err != nil {
		hc.AbortWithError(c, err, "failed to list videos")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Handler) list(c *gin.Context) {
	ct := models.ContentType(c.DefaultQuery("content_type", models.ContentTraining.String()))
	res, err := s.assignments.List(c.Request.Context(), c.Param("team_id"), ct)
	if err != nil {
		hc.AbortWithError(c, err, "failed to list assignments")
		return
	}
	if res == nil {
		res = []assignment.Record{}
	}
	c.JSON(http.StatusOK, res)
}
