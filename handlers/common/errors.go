package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/videoteca/cloud-import/services/auth"
	sc "github.com/videoteca/cloud-import/services/common"
)

// AbortWithError logs err and renders it as a JSON error body with the
// status of its kind.
func AbortWithError(c *gin.Context, err error, msg string) {
	status := sc.HTTPStatus(err)
	l := log.WithError(err).
		WithField("path", c.FullPath()).
		WithField("caller", auth.GetUserFromContext(c).Subject)
	if status >= http.StatusInternalServerError {
		l.Error(msg)
	} else {
		l.Warn(msg)
	}
	c.AbortWithStatusJSON(status, sc.MakeErrorBody(err))
}
