package token_broker

import (
	"context"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/videoteca/cloud-import/models"
)

type store interface {
	GetTeamChannel(ctx context.Context, teamID string) (*models.TeamChannel, error)
	GetYoutubeChannel(ctx context.Context, id uuid.UUID) (*models.YoutubeChannel, error)
	UpdateYoutubeChannelToken(ctx context.Context, id uuid.UUID, token string, refreshToken string, expiresAt time.Time) error
}
