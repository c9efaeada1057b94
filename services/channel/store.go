package channel

import (
	"context"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/videoteca/cloud-import/models"
	cs "github.com/webtor-io/common-services"
)

// Store gives access to team-channel links and channel credentials.
type Store struct {
	pg *cs.PG
}

func NewStore(pg *cs.PG) *Store {
	return &Store{
		pg: pg,
	}
}

func (s *Store) GetTeamChannel(ctx context.Context, teamID string) (*models.TeamChannel, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("database not initialized")
	}
	return models.GetTeamChannel(ctx, db, teamID)
}

func (s *Store) GetYoutubeChannel(ctx context.Context, id uuid.UUID) (*models.YoutubeChannel, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("database not initialized")
	}
	return models.GetYoutubeChannel(ctx, db, id)
}

func (s *Store) UpdateYoutubeChannelToken(ctx context.Context, id uuid.UUID, token string, refreshToken string, expiresAt time.Time) error {
	db := s.pg.Get()
	if db == nil {
		return errors.New("database not initialized")
	}
	return models.UpdateYoutubeChannelToken(ctx, db, id, token, refreshToken, expiresAt)
}
