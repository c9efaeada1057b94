package channel

import (
	"context"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/videoteca/cloud-import/models"
	"github.com/videoteca/cloud-import/services/common"
)

type store interface {
	GetTeamChannel(ctx context.Context, teamID string) (*models.TeamChannel, error)
	GetYoutubeChannel(ctx context.Context, id uuid.UUID) (*models.YoutubeChannel, error)
}

// Resolver maps a team to the external id of its linked channel. Results are
// never cached, every call reads the link again.
type Resolver struct {
	store store
}

func NewResolver(st *Store) *Resolver {
	return &Resolver{
		store: st,
	}
}

func (s *Resolver) ResolveChannel(ctx context.Context, teamID string) (string, error) {
	if teamID == "" {
		return "", common.Validation("team_id")
	}
	link, err := s.store.GetTeamChannel(ctx, teamID)
	if err != nil {
		return "", errors.Wrap(err, "failed to get team channel")
	}
	if link == nil {
		return "", errors.Wrapf(common.ErrNotLinked, "team %v", teamID)
	}
	ch, err := s.store.GetYoutubeChannel(ctx, link.ChannelID)
	if err != nil {
		return "", errors.Wrap(err, "failed to get channel")
	}
	if ch == nil || ch.ChannelID == "" {
		return "", errors.Wrapf(common.ErrNotLinked, "team %v has no channel id", teamID)
	}
	return ch.ChannelID, nil
}
