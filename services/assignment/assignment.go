package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/videoteca/cloud-import/models"
	"github.com/videoteca/cloud-import/services/common"
	"github.com/videoteca/cloud-import/services/importer"
	cs "github.com/webtor-io/common-services"
)

// Store persists assignments in the table that belongs to their content
// type. Duplicates are detected by a read before the insert; the two steps
// are not atomic.
type Store struct {
	q   queries
	now func() time.Time
}

func New(pg *cs.PG) *Store {
	return &Store{
		q:   &pgQueries{pg: pg},
		now: time.Now,
	}
}

type Record struct {
	ID             uuid.UUID          `json:"id"`
	ContentType    models.ContentType `json:"content_type"`
	TeamID         string             `json:"team_id"`
	CategoryID     string             `json:"category_id,omitempty"`
	PlayerID       string             `json:"player_id,omitempty"`
	Description    string             `json:"description"`
	VideoURL       string             `json:"video_url"`
	YoutubeVideoID string             `json:"youtube_video_id,omitempty"`
	IsYoutube      bool               `json:"is_youtube"`
	CreatedAt      time.Time          `json:"created_at"`
}

func (s *Store) Exists(ctx context.Context, a importer.Assignment) (bool, error) {
	var (
		exists bool
		err    error
	)
	switch {
	case a.ContentType.IsFootage():
		exists, err = s.q.VideoExists(ctx, a.TeamID, a.CategoryID, a.ContentType, a.VideoURL, a.YoutubeVideoID)
	case a.ContentType == models.ContentAnalysis:
		exists, err = s.q.AnalysisExists(ctx, a.TeamID, a.CategoryID, a.VideoURL, a.YoutubeVideoID)
	case a.ContentType == models.ContentPlayerAnalysis:
		exists, err = s.q.PlayerAnalysisExists(ctx, a.TeamID, a.PlayerID, a.VideoURL, a.YoutubeVideoID)
	default:
		return false, errors.Wrapf(common.ErrValidation, "unknown content type %q", a.ContentType)
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to check existing assignment")
	}
	return exists, nil
}

func (s *Store) Create(ctx context.Context, a importer.Assignment) error {
	var ytID *string
	if a.YoutubeVideoID != "" {
		ytID = &a.YoutubeVideoID
	}
	now := s.now()
	switch {
	case a.ContentType.IsFootage():
		return s.q.CreateVideo(ctx, &models.Video{
			TeamID:         a.TeamID,
			CategoryID:     a.CategoryID,
			Type:           a.ContentType,
			Description:    a.Description,
			VideoURL:       a.VideoURL,
			YoutubeVideoID: ytID,
			IsYoutube:      a.IsYoutube,
			CreatedAt:      now,
		})
	case a.ContentType == models.ContentAnalysis:
		return s.q.CreateAnalysis(ctx, &models.Analysis{
			TeamID:         a.TeamID,
			CategoryID:     a.CategoryID,
			Type:           a.ContentType,
			Description:    a.Description,
			VideoURL:       a.VideoURL,
			YoutubeVideoID: ytID,
			IsYoutube:      a.IsYoutube,
			CreatedAt:      now,
		})
	case a.ContentType == models.ContentPlayerAnalysis:
		return s.q.CreatePlayerAnalysis(ctx, &models.PlayerAnalysis{
			TeamID:         a.TeamID,
			PlayerID:       a.PlayerID,
			Type:           a.ContentType,
			Description:    a.Description,
			VideoURL:       a.VideoURL,
			YoutubeVideoID: ytID,
			IsYoutube:      a.IsYoutube,
			CreatedAt:      now,
		})
	}
	return errors.Wrapf(common.ErrValidation, "unknown content type %q", a.ContentType)
}

// List returns the saved records of one content type for a team, newest first.
func (s *Store) List(ctx context.Context, teamID string, t models.ContentType) ([]Record, error) {
	if teamID == "" {
		return nil, common.Validation("team_id")
	}
	var res []Record
	switch {
	case t.IsFootage():
		videos, err := s.q.GetTeamVideos(ctx, teamID, t)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get videos")
		}
		for _, v := range videos {
			res = append(res, Record{
				ID: v.ID, ContentType: v.Type, TeamID: v.TeamID, CategoryID: v.CategoryID,
				Description: v.Description, VideoURL: v.VideoURL, YoutubeVideoID: deref(v.YoutubeVideoID),
				IsYoutube: v.IsYoutube, CreatedAt: v.CreatedAt,
			})
		}
	case t == models.ContentAnalysis:
		analyses, err := s.q.GetTeamAnalyses(ctx, teamID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get analyses")
		}
		for _, v := range analyses {
			res = append(res, Record{
				ID: v.ID, ContentType: v.Type, TeamID: v.TeamID, CategoryID: v.CategoryID,
				Description: v.Description, VideoURL: v.VideoURL, YoutubeVideoID: deref(v.YoutubeVideoID),
				IsYoutube: v.IsYoutube, CreatedAt: v.CreatedAt,
			})
		}
	case t == models.ContentPlayerAnalysis:
		analyses, err := s.q.GetTeamPlayerAnalyses(ctx, teamID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get player analyses")
		}
		for _, v := range analyses {
			res = append(res, Record{
				ID: v.ID, ContentType: v.Type, TeamID: v.TeamID, PlayerID: v.PlayerID,
				Description: v.Description, VideoURL: v.VideoURL, YoutubeVideoID: deref(v.YoutubeVideoID),
				IsYoutube: v.IsYoutube, CreatedAt: v.CreatedAt,
			})
		}
	default:
		return nil, errors.Wrapf(common.ErrValidation, "unknown content type %q", t)
	}
	return res, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
