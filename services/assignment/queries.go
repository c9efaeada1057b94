package assignment

import (
	"context"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	"github.com/videoteca/cloud-import/models"
	cs "github.com/webtor-io/common-services"
)

// queries are the per table statements the Store dispatches to.
type queries interface {
	VideoExists(ctx context.Context, teamID, categoryID string, t models.ContentType, videoURL, youtubeID string) (bool, error)
	AnalysisExists(ctx context.Context, teamID, categoryID string, videoURL, youtubeID string) (bool, error)
	PlayerAnalysisExists(ctx context.Context, teamID, playerID string, videoURL, youtubeID string) (bool, error)
	CreateVideo(ctx context.Context, v *models.Video) error
	CreateAnalysis(ctx context.Context, a *models.Analysis) error
	CreatePlayerAnalysis(ctx context.Context, a *models.PlayerAnalysis) error
	GetTeamVideos(ctx context.Context, teamID string, t models.ContentType) ([]models.Video, error)
	GetTeamAnalyses(ctx context.Context, teamID string) ([]models.Analysis, error)
	GetTeamPlayerAnalyses(ctx context.Context, teamID string) ([]models.PlayerAnalysis, error)
}

type pgQueries struct {
	pg *cs.PG
}

func (s *pgQueries) db() (*pg.DB, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("database not initialized")
	}
	return db, nil
}

func (s *pgQueries) VideoExists(ctx context.Context, teamID, categoryID string, t models.ContentType, videoURL, youtubeID string) (bool, error) {
	db, err := s.db()
	if err != nil {
		return false, err
	}
	return models.VideoExists(ctx, db, teamID, categoryID, t, videoURL, youtubeID)
}

func (s *pgQueries) AnalysisExists(ctx context.Context, teamID, categoryID string, videoURL, youtubeID string) (bool, error) {
	db, err := s.db()
	if err != nil {
		return false, err
	}
	return models.AnalysisExists(ctx, db, teamID, categoryID, videoURL, youtubeID)
}

func (s *pgQueries) PlayerAnalysisExists(ctx context.Context, teamID, playerID string, videoURL, youtubeID string) (bool, error) {
	db, err := s.db()
	if err != nil {
		return false, err
	}
	return models.PlayerAnalysisExists(ctx, db, teamID, playerID, videoURL, youtubeID)
}

func (s *pgQueries) CreateVideo(ctx context.Context, v *models.Video) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.CreateVideo(ctx, db, v)
}

func (s *pgQueries) CreateAnalysis(ctx context.Context, a *models.Analysis) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.CreateAnalysis(ctx, db, a)
}

func (s *pgQueries) CreatePlayerAnalysis(ctx context.Context, a *models.PlayerAnalysis) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.CreatePlayerAnalysis(ctx, db, a)
}

func (s *pgQueries) GetTeamVideos(ctx context.Context, teamID string, t models.ContentType) ([]models.Video, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetTeamVideos(ctx, db, teamID, t)
}

func (s *pgQueries) GetTeamAnalyses(ctx context.Context, teamID string) ([]models.Analysis, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetTeamAnalyses(ctx, db, teamID)
}

func (s *pgQueries) GetTeamPlayerAnalyses(ctx context.Context, teamID string) ([]models.PlayerAnalysis, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetTeamPlayerAnalyses(ctx, db, teamID)
}
