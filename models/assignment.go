package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	uuid "github.com/satori/go.uuid"
)

type ContentType string

const (
	ContentTraining       ContentType = "entrenamiento"
	ContentMatch          ContentType = "partido"
	ContentAnalysis       ContentType = "analisis"
	ContentPlayerAnalysis ContentType = "analisis_jugador"
)

var ContentTypes = []ContentType{
	ContentTraining,
	ContentMatch,
	ContentAnalysis,
	ContentPlayerAnalysis,
}

func (t ContentType) String() string {
	return string(t)
}

func (t ContentType) Valid() bool {
	for _, ct := range ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// IsFootage reports whether t is stored as standard footage in the videos table.
func (t ContentType) IsFootage() bool {
	return t == ContentTraining || t == ContentMatch
}

func (t ContentType) RequiresPlayer() bool {
	return t == ContentPlayerAnalysis
}

// Video is training or match footage assigned to a team category.
type Video struct {
	tableName struct{} `pg:"videos"`

	ID             uuid.UUID   `pg:"video_id,pk,type:uuid,default:uuid_generate_v4()"`
	TeamID         string      `pg:"equipo_id,notnull"`
	CategoryID     string      `pg:"categoria_id,notnull"`
	Type           ContentType `pg:"tipo,notnull"`
	Description    string      `pg:"descripcion"`
	VideoURL       string      `pg:"video_url,notnull"`
	YoutubeVideoID *string     `pg:"youtube_video_id"`
	IsYoutube      bool        `pg:"es_youtube,use_zero"`
	CreatedAt      time.Time   `pg:"creado_en,notnull"`
}

// Analysis is an analysis video assigned to a team category.
type Analysis struct {
	tableName struct{} `pg:"analisis"`

	ID             uuid.UUID   `pg:"analisis_id,pk,type:uuid,default:uuid_generate_v4()"`
	TeamID         string      `pg:"equipo_id,notnull"`
	CategoryID     string      `pg:"categoria_id,notnull"`
	Type           ContentType `pg:"tipo,notnull"`
	Description    string      `pg:"descripcion"`
	VideoURL       string      `pg:"video_url,notnull"`
	YoutubeVideoID *string     `pg:"youtube_video_id"`
	IsYoutube      bool        `pg:"es_youtube,use_zero"`
	CreatedAt      time.Time   `pg:"creado_en,notnull"`
}

// PlayerAnalysis is an analysis video assigned to a single player.
type PlayerAnalysis struct {
	tableName struct{} `pg:"analisis_jugador"`

	ID             uuid.UUID   `pg:"analisis_jugador_id,pk,type:uuid,default:uuid_generate_v4()"`
	TeamID         string      `pg:"equipo_id,notnull"`
	PlayerID       string      `pg:"jugador_id,notnull"`
	Type           ContentType `pg:"tipo,notnull"`
	Description    string      `pg:"descripcion"`
	VideoURL       string      `pg:"video_url,notnull"`
	YoutubeVideoID *string     `pg:"youtube_video_id"`
	IsYoutube      bool        `pg:"es_youtube,use_zero"`
	CreatedAt      time.Time   `pg:"creado_en,notnull"`
}

// sameVideo matches rows pointing at the same video either by url or by
// youtube id.
func sameVideo(videoURL string, youtubeID string) func(q *orm.Query) (*orm.Query, error) {
	return func(q *orm.Query) (*orm.Query, error) {
		q = q.Where("video_url = ?", videoURL)
		if youtubeID != "" {
			q = q.WhereOr("youtube_video_id = ?", youtubeID)
		}
		return q, nil
	}
}

func videoExistsQuery(q *orm.Query, teamID, categoryID string, t ContentType, videoURL, youtubeID string) *orm.Query {
	return q.
		Where("equipo_id = ?", teamID).
		Where("categoria_id = ?", categoryID).
		Where("tipo = ?", t).
		WhereGroup(sameVideo(videoURL, youtubeID))
}

func VideoExists(ctx context.Context, db *pg.DB, teamID, categoryID string, t ContentType, videoURL, youtubeID string) (bool, error) {
	return videoExistsQuery(db.Model((*Video)(nil)).Context(ctx), teamID, categoryID, t, videoURL, youtubeID).Exists()
}

func analysisExistsQuery(q *orm.Query, teamID, categoryID string, videoURL, youtubeID string) *orm.Query {
	return q.
		Where("equipo_id = ?", teamID).
		Where("categoria_id = ?", categoryID).
		WhereGroup(sameVideo(videoURL, youtubeID))
}

func AnalysisExists(ctx context.Context, db *pg.DB, teamID, categoryID string, videoURL, youtubeID string) (bool, error) {
	return analysisExistsQuery(db.Model((*Analysis)(nil)).Context(ctx), teamID, categoryID, videoURL, youtubeID).Exists()
}

// playerAnalysisExistsQuery ignores the category; a player analysis is
// unique per player.
func playerAnalysisExistsQuery(q *orm.Query, teamID, playerID string, videoURL, youtubeID string) *orm.Query {
	return q.
		Where("equipo_id = ?", teamID).
		Where("jugador_id = ?", playerID).
		WhereGroup(sameVideo(videoURL, youtubeID))
}

func PlayerAnalysisExists(ctx context.Context, db *pg.DB, teamID, playerID string, videoURL, youtubeID string) (bool, error) {
	return playerAnalysisExistsQuery(db.Model((*PlayerAnalysis)(nil)).Context(ctx), teamID, playerID, videoURL, youtubeID).Exists()
}

func CreateVideo(ctx context.Context, db *pg.DB, v *Video) error {
	_, err := db.Model(v).
		Context(ctx).
		Returning("*").
		Insert()
	return err
}

func CreateAnalysis(ctx context.Context, db *pg.DB, a *Analysis) error {
	_, err := db.Model(a).
		Context(ctx).
		Returning("*").
		Insert()
	return err
}

func CreatePlayerAnalysis(ctx context.Context, db *pg.DB, a *PlayerAnalysis) error {
	_, err := db.Model(a).
		Context(ctx).
		Returning("*").
		Insert()
	return err
}

// GetTeamVideos returns footage of the given type, newest first.
func GetTeamVideos(ctx context.Context, db *pg.DB, teamID string, t ContentType) ([]Video, error) {
	var videos []Video
	err := db.Model(&videos).
		Context(ctx).
		Where("equipo_id = ?", teamID).
		Where("tipo = ?", t).
		Order("creado_en DESC").
		Select()
	if err != nil {
		return nil, err
	}
	return videos, nil
}

func GetTeamAnalyses(ctx context.Context, db *pg.DB, teamID string) ([]Analysis, error) {
	var analyses []Analysis
	err := db.Model(&analyses).
		Context(ctx).
		Where("equipo_id = ?", teamID).
		Order("creado_en DESC").
		Select()
	if err != nil {
		return nil, err
	}
	return analyses, nil
}

func GetTeamPlayerAnalyses(ctx context.Context, db *pg.DB, teamID string) ([]PlayerAnalysis, error) {
	var analyses []PlayerAnalysis
	err := db.Model(&analyses).
		Context(ctx).
		Where("equipo_id = ?", teamID).
		Order("creado_en DESC").
		Select()
	if err != nil {
		return nil, err
	}
	return analyses, nil
}
