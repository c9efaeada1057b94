package models

import (
	"context"
	"errors"
	"time"

	"github.com/go-pg/pg/v10"
	uuid "github.com/satori/go.uuid"
)

// YoutubeChannel is a linked channel together with its OAuth credential.
type YoutubeChannel struct {
	tableName struct{} `pg:"canal_youtube"`

	ID             uuid.UUID  `pg:"canal_id,pk,type:uuid,default:uuid_generate_v4()"`
	ChannelID      string     `pg:"channel_id"`
	Title          string     `pg:"titulo"`
	AccessToken    *string    `pg:"access_token"`
	RefreshToken   string     `pg:"refresh_token,notnull"`
	TokenExpiresAt *time.Time `pg:"token_expires_at"`
	CreatedAt      time.Time  `pg:"creado_en,default:now()"`
	UpdatedAt      time.Time  `pg:"actualizado_en,default:now()"`
}

// TokenExpired reports whether the stored access token can no longer be used.
// A missing expiry counts as expired.
func (s *YoutubeChannel) TokenExpired(now time.Time) bool {
	if s.AccessToken == nil || *s.AccessToken == "" {
		return true
	}
	return s.TokenExpiresAt == nil || s.TokenExpiresAt.Before(now)
}

type TeamChannel struct {
	tableName struct{} `pg:"equipo_canal"`

	TeamID    string    `pg:"equipo_id,pk"`
	ChannelID uuid.UUID `pg:"canal_id,type:uuid,notnull"`
	CreatedAt time.Time `pg:"creado_en,default:now()"`
}

func GetTeamChannel(ctx context.Context, db *pg.DB, teamID string) (*TeamChannel, error) {
	tc := new(TeamChannel)
	err := db.Model(tc).
		Context(ctx).
		Where("equipo_id = ?", teamID).
		Select()
	if err != nil {
		if errors.Is(err, pg.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tc, nil
}

func GetYoutubeChannel(ctx context.Context, db *pg.DB, id uuid.UUID) (*YoutubeChannel, error) {
	ch := new(YoutubeChannel)
	err := db.Model(ch).
		Context(ctx).
		Where("canal_id = ?", id).
		Select()
	if err != nil {
		if errors.Is(err, pg.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ch, nil
}

// UpdateYoutubeChannelToken stores a freshly issued access token. A non
// empty refreshToken replaces the stored one in the same statement.
func UpdateYoutubeChannelToken(ctx context.Context, db *pg.DB, id uuid.UUID, token string, refreshToken string, expiresAt time.Time) error {
	q := db.Model((*YoutubeChannel)(nil)).
		Context(ctx).
		Set("access_token = ?", token).
		Set("token_expires_at = ?", expiresAt)
	if refreshToken != "" {
		q = q.Set("refresh_token = ?", refreshToken)
	}
	_, err := q.
		Set("actualizado_en = now()").
		Where("canal_id = ?", id).
		Update()
	return err
}
