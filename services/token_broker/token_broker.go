package token_broker

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/videoteca/cloud-import/services/channel"
	"github.com/videoteca/cloud-import/services/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	youtubeClientIDFlag     = "youtube-client-id"
	youtubeClientSecretFlag = "youtube-client-secret"
	youtubeTokenURLFlag     = "youtube-token-url"
)

const defaultExpiresIn = 3600 * time.Second

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   youtubeClientIDFlag,
			Usage:  "youtube oauth client id",
			EnvVar: "YOUTUBE_CLIENT_ID",
		},
		cli.StringFlag{
			Name:   youtubeClientSecretFlag,
			Usage:  "youtube oauth client secret",
			EnvVar: "YOUTUBE_CLIENT_SECRET",
		},
		cli.StringFlag{
			Name:   youtubeTokenURLFlag,
			Usage:  "youtube oauth token endpoint",
			Value:  google.Endpoint.TokenURL,
			EnvVar: "YOUTUBE_TOKEN_URL",
		},
	)
}

type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Broker struct {
	store  store
	config *oauth2.Config
	cl     *http.Client
	now    func() time.Time
}

func New(c *cli.Context, cl *http.Client, st *channel.Store) *Broker {
	tokenURL := c.String(youtubeTokenURLFlag)
	log.Infof("youtube token endpoint %v", tokenURL)
	return &Broker{
		store:  st,
		config: makeConfig(c.String(youtubeClientIDFlag), c.String(youtubeClientSecretFlag), tokenURL),
		cl:     cl,
		now:    time.Now,
	}
}

func makeConfig(clientID, clientSecret, tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   google.Endpoint.AuthURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// GetAccessToken returns a usable bearer token for the channel linked to
// teamID, refreshing and persisting it first when the stored one is expired.
func (s *Broker) GetAccessToken(ctx context.Context, teamID string) (*Token, error) {
	if teamID == "" {
		return nil, common.Validation("equipoId")
	}
	link, err := s.store.GetTeamChannel(ctx, teamID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get team channel")
	}
	if link == nil {
		return nil, errors.Wrapf(common.ErrNotLinked, "team %v", teamID)
	}
	ch, err := s.store.GetYoutubeChannel(ctx, link.ChannelID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get channel credential")
	}
	if ch == nil {
		return nil, errors.Wrapf(common.ErrCredentialNotFound, "channel %v", link.ChannelID)
	}

	now := s.now()
	if !ch.TokenExpired(now) {
		return &Token{
			AccessToken: *ch.AccessToken,
			ExpiresIn:   int64(ch.TokenExpiresAt.Sub(now) / time.Second),
		}, nil
	}

	t, err := s.refresh(ctx, ch.RefreshToken)
	if err != nil {
		return nil, err
	}
	expiresIn := getExpiresIn(t)
	expiresAt := now.Add(expiresIn)
	rotated := ""
	if t.RefreshToken != "" && t.RefreshToken != ch.RefreshToken {
		rotated = t.RefreshToken
	}
	err = s.store.UpdateYoutubeChannelToken(ctx, ch.ID, t.AccessToken, rotated, expiresAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store refreshed token")
	}
	log.WithFields(log.Fields{
		"team_id":    teamID,
		"channel_id": ch.ChannelID,
		"expires":    humanize.Time(expiresAt),
		"rotated":    rotated != "",
	}).Info("youtube access token refreshed")

	return &Token{
		AccessToken: t.AccessToken,
		ExpiresIn:   int64(expiresIn / time.Second),
	}, nil
}

func (s *Broker) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.cl)
	t, err := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			status := 0
			if re.Response != nil {
				status = re.Response.StatusCode
			}
			return nil, common.NewTokenRefreshError(status, string(re.Body), err)
		}
		return nil, common.NewTokenRefreshError(0, "", err)
	}
	return t, nil
}

// getExpiresIn returns the lifetime of t. oauth2 sets Expiry from
// expires_in, so a zero Expiry means the endpoint sent none.
func getExpiresIn(t *oauth2.Token) time.Duration {
	if t.Expiry.IsZero() {
		return defaultExpiresIn
	}
	d := time.Until(t.Expiry).Round(time.Second)
	if d <= 0 {
		return defaultExpiresIn
	}
	return d
}
