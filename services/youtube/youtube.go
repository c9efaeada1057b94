package youtube

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/videoteca/cloud-import/services/common"
	tb "github.com/videoteca/cloud-import/services/token_broker"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	youtubeAPIEndpointFlag = "youtube-api-endpoint"
)

const (
	DefaultPageSize int64 = 50
	MaxPageSize     int64 = 50
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   youtubeAPIEndpointFlag,
			Usage:  "youtube data api endpoint (empty for default)",
			EnvVar: "YOUTUBE_API_ENDPOINT",
		},
	)
}

type TokenProvider interface {
	GetAccessToken(ctx context.Context, teamID string) (*tb.Token, error)
}

type ChannelResolver interface {
	ResolveChannel(ctx context.Context, teamID string) (string, error)
}

// Lister pages through the uploads of the channel linked to a team.
type Lister struct {
	tokens   TokenProvider
	channels ChannelResolver
	cl       *http.Client
	endpoint string
}

func New(c *cli.Context, cl *http.Client, tokens TokenProvider, channels ChannelResolver) *Lister {
	endpoint := c.String(youtubeAPIEndpointFlag)
	if endpoint != "" {
		log.Infof("youtube api endpoint %v", endpoint)
	}
	return &Lister{
		tokens:   tokens,
		channels: channels,
		cl:       cl,
		endpoint: endpoint,
	}
}

// ListVideos returns one page of the team channel uploads in upstream order.
// The channel is resolved before a token is requested, so teams without a
// link fail without touching the network.
func (s *Lister) ListVideos(ctx context.Context, teamID string, pageSize int64, pageToken string) (*VideoPage, error) {
	channelID, err := s.channels.ResolveChannel(ctx, teamID)
	if err != nil {
		return nil, err
	}
	tok, err := s.tokens.GetAccessToken(ctx, teamID)
	if err != nil {
		return nil, err
	}
	svc, err := s.service(ctx, tok.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create youtube service")
	}
	uploads, err := s.uploadsPlaylist(ctx, svc, channelID)
	if err != nil {
		return nil, err
	}

	call := svc.PlaylistItems.List([]string{"snippet", "contentDetails", "status"}).
		PlaylistId(uploads).
		MaxResults(clampPageSize(pageSize)).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, errors.Wrapf(apiError(err), "failed to list playlist items (playlist: %v)", uploads)
	}

	page := &VideoPage{
		Videos:        make([]Video, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
		PrevPageToken: resp.PrevPageToken,
	}
	for _, it := range resp.Items {
		v, ok := mapPlaylistItem(it)
		if !ok {
			log.WithField("playlist_id", uploads).Warn("skipping playlist item without video id")
			continue
		}
		page.Videos = append(page.Videos, v)
	}
	return page, nil
}

func (s *Lister) uploadsPlaylist(ctx context.Context, svc *youtube.Service, channelID string) (string, error) {
	resp, err := svc.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", errors.Wrapf(apiError(err), "failed to get channel (channel: %v)", channelID)
	}
	for _, ch := range resp.Items {
		if ch == nil || ch.ContentDetails == nil || ch.ContentDetails.RelatedPlaylists == nil {
			continue
		}
		if u := ch.ContentDetails.RelatedPlaylists.Uploads; u != "" {
			return u, nil
		}
	}
	return "", errors.Wrapf(common.ErrUploadsNotFound, "channel %v", channelID)
}

func (s *Lister) service(ctx context.Context, accessToken string) (*youtube.Service, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.cl)
	cl := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	opts := []option.ClientOption{option.WithHTTPClient(cl)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	return youtube.NewService(ctx, opts...)
}

func clampPageSize(n int64) int64 {
	if n <= 0 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

func apiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = gerr.Body
		}
		return &common.ExternalAPIError{Status: gerr.Code, Message: msg}
	}
	return &common.ExternalAPIError{Message: err.Error()}
}
