package youtube

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/youtube/v3"
)

const UntitledVideo = "Untitled video"

// Video is a channel upload normalized for the import workflow. It is built
// fresh on every listing and never stored as is.
type Video struct {
	ExternalID    string    `json:"external_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ThumbnailURL  string    `json:"thumbnail_url"`
	PublishedAt   time.Time `json:"published_at"`
	PrivacyStatus string    `json:"privacy_status"`
	URL           string    `json:"url"`
	EmbedURL      string    `json:"embed_url"`
}

type VideoPage struct {
	Videos        []Video `json:"videos"`
	NextPageToken string  `json:"next_page_token,omitempty"`
	PrevPageToken string  `json:"prev_page_token,omitempty"`
}

func WatchURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%v", url.QueryEscape(id))
}

func EmbedURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/embed/%v", url.PathEscape(id))
}

// VideoIDFromURL extracts the video id from watch, short, embed and shorts
// links. It returns an empty string for anything else.
func VideoIDFromURL(u string) string {
	pu, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(pu.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	path := strings.Trim(pu.Path, "/")
	switch host {
	case "youtu.be":
		return strings.SplitN(path, "/", 2)[0]
	case "youtube.com", "youtube-nocookie.com":
		if path == "watch" {
			return pu.Query().Get("v")
		}
		parts := strings.Split(path, "/")
		if len(parts) == 2 && (parts[0] == "embed" || parts[0] == "shorts" || parts[0] == "live") {
			return parts[1]
		}
	}
	return ""
}

// bestThumbnail walks the quality ladder from the highest resolution down.
func bestThumbnail(td *youtube.ThumbnailDetails) string {
	if td == nil {
		return ""
	}
	for _, t := range []*youtube.Thumbnail{td.Maxres, td.Standard, td.High, td.Medium, td.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}

func itemVideoID(it *youtube.PlaylistItem) string {
	if it.Snippet != nil && it.Snippet.ResourceId != nil && it.Snippet.ResourceId.VideoId != "" {
		return it.Snippet.ResourceId.VideoId
	}
	if it.ContentDetails != nil {
		return it.ContentDetails.VideoId
	}
	return ""
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// mapPlaylistItem converts a raw playlist item. Items without a video id are
// rejected.
func mapPlaylistItem(it *youtube.PlaylistItem) (Video, bool) {
	if it == nil {
		return Video{}, false
	}
	id := itemVideoID(it)
	if id == "" {
		return Video{}, false
	}
	v := Video{
		ExternalID: id,
		Title:      UntitledVideo,
		URL:        WatchURL(id),
		EmbedURL:   EmbedURL(id),
	}
	if sn := it.Snippet; sn != nil {
		if strings.TrimSpace(sn.Title) != "" {
			v.Title = sn.Title
		}
		v.Description = sn.Description
		v.ThumbnailURL = bestThumbnail(sn.Thumbnails)
		v.PublishedAt = parseTime(sn.PublishedAt)
	}
	if cd := it.ContentDetails; cd != nil && cd.VideoPublishedAt != "" {
		v.PublishedAt = parseTime(cd.VideoPublishedAt)
	}
	if it.Status != nil {
		v.PrivacyStatus = it.Status.PrivacyStatus
	}
	return v, true
}
