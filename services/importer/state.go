package importer

import (
	"github.com/videoteca/cloud-import/models"
	"github.com/videoteca/cloud-import/services/common"
	"github.com/videoteca/cloud-import/services/youtube"
)

type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseVerifyingChannel Phase = "verifying_channel"
	PhaseNoChannel        Phase = "no_channel"
	PhaseLoadingVideos    Phase = "loading_videos"
	PhaseEmpty            Phase = "empty"
	PhaseListing          Phase = "listing"
	PhaseSelecting        Phase = "selecting"
	PhaseAssigning        Phase = "assigning"
	PhaseDone             Phase = "done"
	PhaseFailed           Phase = "failed"
)

type Direction string

const (
	DirectionFresh Direction = "fresh"
	DirectionNext  Direction = "next"
	DirectionPrev  Direction = "prev"
)

// Request identifies an issued remote call. Results are applied only while
// the state still waits for exactly this request.
type Request struct {
	Seq       uint64    `json:"seq"`
	TeamID    string    `json:"team_id"`
	Cursor    string    `json:"cursor,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

type Notice struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   bool   `json:"error"`
}

func errorNotice(err error) *Notice {
	return &Notice{
		Code:    common.Code(err),
		Message: err.Error(),
		Error:   true,
	}
}

// Assignment is the record written when a listed video is assigned.
type Assignment struct {
	ContentType    models.ContentType `json:"content_type"`
	TeamID         string             `json:"team_id"`
	CategoryID     string             `json:"category_id,omitempty"`
	PlayerID       string             `json:"player_id,omitempty"`
	Description    string             `json:"description"`
	VideoURL       string             `json:"video_url"`
	YoutubeVideoID string             `json:"youtube_video_id,omitempty"`
	IsYoutube      bool               `json:"is_youtube"`
}

// State is the whole import screen state. Transition never mutates a State
// it receives.
type State struct {
	Phase       Phase              `json:"phase"`
	TeamID      string             `json:"team_id,omitempty"`
	CategoryID  string             `json:"category_id,omitempty"`
	PlayerID    string             `json:"player_id,omitempty"`
	ContentType models.ContentType `json:"content_type,omitempty"`
	PageSize    int64              `json:"page_size,omitempty"`

	ChannelID     string          `json:"channel_id,omitempty"`
	Videos        []youtube.Video `json:"videos,omitempty"`
	Loaded        bool            `json:"loaded"`
	NextPageToken string          `json:"next_page_token,omitempty"`
	PrevPageToken string          `json:"prev_page_token,omitempty"`
	Query         string          `json:"query,omitempty"`

	Selected    *youtube.Video `json:"selected,omitempty"`
	Description string         `json:"description,omitempty"`

	Pending *Request `json:"pending,omitempty"`
	Seq     uint64   `json:"seq"`
	Notice  *Notice  `json:"notice,omitempty"`
}

func NewState(contentType models.ContentType, pageSize int64) State {
	return State{
		Phase:       PhaseIdle,
		ContentType: contentType,
		PageSize:    pageSize,
	}
}

// Visible returns the accumulated videos narrowed by the current query.
func (s State) Visible() []youtube.Video {
	return Filter(s.Videos, s.Query)
}

func (s State) Loading() bool {
	return s.Pending != nil
}

func (s State) issue(teamID, cursor string, dir Direction) (State, Request) {
	s.Seq++
	r := Request{
		Seq:       s.Seq,
		TeamID:    teamID,
		Cursor:    cursor,
		Direction: dir,
	}
	s.Pending = &r
	return s, r
}

func (s State) waitsFor(r Request) bool {
	return s.Pending != nil && *s.Pending == r && r.TeamID == s.TeamID
}

// interactive is the phase to fall back to after a failed remote call.
func (s State) interactive() Phase {
	switch {
	case s.Selected != nil:
		return PhaseSelecting
	case len(s.Videos) > 0:
		return PhaseListing
	case s.Loaded:
		return PhaseEmpty
	}
	return PhaseFailed
}

func (s State) findVideo(id string) (youtube.Video, bool) {
	for _, v := range s.Videos {
		if v.ExternalID == id {
			return v, true
		}
	}
	return youtube.Video{}, false
}
