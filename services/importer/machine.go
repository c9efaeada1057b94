package importer

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/videoteca/cloud-import/services/common"
	"github.com/videoteca/cloud-import/services/youtube"
)

// Transition applies ev to s and returns the next state together with the
// remote calls that have to be performed. It has no side effects.
func Transition(s State, ev Event) (State, []Command) {
	switch e := ev.(type) {
	case TeamSelected:
		return selectTeam(s, e.TeamID)
	case CategorySelected:
		s.CategoryID = e.CategoryID
		s.Notice = nil
		return s, nil
	case PlayerSelected:
		s.PlayerID = e.PlayerID
		s.Notice = nil
		return s, nil
	case ContentTypeSelected:
		s.ContentType = e.ContentType
		s.Notice = nil
		return s, nil
	case ChannelResolved:
		return channelResolved(s, e)
	case Reload:
		return reload(s)
	case NextPage:
		return paginate(s, s.NextPageToken, DirectionNext)
	case PreviousPage:
		return paginate(s, s.PrevPageToken, DirectionPrev)
	case VideosLoaded:
		return videosLoaded(s, e)
	case QueryChanged:
		s.Query = e.Query
		return s, nil
	case VideoSelected:
		return selectVideo(s, e.ExternalID)
	case DescriptionEdited:
		if s.Selected != nil {
			s.Description = e.Description
		}
		return s, nil
	case AssignConfirmed:
		return confirm(s)
	case DuplicateChecked:
		return duplicateChecked(s, e)
	case AssignmentInserted:
		return assignmentInserted(s, e)
	}
	return s, nil
}

func selectTeam(s State, teamID string) (State, []Command) {
	s.TeamID = teamID
	s.ChannelID = ""
	s.Videos = nil
	s.Loaded = false
	s.NextPageToken = ""
	s.PrevPageToken = ""
	s.Selected = nil
	s.Description = ""
	s.Notice = nil
	if teamID == "" {
		s.Phase = PhaseIdle
		s.Pending = nil
		return s, nil
	}
	s.Phase = PhaseVerifyingChannel
	s, r := s.issue(teamID, "", DirectionFresh)
	return s, []Command{ResolveChannel{Request: r}}
}

func channelResolved(s State, e ChannelResolved) (State, []Command) {
	if !s.waitsFor(e.Request) {
		return s, nil
	}
	s.Pending = nil
	if e.Err != nil {
		s.Notice = errorNotice(e.Err)
		if errors.Is(e.Err, common.ErrNotLinked) {
			s.Phase = PhaseNoChannel
		} else {
			s.Phase = PhaseFailed
		}
		return s, nil
	}
	s.ChannelID = e.ChannelID
	return load(s, "", DirectionFresh)
}

func load(s State, cursor string, dir Direction) (State, []Command) {
	s.Phase = PhaseLoadingVideos
	s.Notice = nil
	s, r := s.issue(s.TeamID, cursor, dir)
	return s, []Command{ListVideos{Request: r, PageSize: s.PageSize}}
}

func reload(s State) (State, []Command) {
	switch s.Phase {
	case PhaseIdle, PhaseNoChannel, PhaseVerifyingChannel, PhaseAssigning:
		return s, nil
	}
	if s.ChannelID == "" {
		return selectTeam(s, s.TeamID)
	}
	return load(s, "", DirectionFresh)
}

func paginate(s State, cursor string, dir Direction) (State, []Command) {
	if cursor == "" || s.Pending != nil {
		return s, nil
	}
	switch s.Phase {
	case PhaseListing, PhaseSelecting, PhaseEmpty, PhaseDone:
		return load(s, cursor, dir)
	}
	return s, nil
}

func videosLoaded(s State, e VideosLoaded) (State, []Command) {
	if !s.waitsFor(e.Request) {
		return s, nil
	}
	s.Pending = nil
	if e.Err != nil {
		s.Notice = errorNotice(e.Err)
		s.Phase = s.interactive()
		return s, nil
	}
	var page youtube.VideoPage
	if e.Page != nil {
		page = *e.Page
	}
	switch e.Request.Direction {
	case DirectionNext:
		videos := make([]youtube.Video, 0, len(s.Videos)+len(page.Videos))
		videos = append(videos, s.Videos...)
		s.Videos = append(videos, page.Videos...)
	default:
		s.Videos = append([]youtube.Video(nil), page.Videos...)
	}
	if e.Request.Direction == DirectionFresh {
		s.Selected = nil
		s.Description = ""
	}
	s.NextPageToken = page.NextPageToken
	s.PrevPageToken = page.PrevPageToken
	s.Loaded = true
	s.Phase = s.interactive()
	return s, nil
}

func selectVideo(s State, id string) (State, []Command) {
	switch s.Phase {
	case PhaseListing, PhaseSelecting, PhaseDone:
	default:
		return s, nil
	}
	v, ok := s.findVideo(id)
	if !ok {
		s.Notice = errorNotice(errors.Wrapf(common.ErrValidation, "video %v is not listed", id))
		return s, nil
	}
	s.Selected = &v
	s.Description = v.Description
	if strings.TrimSpace(s.Description) == "" {
		s.Description = v.Title
	}
	s.Phase = PhaseSelecting
	s.Notice = nil
	return s, nil
}

// validate checks the confirmation preconditions in order. None of them
// needs a remote call.
func validate(s State) error {
	if s.Selected == nil {
		return common.ErrNoSelection
	}
	if s.TeamID == "" {
		return common.ErrNoTeam
	}
	if !s.ContentType.Valid() {
		return errors.Wrapf(common.ErrValidation, "unknown content type %q", s.ContentType)
	}
	if s.ContentType.RequiresPlayer() {
		if s.PlayerID == "" {
			return errors.Wrap(common.ErrMissingTarget, "player is required")
		}
	} else if s.CategoryID == "" {
		return errors.Wrap(common.ErrMissingTarget, "category is required")
	}
	return nil
}

func makeAssignment(s State) Assignment {
	a := Assignment{
		ContentType:    s.ContentType,
		TeamID:         s.TeamID,
		Description:    strings.TrimSpace(s.Description),
		VideoURL:       s.Selected.URL,
		YoutubeVideoID: s.Selected.ExternalID,
		IsYoutube:      true,
	}
	if s.ContentType.RequiresPlayer() {
		a.PlayerID = s.PlayerID
	} else {
		a.CategoryID = s.CategoryID
	}
	return a
}

// confirm starts the assignment. It waits for any request in flight, so a
// page being loaded is never dropped.
func confirm(s State) (State, []Command) {
	if s.Phase == PhaseAssigning || s.Pending != nil {
		return s, nil
	}
	if err := validate(s); err != nil {
		s.Notice = errorNotice(err)
		return s, nil
	}
	if s.Phase != PhaseSelecting {
		return s, nil
	}
	s.Phase = PhaseAssigning
	s.Notice = nil
	a := makeAssignment(s)
	s, r := s.issue(s.TeamID, "", "")
	return s, []Command{CheckDuplicate{Request: r, Assignment: a}}
}

func duplicateChecked(s State, e DuplicateChecked) (State, []Command) {
	if !s.waitsFor(e.Request) {
		return s, nil
	}
	s.Pending = nil
	if e.Err != nil {
		s.Notice = errorNotice(e.Err)
		s.Phase = PhaseSelecting
		return s, nil
	}
	if e.Exists {
		s.Notice = errorNotice(common.ErrDuplicateAssignment)
		s.Phase = PhaseSelecting
		return s, nil
	}
	s, r := s.issue(s.TeamID, "", "")
	return s, []Command{InsertAssignment{Request: r, Assignment: e.Assignment}}
}

func assignmentInserted(s State, e AssignmentInserted) (State, []Command) {
	if !s.waitsFor(e.Request) {
		return s, nil
	}
	s.Pending = nil
	if e.Err != nil {
		var pe *common.PersistenceError
		if !errors.As(e.Err, &pe) {
			e.Err = common.NewPersistenceError(e.Err)
		}
		s.Notice = errorNotice(e.Err)
		s.Phase = PhaseSelecting
		return s, nil
	}
	s.Phase = PhaseDone
	s.Selected = nil
	s.Description = ""
	s.Notice = &Notice{
		Code:    "assigned",
		Message: "video assigned",
	}
	return s, []Command{Completed{Assignment: e.Assignment}}
}
