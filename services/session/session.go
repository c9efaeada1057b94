package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/videoteca/cloud-import/models"
	"github.com/videoteca/cloud-import/services/common"
	"github.com/videoteca/cloud-import/services/importer"
	"github.com/videoteca/cloud-import/services/youtube"
)

type states interface {
	Get(ctx context.Context, id string) (*importer.State, error)
	Set(ctx context.Context, id string, st importer.State) error
	Update(ctx context.Context, id string, fn func(importer.State) (importer.State, bool)) (importer.State, error)
}

type CreateRequest struct {
	TeamID      string `json:"team_id"`
	ContentType string `json:"content_type"`
	CategoryID  string `json:"category_id,omitempty"`
	PlayerID    string `json:"player_id,omitempty"`
	PageSize    int64  `json:"page_size,omitempty"`
}

// View is a session state as shown to the client, with the current query
// applied to the listing.
type View struct {
	ID string `json:"id"`
	importer.State
	Visible []youtube.Video `json:"visible"`
	Loading bool            `json:"loading"`
}

func makeView(id string, st importer.State) *View {
	return &View{
		ID:      id,
		State:   st,
		Visible: st.Visible(),
		Loading: st.Loading(),
	}
}

// Manager runs events through the import workflow of a stored session.
// Each step is applied to the latest stored state, so a slow remote result
// never overwrites a newer user action.
type Manager struct {
	states      states
	channels    importer.ChannelResolver
	lister      importer.VideoLister
	assignments importer.AssignmentStore
}

func New(st *Store, channels importer.ChannelResolver, lister importer.VideoLister, assignments importer.AssignmentStore) *Manager {
	return &Manager{
		states:      st,
		channels:    channels,
		lister:      lister,
		assignments: assignments,
	}
}

func (s *Manager) run(ctx context.Context, id string, ev importer.Event) (*View, error) {
	next, err := importer.NewSession(&bound{states: s.states, id: id}, s.channels, s.lister, s.assignments).
		OnComplete(func(a importer.Assignment) {
			log.WithFields(log.Fields{
				"session_id": id,
				"team_id":    a.TeamID,
			}).Info("import session assignment completed")
		}).
		Dispatch(ctx, ev)
	if err != nil {
		return nil, err
	}
	return makeView(id, next), nil
}

func (s *Manager) Create(ctx context.Context, r CreateRequest) (*View, error) {
	if r.TeamID == "" {
		return nil, common.Validation("team_id")
	}
	ct := models.ContentType(r.ContentType)
	if ct == "" {
		ct = models.ContentTraining
	}
	if !ct.Valid() {
		return nil, errors.Wrapf(common.ErrValidation, "unknown content type %q", r.ContentType)
	}
	pageSize := r.PageSize
	if pageSize <= 0 {
		pageSize = youtube.DefaultPageSize
	}
	st := importer.NewState(ct, pageSize)
	st.CategoryID = r.CategoryID
	st.PlayerID = r.PlayerID
	id := uuid.NewString()
	log.WithFields(log.Fields{
		"session_id": id,
		"team_id":    r.TeamID,
	}).Info("import session created")
	if err := s.states.Set(ctx, id, st); err != nil {
		return nil, err
	}
	return s.run(ctx, id, importer.TeamSelected{TeamID: r.TeamID})
}

func (s *Manager) Get(ctx context.Context, id string) (*View, error) {
	st, err := s.states.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return makeView(id, *st), nil
}

func (s *Manager) Dispatch(ctx context.Context, id string, r EventRequest) (*View, error) {
	ev, err := r.Event()
	if err != nil {
		return nil, err
	}
	return s.run(ctx, id, ev)
}
