package importer

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/videoteca/cloud-import/services/common"
	"github.com/videoteca/cloud-import/services/youtube"
)

type ChannelResolver interface {
	ResolveChannel(ctx context.Context, teamID string) (string, error)
}

type VideoLister interface {
	ListVideos(ctx context.Context, teamID string, pageSize int64, pageToken string) (*youtube.VideoPage, error)
}

type AssignmentStore interface {
	Exists(ctx context.Context, a Assignment) (bool, error)
	Create(ctx context.Context, a Assignment) error
}

// StateStore holds the state of one session. Update applies fn to the
// latest state and keeps the result when fn reports a change.
type StateStore interface {
	Load(ctx context.Context) (State, error)
	Update(ctx context.Context, fn func(State) (State, bool)) (State, error)
}

// MemoryState is a StateStore for a session that lives in one process.
type MemoryState struct {
	mu    sync.Mutex
	state State
}

func NewMemoryState(st State) *MemoryState {
	return &MemoryState{state: st}
}

func (m *MemoryState) Load(_ context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *MemoryState) Update(_ context.Context, fn func(State) (State, bool)) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if next, changed := fn(m.state); changed {
		m.state = next
	}
	return m.state, nil
}

// Session drives one import screen. Remote calls run outside of any state
// update, so events may arrive while a call is in flight. Every result is
// applied to the latest state, never to the one the call started from.
type Session struct {
	states     StateStore
	channels   ChannelResolver
	lister     VideoLister
	store      AssignmentStore
	onComplete func(Assignment)
}

func NewSession(states StateStore, channels ChannelResolver, lister VideoLister, store AssignmentStore) *Session {
	return &Session{
		states:   states,
		channels: channels,
		lister:   lister,
		store:    store,
	}
}

// OnComplete registers a callback fired after an assignment is written.
func (s *Session) OnComplete(fn func(Assignment)) *Session {
	s.onComplete = fn
	return s
}

func (s *Session) State(ctx context.Context) (State, error) {
	return s.states.Load(ctx)
}

// Dispatch applies ev, performs the resulting commands one after another and
// returns the state reached at the end.
func (s *Session) Dispatch(ctx context.Context, ev Event) (State, error) {
	var cmds []Command
	st, err := s.states.Update(ctx, func(cur State) (State, bool) {
		cmds = nil
		if stale(cur, ev) {
			return cur, false
		}
		var next State
		next, cmds = Transition(cur, ev)
		return next, true
	})
	if err != nil {
		return State{}, err
	}
	for _, cmd := range cmds {
		res := s.run(ctx, cmd)
		if res == nil {
			continue
		}
		if st, err = s.Dispatch(ctx, res); err != nil {
			return State{}, err
		}
	}
	return st, nil
}

// stale reports whether ev answers a request s no longer waits for.
func stale(s State, ev Event) bool {
	switch e := ev.(type) {
	case ChannelResolved:
		return !s.waitsFor(e.Request)
	case VideosLoaded:
		return !s.waitsFor(e.Request)
	case DuplicateChecked:
		return !s.waitsFor(e.Request)
	case AssignmentInserted:
		return !s.waitsFor(e.Request)
	}
	return false
}

func (s *Session) run(ctx context.Context, cmd Command) Event {
	switch c := cmd.(type) {
	case ResolveChannel:
		id, err := s.channels.ResolveChannel(ctx, c.Request.TeamID)
		logFailure(err, c.Request, "failed to resolve channel")
		return ChannelResolved{Request: c.Request, ChannelID: id, Err: err}
	case ListVideos:
		page, err := s.lister.ListVideos(ctx, c.Request.TeamID, c.PageSize, c.Request.Cursor)
		logFailure(err, c.Request, "failed to list videos")
		return VideosLoaded{Request: c.Request, Page: page, Err: err}
	case CheckDuplicate:
		exists, err := s.store.Exists(ctx, c.Assignment)
		logFailure(err, c.Request, "failed to check assignment")
		return DuplicateChecked{Request: c.Request, Assignment: c.Assignment, Exists: exists, Err: err}
	case InsertAssignment:
		err := s.store.Create(ctx, c.Assignment)
		if err != nil {
			err = common.NewPersistenceError(err)
		}
		logFailure(err, c.Request, "failed to insert assignment")
		return AssignmentInserted{Request: c.Request, Assignment: c.Assignment, Err: err}
	case Completed:
		log.WithFields(log.Fields{
			"team_id":      c.Assignment.TeamID,
			"content_type": c.Assignment.ContentType,
			"video_id":     c.Assignment.YoutubeVideoID,
		}).Info("video assigned")
		if s.onComplete != nil {
			s.onComplete(c.Assignment)
		}
	}
	return nil
}

func logFailure(err error, r Request, msg string) {
	if err == nil {
		return
	}
	log.WithError(err).WithFields(log.Fields{
		"team_id": r.TeamID,
		"seq":     r.Seq,
	}).Warn(msg)
}
