package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videoteca/cloud-import/models"
	"github.com/videoteca/cloud-import/services/common"
	"github.com/videoteca/cloud-import/services/importer"
	"github.com/videoteca/cloud-import/services/youtube"
)

// --- Mock implementations ---

type memKV struct {
	mu    sync.Mutex
	data  map[string]string
	ttls  map[string]time.Duration
	err   error
	swaps int
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memKV) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(value.([]byte))
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

// Eval runs the compare-and-swap script against the map.
func (m *memKV) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewCmdResult(nil, m.err)
	}
	cur, ok := m.data[keys[0]]
	if !ok || cur != string(args[0].([]byte)) {
		return redis.NewCmdResult(int64(0), nil)
	}
	m.swaps++
	m.data[keys[0]] = string(args[1].([]byte))
	m.ttls[keys[0]] = time.Duration(args[2].(int64)) * time.Millisecond
	return redis.NewCmdResult(int64(1), nil)
}

func (m *memKV) raw(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

func (m *memKV) put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

type mockChannels struct{}

func (mockChannels) ResolveChannel(_ context.Context, teamID string) (string, error) {
	switch teamID {
	case "team-1":
		return "UC-1", nil
	case "team-2":
		return "UC-2", nil
	}
	return "", common.ErrNotLinked
}

type mockLister struct {
	mu        sync.Mutex
	pageSizes []int64
	block     map[string]chan struct{}
	started   chan string
}

func (m *mockLister) ListVideos(_ context.Context, teamID string, pageSize int64, pageToken string) (*youtube.VideoPage, error) {
	m.mu.Lock()
	m.pageSizes = append(m.pageSizes, pageSize)
	wait := m.block[teamID+"/"+pageToken]
	m.mu.Unlock()
	if wait != nil {
		m.started <- teamID + "/" + pageToken
		<-wait
	}
	if teamID == "team-2" {
		return &youtube.VideoPage{Videos: []youtube.Video{
			{ExternalID: "z", Title: "Entrenamiento juvenil", URL: youtube.WatchURL("z")},
		}}, nil
	}
	if pageToken == "p1" {
		return &youtube.VideoPage{Videos: []youtube.Video{
			{ExternalID: "c", Title: "Partido de copa", URL: youtube.WatchURL("c")},
		}}, nil
	}
	return &youtube.VideoPage{
		Videos: []youtube.Video{
			{ExternalID: "a", Title: "Entrenamiento martes", URL: youtube.WatchURL("a")},
			{ExternalID: "b", Title: "Partido liga", URL: youtube.WatchURL("b")},
		},
		NextPageToken: "p1",
	}, nil
}

type mockAssignments struct {
	created []importer.Assignment
}

func (m *mockAssignments) Exists(_ context.Context, _ importer.Assignment) (bool, error) {
	return false, nil
}

func (m *mockAssignments) Create(_ context.Context, a importer.Assignment) error {
	m.created = append(m.created, a)
	return nil
}

// --- Test helpers ---

func newTestManager() (*Manager, *memKV, *mockLister, *mockAssignments) {
	kv := newMemKV()
	lister := &mockLister{started: make(chan string, 4)}
	assignments := &mockAssignments{}
	m := New(&Store{cl: kv, ttl: time.Hour}, mockChannels{}, lister, assignments)
	return m, kv, lister, assignments
}

// --- Tests ---

func TestStore(t *testing.T) {
	kv := newMemKV()
	s := &Store{cl: kv, ttl: 30 * time.Minute}
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, common.ErrSessionNotFound))

	st := importer.NewState(models.ContentAnalysis, 10)
	st.TeamID = "team-1"
	st.Selected = &youtube.Video{ExternalID: "a", PublishedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	require.NoError(t, s.Set(ctx, "s1", st))
	assert.Equal(t, 30*time.Minute, kv.ttls["import:session:s1"])

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, st, *got)

	kv.err = errors.New("connection refused")
	_, err = s.Get(ctx, "s1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrSessionNotFound))
}

func TestManager_Create(t *testing.T) {
	t.Run("verifies and loads the first page", func(t *testing.T) {
		m, kv, lister, _ := newTestManager()

		v, err := m.Create(context.Background(), CreateRequest{TeamID: "team-1", CategoryID: "cat-1"})
		require.NoError(t, err)

		assert.NotEmpty(t, v.ID)
		assert.Equal(t, importer.PhaseListing, v.Phase)
		assert.Equal(t, models.ContentTraining, v.ContentType)
		assert.Equal(t, "cat-1", v.CategoryID)
		assert.Len(t, v.Visible, 2)
		assert.False(t, v.Loading)
		assert.Equal(t, []int64{youtube.DefaultPageSize}, lister.pageSizes)
		assert.Contains(t, kv.data, "import:session:"+v.ID)
	})

	t.Run("unlinked team is saved as no channel", func(t *testing.T) {
		m, _, lister, _ := newTestManager()

		v, err := m.Create(context.Background(), CreateRequest{TeamID: "team-9"})
		require.NoError(t, err)
		assert.Equal(t, importer.PhaseNoChannel, v.Phase)
		assert.Empty(t, lister.pageSizes)
	})

	t.Run("validation", func(t *testing.T) {
		m, kv, _, _ := newTestManager()

		_, err := m.Create(context.Background(), CreateRequest{})
		assert.True(t, errors.Is(err, common.ErrValidation))

		_, err = m.Create(context.Background(), CreateRequest{TeamID: "team-1", ContentType: "otro"})
		assert.True(t, errors.Is(err, common.ErrValidation))
		assert.Empty(t, kv.data)
	})
}

func TestManager_Dispatch(t *testing.T) {
	m, _, _, assignments := newTestManager()
	ctx := context.Background()
	v, err := m.Create(ctx, CreateRequest{TeamID: "team-1", ContentType: "partido", CategoryID: "cat-1", PageSize: 2})
	require.NoError(t, err)
	id := v.ID

	v, err = m.Dispatch(ctx, id, EventRequest{Type: "next_page"})
	require.NoError(t, err)
	assert.Len(t, v.Videos, 3)

	v, err = m.Dispatch(ctx, id, EventRequest{Type: "search", Query: "PARTIDO"})
	require.NoError(t, err)
	assert.Len(t, v.Visible, 2)
	assert.Len(t, v.Videos, 3)

	_, err = m.Dispatch(ctx, id, EventRequest{Type: "select_video", VideoID: "c"})
	require.NoError(t, err)
	_, err = m.Dispatch(ctx, id, EventRequest{Type: "edit_description", Description: "semifinal"})
	require.NoError(t, err)
	v, err = m.Dispatch(ctx, id, EventRequest{Type: "confirm"})
	require.NoError(t, err)

	assert.Equal(t, importer.PhaseDone, v.Phase)
	require.Len(t, assignments.created, 1)
	assert.Equal(t, "semifinal", assignments.created[0].Description)
	assert.Equal(t, models.ContentMatch, assignments.created[0].ContentType)

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, importer.PhaseDone, got.Phase)
	assert.Equal(t, "assigned", got.Notice.Code)

	_, err = m.Dispatch(ctx, "unknown", EventRequest{Type: "reload"})
	assert.True(t, errors.Is(err, common.ErrSessionNotFound))

	_, err = m.Dispatch(ctx, id, EventRequest{Type: "dance"})
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestStore_Update(t *testing.T) {
	kv := newMemKV()
	s := &Store{cl: kv, ttl: 30 * time.Minute}
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "s1", importer.NewState(models.ContentTraining, 2)))

	t.Run("unchanged state is not written", func(t *testing.T) {
		_, err := s.Update(ctx, "s1", func(st importer.State) (importer.State, bool) {
			return st, false
		})
		require.NoError(t, err)
		assert.Equal(t, 0, kv.swaps)
	})

	t.Run("conflicting write makes fn run on the newer state", func(t *testing.T) {
		newer := importer.NewState(models.ContentTraining, 2)
		newer.TeamID = "team-2"
		b, err := json.Marshal(newer)
		require.NoError(t, err)

		var seen []string
		st, err := s.Update(ctx, "s1", func(st importer.State) (importer.State, bool) {
			seen = append(seen, st.TeamID)
			if len(seen) == 1 {
				kv.put(key("s1"), string(b))
			}
			st.Query = "copa"
			return st, true
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"", "team-2"}, seen)
		assert.Equal(t, "team-2", st.TeamID)
		assert.Equal(t, "copa", st.Query)
		assert.Equal(t, 30*time.Minute, kv.ttls[key("s1")])

		got, err := s.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, st, *got)
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := s.Update(ctx, "missing", func(st importer.State) (importer.State, bool) {
			return st, true
		})
		assert.True(t, errors.Is(err, common.ErrSessionNotFound))
	})
}

func TestManager_SlowPageDoesNotOverwriteTeamChange(t *testing.T) {
	m, kv, lister, _ := newTestManager()
	ctx := context.Background()
	v, err := m.Create(ctx, CreateRequest{TeamID: "team-1", PageSize: 2})
	require.NoError(t, err)
	id := v.ID

	release := make(chan struct{})
	lister.mu.Lock()
	lister.block = map[string]chan struct{}{"team-1/p1": release}
	lister.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := m.Dispatch(ctx, id, EventRequest{Type: "next_page"})
		done <- err
	}()
	select {
	case <-lister.started:
	case <-time.After(5 * time.Second):
		t.Fatal("next page never started")
	}

	v, err = m.Dispatch(ctx, id, EventRequest{Type: "select_team", TeamID: "team-2"})
	require.NoError(t, err)
	assert.Equal(t, "team-2", v.TeamID)

	close(release)
	select {
	case err = <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("next page never returned")
	}

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "team-2", got.TeamID)
	assert.Equal(t, importer.PhaseListing, got.Phase)
	assert.False(t, got.Loading)
	ids := []string{}
	for _, vid := range got.Videos {
		ids = append(ids, vid.ExternalID)
	}
	assert.Equal(t, []string{"z"}, ids)
	assert.NotContains(t, kv.raw(key(id)), `"c"`)
}

func TestEventRequest(t *testing.T) {
	tests := []struct {
		req  EventRequest
		want importer.Event
	}{
		{EventRequest{Type: "select_team", TeamID: "t"}, importer.TeamSelected{TeamID: "t"}},
		{EventRequest{Type: "select_category", CategoryID: "c"}, importer.CategorySelected{CategoryID: "c"}},
		{EventRequest{Type: "select_player", PlayerID: "p"}, importer.PlayerSelected{PlayerID: "p"}},
		{EventRequest{Type: "select_content_type", ContentType: "analisis"}, importer.ContentTypeSelected{ContentType: models.ContentAnalysis}},
		{EventRequest{Type: "search", Query: "q"}, importer.QueryChanged{Query: "q"}},
		{EventRequest{Type: "select_video", VideoID: "v"}, importer.VideoSelected{ExternalID: "v"}},
		{EventRequest{Type: "edit_description", Description: "d"}, importer.DescriptionEdited{Description: "d"}},
		{EventRequest{Type: "next_page"}, importer.NextPage{}},
		{EventRequest{Type: "previous_page"}, importer.PreviousPage{}},
		{EventRequest{Type: "reload"}, importer.Reload{}},
		{EventRequest{Type: "confirm"}, importer.AssignConfirmed{}},
	}
	for _, tt := range tests {
		t.Run(tt.req.Type, func(t *testing.T) {
			ev, err := tt.req.Event()
			require.NoError(t, err)
			assert.Equal(t, tt.want, ev)
		})
	}

	for _, bad := range []EventRequest{{}, {Type: "select_video"}, {Type: "select_content_type", ContentType: "x"}} {
		_, err := bad.Event()
		assert.True(t, errors.Is(err, common.ErrValidation), bad.Type)
	}
}
