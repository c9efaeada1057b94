package token_broker

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/videoteca/cloud-import/models"
	"github.com/videoteca/cloud-import/services/common"
	"golang.org/x/oauth2"
)

// --- Mock implementations ---

type tokenUpdate struct {
	id           uuid.UUID
	token        string
	refreshToken string
	expiresAt    time.Time
}

type mockStore struct {
	link      *models.TeamChannel
	linkErr   error
	channel   *models.YoutubeChannel
	updateErr error
	updates   []tokenUpdate
}

func (m *mockStore) GetTeamChannel(_ context.Context, _ string) (*models.TeamChannel, error) {
	return m.link, m.linkErr
}

func (m *mockStore) GetYoutubeChannel(_ context.Context, _ uuid.UUID) (*models.YoutubeChannel, error) {
	return m.channel, nil
}

func (m *mockStore) UpdateYoutubeChannelToken(_ context.Context, id uuid.UUID, token string, refreshToken string, expiresAt time.Time) error {
	m.updates = append(m.updates, tokenUpdate{id: id, token: token, refreshToken: refreshToken, expiresAt: expiresAt})
	return m.updateErr
}

type tokenServer struct {
	*httptest.Server
	hits atomic.Int32
	form chan map[string]string
}

func newTokenServer(t *testing.T, status int, body string) *tokenServer {
	t.Helper()
	ts := &tokenServer{form: make(chan map[string]string, 10)}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		_ = r.ParseForm()
		ts.form <- map[string]string{
			"grant_type":    r.PostForm.Get("grant_type"),
			"refresh_token": r.PostForm.Get("refresh_token"),
			"client_id":     r.PostForm.Get("client_id"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// --- Test helpers ---

var testNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

func newTestBroker(st store, tokenURL string) *Broker {
	return &Broker{
		store:  st,
		config: makeConfig("client-id", "client-secret", tokenURL),
		cl:     http.DefaultClient,
		now:    func() time.Time { return testNow },
	}
}

func linkedStore(ch *models.YoutubeChannel) *mockStore {
	return &mockStore{
		link:    &models.TeamChannel{TeamID: "team-1", ChannelID: ch.ID},
		channel: ch,
	}
}

func makeChannel(accessToken *string, expiresAt *time.Time) *models.YoutubeChannel {
	return &models.YoutubeChannel{
		ID:             uuid.NewV4(),
		ChannelID:      "UCchannel",
		AccessToken:    accessToken,
		RefreshToken:   "refresh-1",
		TokenExpiresAt: expiresAt,
	}
}

// --- Tests ---

func TestGetAccessToken_EmptyTeam(t *testing.T) {
	b := newTestBroker(&mockStore{}, "http://127.0.0.1:1")

	_, err := b.GetAccessToken(context.Background(), "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestGetAccessToken_NotLinked(t *testing.T) {
	b := newTestBroker(&mockStore{}, "http://127.0.0.1:1")

	_, err := b.GetAccessToken(context.Background(), "team-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotLinked))
}

func TestGetAccessToken_StoreError(t *testing.T) {
	b := newTestBroker(&mockStore{linkErr: fmt.Errorf("connection refused")}, "http://127.0.0.1:1")

	_, err := b.GetAccessToken(context.Background(), "team-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, errors.Is(err, common.ErrNotLinked))
}

func TestGetAccessToken_CredentialNotFound(t *testing.T) {
	st := &mockStore{link: &models.TeamChannel{TeamID: "team-1", ChannelID: uuid.NewV4()}}
	b := newTestBroker(st, "http://127.0.0.1:1")

	_, err := b.GetAccessToken(context.Background(), "team-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrCredentialNotFound))
}

func TestGetAccessToken_FreshTokenIsReturnedUnchanged(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK, `{"access_token":"other"}`)
	st := linkedStore(makeChannel(ptr("stored-token"), ptr(testNow.Add(30*time.Minute))))
	b := newTestBroker(st, srv.URL)

	tok, err := b.GetAccessToken(context.Background(), "team-1")

	require.NoError(t, err)
	assert.Equal(t, "stored-token", tok.AccessToken)
	assert.Equal(t, int64(1800), tok.ExpiresIn)
	assert.Equal(t, int32(0), srv.hits.Load())
	assert.Empty(t, st.updates)
}

func TestGetAccessToken_ExpiredTokenIsRefreshedOnce(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK, `{"access_token":"new-token","token_type":"Bearer","expires_in":3599}`)
	ch := makeChannel(ptr("old-token"), ptr(testNow.Add(-10*time.Minute)))
	st := linkedStore(ch)
	b := newTestBroker(st, srv.URL)

	tok, err := b.GetAccessToken(context.Background(), "team-1")

	require.NoError(t, err)
	assert.Equal(t, "new-token", tok.AccessToken)
	assert.Equal(t, int64(3599), tok.ExpiresIn)
	assert.Equal(t, int32(1), srv.hits.Load())

	form := <-srv.form
	assert.Equal(t, "refresh_token", form["grant_type"])
	assert.Equal(t, "refresh-1", form["refresh_token"])
	assert.Equal(t, "client-id", form["client_id"])

	require.Len(t, st.updates, 1)
	assert.Equal(t, ch.ID, st.updates[0].id)
	assert.Equal(t, "new-token", st.updates[0].token)
	assert.Empty(t, st.updates[0].refreshToken, "unchanged refresh token is not rewritten")
	assert.Equal(t, testNow.Add(3599*time.Second), st.updates[0].expiresAt)
	assert.True(t, st.updates[0].expiresAt.After(*ch.TokenExpiresAt))
}

func TestGetAccessToken_NullExpiryIsRefreshed(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK, `{"access_token":"new-token","expires_in":600}`)
	st := linkedStore(makeChannel(ptr("old-token"), nil))
	b := newTestBroker(st, srv.URL)

	tok, err := b.GetAccessToken(context.Background(), "team-1")

	require.NoError(t, err)
	assert.Equal(t, "new-token", tok.AccessToken)
	assert.Equal(t, int32(1), srv.hits.Load())
	require.Len(t, st.updates, 1)
	assert.Equal(t, testNow.Add(10*time.Minute), st.updates[0].expiresAt)
}

func TestGetAccessToken_MissingExpiresInDefaultsToOneHour(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK, `{"access_token":"new-token"}`)
	st := linkedStore(makeChannel(nil, nil))
	b := newTestBroker(st, srv.URL)

	tok, err := b.GetAccessToken(context.Background(), "team-1")

	require.NoError(t, err)
	assert.Equal(t, int64(3600), tok.ExpiresIn)
	require.Len(t, st.updates, 1)
	assert.Equal(t, testNow.Add(time.Hour), st.updates[0].expiresAt)
}

func TestGetAccessToken_RefreshFailure(t *testing.T) {
	srv := newTokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`)
	st := linkedStore(makeChannel(ptr("old-token"), ptr(testNow.Add(-time.Second))))
	b := newTestBroker(st, srv.URL)

	_, err := b.GetAccessToken(context.Background(), "team-1")

	require.Error(t, err)
	var tre *common.TokenRefreshError
	require.True(t, errors.As(err, &tre))
	assert.Equal(t, http.StatusBadRequest, tre.Status)
	assert.Contains(t, tre.Payload, "invalid_grant")
	assert.Equal(t, int32(1), srv.hits.Load())
	assert.Empty(t, st.updates)
}

func TestGetAccessToken_PersistFailure(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK, `{"access_token":"new-token","expires_in":3600}`)
	st := linkedStore(makeChannel(nil, nil))
	st.updateErr = fmt.Errorf("read-only transaction")
	b := newTestBroker(st, srv.URL)

	_, err := b.GetAccessToken(context.Background(), "team-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store refreshed token")
	assert.Len(t, st.updates, 1)
}

func TestGetAccessToken_RotatedRefreshTokenIsStored(t *testing.T) {
	srv := newTokenServer(t, http.StatusOK, `{"access_token":"new-token","refresh_token":"refresh-2","expires_in":1200}`)
	st := linkedStore(makeChannel(ptr("old-token"), ptr(testNow.Add(-time.Minute))))
	b := newTestBroker(st, srv.URL)

	tok, err := b.GetAccessToken(context.Background(), "team-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1200), tok.ExpiresIn)
	require.Len(t, st.updates, 1)
	assert.Equal(t, "new-token", st.updates[0].token)
	assert.Equal(t, "refresh-2", st.updates[0].refreshToken)
	assert.Equal(t, testNow.Add(20*time.Minute), st.updates[0].expiresAt)
}

func TestGetExpiresIn(t *testing.T) {
	assert.Equal(t, time.Hour, getExpiresIn(&oauth2.Token{}))
	assert.Equal(t, time.Hour, getExpiresIn(&oauth2.Token{Expiry: time.Now().Add(-time.Minute)}))
	assert.Equal(t, 15*time.Minute, getExpiresIn(&oauth2.Token{Expiry: time.Now().Add(15 * time.Minute)}))
}
