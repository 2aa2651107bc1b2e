package mawaqit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logx "adhanclock/pkg/logx"
)

type fakeDirectory struct {
	logins atomic.Int32
}

func (f *fakeDirectory) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/2.0/me", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		u, p, ok := r.BasicAuth()
		if !ok || u != "user" || p != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"bad credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"apiAccessToken":"tok-1"}`))
	})
	mux.HandleFunc("/2.0/mosque/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-1", r.Header.Get("Api-Access-Token"))
		q := r.URL.Query()
		switch {
		case q.Get("word") != "":
			_, _ = w.Write([]byte(`[{"uuid":"u-1","name":"Grande Mosquee","localisation":"Paris"}]`))
		case q.Get("lat") != "" && q.Get("lon") != "":
			_, _ = w.Write([]byte(`[{"uuid":"u-2","name":"Near"},{"uuid":"u-3"}]`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/3.0/mosque/u-1/times", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"calendar":[{"1":["05:40","07:01","12:24","15:27","17:48","19:18"]}],"name":"Grande Mosquée"}`))
	})
	return mux
}

func newTestClient(t *testing.T, user, pass string) (*Client, *fakeDirectory) {
	t.Helper()
	fd := &fakeDirectory{}
	srv := httptest.NewServer(fd.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL + "/", Username: user, Password: pass, RatePerSec: 100}, logx.Nop()), fd
}

func TestClientSearchAndNearby(t *testing.T) {
	c, fd := newTestClient(t, "user", "secret")
	ctx := context.Background()

	ms, err := c.Search(ctx, "grande")
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "u-1", ms[0].UUID)
	assert.Equal(t, "Paris", ms[0].Localisation)

	ms, err = c.Nearby(ctx, 48.85, 2.35)
	require.NoError(t, err)
	assert.Len(t, ms, 2)
	assert.Equal(t, int32(1), fd.logins.Load(), "token is reused")
}

func TestClientPrayerTimes(t *testing.T) {
	c, _ := newTestClient(t, "user", "secret")
	raw, err := c.PrayerTimes(context.Background(), "u-1")
	require.NoError(t, err)

	doc, err := ParseDocument(raw)
	require.NoError(t, err)
	require.Len(t, doc.Calendar, 1)

	pretty, err := IndentDocument(raw)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  \"calendar\"")
	assert.Contains(t, string(pretty), "Mosquée")
}

func TestClientLoginFailure(t *testing.T) {
	c, _ := newTestClient(t, "user", "wrong")
	_, err := c.Search(context.Background(), "x")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Contains(t, se.Error(), "bad credentials")
}

func TestClientRequiresCredentials(t *testing.T) {
	c, _ := newTestClient(t, "", "")
	_, err := c.Nearby(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestClientUnknownMosque(t *testing.T) {
	c, _ := newTestClient(t, "user", "secret")
	_, err := c.PrayerTimes(context.Background(), "nope")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
}
