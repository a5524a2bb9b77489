package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tapsdk"
	fake "github.com/roach88/tapsdk/internal/testutil"
	"github.com/roach88/tapsdk/sys"
)

func TestNewCollector_DefaultNamespace(t *testing.T) {
	c := NewCollector("")
	c.Polled(0)

	families, err := c.Registry().Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "tapsdk_poll_calls_total")
	assert.Contains(t, names, "tapsdk_poll_batch_size")
}

func TestCollector_Events(t *testing.T) {
	c := NewCollector("test")

	c.EventDispatched(sys.EventCloudSaveList)
	c.EventDispatched(sys.EventCloudSaveList)
	c.EventDispatched(sys.EventAuthorizeFinished)
	c.EventDropped(sys.EventSystemStateChanged)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.dispatched.WithLabelValues("CloudSaveList")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dispatched.WithLabelValues("AuthorizeFinished")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dropped.WithLabelValues("SystemStateChanged")))
}

func TestCollector_Requests(t *testing.T) {
	c := NewCollector("test")

	c.Requested("authorize", nil)
	c.Requested("cloudsave_list", &tapsdk.Error{Code: tapsdk.ErrCodeCloudSaveRejected})
	c.Requested("cloudsave_list", errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("authorize", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("cloudsave_list", "CLOUD_SAVE_REJECTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("cloudsave_list", "error")))
}

func TestCollector_ObservesSDK(t *testing.T) {
	c := NewCollector("test")
	lib := fake.NewFakeLibrary()
	s := tapsdk.New(lib, tapsdk.WithObserver(c))

	h, err := s.Init("pub")
	require.NoError(t, err)

	lib.Emit(sys.EventSystemStateChanged, fake.SystemStatePayload(sys.SystemStatePlatformOnline))
	lib.Emit(sys.EventGamePlayableStatusChanged, fake.GamePlayablePayload(true))
	require.Len(t, h.Poll(), 2)
	require.NoError(t, s.Authorize(tapsdk.DefaultScopes))

	require.NoError(t, h.Close())
	assert.Error(t, s.Authorize(tapsdk.DefaultScopes))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.dispatched.WithLabelValues("SystemStateChanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dispatched.WithLabelValues("GamePlayableStatusChanged")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.polls))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("authorize", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("authorize", "NOT_INITIALIZED")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("test")
	c.EventDispatched(sys.EventCloudSaveDelete)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `test_events_dispatched_total{event="CloudSaveDelete"} 1`)
}
