package floodlight

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/projecteru2/labflow/configs"
	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/terrors"
)

const (
	devicesArray = `[
  {"mac": ["FA:16:3E:00:00:01"], "ipv4": ["10.0.0.1"], "attachmentPoint": [{"switchDPID": "00:00:00:00:00:00:00:01", "port": 1}]},
  {"mac": ["fa:16:3e:00:00:03"], "ipv4": ["10.0.0.3"], "attachmentPoint": [{"switchDPID": "00:00:00:00:00:00:00:02", "port": "4"}]},
  {"mac": ["fa:16:3e:00:00:09"], "ipv4": [], "attachmentPoint": []}
]`
	devicesWrapped = `{"devices": [
  {"mac": ["fa:16:3e:00:00:01"], "ipv4": ["10.0.0.1"], "attachmentPoint": [{"switch": "00:00:00:00:00:00:00:01", "port": "1"}]}
]}`
	routeFlat = `[
  {"switch": "S1", "port": {"portNumber": 1}},
  {"switch": "S1", "port": {"portNumber": 2}},
  {"switch": "S2", "port": {"portNumber": "3"}},
  {"switch": "S2", "port": {"portNumber": 4}}
]`
	routeLink = `[
  {"src-switch": "S1", "src-port": 1, "dst-switch": "S1", "dst-port": 2},
  {"src-switch": "S2", "src-port": 3, "dst-switch": "S2", "dst-port": 4}
]`
)

func newDriver(t *testing.T, h http.Handler, format string, ttl time.Duration) *Driver {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := configs.New().Controller
	cfg.Addr = srv.URL + "/"
	cfg.RouteFormat = format
	cfg.Retries = 2
	cfg.DeviceCacheTTL = configs.Duration(ttl)

	d, err := New(&cfg)
	require.NoError(t, err)
	return d
}

func serveDevices(body string, hits *int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		_, _ = io.WriteString(w, body)
	}
}

func TestLocate(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc(devicePath, serveDevices(devicesArray, &hits))
	d := newDriver(t, mux, FormatAuto, time.Minute)
	ctx := context.Background()

	ap, err := d.Locate(ctx, "fa:16:3e:00:00:01")
	require.NoError(t, err)
	require.Equal(t, types.AttachmentPoint{SwitchID: "00:00:00:00:00:00:00:01", Port: 1}, ap)

	mac, err := d.MACOf(ctx, "10.0.0.3")
	require.NoError(t, err)
	require.Equal(t, "fa:16:3e:00:00:03", mac)

	ap, err = d.Locate(ctx, mac)
	require.NoError(t, err)
	require.Equal(t, 4, ap.Port)

	_, err = d.Locate(ctx, "fa:16:3e:00:00:09")
	require.True(t, terrors.IsResolutionErr(err))
	_, err = d.Locate(ctx, "fa:16:3e:00:00:99")
	require.True(t, terrors.IsResolutionErr(err))
	_, err = d.MACOf(ctx, "10.9.9.9")
	require.True(t, terrors.IsResolutionErr(err))

	// every lookup above shared one listing
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestLocateWrappedNoCache(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc(devicePath, serveDevices(devicesWrapped, &hits))
	d := newDriver(t, mux, FormatAuto, 0)

	for i := 0; i < 2; i++ {
		ap, err := d.Locate(context.Background(), "FA:16:3E:00:00:01")
		require.NoError(t, err)
		require.Equal(t, "00:00:00:00:00:00:00:01", ap.SwitchID)
	}
	require.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestRouteShapes(t *testing.T) {
	want := []types.Hop{{SwitchID: "S1", Port: 1}, {SwitchID: "S1", Port: 2}, {SwitchID: "S2", Port: 3}, {SwitchID: "S2", Port: 4}}
	src := types.AttachmentPoint{SwitchID: "S1", Port: 1}
	dst := types.AttachmentPoint{SwitchID: "S2", Port: 4}

	for _, c := range []struct {
		format, body string
	}{
		{FormatFlat, routeFlat},
		{FormatLink, routeLink},
		{FormatAuto, routeFlat},
		{FormatAuto, routeLink},
	} {
		var path string
		d := newDriver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			_, _ = io.WriteString(w, c.body)
		}), c.format, 0)

		hops, err := d.Route(context.Background(), src, dst)
		require.NoError(t, err, c.format)
		require.Equal(t, want, hops, c.format)
		require.Equal(t, "/wm/topology/route/S1/1/S2/4/json", path)
	}
}

func TestRouteEmptyAndMalformed(t *testing.T) {
	body := "[]"
	d := newDriver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}), FormatAuto, 0)

	hops, err := d.Route(context.Background(), types.AttachmentPoint{}, types.AttachmentPoint{})
	require.NoError(t, err)
	require.Empty(t, hops)

	body = `{"oops": true}`
	_, err = d.Route(context.Background(), types.AttachmentPoint{}, types.AttachmentPoint{})
	require.True(t, terrors.IsRouteErr(err))
}

func TestNewRouteDecoder(t *testing.T) {
	_, err := NewRouteDecoder("xml")
	require.True(t, terrors.IsConfigurationErr(err))
}

func TestGetRetries(t *testing.T) {
	var hits int32
	d := newDriver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, devicesArray)
	}), FormatAuto, 0)

	_, err := d.Locate(context.Background(), "fa:16:3e:00:00:01")
	require.NoError(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestGetNoRetryOnClientError(t *testing.T) {
	var hits int32
	d := newDriver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}), FormatAuto, 0)

	_, err := d.Locate(context.Background(), "fa:16:3e:00:00:01")
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestPushDelete(t *testing.T) {
	var bodies []map[string]string
	var methods []string
	d := newDriver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, flowPath, r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		methods = append(methods, r.Method)

		switch body["name"] {
		case "missing":
			w.WriteHeader(http.StatusNotFound)
		case "bad":
			_, _ = io.WriteString(w, `{"status": "Error! Could not parse actions"}`)
		default:
			_, _ = io.WriteString(w, `{"status": "Entry pushed"}`)
		}
	}), FormatAuto, 0)
	ctx := context.Background()

	rule := types.FlowRule{
		Switch:   "S1",
		Name:     "h_fwd_0",
		Priority: 100,
		Match:    map[string]string{"eth_type": "0x0800", "in_port": "1"},
		Actions:  []types.Action{{Type: types.ActionOutput, Port: 2}},
		Active:   true,
	}
	require.NoError(t, d.Push(ctx, rule))
	require.Equal(t, map[string]string{
		"switch":   "S1",
		"name":     "h_fwd_0",
		"priority": "100",
		"active":   "true",
		"actions":  "output=2",
		"eth_type": "0x0800",
		"in_port":  "1",
	}, bodies[0])

	rule.Name = "bad"
	require.Error(t, d.Push(ctx, rule))

	require.NoError(t, d.Delete(ctx, "h_fwd_0"))
	require.NoError(t, d.Delete(ctx, "missing"))
	require.Equal(t, map[string]string{"name": "missing"}, bodies[3])
	require.Equal(t, []string{http.MethodPost, http.MethodPost, http.MethodDelete, http.MethodDelete}, methods)
}

func TestCheckHealth(t *testing.T) {
	healthy := true
	d := newDriver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]bool{"healthy": healthy}))
	}), FormatAuto, 0)

	require.NoError(t, d.CheckHealth(context.Background()))
	require.True(t, d.mCol.healthy.Load())

	healthy = false
	require.Error(t, d.CheckHealth(context.Background()))
	require.False(t, d.mCol.healthy.Load())
	require.NotNil(t, d.GetMetricsCollector())
}
