package floodlight

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/patrickmn/go-cache"

	"github.com/projecteru2/labflow/configs"
	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/log"
	"github.com/projecteru2/labflow/pkg/netx"
	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/utils"
)

const (
	devicePath = "/wm/device/"
	routePath  = "/wm/topology/route/%s/%d/%s/%d/json"
	flowPath   = "/wm/staticflowpusher/json"
	healthPath = "/wm/core/health/json"

	devicesKey = "devices"
)

// Driver is a Floodlight REST client.
type Driver struct {
	mu      sync.Mutex
	addr    string
	timeout time.Duration
	retries int
	ttl     time.Duration
	cli     *netx.Client
	devices *cache.Cache
	decoder RouteDecoder
	mCol    *MetricsCollector
}

// New .
func New(cfg *configs.ControllerConfig) (*Driver, error) {
	decoder, err := NewRouteDecoder(cfg.RouteFormat)
	if err != nil {
		return nil, err
	}
	if len(cfg.Addr) == 0 {
		return nil, errors.Wrap(terrors.ErrConfiguration, "controller address is empty")
	}

	var ttl = cfg.DeviceCacheTTL.Duration()
	return &Driver{
		addr:    strings.TrimRight(cfg.Addr, "/"),
		timeout: cfg.Timeout.Duration(),
		retries: cfg.Retries,
		ttl:     ttl,
		cli:     netx.NewClient(&http.Client{}),
		devices: cache.New(ttl, 2*ttl),
		decoder: decoder,
		mCol:    newMetricsCollector(cfg.Addr),
	}, nil
}

// CheckHealth .
func (d *Driver) CheckHealth(ctx context.Context) (err error) {
	defer func() {
		d.mCol.healthy.Store(err == nil)
	}()

	var health struct {
		Healthy bool `json:"healthy"`
	}
	if err = d.getJSON(ctx, healthPath, &health); err != nil {
		return err
	}
	if !health.Healthy {
		return errors.Newf("controller %s reports unhealthy", d.addr)
	}
	return nil
}

// MACOf .
func (d *Driver) MACOf(ctx context.Context, ip string) (string, error) {
	devices, err := d.listDevices(ctx)
	if err != nil {
		return "", err
	}
	for _, dev := range devices {
		if dev.hasIP(ip) && len(dev.MAC) > 0 {
			return strings.ToLower(dev.MAC[0]), nil
		}
	}
	return "", errors.Wrapf(terrors.ErrResolution, "no device holds %s", ip)
}

// Locate .
func (d *Driver) Locate(ctx context.Context, mac string) (types.AttachmentPoint, error) {
	if len(mac) == 0 {
		return types.AttachmentPoint{}, errors.Wrap(terrors.ErrResolution, "empty mac")
	}

	devices, err := d.listDevices(ctx)
	if err != nil {
		return types.AttachmentPoint{}, err
	}
	for _, dev := range devices {
		if !dev.hasMAC(mac) {
			continue
		}
		if len(dev.AttachmentPoint) == 0 {
			return types.AttachmentPoint{}, errors.Wrapf(terrors.ErrResolution, "%s has no attachment point", mac)
		}
		var ap = dev.AttachmentPoint[0].toType()
		if len(ap.SwitchID) == 0 || ap.Port < 1 {
			return types.AttachmentPoint{}, errors.Wrapf(terrors.ErrResolution, "%s has an invalid attachment point %s", mac, ap)
		}
		return ap, nil
	}
	return types.AttachmentPoint{}, errors.Wrapf(terrors.ErrResolution, "%s not found", mac)
}

// Route .
func (d *Driver) Route(ctx context.Context, src, dst types.AttachmentPoint) ([]types.Hop, error) {
	var path = fmt.Sprintf(routePath, src.SwitchID, src.Port, dst.SwitchID, dst.Port)
	raw, err := d.get(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "route %s -> %s", src, dst)
	}
	return d.decoder.Decode(raw)
}

func (d *Driver) listDevices(ctx context.Context) ([]device, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ttl > 0 {
		if cached, ok := d.devices.Get(devicesKey); ok {
			return cached.([]device), nil
		}
	}

	raw, err := d.get(ctx, devicePath)
	if err != nil {
		return nil, err
	}
	devices, err := decodeDevices(raw)
	if err != nil {
		return nil, err
	}

	if d.ttl > 0 {
		d.devices.SetDefault(devicesKey, devices)
	}
	return devices, nil
}

func (d *Driver) getJSON(ctx context.Context, path string, out any) error {
	raw, err := d.get(ctx, path)
	if err != nil {
		return err
	}
	return errors.Wrapf(utils.JSONDecode(raw, out), "GET %s", path)
}

// get retries timeouts and 5xx with an exponential backoff, other failures are returned at once.
func (d *Driver) get(ctx context.Context, path string) (raw []byte, err error) {
	var logger = log.WithFunc("floodlight.get").WithField("path", path)
	var url = d.addr + path

	var bf = backoff.NewExponentialBackOff()
	bf.InitialInterval = 100 * time.Millisecond
	var policy = backoff.WithContext(backoff.WithMaxRetries(bf, uint64(d.retries)), ctx)

	err = backoff.RetryNotify(func() error {
		raw, err = d.do(ctx, http.MethodGet, url, nil)
		var se *netx.StatusError
		if errors.As(err, &se) && se.Code < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, next time.Duration) {
		logger.Warnf(ctx, "retry in %v: %v", next, err)
	})
	return raw, err
}

func (d *Driver) do(ctx context.Context, method, url string, body any) ([]byte, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return d.cli.Do(ctx, method, url, body)
}
