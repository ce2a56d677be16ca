package factory

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/projecteru2/labflow/configs"
	"github.com/projecteru2/labflow/internal/network"
	"github.com/projecteru2/labflow/internal/network/drivers/fake"
	"github.com/projecteru2/labflow/internal/network/drivers/floodlight"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// Factory holds the driver of the configured controller mode.
type Factory struct {
	Config *configs.ControllerConfig
	driver network.Driver
}

// New .
func New(cfg *configs.ControllerConfig) (*Factory, error) {
	f := &Factory{Config: cfg}
	err := f.setupDriver()
	return f, err
}

func (f *Factory) setupDriver() (err error) {
	switch mode := f.Config.Mode; mode {
	case network.FloodlightMode:
		f.driver, err = floodlight.New(f.Config)
	case network.FakeMode:
		f.driver, err = f.setupFake()
	default:
		err = errors.Wrapf(terrors.ErrUnknownNetworkDriver, "invalid controller mode: %s", mode)
	}
	return
}

func (f *Factory) setupFake() (network.Driver, error) {
	var topo fake.Topology
	if len(f.Config.FakeTopology) > 0 {
		var err error
		if topo, err = fake.LoadTopology(f.Config.FakeTopology); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	return fake.New(topo), nil
}

// Driver .
func (f *Factory) Driver() network.Driver {
	return f.driver
}

// CheckHealth .
func (f *Factory) CheckHealth(ctx context.Context) error {
	return f.driver.CheckHealth(ctx)
}

// GetMetricsCollectors .
func (f *Factory) GetMetricsCollectors() (ans []prometheus.Collector) {
	if col := f.driver.GetMetricsCollector(); col != nil {
		ans = append(ans, col)
	}
	return ans
}
