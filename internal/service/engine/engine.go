package engine

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/configs"
	"github.com/projecteru2/labflow/internal/metrics"
	"github.com/projecteru2/labflow/internal/models"
	"github.com/projecteru2/labflow/internal/network"
	"github.com/projecteru2/labflow/internal/network/flow"
	"github.com/projecteru2/labflow/internal/service"
	interutils "github.com/projecteru2/labflow/internal/utils"
	"github.com/projecteru2/labflow/internal/ver"
	"github.com/projecteru2/labflow/pkg/store"
)

// Engine turns connection requests into flow rules on the controller.
type Engine struct {
	cfg       *configs.Config
	db        *models.Database
	store     store.Store
	registry  *models.Registry
	driver    network.Driver
	installer *flow.Installer
	cas       *interutils.GroupCAS
	metr      *metrics.Metrics
}

var _ service.Service = (*Engine)(nil)

// New .
func New(cfg *configs.Config, db *models.Database, st store.Store, driver network.Driver, metr *metrics.Metrics) (*Engine, error) {
	installer, err := flow.NewInstaller(driver, cfg.Flow.Concurrency)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create installer")
	}

	return &Engine{
		cfg:       cfg,
		db:        db,
		store:     st,
		registry:  models.NewRegistry(st, cfg.Etcd.Prefix),
		driver:    driver,
		installer: installer,
		cas:       interutils.NewGroupCAS(),
		metr:      metr,
	}, nil
}

// Ping .
func (e *Engine) Ping() map[string]string {
	return map[string]string{"version": ver.Short(), "controller": e.cfg.Controller.Mode}
}

// CheckHealth .
func (e *Engine) CheckHealth(ctx context.Context) error {
	return e.driver.CheckHealth(ctx)
}

// Records .
func (e *Engine) Records() *models.Database {
	return e.db
}

// GetConnection .
func (e *Engine) GetConnection(ctx context.Context, handler string) (*models.Connection, error) {
	return e.registry.Get(ctx, handler)
}

// ListConnections .
func (e *Engine) ListConnections(ctx context.Context) ([]*models.Connection, error) {
	return e.registry.List(ctx)
}

// Close .
func (e *Engine) Close() error {
	e.installer.Close()
	return e.store.Close()
}

func (e *Engine) countRules(rs flow.Results) {
	for _, r := range rs {
		result := "ok"
		if !r.OK() {
			result = "failed"
		}
		_ = e.metr.Incr(metrics.MetricRuleCount, map[string]string{"op": string(r.Op), "result": result})
	}
}
