package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/projecteru2/labflow/internal/metrics"
	"github.com/projecteru2/labflow/internal/network/flow"
	"github.com/projecteru2/labflow/pkg/log"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// Teardown deletes the rules of a connection, then its record.
// The record stays when a delete fails, so the teardown can be retried.
// An unknown handler is not an error.
func (e *Engine) Teardown(ctx context.Context, handler string) (results flow.Results, err error) {
	ctx = log.WithTrace(ctx, uuid.NewString())
	logger := log.WithFunc("engine.Teardown").WithField("handler", handler)

	defer func() {
		result := "ok"
		if err != nil {
			result = "failed"
			e.metr.IncrError("teardown")
		}
		_ = e.metr.Incr(metrics.MetricTeardownCount, map[string]string{"result": result})
	}()

	free, err := e.cas.MustAcquire(handler)
	if err != nil {
		return nil, err
	}
	defer free()

	unlock, err := e.registry.Lock(ctx, handler)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ue := unlock(context.WithoutCancel(ctx)); ue != nil {
			logger.Errorf(ctx, ue, "failed to unlock %s", handler)
		}
	}()

	conn, err := e.registry.Get(ctx, handler)
	switch {
	case terrors.IsConnectionNotExistsErr(err):
		// rules may still be left by a lost record, sweep the legacy range
		conn = nil
	case err != nil:
		return nil, err
	}

	hops := e.cfg.Flow.LegacyTeardownBound
	switch {
	case conn == nil:
		logger.Warnf(ctx, "%s is not recorded, deleting indices below %d", handler, hops)
	case conn.Hops < 1:
		logger.Warnf(ctx, "%s has no hop count, deleting indices below %d", handler, hops)
	default:
		hops = conn.Hops
	}

	results = e.installer.Delete(ctx, flow.TeardownNames(handler, hops, e.cfg.Flow.TeardownARP))
	e.countRules(results)
	if err := results.Err(); err != nil {
		logger.Errorf(ctx, err, "failed to delete rules of %s", handler)
		return results, err
	}

	if conn == nil {
		return results, nil
	}
	if err := e.registry.Remove(ctx, conn); err != nil {
		return results, err
	}
	_ = e.metr.Decr(metrics.MetricActiveConnections, nil)

	logger.Infof(ctx, "tore down %s, %d rules deleted", handler, len(results))
	return results, nil
}
