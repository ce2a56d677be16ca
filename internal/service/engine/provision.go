package engine

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/kr/pretty"
	"github.com/samber/lo"

	"github.com/projecteru2/labflow/internal/metrics"
	"github.com/projecteru2/labflow/internal/models"
	"github.com/projecteru2/labflow/internal/network/flow"
	"github.com/projecteru2/labflow/internal/network/route"
	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/internal/service"
	interutils "github.com/projecteru2/labflow/internal/utils"
	"github.com/projecteru2/labflow/pkg/log"
	"github.com/projecteru2/labflow/pkg/terrors"
)

const rollbackTimeouts = 4

// Provision resolves the request, asks the controller for a route and installs
// the rules of every hop. Nothing is pushed when a lookup or the route fails.
// When some rules fail the returned Provisioned lists them together with the error.
func (e *Engine) Provision(ctx context.Context, req service.ConnectionRequest) (p *service.Provisioned, err error) {
	ctx = log.WithTrace(ctx, uuid.NewString())
	logger := log.WithFunc("engine.Provision").WithField("student", req.StudentCode).WithField("server", req.ServerName)

	defer func() {
		result := "ok"
		if err != nil {
			result = "failed"
			e.metr.IncrError("provision")
		}
		_ = e.metr.Incr(metrics.MetricProvisionCount, map[string]string{"result": result})
	}()

	handler, err := flow.NewHandler(req.StudentCode, req.ServerName, req.ServiceName)
	if err != nil {
		return nil, err
	}
	free, err := e.cas.MustAcquire(handler)
	if err != nil {
		return nil, err
	}
	defer free()

	unlock, err := e.registry.Lock(ctx, handler)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lock %s", handler)
	}
	defer func() {
		if ue := unlock(context.WithoutCancel(ctx)); ue != nil {
			logger.Errorf(ctx, ue, "failed to unlock %s", handler)
		}
	}()

	switch exists, err := e.registry.Exists(ctx, handler); {
	case err != nil:
		return nil, err
	case exists:
		return nil, errors.Wrapf(terrors.ErrConnectionExists, "%s", handler)
	}

	rules, err := e.compile(ctx, handler, req)
	if err != nil {
		logger.Errorf(ctx, err, "failed to compile %s", handler)
		return nil, err
	}

	return e.install(ctx, handler, req, rules)
}

// compile runs every lookup and builds the rules, before any controller write.
func (e *Engine) compile(ctx context.Context, handler string, req service.ConnectionRequest) ([]types.FlowRule, error) {
	student, server, svc, err := e.db.Resolve(req.StudentCode, req.ServerName, req.ServiceName)
	if err != nil {
		return nil, err
	}
	if _, err := flow.ProtocolCode(svc.Protocol); err != nil {
		return nil, errors.Wrapf(err, "service %s on %s", svc.Name, server.Name)
	}
	if err := e.db.Authorize(student.Code, server.Name, svc.Name); err != nil {
		return nil, err
	}

	src, err := e.driver.Locate(ctx, student.MAC)
	if err != nil {
		return nil, errors.Wrapf(err, "student %d", student.Code)
	}
	serverMAC, err := e.driver.MACOf(ctx, server.IP)
	if err != nil {
		return nil, errors.Wrapf(err, "server %s", server.Name)
	}
	dst, err := e.driver.Locate(ctx, serverMAC)
	if err != nil {
		return nil, errors.Wrapf(err, "server %s", server.Name)
	}

	hops, err := e.driver.Route(ctx, src, dst)
	if err != nil {
		return nil, err
	}
	records, err := route.Normalize(hops)
	if err != nil {
		return nil, errors.Wrapf(err, "route %s -> %s", src, dst)
	}

	log.WithFunc("engine.compile").Debugf(ctx, "%s: %d hops from %s to %s: %# v", handler, len(records), src, dst, pretty.Formatter(records))

	return flow.Compile(handler, records, flow.Endpoints{
		StudentMAC: student.MAC,
		ServerIP:   server.IP,
		Service:    svc,
	}, flow.Priorities{
		Data: e.cfg.Flow.DataPriority,
		ARP:  e.cfg.Flow.ARPPriority,
	})
}

func (e *Engine) install(ctx context.Context, handler string, req service.ConnectionRequest, rules []types.FlowRule) (*service.Provisioned, error) {
	logger := log.WithFunc("engine.install").WithField("handler", handler)

	var switches []string
	for _, r := range rules {
		if r.Kind == types.KindARP {
			switches = append(switches, r.Switch)
		}
	}

	ctx = interutils.NewRollbackListContext(ctx)
	rl := interutils.GetRollbackListFromContext(ctx)
	rl.Append(func(ctx context.Context) error {
		return e.installer.Delete(ctx, lo.Map(rules, func(r types.FlowRule, _ int) string { return r.Name })).Err()
	}, "rules of "+handler)

	results := e.installer.Install(ctx, rules)
	e.countRules(results)

	p := &service.Provisioned{Results: results, Failed: results.Failed()}
	installErr := results.Err()

	if ctx.Err() != nil || (installErr != nil && e.cfg.Flow.RollbackOnFailure) {
		logger.Warnf(ctx, "rolling back %s, %d rules failed", handler, len(p.Failed))
		if err := e.rollback(ctx, rl); err != nil {
			logger.Errorf(ctx, err, "failed to roll back %s", handler)
			installErr = errors.CombineErrors(installErr, err)
		}
		p.RolledBack = true
		return p, errors.CombineErrors(installErr, ctx.Err())
	}

	conn := models.NewConnection(handler, req.StudentCode, req.ServerName, req.ServiceName, switches)
	if err := e.registry.Create(ctx, conn); err != nil {
		logger.Errorf(ctx, err, "failed to store %s", handler)
		if rbErr := e.rollback(ctx, rl); rbErr != nil {
			err = errors.CombineErrors(err, rbErr)
		}
		p.RolledBack = true
		return p, err
	}
	_ = e.metr.Incr(metrics.MetricActiveConnections, nil)

	p.Connection = conn
	if installErr != nil {
		logger.Warnf(ctx, "%s stored with %d failed rules", handler, len(p.Failed))
		return p, installErr
	}

	logger.Infof(ctx, "provisioned %s over %d switches", handler, conn.Hops)
	return p, nil
}

// rollback runs even when ctx is already cancelled.
func (e *Engine) rollback(ctx context.Context, rl *interutils.RollbackList) error {
	ctx = context.WithoutCancel(ctx)
	if timeout := e.cfg.ControllerTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rollbackTimeouts*timeout)
		defer cancel()
	}
	return rl.Run(ctx)
}
