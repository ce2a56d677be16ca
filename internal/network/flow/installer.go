package flow

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"

	"github.com/projecteru2/labflow/internal/network"
	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/log"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// Op .
type Op string

const (
	// OpPush .
	OpPush Op = "push"
	// OpDelete .
	OpDelete Op = "delete"
)

// Result is the outcome of one rule operation.
type Result struct {
	Name   string `json:"name"`
	Switch string `json:"switch,omitempty"`
	Op     Op     `json:"op"`
	Err    error  `json:"-"`
}

// OK .
func (r Result) OK() bool {
	return r.Err == nil
}

// Results .
type Results []Result

// Failed returns the names of the failed rules.
func (rs Results) Failed() []string {
	return lo.FilterMap(rs, func(r Result, _ int) (string, bool) {
		return r.Name, !r.OK()
	})
}

// Err aggregates the failures into one install error, nil when every rule succeeded.
func (rs Results) Err() error {
	var failed = rs.Failed()
	if len(failed) == 0 {
		return nil
	}

	var err = errors.Wrapf(terrors.ErrInstall, "%d of %d rules failed: %s", len(failed), len(rs), strings.Join(failed, ","))
	for _, r := range rs {
		if !r.OK() {
			err = errors.CombineErrors(err, errors.Wrapf(r.Err, "%s %s", r.Op, r.Name))
		}
	}
	return err
}

// Installer realizes rules on the controller, one hop per worker.
type Installer struct {
	pusher network.FlowPusher
	pool   *ants.Pool
}

// NewInstaller .
func NewInstaller(pusher network.FlowPusher, concurrency int) (*Installer, error) {
	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return &Installer{pusher: pusher, pool: pool}, nil
}

// Close .
func (in *Installer) Close() {
	in.pool.Release()
}

// Install pushes the rules of every hop. Within a hop the ARP name is deleted first,
// then fwd, rev and arp are pushed in order. A failure never stops the other rules.
// Results follow the order of rules.
func (in *Installer) Install(ctx context.Context, rules []types.FlowRule) Results {
	var results = make(Results, len(rules))
	var hops = map[int][]int{}
	var order []int
	for i, r := range rules {
		if _, ok := hops[r.Hop]; !ok {
			order = append(order, r.Hop)
		}
		hops[r.Hop] = append(hops[r.Hop], i)
	}

	var wg sync.WaitGroup
	for _, hop := range order {
		var idx = hops[hop]
		in.submit(&wg, func() {
			in.installHop(ctx, rules, idx, results)
		}, func(err error) {
			for _, i := range idx {
				results[i] = Result{Name: rules[i].Name, Switch: rules[i].Switch, Op: OpPush, Err: err}
			}
		})
	}
	wg.Wait()

	return results
}

func (in *Installer) installHop(ctx context.Context, rules []types.FlowRule, idx []int, results Results) {
	var logger = log.WithFunc("flow.installHop")

	for _, i := range idx {
		if rules[i].Kind != types.KindARP {
			continue
		}
		if err := in.pusher.Delete(ctx, rules[i].Name); err != nil {
			logger.Debugf(ctx, "pre-clean %s: %v", rules[i].Name, err)
		}
	}

	for _, i := range idx {
		var rule = rules[i]
		var err = ctx.Err()
		if err == nil {
			err = in.pusher.Push(ctx, rule)
		}
		if err != nil {
			logger.Warnf(ctx, "push %s on %s failed: %v", rule.Name, rule.Switch, err)
		}
		results[i] = Result{Name: rule.Name, Switch: rule.Switch, Op: OpPush, Err: err}
	}
}

// Delete removes the rules by name concurrently. Results follow the order of names.
func (in *Installer) Delete(ctx context.Context, names []string) Results {
	var results = make(Results, len(names))
	var wg sync.WaitGroup

	for i, name := range names {
		i, name := i, name
		in.submit(&wg, func() {
			results[i] = Result{Name: name, Op: OpDelete, Err: in.pusher.Delete(ctx, name)}
		}, func(err error) {
			results[i] = Result{Name: name, Op: OpDelete, Err: err}
		})
	}
	wg.Wait()

	return results
}

func (in *Installer) submit(wg *sync.WaitGroup, task func(), onErr func(error)) {
	wg.Add(1)
	if err := in.pool.Submit(func() {
		defer wg.Done()
		task()
	}); err != nil {
		wg.Done()
		onErr(errors.Wrap(err, "submit"))
	}
}
