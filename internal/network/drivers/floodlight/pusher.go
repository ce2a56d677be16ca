package floodlight

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/netx"
)

// ruleBody renders a rule as the static flow pusher entry, every value a string.
func ruleBody(rule types.FlowRule) map[string]string {
	var body = map[string]string{
		"switch":   rule.Switch,
		"name":     rule.Name,
		"priority": strconv.Itoa(rule.Priority),
		"active":   strconv.FormatBool(rule.Active),
		"actions": strings.Join(lo.Map(rule.Actions, func(a types.Action, _ int) string {
			return a.String()
		}), ","),
	}
	for k, v := range rule.Match {
		body[k] = v
	}
	return body
}

type pushStatus struct {
	Status string `json:"status"`
}

// Push .
func (d *Driver) Push(ctx context.Context, rule types.FlowRule) error {
	raw, err := d.do(ctx, http.MethodPost, d.addr+flowPath, ruleBody(rule))
	if err != nil {
		return errors.Wrapf(err, "push %s on %s", rule.Name, rule.Switch)
	}

	// Some releases answer 200 with an error status.
	var st pushStatus
	if json.Unmarshal(raw, &st) == nil && strings.HasPrefix(strings.ToLower(st.Status), "error") {
		return errors.Newf("push %s on %s: %s", rule.Name, rule.Switch, st.Status)
	}
	return nil
}

// Delete .
func (d *Driver) Delete(ctx context.Context, name string) error {
	_, err := d.do(ctx, http.MethodDelete, d.addr+flowPath, map[string]string{"name": name})

	var se *netx.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return nil
	}
	return errors.Wrapf(err, "delete %s", name)
}
