package fake

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// Host .
type Host struct {
	MAC    string `yaml:"mac"`
	IP     string `yaml:"ip"`
	Switch string `yaml:"switch"`
	Port   int    `yaml:"port"`
}

// Link connects two switch ports, both ways.
type Link struct {
	SrcSwitch string `yaml:"src_switch"`
	SrcPort   int    `yaml:"src_port"`
	DstSwitch string `yaml:"dst_switch"`
	DstPort   int    `yaml:"dst_port"`
}

// Topology .
type Topology struct {
	Hosts []Host `yaml:"hosts"`
	Links []Link `yaml:"links"`
}

// LoadTopology reads a yaml topology file.
func LoadTopology(path string) (Topology, error) {
	var topo Topology
	buf, err := os.ReadFile(path)
	if err != nil {
		return topo, errors.Wrap(err, "")
	}
	return topo, errors.Wrapf(yaml.Unmarshal(buf, &topo), "decode %s", path)
}

// Driver keeps the topology and the pushed rules in memory.
type Driver struct {
	mu    sync.Mutex
	topo  Topology
	flows map[string]types.FlowRule

	// PushErr makes Push fail for the named rules.
	PushErr map[string]error
}

// New .
func New(topo Topology) *Driver {
	return &Driver{
		topo:    topo,
		flows:   map[string]types.FlowRule{},
		PushErr: map[string]error{},
	}
}

// CheckHealth .
func (d *Driver) CheckHealth(_ context.Context) error {
	return nil
}

// GetMetricsCollector .
func (d *Driver) GetMetricsCollector() prometheus.Collector {
	return nil
}

// MACOf .
func (d *Driver) MACOf(_ context.Context, ip string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.topo.Hosts {
		if h.IP == ip {
			return strings.ToLower(h.MAC), nil
		}
	}
	return "", errors.Wrapf(terrors.ErrResolution, "no device holds %s", ip)
}

// Locate .
func (d *Driver) Locate(_ context.Context, mac string) (types.AttachmentPoint, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.topo.Hosts {
		if strings.EqualFold(h.MAC, mac) {
			return types.AttachmentPoint{SwitchID: h.Switch, Port: h.Port}, nil
		}
	}
	return types.AttachmentPoint{}, errors.Wrapf(terrors.ErrResolution, "%s not found", mac)
}

type edge struct {
	from, to types.AttachmentPoint
}

// Route walks the links breadth first and returns the hops in the flat shape:
// the ingress then the egress port of every switch.
func (d *Driver) Route(_ context.Context, src, dst types.AttachmentPoint) ([]types.Hop, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var adj = map[string][]edge{}
	for _, l := range d.topo.Links {
		var a = types.AttachmentPoint{SwitchID: l.SrcSwitch, Port: l.SrcPort}
		var b = types.AttachmentPoint{SwitchID: l.DstSwitch, Port: l.DstPort}
		adj[a.SwitchID] = append(adj[a.SwitchID], edge{a, b})
		adj[b.SwitchID] = append(adj[b.SwitchID], edge{b, a})
	}

	var prev = map[string]edge{}
	var seen = map[string]bool{src.SwitchID: true}
	var queue = []string{src.SwitchID}
	for len(queue) > 0 && !seen[dst.SwitchID] {
		var sw = queue[0]
		queue = queue[1:]
		for _, e := range adj[sw] {
			if seen[e.to.SwitchID] {
				continue
			}
			seen[e.to.SwitchID] = true
			prev[e.to.SwitchID] = e
			queue = append(queue, e.to.SwitchID)
		}
	}
	if !seen[dst.SwitchID] {
		return nil, nil
	}

	// walk back from dst collecting the links crossed
	var crossed []edge
	for sw := dst.SwitchID; sw != src.SwitchID; {
		var e = prev[sw]
		crossed = append([]edge{e}, crossed...)
		sw = e.from.SwitchID
	}

	var hops = []types.Hop{{SwitchID: src.SwitchID, Port: src.Port}}
	for _, e := range crossed {
		hops = append(hops,
			types.Hop{SwitchID: e.from.SwitchID, Port: e.from.Port},
			types.Hop{SwitchID: e.to.SwitchID, Port: e.to.Port},
		)
	}
	return append(hops, types.Hop{SwitchID: dst.SwitchID, Port: dst.Port}), nil
}

// Push .
func (d *Driver) Push(_ context.Context, rule types.FlowRule) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.PushErr[rule.Name]; err != nil {
		return err
	}
	d.flows[rule.Name] = rule
	return nil
}

// Delete .
func (d *Driver) Delete(_ context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.flows, name)
	return nil
}

// Flows returns a copy of the installed rules keyed by name.
func (d *Driver) Flows() map[string]types.FlowRule {
	d.mu.Lock()
	defer d.mu.Unlock()
	var flows = make(map[string]types.FlowRule, len(d.flows))
	for k, v := range d.flows {
		flows[k] = v
	}
	return flows
}

// SetTopology .
func (d *Driver) SetTopology(topo Topology) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.topo = topo
}
