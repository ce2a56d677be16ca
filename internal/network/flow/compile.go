package flow

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// Match fields understood by the static flow pusher.
const (
	MatchEthType = "eth_type"
	MatchEthSrc  = "eth_src"
	MatchEthDst  = "eth_dst"
	MatchIPv4Src = "ipv4_src"
	MatchIPv4Dst = "ipv4_dst"
	MatchIPProto = "ip_proto"
	MatchTpSrc   = "tp_src"
	MatchTpDst   = "tp_dst"
	MatchInPort  = "in_port"

	EthTypeIPv4 = "0x0800"
	EthTypeARP  = "0x0806"
)

var protocols = map[string]string{
	"tcp": "0x06",
	"udp": "0x11",
}

// ProtocolCode returns the IP protocol number of a transport protocol.
func ProtocolCode(proto string) (string, error) {
	code, ok := protocols[strings.ToLower(proto)]
	if !ok {
		return "", errors.Wrapf(terrors.ErrUnsupportedProtocol, "%q", proto)
	}
	return code, nil
}

// Endpoints are the addresses a connection's rules are narrowed to.
type Endpoints struct {
	StudentMAC string
	ServerIP   string
	Service    types.ServiceSpec
}

// Priorities .
type Priorities struct {
	Data int
	ARP  int
}

// Check .
func (p Priorities) Check() error {
	if p.Data >= p.ARP {
		return errors.Wrapf(terrors.ErrConfiguration, "data priority %d must be lower than arp priority %d", p.Data, p.ARP)
	}
	return nil
}

// Compile derives the fwd, rev and arp rules of every transit record, in path order.
func Compile(handler string, records []types.TransitRecord, ep Endpoints, prio Priorities) ([]types.FlowRule, error) {
	code, err := ProtocolCode(ep.Service.Protocol)
	if err != nil {
		return nil, err
	}
	if err := prio.Check(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.Wrap(terrors.ErrNoRoute, "")
	}

	var port = strconv.Itoa(ep.Service.Port)
	var rules = make([]types.FlowRule, 0, len(records)*len(types.Kinds))

	for i, rec := range records {
		rules = append(rules,
			types.FlowRule{
				Switch:   rec.SwitchID,
				Name:     RuleName(handler, types.KindForward, i),
				Kind:     types.KindForward,
				Hop:      i,
				Priority: prio.Data,
				Match: map[string]string{
					MatchEthType: EthTypeIPv4,
					MatchEthSrc:  ep.StudentMAC,
					MatchIPv4Dst: ep.ServerIP,
					MatchIPProto: code,
					MatchTpDst:   port,
					MatchInPort:  strconv.Itoa(rec.InPort),
				},
				Actions: []types.Action{{Type: types.ActionOutput, Port: rec.OutPort}},
				Active:  true,
			},
			types.FlowRule{
				Switch:   rec.SwitchID,
				Name:     RuleName(handler, types.KindReverse, i),
				Kind:     types.KindReverse,
				Hop:      i,
				Priority: prio.Data,
				Match: map[string]string{
					MatchEthType: EthTypeIPv4,
					MatchIPv4Src: ep.ServerIP,
					MatchEthDst:  ep.StudentMAC,
					MatchIPProto: code,
					MatchTpSrc:   port,
					MatchInPort:  strconv.Itoa(rec.OutPort),
				},
				Actions: []types.Action{{Type: types.ActionOutput, Port: rec.InPort}},
				Active:  true,
			},
			types.FlowRule{
				Switch:   rec.SwitchID,
				Name:     RuleName(handler, types.KindARP, i),
				Kind:     types.KindARP,
				Hop:      i,
				Priority: prio.ARP,
				Match:    map[string]string{MatchEthType: EthTypeARP},
				Actions:  []types.Action{{Type: types.ActionNormal}},
				Active:   true,
			},
		)
	}

	return rules, nil
}
