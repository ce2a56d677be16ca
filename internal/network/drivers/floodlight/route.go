package floodlight

import (
	"bytes"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// Route response formats.
const (
	FormatAuto = "auto"
	FormatFlat = "flat"
	FormatLink = "link"
)

// RouteDecoder turns a route response into the raw hop list.
type RouteDecoder interface {
	Decode(raw []byte) ([]types.Hop, error)
}

// NewRouteDecoder .
func NewRouteDecoder(format string) (RouteDecoder, error) {
	switch format {
	case FormatFlat:
		return flatDecoder{}, nil
	case FormatLink:
		return linkDecoder{}, nil
	case FormatAuto, "":
		return autoDecoder{}, nil
	default:
		return nil, errors.Wrapf(terrors.ErrConfiguration, "unknown route format %q", format)
	}
}

// flatDecoder reads [{"switch": s, "port": {"portNumber": n}}, ...].
type flatDecoder struct{}

func (flatDecoder) Decode(raw []byte) ([]types.Hop, error) {
	var elems []struct {
		Switch string `json:"switch"`
		Port   struct {
			PortNumber portNumber `json:"portNumber"`
		} `json:"port"`
	}
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, errors.Wrap(errors.Mark(err, terrors.ErrMalformedRoute), "flat route")
	}

	var hops = make([]types.Hop, 0, len(elems))
	for _, e := range elems {
		hops = append(hops, types.Hop{SwitchID: e.Switch, Port: int(e.Port.PortNumber)})
	}
	return hops, nil
}

// linkDecoder reads [{"src-switch", "src-port", "dst-switch", "dst-port"}, ...],
// each link giving two hops.
type linkDecoder struct{}

func (linkDecoder) Decode(raw []byte) ([]types.Hop, error) {
	var links []struct {
		SrcSwitch string     `json:"src-switch"`
		SrcPort   portNumber `json:"src-port"`
		DstSwitch string     `json:"dst-switch"`
		DstPort   portNumber `json:"dst-port"`
	}
	if err := json.Unmarshal(raw, &links); err != nil {
		return nil, errors.Wrap(errors.Mark(err, terrors.ErrMalformedRoute), "link route")
	}

	var hops = make([]types.Hop, 0, 2*len(links))
	for _, l := range links {
		hops = append(hops,
			types.Hop{SwitchID: l.SrcSwitch, Port: int(l.SrcPort)},
			types.Hop{SwitchID: l.DstSwitch, Port: int(l.DstPort)},
		)
	}
	return hops, nil
}

// autoDecoder picks the format from the first element.
type autoDecoder struct{}

func (autoDecoder) Decode(raw []byte) ([]types.Hop, error) {
	var elems []map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(raw), &elems); err != nil {
		return nil, errors.Wrap(errors.Mark(err, terrors.ErrMalformedRoute), "route")
	}
	if len(elems) == 0 {
		return nil, nil
	}
	if _, ok := elems[0]["src-switch"]; ok {
		return linkDecoder{}.Decode(raw)
	}
	return flatDecoder{}.Decode(raw)
}
