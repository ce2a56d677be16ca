package route

import (
	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/terrors"
)

// Normalize pairs the raw hops two at a time into transit records,
// element 2i giving the ingress port and 2i+1 the egress port of the same switch.
func Normalize(hops []types.Hop) ([]types.TransitRecord, error) {
	switch {
	case len(hops) == 0:
		return nil, errors.Wrap(terrors.ErrNoRoute, "")
	case len(hops)%2 != 0:
		return nil, errors.Wrapf(terrors.ErrMalformedRoute, "odd hop count %d", len(hops))
	}

	var records = make([]types.TransitRecord, 0, len(hops)/2)
	for i := 0; i < len(hops); i += 2 {
		var in, out = hops[i], hops[i+1]
		switch {
		case len(in.SwitchID) == 0:
			return nil, errors.Wrapf(terrors.ErrMalformedRoute, "hop %d has no switch", i)
		case in.SwitchID != out.SwitchID:
			return nil, errors.Wrapf(terrors.ErrMalformedRoute, "hop %d switch %s != %s", i, in.SwitchID, out.SwitchID)
		case in.Port < 1 || out.Port < 1:
			return nil, errors.Wrapf(terrors.ErrMalformedRoute, "hop %d on %s has port %d/%d", i, in.SwitchID, in.Port, out.Port)
		}

		records = append(records, types.TransitRecord{
			SwitchID: in.SwitchID,
			InPort:   in.Port,
			OutPort:  out.Port,
		})
	}

	return records, nil
}
