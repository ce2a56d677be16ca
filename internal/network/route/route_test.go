package route

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/pkg/terrors"
	"github.com/projecteru2/labflow/pkg/test/assert"
)

func TestNormalize(t *testing.T) {
	hops := []types.Hop{
		{SwitchID: "S1", Port: 1},
		{SwitchID: "S1", Port: 2},
		{SwitchID: "S2", Port: 3},
		{SwitchID: "S2", Port: 4},
	}

	records, err := Normalize(hops)
	assert.NilErr(t, err)
	assert.Equal(t, []types.TransitRecord{
		{SwitchID: "S1", InPort: 1, OutPort: 2},
		{SwitchID: "S2", InPort: 3, OutPort: 4},
	}, records)
}

func TestNormalizeKeepsOrder(t *testing.T) {
	var hops []types.Hop
	for i := 0; i < 12; i++ {
		sw := string(rune('a' + i))
		hops = append(hops, types.Hop{SwitchID: sw, Port: 1}, types.Hop{SwitchID: sw, Port: 2})
	}

	records, err := Normalize(hops)
	assert.NilErr(t, err)
	assert.Equal(t, 12, len(records))
	for i, r := range records {
		assert.Equal(t, hops[2*i].SwitchID, r.SwitchID)
		assert.Equal(t, hops[2*i+1].SwitchID, r.SwitchID)
	}
}

func TestNormalizeInvalid(t *testing.T) {
	cases := []struct {
		name  string
		hops  []types.Hop
		empty bool
	}{
		{"empty", nil, true},
		{"odd", []types.Hop{{SwitchID: "S1", Port: 1}}, false},
		{"odd3", []types.Hop{{SwitchID: "S1", Port: 1}, {SwitchID: "S1", Port: 2}, {SwitchID: "S2", Port: 3}}, false},
		{"mismatch", []types.Hop{{SwitchID: "S1", Port: 1}, {SwitchID: "S2", Port: 2}}, false},
		{"port", []types.Hop{{SwitchID: "S1", Port: 0}, {SwitchID: "S1", Port: 2}}, false},
		{"noswitch", []types.Hop{{Port: 1}, {Port: 2}}, false},
	}

	for _, c := range cases {
		records, err := Normalize(c.hops)
		assert.True(t, terrors.IsRouteErr(err), c.name)
		assert.Equal(t, 0, len(records), c.name)
		assert.Equal(t, c.empty, errors.Is(err, terrors.ErrNoRoute), c.name)
	}
}
