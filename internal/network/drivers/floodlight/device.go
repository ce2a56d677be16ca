package floodlight

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/labflow/internal/network/types"
)

// portNumber accepts both 3 and "3".
type portNumber int

func (p *portNumber) UnmarshalJSON(b []byte) error {
	var s = strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if len(s) == 0 || s == "null" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.Wrapf(err, "invalid port %s", s)
	}
	*p = portNumber(n)
	return nil
}

type attachmentPoint struct {
	Switch     string     `json:"switch"`
	SwitchDPID string     `json:"switchDPID"`
	Port       portNumber `json:"port"`
}

func (ap attachmentPoint) toType() types.AttachmentPoint {
	var sw = ap.SwitchDPID
	if len(sw) == 0 {
		sw = ap.Switch
	}
	return types.AttachmentPoint{SwitchID: sw, Port: int(ap.Port)}
}

type device struct {
	MAC             []string          `json:"mac"`
	IPv4            []string          `json:"ipv4"`
	AttachmentPoint []attachmentPoint `json:"attachmentPoint"`
}

func (d device) hasMAC(mac string) bool {
	for _, m := range d.MAC {
		if strings.EqualFold(m, mac) {
			return true
		}
	}
	return false
}

func (d device) hasIP(ip string) bool {
	for _, addr := range d.IPv4 {
		if addr == ip {
			return true
		}
	}
	return false
}

// decodeDevices reads both the bare array of older controllers and the {"devices": [...]} object.
func decodeDevices(raw []byte) ([]device, error) {
	raw = bytes.TrimSpace(raw)

	var devices []device
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &devices); err != nil {
			return nil, errors.Wrap(err, "failed to decode device list")
		}
		return devices, nil
	}

	var wrapped struct {
		Devices []device `json:"devices"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.Wrap(err, "failed to decode device list")
	}
	return wrapped.Devices, nil
}
