package types

import (
	"fmt"
	"strconv"
)

// AttachmentPoint is where a host is plugged into the fabric.
type AttachmentPoint struct {
	SwitchID string `json:"switch"`
	Port     int    `json:"port"`
}

func (ap AttachmentPoint) String() string {
	return fmt.Sprintf("%s/%d", ap.SwitchID, ap.Port)
}

// Hop is one side of a link in a raw path.
type Hop struct {
	SwitchID string `json:"switch"`
	Port     int    `json:"port"`
}

// TransitRecord is the forwarding decision of one switch on the path.
type TransitRecord struct {
	SwitchID string `json:"switch"`
	InPort   int    `json:"in_port"`
	OutPort  int    `json:"out_port"`
}

// ServiceSpec .
type ServiceSpec struct {
	Name     string `json:"name" yaml:"name"`
	Protocol string `json:"protocol" yaml:"protocol"`
	Port     int    `json:"port" yaml:"port"`
}

// RuleKind .
type RuleKind string

const (
	// KindForward student to server.
	KindForward RuleKind = "fwd"
	// KindReverse server to student.
	KindReverse RuleKind = "rev"
	// KindARP .
	KindARP RuleKind = "arp"
)

// Kinds in install order.
var Kinds = []RuleKind{KindForward, KindReverse, KindARP}

// ActionType .
type ActionType string

const (
	// ActionOutput .
	ActionOutput ActionType = "output"
	// ActionNormal hands the frame to the switch's L2 pipeline.
	ActionNormal ActionType = "normal"
)

// Action .
type Action struct {
	Type ActionType `json:"type"`
	Port int        `json:"port,omitempty"`
}

// String renders the action the way the static flow pusher expects.
func (a Action) String() string {
	if a.Type == ActionOutput {
		return string(a.Type) + "=" + strconv.Itoa(a.Port)
	}
	return string(a.Type)
}

// FlowRule is a static flow rule descriptor. Name is unique per switch.
type FlowRule struct {
	Switch   string            `json:"switch"`
	Name     string            `json:"name"`
	Kind     RuleKind          `json:"kind"`
	Hop      int               `json:"hop"`
	Priority int               `json:"priority"`
	Match    map[string]string `json:"match"`
	Actions  []Action          `json:"actions"`
	Active   bool              `json:"active"`
}
