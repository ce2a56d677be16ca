package network

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/projecteru2/labflow/internal/network/types"
)

// Topology resolves hosts and paths on the controller.
type Topology interface {
	// MACOf returns the hardware address of the device holding ip.
	MACOf(ctx context.Context, ip string) (string, error)
	// Locate returns the attachment point of the device with mac.
	Locate(ctx context.Context, mac string) (types.AttachmentPoint, error)
	// Route returns the raw hop list between two attachment points.
	// An empty list means there is no route.
	Route(ctx context.Context, src, dst types.AttachmentPoint) ([]types.Hop, error)
}

// FlowPusher installs and removes static flow rules.
type FlowPusher interface {
	Push(ctx context.Context, rule types.FlowRule) error
	// Delete removes the rule by name. A missing name is not an error.
	Delete(ctx context.Context, name string) error
}

// Driver .
type Driver interface {
	Topology
	FlowPusher

	CheckHealth(ctx context.Context) error
	GetMetricsCollector() prometheus.Collector
}
