package service

import (
	"context"

	"github.com/projecteru2/labflow/internal/models"
	"github.com/projecteru2/labflow/internal/network/flow"
)

// Service provisions and tears down lab connections.
type Service interface {
	Ping() map[string]string
	CheckHealth(ctx context.Context) error

	// Records are the students, courses and servers connections are resolved against.
	Records() *models.Database

	Provision(ctx context.Context, req ConnectionRequest) (*Provisioned, error)
	Teardown(ctx context.Context, handler string) (flow.Results, error)
	GetConnection(ctx context.Context, handler string) (*models.Connection, error)
	ListConnections(ctx context.Context) ([]*models.Connection, error)

	Close() error
}

// ConnectionRequest .
type ConnectionRequest struct {
	StudentCode int    `json:"student" binding:"required"`
	ServerName  string `json:"server" binding:"required"`
	ServiceName string `json:"service" binding:"required"`
}

// Provisioned is the outcome of a provisioning whose rules were attempted.
type Provisioned struct {
	Connection *models.Connection `json:"connection,omitempty"`
	Results    flow.Results       `json:"results"`
	Failed     []string           `json:"failed,omitempty"`
	RolledBack bool               `json:"rolled_back,omitempty"`
}
