package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/projecteru2/labflow/internal/models"
	"github.com/projecteru2/labflow/internal/network/drivers/fake"
	"github.com/projecteru2/labflow/internal/network/types"
	"github.com/projecteru2/labflow/internal/service"
	"github.com/projecteru2/labflow/pkg/terrors"
)

const (
	studentCode = 20211688
	handler     = "20211688_web_ssh"
	hops        = 12
)

// writeConfig lays out a records file, a fake topology of hops switches
// in a line and a config naming both. Everything else is left default.
func writeConfig(t *testing.T) string {
	dir := t.TempDir()

	db := models.NewDatabase()
	require.NoError(t, db.AddStudent(models.Student{Code: studentCode, Name: "Ana", MAC: "fa:16:3e:00:00:01"}))
	require.NoError(t, db.AddServer(models.Server{
		Name:     "web",
		IP:       "10.0.0.3",
		Services: []types.ServiceSpec{{Name: "ssh", Protocol: "tcp", Port: 22}},
	}))
	require.NoError(t, db.AddCourse(models.Course{
		Code:     "TEL354",
		Status:   models.StatusActive,
		Students: []int{studentCode},
		Servers:  []models.CourseServer{{Name: "web", AllowedServices: []string{"ssh"}}},
	}))
	records := filepath.Join(dir, "records.yaml")
	require.NoError(t, db.Export(records))

	topo := fake.Topology{
		Hosts: []fake.Host{
			{MAC: "fa:16:3e:00:00:01", IP: "10.0.0.1", Switch: "S0", Port: 1},
			{MAC: "fa:16:3e:00:00:03", IP: "10.0.0.3", Switch: fmt.Sprintf("S%d", hops-1), Port: 2},
		},
	}
	for i := 0; i < hops-1; i++ {
		topo.Links = append(topo.Links, fake.Link{
			SrcSwitch: fmt.Sprintf("S%d", i), SrcPort: 3,
			DstSwitch: fmt.Sprintf("S%d", i+1), DstPort: 4,
		})
	}
	buf, err := yaml.Marshal(topo)
	require.NoError(t, err)
	topoFile := filepath.Join(dir, "topology.yaml")
	require.NoError(t, os.WriteFile(topoFile, buf, 0o600))

	raw := fmt.Sprintf(`
[controller]
mode = "fake"
fake_topology = %q

[records]
file = %q
`, topoFile, records)
	cfgFile := filepath.Join(dir, "labflow.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(raw), 0o600))
	return cfgFile
}

func newRuntime(t *testing.T, cfgFile string) *Runtime {
	rt := &Runtime{ConfigFiles: []string{cfgFile}}
	flush, err := rt.setup()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, rt.Engine.Close())
		flush()
	})
	return rt
}

func TestConnectionsOutliveRuntime(t *testing.T) {
	ctx := context.Background()
	cfgFile := writeConfig(t)
	req := service.ConnectionRequest{StudentCode: studentCode, ServerName: "web", ServiceName: "ssh"}

	first := newRuntime(t, cfgFile)
	require.Equal(t, "file", first.Config.Meta.Type)
	p, err := first.Engine.Provision(ctx, req)
	require.NoError(t, err)
	require.Equal(t, hops, p.Connection.Hops)

	// a second invocation starts from the same config and nothing else
	second := newRuntime(t, cfgFile)

	conns, err := second.Engine.ListConnections(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	require.Equal(t, handler, conns[0].Handler)
	require.Equal(t, hops, conns[0].Hops)

	_, err = second.Engine.Provision(ctx, req)
	require.True(t, terrors.IsConnectionExistsErr(err))

	// the recorded hop count bounds the teardown, not the legacy 10
	results, err := second.Engine.Teardown(ctx, handler)
	require.NoError(t, err)
	require.Len(t, results, 2*hops)

	conns, err = first.Engine.ListConnections(ctx)
	require.NoError(t, err)
	require.Empty(t, conns)

	fpth, err := first.Config.MetaFile()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(cfgFile), "connections.json"), fpth)
}
