package log

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestSetupFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "labflow.log")
	flush, err := Setup(Config{Level: "debug", UseJSON: true, Filename: file, MaxSize: 1})
	require.NoError(t, err)
	defer flush()

	ctx := WithTrace(context.Background(), "op-1")
	WithFunc("TestSetupFile").WithField("handler", "h").Infof(ctx, "pushed %d rules", 6)
	WithFunc("TestSetupFile").Errorf(ctx, errors.New("boom"), "failed")

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"func":"TestSetupFile"`)
	require.Contains(t, lines[0], `"handler":"h"`)
	require.Contains(t, lines[0], `"trace":"op-1"`)
	require.Contains(t, lines[0], "pushed 6 rules")
	require.Contains(t, lines[1], "boom")
}

func TestSetupInvalidLevel(t *testing.T) {
	_, err := Setup(Config{Level: "loud"})
	require.Error(t, err)
}

func TestWithFieldCopies(t *testing.T) {
	base := WithFunc("f")
	child := base.WithField("k", 1)
	require.NotContains(t, base.kv, "k")
	require.Equal(t, 1, child.kv["k"])
}
