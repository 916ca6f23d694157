package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-graph/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDemoWritesScene(t *testing.T) {
	out := filepath.Join(t.TempDir(), "demo.yaml")
	var stdout, stderr bytes.Buffer
	err := run([]string{"-demo", "-frames", "30", "-dt", "0.1", "-out", out}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.Contains(t, stdout.String(), "time: 3.000s")
	assert.Contains(t, stdout.String(), "nodes: 6")
	assert.Contains(t, stdout.String(), "draw camera: eye")

	s := scene.NewScene()
	t.Cleanup(s.Close)
	require.NoError(t, s.LoadFile(out))
	assert.Equal(t, 6, s.NodeCount())
	require.NotNil(t, s.FindNodeByName("follower", scene.TypeObject))
	require.NotNil(t, s.DrawCamera())
}

func TestRunLoadsAndConverts(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.json")
	second := filepath.Join(dir, "b.yaml")
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-demo", "-frames", "0", "-out", first}, &stdout, &stderr))

	stdout.Reset()
	require.NoError(t, run([]string{"-in", first, "-frames", "5", "-out", second}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "nodes: 6")
	_, err := os.Stat(second)
	assert.NoError(t, err)
}

func TestRunConfigScenePath(t *testing.T) {
	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.json")
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-demo", "-frames", "0", "-out", scenePath}, &stdout, &stderr))

	cfgPath := filepath.Join(dir, "settings.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[scene]\npath = \""+filepath.ToSlash(scenePath)+"\"\n"), 0644))

	stdout.Reset()
	require.NoError(t, run([]string{"-config", cfgPath, "-frames", "1"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "nodes: 6")
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run(nil, &stdout, &stderr))
	assert.Error(t, run([]string{"-demo", "-frames", "-1"}, &stdout, &stderr))
	assert.Error(t, run([]string{"-in", filepath.Join(t.TempDir(), "missing.json")}, &stdout, &stderr))
	assert.Error(t, run([]string{"-demo", "-out", filepath.Join(t.TempDir(), "scene.ini")}, &stdout, &stderr))
	assert.True(t, errors.Is(run([]string{"-h"}, &stdout, &stderr), flag.ErrHelp))
}
