package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"amoebot/internal/election"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestRunPrintsMetrics(t *testing.T) {
	out := execute(t, "run", "--shape", "ring", "--size", "2", "--seed", "3")
	var m election.Metrics
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, 12, m.Particles)
	assert.Equal(t, 1, m.Leaders)
	assert.True(t, m.Terminated)
}

func TestDumpPrintsYAML(t *testing.T) {
	out := execute(t, "dump", "--shape", "triangle", "--size", "3", "--seed", "2", "--steps", "40")
	var d election.Dump
	require.NoError(t, yaml.Unmarshal([]byte(out), &d))
	assert.Len(t, d.Particles, 6)
	assert.Equal(t, int64(40), d.Activations)
}

func TestSweepRecordsHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trials.db")
	out := execute(t, "--db", db, "sweep", "--shapes", "pair,line", "--size", "3", "--seeds", "3", "--workers", "2", "--record")
	assert.Contains(t, out, "pair")
	assert.Contains(t, out, "line")

	out = execute(t, "--db", db, "history", "--limit", "0")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 7, out)

	out = execute(t, "--db", db, "history", "--summary")
	assert.Contains(t, out, "MEAN ACT")
	assert.Contains(t, out, "pair")
}
