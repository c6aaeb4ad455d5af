package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cryborg/sugoroku/internal/apperrors"
	"github.com/Cryborg/sugoroku/internal/server/session"
)

// writeConfig points the CLI at a throwaway SQLite file.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sugoroku.yaml")
	body := "storage:\n  driver: sqlite\n  sqlite_path: " + filepath.Join(dir, "test.db") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{out: &out}
	err := a.command().Run(context.Background(), append([]string{"trapctl", "--config", cfg}, args...))
	return out.String(), err
}

func TestLifecycle(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "create", "--points", "12", "--resolution", "batch", "ann", "ben", "cid")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = run(t, cfg, "start", id)
	require.NoError(t, err)
	assert.Contains(t, out, "turn 1/")
	assert.Contains(t, out, "batch")

	out, err = run(t, cfg, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = run(t, cfg, "advance", id)
	require.NoError(t, err)
	var adv session.AdvanceResult
	require.NoError(t, json.Unmarshal([]byte(out), &adv))
	assert.True(t, adv.Advanced)
	assert.Equal(t, session.AdvanceForced, adv.Reason)

	out, err = run(t, cfg, "show", "--player", "nobody", id)
	require.NoError(t, err)
	assert.Contains(t, out, "turn 2/")
	assert.Contains(t, out, "ann")

	out, err = run(t, cfg, "check-end", id)
	require.NoError(t, err)
	var end session.EndResult
	require.NoError(t, json.Unmarshal([]byte(out), &end))
	assert.False(t, end.Ended)

	_, err = run(t, cfg, "delete", id)
	require.NoError(t, err)
	_, err = run(t, cfg, "show", id)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestErrors(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "start")
	assert.ErrorContains(t, err, "missing SESSION")

	_, err = run(t, cfg, "create", "ann", "ben")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRoster)

	_, err = run(t, filepath.Join(t.TempDir(), "missing.yaml"), "list")
	assert.ErrorContains(t, err, "read config")
}
