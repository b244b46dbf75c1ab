package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

type testEnv struct {
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

// run executes the garden command in-process and returns its stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "garden %s", strings.Join(args, " "))
	return out
}

func (e *testEnv) createGarden(t *testing.T, as string, args ...string) *types.Garden {
	t.Helper()
	out := e.mustRun(t, append([]string{"--as", as, "--json", "create"}, args...)...)
	var g types.Garden
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	return &g
}

func roseBedArgs() []string {
	return []string{
		"--name", "Rose Bed",
		"--location", "Back yard",
		"--image", "rose.png",
		"--plant", "rose",
		"--plant", "lavender",
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "version")
	assert.Contains(t, out, "garden v")
	assert.Contains(t, out, modulePath)

	_, err := os.Stat(env.configDir)
	assert.True(t, os.IsNotExist(err), "version must not touch the config dir")
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "init")
	assert.Contains(t, out, "Gardens initialized")
	assert.Contains(t, out, configFileExt)

	data, err := os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "data_dir: "+env.dataDir)

	_, err = os.Stat(filepath.Join(env.dataDir, "gardens.jsonl"))
	assert.NoError(t, err)

	// Idempotent; an existing config is left alone.
	out = env.mustRun(t, "init")
	assert.NotContains(t, out, "Wrote")
}

func TestCreateAndGet(t *testing.T) {
	env := newTestEnv(t)

	created := env.createGarden(t, "alice", roseBedArgs()...)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Rose Bed", created.Name)
	assert.Equal(t, "alice", created.Owner.String())
	assert.Equal(t, []string{"rose", "lavender"}, created.Plants)
	assert.Nil(t, created.UpdatedAt)

	out := env.mustRun(t, "--json", "get", created.ID)
	var got types.Garden
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	human := env.mustRun(t, "get", created.ID)
	assert.Contains(t, human, "Rose Bed ["+created.ID+"]")
	assert.Contains(t, human, "location: Back yard")
	assert.Contains(t, human, "owner: alice")
	assert.Contains(t, human, "plants (2)")
	assert.Contains(t, human, "updated: -")
}

func TestCreateInvalid(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "--as", "alice", "create", "--name", "Rose Bed", "--location", "Back yard")
	require.Error(t, err)
	assert.True(t, types.IsInvalid(err))
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = env.run(t, "--as", "alice", "create", "--name", "Rose Bed", "--location", "Back yard",
		"--image", "rose.png", "--plant", "rose", "--plant", "rose")
	require.Error(t, err)
	assert.True(t, types.IsInvalid(err))
}

func TestGetMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "get", "nope")
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestList(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "list")
	assert.Contains(t, out, "No gardens.")

	out = env.mustRun(t, "--json", "list")
	assert.JSONEq(t, "[]", out)

	env.createGarden(t, "alice", roseBedArgs()...)
	env.createGarden(t, "bob", "--name", "Herbs", "--location", "Kitchen", "--image", "herbs.jpg")

	out = env.mustRun(t, "list")
	assert.Contains(t, out, "2 gardens")
	assert.Contains(t, out, "Rose Bed")
	assert.Contains(t, out, "plants: rose, lavender")
	assert.Contains(t, out, "Herbs")
	assert.Contains(t, out, "plants: -")

	out = env.mustRun(t, "--as", "bob", "--json", "list", "--mine")
	var gs []types.Garden
	require.NoError(t, json.Unmarshal([]byte(out), &gs))
	require.Len(t, gs, 1)
	assert.Equal(t, "Herbs", gs[0].Name)
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGarden(t, "alice", roseBedArgs()...)

	out := env.mustRun(t, "--as", "alice", "--json", "update", g.ID, "--location", "Front yard")
	var updated types.Garden
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, "Rose Bed", updated.Name)
	assert.Equal(t, "Front yard", updated.Location)
	assert.Equal(t, []string{"rose", "lavender"}, updated.Plants)
	require.NotNil(t, updated.UpdatedAt)

	out = env.mustRun(t, "--as", "alice", "--json", "update", g.ID, "--clear-plants")
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Empty(t, updated.Plants)

	out = env.mustRun(t, "--as", "alice", "--json", "update", g.ID, "--plant", "tulip")
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, []string{"tulip"}, updated.Plants)
}

func TestOwnership(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGarden(t, "alice", roseBedArgs()...)

	tests := []struct {
		name string
		args []string
	}{
		{name: "update", args: []string{"update", g.ID, "--name", "Mine now"}},
		{name: "delete", args: []string{"delete", g.ID}},
		{name: "plant add", args: []string{"plant", "add", g.ID, "tulip"}},
		{name: "plant remove", args: []string{"plant", "remove", g.ID, "rose"}},
		{name: "image", args: []string{"image", g.ID, "weeds.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, append([]string{"--as", "bob"}, tt.args...)...)
			require.Error(t, err)
			assert.True(t, types.IsUnauthorized(err))
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}

	// Reads are open to everyone.
	out := env.mustRun(t, "--as", "bob", "plant", "list", g.ID)
	assert.Equal(t, "rose\nlavender\n", out)
}

func TestPlants(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGarden(t, "alice", roseBedArgs()...)

	out := env.mustRun(t, "--as", "alice", "plant", "add", g.ID, "tulip")
	assert.Equal(t, "rose\nlavender\ntulip\n", out)

	_, err := env.run(t, "--as", "alice", "plant", "add", g.ID, "rose")
	require.Error(t, err)
	assert.True(t, types.IsConflict(err))

	out = env.mustRun(t, "--as", "alice", "plant", "remove", g.ID, "rose")
	assert.Equal(t, "lavender\ntulip\n", out)

	_, err = env.run(t, "--as", "alice", "plant", "remove", g.ID, "rose")
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))

	out = env.mustRun(t, "--json", "plant", "list", g.ID)
	assert.JSONEq(t, `["lavender","tulip"]`, out)
}

func TestImage(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGarden(t, "alice", roseBedArgs()...)

	out := env.mustRun(t, "--as", "alice", "--json", "image", g.ID, "roses-in-june.png")
	var got types.Garden
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "roses-in-june.png", got.Image)

	out = env.mustRun(t, "--as", "alice", "image", g.ID, "")
	assert.Contains(t, out, "image: -")
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	g := env.createGarden(t, "alice", roseBedArgs()...)

	out := env.mustRun(t, "--as", "alice", "delete", g.ID)
	assert.Equal(t, "Deleted Rose Bed ["+g.ID+"]\n", out)

	_, err := env.run(t, "get", g.ID)
	assert.True(t, types.IsNotFound(err))
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	env.createGarden(t, "alice", roseBedArgs()...)
	env.createGarden(t, "bob", "--name", "Herbs", "--location", "Kitchen", "--image", "herbs.jpg", "--plant", "rose")

	out := env.mustRun(t, "--json", "stats")
	var stats gardenStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.Gardens)
	assert.Equal(t, 2, stats.Owners)
	assert.Equal(t, 3, stats.Plants)
	assert.Equal(t, 2, stats.DistinctPlants)
	assert.Equal(t, float64(2), stats.Metrics["gardens_sqlite_records"])
	assert.Equal(t, float64(1), stats.Metrics[`gardens_registry_requests_total{code="ok",method="list_gardens"}`])

	out = env.mustRun(t, "stats")
	assert.Contains(t, out, "Gardens:         2")
	assert.Contains(t, out, "gardens_sqlite_records 2")
}

func TestBackendsFromEnvironment(t *testing.T) {
	for _, backend := range []string{types.BackendBolt, types.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			t.Setenv("GARDENS_BACKEND", backend)
			env := newTestEnv(t)

			g := env.createGarden(t, "alice", roseBedArgs()...)
			out := env.mustRun(t, "--json", "get", g.ID)
			assert.Contains(t, out, `"Rose Bed"`)
		})
	}
}

func TestUnknownBackend(t *testing.T) {
	t.Setenv("GARDENS_BACKEND", "postgres")
	env := newTestEnv(t)

	_, err := env.run(t, "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitSuccess},
		{name: "usage", err: errors.New("accepts 1 arg(s), received 0"), want: exitUserError},
		{name: "invalid", err: types.ErrInvalid("bad"), want: exitUserError},
		{name: "not found", err: types.ErrGardenNotFound("g1"), want: exitUserError},
		{name: "unauthorized", err: types.ErrNotOwner("g1"), want: exitUserError},
		{name: "conflict", err: types.ErrDuplicatePlant("g1", "rose"), want: exitUserError},
		{name: "storage", err: types.ErrStorage("get", errors.New("disk on fire")), want: exitSysError},
		{name: "wrapped storage", err: fmt.Errorf("list: %w", types.ErrStorage("list", errors.New("io"))), want: exitSysError},
		{name: "environment", err: &sysError{err: errors.New("cannot open")}, want: exitSysError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestResolveIdentity(t *testing.T) {
	orig := currentUser
	t.Cleanup(func() { currentUser = orig })
	currentUser = func() (*user.User, error) { return &user.User{Username: "os-user"}, nil }

	tests := []struct {
		name       string
		flag       string
		configured string
		want       string
	}{
		{name: "flag wins", flag: "alice", configured: "bob", want: "alice"},
		{name: "configured when no flag", configured: "bob", want: "bob"},
		{name: "os user last", want: "os-user"},
		{name: "blank flag ignored", flag: "  ", configured: "bob", want: "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := resolveIdentity(tt.flag, tt.configured)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id.String())
		})
	}

	currentUser = func() (*user.User, error) { return nil, errors.New("no passwd entry") }
	_, err := resolveIdentity("", "")
	assert.Error(t, err)
}

func TestIdentityFromEnvironment(t *testing.T) {
	t.Setenv("GARDENS_IDENTITY", "carol")
	env := newTestEnv(t)

	out := env.mustRun(t, "--json", "create", "--name", "Ferns", "--location", "Shade", "--image", "ferns.png")
	var g types.Garden
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Equal(t, "carol", g.Owner.String())
}

// countingGetter serves GetGarden from a fixed garden and counts the calls.
type countingGetter struct {
	types.GardenService
	garden *types.Garden
	gets   int
}

func (c *countingGetter) GetGarden(context.Context, string) (*types.Garden, error) {
	c.gets++
	return c.garden, nil
}

func TestUpdatePayload(t *testing.T) {
	stored := &types.Garden{
		ID:       "g1",
		Name:     "Rose Bed",
		Location: "Back yard",
		Image:    "rose.png",
		Plants:   []string{"rose"},
	}

	tests := []struct {
		name     string
		args     []string
		want     types.GardenPayload
		wantGets int
	}{
		{
			name:     "every field given skips the read",
			args:     []string{"--name", "Herbs", "--location", "Kitchen", "--image", "herbs.jpg", "--plant", "basil"},
			want:     types.GardenPayload{Name: "Herbs", Location: "Kitchen", Image: "herbs.jpg", Plants: []string{"basil"}},
			wantGets: 0,
		},
		{
			name:     "clear plants counts as given",
			args:     []string{"--name", "Herbs", "--location", "Kitchen", "--image", "herbs.jpg", "--clear-plants"},
			want:     types.GardenPayload{Name: "Herbs", Location: "Kitchen", Image: "herbs.jpg"},
			wantGets: 0,
		},
		{
			name:     "partial update keeps stored fields",
			args:     []string{"--location", "Front yard"},
			want:     types.GardenPayload{Name: "Rose Bed", Location: "Front yard", Image: "rose.png", Plants: []string{"rose"}},
			wantGets: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f payloadFlags
			fs := pflag.NewFlagSet("update", pflag.ContinueOnError)
			f.register(fs)
			fs.BoolVar(&f.clearPlants, "clear-plants", false, "")
			require.NoError(t, fs.Parse(tt.args))

			svc := &countingGetter{garden: stored}
			a := &app{svc: svc}
			got, err := a.updatePayload(context.Background(), fs, "g1", &f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantGets, svc.gets)
		})
	}
}
