package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/stater"
	"github.com/aretw0/stater/internal/logging"
	"github.com/aretw0/stater/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, manifest string) Config {
	t.Helper()
	cfg, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)
	cfg.Manifest = filepath.Join("testdata", manifest)
	cfg.Store.Dir = t.TempDir()
	cfg.Server.ShutdownTimeout = time.Second
	return cfg
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{"memory", "file"} {
		t.Run(driver, func(t *testing.T) {
			b, err := OpenStore(ctx, StoreConfig{Driver: driver, Dir: t.TempDir()})
			require.NoError(t, err)
			defer b.Close()
			assert.Nil(t, b.Locker)
			require.NoError(t, b.Store.Set(ctx, domain.StateKey{ChatID: 1}, "x"))
		})
	}

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		b, err := OpenStore(ctx, StoreConfig{Driver: "redis", Redis: RedisConfig{Addr: mr.Addr(), Prefix: "t:"}})
		require.NoError(t, err)
		defer b.Close()
		assert.NotNil(t, b.Locker)

		require.NoError(t, b.Store.Set(ctx, domain.StateKey{ChatID: 1}, "x"))
		assert.True(t, mr.Exists("t:chat:1"))
	})

	t.Run("redis unreachable", func(t *testing.T) {
		_, err := OpenStore(ctx, StoreConfig{Driver: "redis", Redis: RedisConfig{Addr: "127.0.0.1:1"}})
		assert.ErrorContains(t, err, "failed to connect to redis")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := OpenStore(ctx, StoreConfig{Driver: "etcd"})
		assert.Error(t, err)
	})

	t.Run("encrypted", func(t *testing.T) {
		key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
		cfg := StoreConfig{Driver: "file", Dir: t.TempDir(), EncryptionKey: key}
		b, err := OpenStore(ctx, cfg)
		require.NoError(t, err)
		require.NoError(t, b.Store.Set(ctx, domain.StateKey{ChatID: 1}, "secret_step"))

		state, err := b.Store.Get(ctx, domain.StateKey{ChatID: 1})
		require.NoError(t, err)
		assert.Equal(t, domain.StateID("secret_step"), state)

		raw, err := os.ReadFile(filepath.Join(cfg.Dir, "chat_1.json"))
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "secret_step")
	})

	t.Run("bad encryption key", func(t *testing.T) {
		_, err := OpenStore(ctx, StoreConfig{Driver: "memory", EncryptionKey: "c2hvcnQ="})
		assert.ErrorContains(t, err, "store.encryption_key")
	})
}

func TestRunPipeline_Strict(t *testing.T) {
	cfg := testConfig(t, "bot.yaml")
	cfg.Store.Strict = true

	var out, replies bytes.Buffer
	require.NoError(t, RunPipeline(context.Background(), cfg, strings.NewReader("/start\nhi\n"), &out, &replies, logging.NewNop()))
	assert.Contains(t, replies.String(), "[chat:1] hi\n", "chatting is a known state")
	assert.NotContains(t, out.String(), "unknown state")
}

func TestRunCheck(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	var out bytes.Buffer
	require.NoError(t, RunCheck(ctx, &out, filepath.Join("testdata", "bot.yaml"), termenv.Ascii, logger))
	assert.Contains(t, out.String(), "PASS case 1 (start)")
	assert.Contains(t, out.String(), "3 routes compiled, 2/2 cases passed.")

	out.Reset()
	err := RunCheck(ctx, &out, filepath.Join("testdata", "failing.yaml"), termenv.Ascii, logger)
	assert.True(t, errors.Is(err, ErrCheckFailed))
	assert.Contains(t, out.String(), "FAIL wrong handler")
	assert.Contains(t, out.String(), `expected handler "help", got "start"`)

	out.Reset()
	require.NoError(t, RunCheck(ctx, &out, filepath.Join("testdata", "deadend.yaml"), termenv.Ascii, logger))
	assert.Contains(t, out.String(), `WARN deadend.yaml:2: state "waiting" is entered but no route is scoped to it`)

	err = RunCheck(ctx, &out, filepath.Join("testdata", "ambiguous.yaml"), termenv.Ascii, logger)
	assert.True(t, errors.Is(err, stater.ErrAmbiguousRoute))
	assert.Contains(t, err.Error(), "ambiguous.yaml:2")
}

func TestRunPipeline(t *testing.T) {
	cfg := testConfig(t, "bot.yaml")
	cfg.Store.Driver = "file"

	in := strings.NewReader(strings.Join([]string{
		"/start",
		`{"kind":"message","chat_id":2,"text":"/start"}`,
		"hello there",
		"",
		`{"kind":"message","chat_id":2,"text":"ping"}`,
	}, "\n"))
	var out, replies bytes.Buffer

	require.NoError(t, RunPipeline(context.Background(), cfg, in, &out, &replies, logging.NewNop()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, replies.String(), "[chat:1] hello there\n")
	assert.Contains(t, replies.String(), "[chat:2] ping\n")

	// State outlives the run in the file store.
	var state bytes.Buffer
	require.NoError(t, ShowState(context.Background(), &state, cfg.Store, domain.StateKey{ChatID: 2}))
	assert.Equal(t, "chat:2\tchatting\n", state.String())
}

func TestRunPipeline_BadLine(t *testing.T) {
	cfg := testConfig(t, "bot.yaml")
	in := strings.NewReader("/start\n{broken\n")
	var out, replies bytes.Buffer

	err := RunPipeline(context.Background(), cfg, in, &out, &replies, logging.NewNop())
	assert.ErrorContains(t, err, "line 2")
	assert.Contains(t, replies.String(), "[chat:1] hello")
}

func TestResetStates(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, "bot.yaml")
	cfg.Store.Driver = "file"

	b, err := OpenStore(ctx, cfg.Store)
	require.NoError(t, err)
	require.NoError(t, b.Store.Set(ctx, domain.StateKey{ChatID: 3}, "chatting"))

	var out bytes.Buffer
	require.NoError(t, ResetStates(ctx, &out, cfg.Store, logging.NewNop(), domain.StateKey{ChatID: 3}))
	assert.Equal(t, "Reset 'chat:3'\n", out.String())

	state, err := b.Store.Get(ctx, domain.StateKey{ChatID: 3})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultState, state)
}

func TestRunServer(t *testing.T) {
	cfg := testConfig(t, "bot.yaml")
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var replies bytes.Buffer
	go func() { done <- RunServer(ctx, cfg, ln, &replies, logging.NewNop()) }()

	base := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post(base+"/updates", "application/json", strings.NewReader(`{"kind":"message","chat_id":4,"text":"/start"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	var body bytes.Buffer
	body.ReadFrom(resp.Body)
	resp.Body.Close()
	assert.Contains(t, body.String(), "stater_dispatches_total")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunMCP(t *testing.T) {
	cfg := testConfig(t, "bot.yaml")

	cfg.MCP.Transport = "carrier-pigeon"
	err := RunMCP(context.Background(), cfg, strings.NewReader(""), &bytes.Buffer{}, logging.NewNop())
	assert.ErrorContains(t, err, "unknown MCP transport")

	cfg.MCP.Transport = "sse"
	cfg.MCP.Addr = "127.0.0.1:0"
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunMCP(ctx, cfg, nil, nil, logging.NewNop()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("MCP server did not stop")
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routes: []\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, logging.NewNop(), func() { calls.Add(1) }) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("routes: []\n# edited\n"), 0644))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 5*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
