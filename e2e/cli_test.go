package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/seabattle/internal/factory"
	"github.com/mcoot/seabattle/internal/services/player"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "seabattle-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/seabattle")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) command(args ...string) *exec.Cmd {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)
	return exec.Command(r.binaryPath, fullArgs...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	output, err := r.command(args...).CombinedOutput()
	return string(output), err
}

// start launches a long-running command, capturing stdout and stderr apart
func (r *cliRunner) start(t *testing.T, args ...string) (*exec.Cmd, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cmd := r.command(args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		if cmd.ProcessState == nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	})
	return cmd, &stdout, &stderr
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.App
	addr     string
	wsURL    string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{
		Logger:       logger,
		PlayerConfig: player.Config{PasswordCost: bcrypt.MinCost},
	})
	require.NoError(t, err)

	coordCtx, stopCoordinator := context.WithCancel(context.Background())
	coordDone := make(chan struct{})
	go func() {
		defer close(coordDone)
		app.Coordinator.Run(coordCtx)
	}()

	server := &http.Server{
		Addr:    addr,
		Handler: app.Router,
	}
	server.RegisterOnShutdown(app.Hub.Close)

	// Start server
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	ts := &testServer{
		app:   app,
		addr:  serverURL,
		wsURL: "ws://" + addr + "/ws",
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			stopCoordinator()
			<-coordDone
			_ = app.Close()
		},
	}
	t.Cleanup(ts.shutdown)
	return ts
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type healthResponse struct {
	Status string `json:"status"`
}

type roomEntry struct {
	RoomID    string `json:"roomId"`
	RoomUsers []struct {
		Name  string `json:"name"`
		Index int    `json:"index"`
	} `json:"roomUsers"`
}

type winnerEntry struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

type playerResponse struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Online bool   `json:"online"`
}

type playResult struct {
	Game   string `json:"game"`
	Winner string `json:"winner"`
}

type errorResponse struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_EmptyServer(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("rooms")
	require.NoError(t, err, "output: %s", output)
	assert.JSONEq(t, `[]`, output)

	output, err = cli.run("winners")
	require.NoError(t, err, "output: %s", output)
	assert.JSONEq(t, `[]`, output)

	output, err = cli.run("player", "nobody")
	require.Error(t, err)
	assert.Contains(t, output, "PLAYER_NOT_FOUND")
}

func TestCLI_TwoPlayersFinishAGame(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.addr)

	// Alice opens a room and waits
	alice, aliceOut, aliceErr := cli.start(t, "play", "--name", "alice", "--password", "a-secret")

	var rooms []roomEntry
	require.Eventually(t, func() bool {
		output, err := cli.run("rooms")
		if err != nil || json.Unmarshal([]byte(output), &rooms) != nil {
			return false
		}
		return len(rooms) == 1
	}, 10*time.Second, 50*time.Millisecond)
	require.Len(t, rooms[0].RoomUsers, 1)
	assert.Equal(t, "alice", rooms[0].RoomUsers[0].Name)

	// Bob joins whatever is open
	bob, bobOut, bobErr := cli.start(t, "play", "--name", "bob", "--password", "b-secret", "--join-any")

	require.NoError(t, bob.Wait(), "bob: %s", bobErr.String())
	require.NoError(t, alice.Wait(), "alice: %s", aliceErr.String())

	var aliceResult, bobResult playResult
	require.NoError(t, json.Unmarshal(aliceOut.Bytes(), &aliceResult))
	require.NoError(t, json.Unmarshal(bobOut.Bytes(), &bobResult))
	assert.Equal(t, aliceResult, bobResult)
	assert.Contains(t, []string{"alice", "bob"}, aliceResult.Winner)
	assert.NotEmpty(t, aliceResult.Game)

	// The finished game is gone
	output, err := cli.run("game", aliceResult.Game)
	require.Error(t, err)
	assert.Contains(t, output, "GAME_NOT_FOUND")

	// And the winners table counts it
	output, err = cli.run("winners")
	require.NoError(t, err, "output: %s", output)
	var winners []winnerEntry
	require.NoError(t, json.Unmarshal([]byte(output), &winners))
	assert.Equal(t, []winnerEntry{{Name: aliceResult.Winner, Wins: 1}}, winners)

	// Both clients have exited, so the winner goes offline with the win kept
	var p playerResponse
	assert.Eventually(t, func() bool {
		output, err := cli.run("player", aliceResult.Winner)
		return err == nil && json.Unmarshal([]byte(output), &p) == nil && !p.Online
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, 1, p.Wins)
}

func TestCLI_PlayRejectsWrongPassword(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.addr)

	// First session registers carol and leaves a room open
	first, _, _ := cli.start(t, "play", "--name", "carol", "--password", "right")
	require.Eventually(t, func() bool {
		output, err := cli.run("player", "carol")
		return err == nil && json.Valid([]byte(output))
	}, 10*time.Second, 50*time.Millisecond)
	_ = first.Process.Kill()
	_ = first.Wait()

	output, err := cli.run("play", "--name", "carol", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, output, "registration failed")
}

func TestCLI_GameNotFound(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("game", "game_missing")
	require.Error(t, err)
	assert.Contains(t, output, "GAME_NOT_FOUND")

	// The server's own error body carries the same code
	resp, err := http.Get(ts.addr + "/api/v1/games/game_missing")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "GAME_NOT_FOUND", body.Error.Code)
}
