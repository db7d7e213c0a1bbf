package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/seabattle/internal/protocol"
)

func newWatchCmd() *cobra.Command {
	var (
		name       string
		password   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Register and stream server messages",
		Long: `Connect to the game endpoint, register, and print every message the
server pushes to this connection.

Messages include:
  - reg: Registration result
  - update_room: Open rooms changed
  - update_winners: Winners table changed
  - create_game, start_game, turn, attack, finish: Game progress
  - error: A request was rejected

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, os.Stdout, name, password, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name to register as")
	cmd.Flags().StringVar(&password, "password", "", "Player password")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output messages as JSON lines")

	return cmd
}

// WatchedMessage is one server message as printed by watch --json
type WatchedMessage struct {
	Time time.Time            `json:"time"`
	Type protocol.MessageType `json:"type"`
	Data json.RawMessage      `json:"data"`
}

func watch(ctx context.Context, w io.Writer, name, password string, jsonOutput bool) error {
	sess, err := Dial(ctx, cfg.WebSocketURL())
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if err := sess.Send(protocol.RegRequest{Name: name, Password: password}); err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Fprintf(w, "Connected to %s as %s\n", cfg.WebSocketURL(), name)
	}

	for {
		env, err := sess.Next()
		if err != nil {
			if ctx.Err() != nil || IsClosed(err) {
				if !jsonOutput {
					fmt.Fprintln(w, "Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		printMessage(w, env, jsonOutput)
	}
}

func printMessage(w io.Writer, env *protocol.Envelope, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		data, _ := json.Marshal(WatchedMessage{Time: now, Type: env.Type, Data: env.Data})
		fmt.Fprintln(w, string(data))
		return
	}

	display := strings.ReplaceAll(string(env.Data), "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), env.Type, display)
}
