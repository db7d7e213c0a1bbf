package cli

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/seabattle/internal/dependencies/random"
)

func newGameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "game <id>",
		Short: "Show a game in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameSummary

			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/games/%s", url.PathEscape(args[0])), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayCmd() *cobra.Command {
	var (
		name     string
		password string
		room     string
		joinAny  bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game automatically",
		Long: `Register, find an opponent and play one game with a random fleet and
random shots.

By default a new room is opened and the command waits for someone to
join. Use --room to join a specific room, or --join-any to join the
first open room (opening one if there are none).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			if room != "" && joinAny {
				return fmt.Errorf("--room and --join-any are mutually exclusive")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sess, err := Dial(ctx, cfg.WebSocketURL())
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			// Progress goes to stderr when stdout carries JSON
			progress := os.Stdout
			if cfg.Output == "json" {
				progress = os.Stderr
			}
			player := NewAutoPlayer(name, random.New(), progress, cfg.Verbose)
			player.JoinRoom = room
			player.JoinAny = joinAny

			winner, err := Play(ctx, sess, player, password)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if cfg.Output == "json" {
				out.Print(map[string]string{"game": player.GameID(), "winner": winner})
			} else {
				out.PrintMessage(fmt.Sprintf("Game %s finished, winner: %s", player.GameID(), winner))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name to register as")
	cmd.Flags().StringVar(&password, "password", "", "Player password")
	cmd.Flags().StringVar(&room, "room", "", "Room id to join")
	cmd.Flags().BoolVar(&joinAny, "join-any", false, "Join the first open room")

	return cmd
}
