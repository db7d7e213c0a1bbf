package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case Player:
		o.printPlayer(v)
	case Room:
		o.printRoom(v)
	case GameSummary:
		o.printGame(v)
	case Stats:
		o.printStats(v)
	case protocol.UpdateRoom:
		o.printLobby(v)
	case protocol.UpdateWinners:
		o.printWinners(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// Player response type (matches API)
type Player struct {
	Name         string    `json:"name"`
	Index        int       `json:"index"`
	Wins         int       `json:"wins"`
	Online       bool      `json:"online"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Room response type
type Room struct {
	ID        string    `json:"id"`
	Seats     []string  `json:"seats"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

// GamePlayer response type
type GamePlayer struct {
	Name        string `json:"name"`
	Ready       bool   `json:"ready"`
	ShipsAfloat int    `json:"ships_afloat"`
}

// GameSummary response type
type GameSummary struct {
	ID        string       `json:"id"`
	State     string       `json:"state"`
	Turn      string       `json:"turn"`
	Players   []GamePlayer `json:"players"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Stats response type
type Stats struct {
	Players     int `json:"players"`
	Rooms       int `json:"rooms"`
	Games       int `json:"games"`
	Connections int `json:"connections"`
	Clients     int `json:"clients"`
}

func (o *Output) printPlayer(p Player) {
	online := "no"
	if p.Online {
		online = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (index %d)\n", p.Name, p.Index)
	fmt.Fprintf(o.w, "Wins: %d\n", p.Wins)
	fmt.Fprintf(o.w, "Online: %s\n", online)
	fmt.Fprintf(o.w, "Registered: %s\n", p.RegisteredAt.Format(time.RFC3339))
}

func (o *Output) printRoom(r Room) {
	fmt.Fprintf(o.w, "Room: %s\n", r.ID)
	fmt.Fprintf(o.w, "Seats: %s\n", strings.Join(r.Seats, ", "))
	if r.Available {
		fmt.Fprintln(o.w, "Waiting for an opponent")
	}
}

func (o *Output) printGame(g GameSummary) {
	fmt.Fprintf(o.w, "Game: %s\n", g.ID)
	fmt.Fprintf(o.w, "State: %s\n", g.State)
	if g.Turn != "" {
		fmt.Fprintf(o.w, "Turn: %s\n", g.Turn)
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tREADY\tSHIPS AFLOAT")
	for _, p := range g.Players {
		fmt.Fprintf(tw, "%s\t%t\t%d\n", p.Name, p.Ready, p.ShipsAfloat)
	}
	_ = tw.Flush()
}

func (o *Output) printStats(s Stats) {
	fmt.Fprintf(o.w, "Players: %d\n", s.Players)
	fmt.Fprintf(o.w, "Open rooms: %d\n", s.Rooms)
	fmt.Fprintf(o.w, "Games: %d\n", s.Games)
	fmt.Fprintf(o.w, "Connections: %d\n", s.Connections)
	fmt.Fprintf(o.w, "WebSocket clients: %d\n", s.Clients)
}

func (o *Output) printLobby(rooms protocol.UpdateRoom) {
	if len(rooms) == 0 {
		fmt.Fprintln(o.w, "No open rooms")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tWAITING")
	for _, room := range rooms {
		names := make([]string, len(room.RoomUsers))
		for i, u := range room.RoomUsers {
			names[i] = u.Name
		}
		fmt.Fprintf(tw, "%s\t%s\n", room.RoomID, strings.Join(names, ", "))
	}
	_ = tw.Flush()
}

func (o *Output) printWinners(winners protocol.UpdateWinners) {
	if len(winners) == 0 {
		fmt.Fprintln(o.w, "No winners yet")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tWINS")
	for _, w := range winners {
		fmt.Fprintf(tw, "%s\t%d\n", w.Name, w.Wins)
	}
	_ = tw.Flush()
}

// writeBoard renders a grid with ships as #, hits as X and misses as o
func writeBoard(w io.Writer, g *model.Grid) {
	if w == nil || g == nil || g.Size == 0 {
		return
	}

	border := "   +" + strings.Repeat("---", g.Size) + "+"

	var b strings.Builder
	b.WriteString("    ")
	for col := 0; col < g.Size; col++ {
		fmt.Fprintf(&b, " %d ", col)
	}
	b.WriteString("\n")
	b.WriteString(border + "\n")

	for row := 0; row < g.Size; row++ {
		fmt.Fprintf(&b, " %d |", row)
		for col := 0; col < g.Size; col++ {
			fmt.Fprintf(&b, " %c ", cellGlyph(g.Get(model.Position{X: col, Y: row})))
		}
		b.WriteString("|\n")
	}
	b.WriteString(border + "\n")

	_, _ = io.WriteString(w, b.String())
}

func cellGlyph(c model.Cell) rune {
	switch c {
	case model.CellShip:
		return '#'
	case model.CellHit:
		return 'X'
	case model.CellMiss:
		return 'o'
	default:
		return '.'
	}
}
