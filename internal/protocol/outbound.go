package protocol

import "github.com/mcoot/seabattle/internal/model"

// RegResponse acknowledges a registration attempt
type RegResponse struct {
	Name      string `json:"name"`
	Index     int    `json:"index"`
	Error     bool   `json:"error"`
	ErrorText string `json:"errorText"`
}

// RoomUser is a seated player in a lobby entry
type RoomUser struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// RoomEntry is one joinable room in the lobby snapshot
type RoomEntry struct {
	RoomID    string     `json:"roomId"`
	RoomUsers []RoomUser `json:"roomUsers"`
}

// UpdateRoom is the lobby snapshot
type UpdateRoom []RoomEntry

// WinnerEntry is one row of the winners table
type WinnerEntry struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// UpdateWinners is the winners table
type UpdateWinners []WinnerEntry

// CreateGame tells a seated player their game and slot
type CreateGame struct {
	IDGame   string `json:"idGame"`
	IDPlayer string `json:"idPlayer"`
}

// StartGame hands a player their own fleet once both fleets are in
type StartGame struct {
	Ships              []ShipRecord `json:"ships"`
	CurrentPlayerIndex string       `json:"currentPlayerIndex"`
}

// Turn names the player allowed to attack next
type Turn struct {
	CurrentPlayer string `json:"currentPlayer"`
}

// AttackStatus is the outcome of a shot
type AttackStatus string

const (
	StatusMiss   AttackStatus = "miss"
	StatusShot   AttackStatus = "shot"
	StatusKilled AttackStatus = "killed"
)

// AttackResponse reports a resolved shot to both participants
type AttackResponse struct {
	Position      PositionRecord `json:"position"`
	CurrentPlayer string         `json:"currentPlayer"`
	Status        AttackStatus   `json:"status"`
}

// Finish announces the winner
type Finish struct {
	WinPlayer string `json:"winPlayer"`
}

// ErrorResponse reports a rejected request to its sender
type ErrorResponse struct {
	Error string `json:"error"`
}

func (RegResponse) MessageType() MessageType    { return TypeReg }
func (UpdateRoom) MessageType() MessageType     { return TypeUpdateRoom }
func (UpdateWinners) MessageType() MessageType  { return TypeUpdateWinners }
func (CreateGame) MessageType() MessageType     { return TypeCreateGame }
func (StartGame) MessageType() MessageType      { return TypeStartGame }
func (Turn) MessageType() MessageType           { return TypeTurn }
func (AttackResponse) MessageType() MessageType { return TypeAttack }
func (Finish) MessageType() MessageType         { return TypeFinish }
func (ErrorResponse) MessageType() MessageType  { return TypeError }

// NewUpdateRoom builds the lobby snapshot from available rooms.
// Seat index is the player's position in the room.
func NewUpdateRoom(rooms []*model.Room) UpdateRoom {
	entries := make(UpdateRoom, 0, len(rooms))
	for _, room := range rooms {
		users := make([]RoomUser, 0, len(room.Seats))
		for i, name := range room.Seats {
			users = append(users, RoomUser{Name: string(name), Index: i})
		}
		entries = append(entries, RoomEntry{RoomID: string(room.ID), RoomUsers: users})
	}
	return entries
}

// NewUpdateWinners builds the winners table
func NewUpdateWinners(players []*model.Player) UpdateWinners {
	entries := make(UpdateWinners, 0, len(players))
	for _, p := range players {
		entries = append(entries, WinnerEntry{Name: string(p.Name), Wins: p.Wins})
	}
	return entries
}
