package session

import (
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/notify"
	"github.com/mcoot/seabattle/internal/protocol"
)

// delivery is one pending outbound message. Exactly one of conn, players
// or all selects the recipients.
type delivery struct {
	conn    notify.Conn
	players []model.PlayerName
	all     bool
	msg     protocol.Payload
}

// outbox collects the messages produced while handling an event so they are
// sent only after every table mutation for that event has completed
type outbox struct {
	deliveries []delivery
}

// reply queues msg for the originating connection
func (o *outbox) reply(conn notify.Conn, msg protocol.Payload) {
	o.deliveries = append(o.deliveries, delivery{conn: conn, msg: msg})
}

// toPlayers queues msg for the live connections of the named players
func (o *outbox) toPlayers(msg protocol.Payload, names ...model.PlayerName) {
	o.deliveries = append(o.deliveries, delivery{players: names, msg: msg})
}

// broadcast queues msg for every connected player
func (o *outbox) broadcast(msg protocol.Payload) {
	o.deliveries = append(o.deliveries, delivery{all: true, msg: msg})
}
