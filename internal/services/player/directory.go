package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/notify"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/storage"
)

// Config holds configuration for the player directory
type Config struct {
	PasswordCost int
}

// DefaultConfig returns default directory configuration
func DefaultConfig() Config {
	return Config{
		PasswordCost: bcrypt.DefaultCost,
	}
}

// Directory tracks registered players and the live connection bound to each.
// Records live in storage; bindings are process-local.
type Directory struct {
	storage  storage.Storage
	clock    clock.Clock
	notifier *notify.Notifier
	logger   *slog.Logger
	cost     int

	// regMu serializes read-modify-write of player records
	regMu sync.Mutex

	mu    sync.RWMutex
	conns map[model.PlayerName]notify.Conn
	names map[string]model.PlayerName // conn id -> bound name
}

// New creates a new player Directory
func New(storage storage.Storage, clock clock.Clock, notifier *notify.Notifier, logger *slog.Logger, cfg Config) *Directory {
	if cfg.PasswordCost == 0 {
		cfg.PasswordCost = DefaultConfig().PasswordCost
	}
	return &Directory{
		storage:  storage,
		clock:    clock,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "player-directory")),
		cost:     cfg.PasswordCost,
		conns:    make(map[model.PlayerName]notify.Conn),
		names:    make(map[string]model.PlayerName),
	}
}

// Credential is the outcome of checking a password ahead of Register, so the
// bcrypt work can happen outside whatever serializes registrations.
type Credential struct {
	name     model.PlayerName
	password string
	hash     string // matched stored hash, or a fresh hash for a new name
	existing bool
	err      error
}

// Check verifies password against the stored player, or hashes it when the
// name is new. It takes no lock and is safe to call from any goroutine.
func (d *Directory) Check(ctx context.Context, name model.PlayerName, password string) *Credential {
	cred := &Credential{name: name, password: password}
	if name == "" || password == "" {
		cred.err = model.ErrInvalidRegistration
		return cred
	}

	player, err := d.storage.GetPlayer(ctx, name)
	switch {
	case err == nil:
		cred.existing = true
		if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
			d.logger.Info("registration rejected", slog.String("player", string(name)))
			cred.err = model.ErrInvalidCredentials
			return cred
		}
		cred.hash = player.PasswordHash

	case errors.Is(err, model.ErrPlayerNotFound):
		hash, err := d.hash(password)
		if err != nil {
			cred.err = err
			return cred
		}
		cred.hash = hash

	default:
		cred.err = fmt.Errorf("load player: %w", err)
	}
	return cred
}

// Register creates a player on first use of a name, or re-authenticates an
// existing one. Either way the name is bound to conn. A wrong password fails
// with ErrInvalidCredentials and leaves the existing binding untouched.
func (d *Directory) Register(ctx context.Context, name model.PlayerName, password string, conn notify.Conn) (*model.Player, error) {
	return d.RegisterChecked(ctx, d.Check(ctx, name, password), conn)
}

// RegisterChecked completes a registration from a Credential produced by
// Check. Password work is only redone if the record changed in between.
func (d *Directory) RegisterChecked(ctx context.Context, cred *Credential, conn notify.Conn) (*model.Player, error) {
	if cred.err != nil {
		return nil, cred.err
	}
	name := cred.name

	d.regMu.Lock()
	defer d.regMu.Unlock()

	player, err := d.storage.GetPlayer(ctx, name)
	switch {
	case err == nil:
		if !cred.existing || cred.hash != player.PasswordHash {
			// Created by someone else after the check
			if err := bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(cred.password)); err != nil {
				d.logger.Info("registration rejected", slog.String("player", string(name)))
				return nil, model.ErrInvalidCredentials
			}
		}
		d.logger.Info("player reconnected", slog.String("player", string(name)))

	case errors.Is(err, model.ErrPlayerNotFound):
		hash := cred.hash
		if cred.existing {
			if hash, err = d.hash(cred.password); err != nil {
				return nil, err
			}
		}
		player, err = d.create(ctx, name, hash)
		if err != nil {
			return nil, err
		}
		d.logger.Info("player registered",
			slog.String("player", string(name)),
			slog.Int("index", player.Index),
		)

	default:
		return nil, fmt.Errorf("load player: %w", err)
	}

	d.bind(name, conn)
	return player, nil
}

func (d *Directory) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password too long", model.ErrInvalidRegistration)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (d *Directory) create(ctx context.Context, name model.PlayerName, hash string) (*model.Player, error) {
	count, err := d.storage.CountPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count players: %w", err)
	}

	player := &model.Player{
		Name:         name,
		PasswordHash: hash,
		Index:        count,
		RegisteredAt: d.clock.Now(),
	}
	if err := d.storage.SavePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("save player: %w", err)
	}
	return player, nil
}

// bind points name at conn, releasing whatever either side was bound to before
func (d *Directory) bind(name model.PlayerName, conn notify.Conn) {
	if conn == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.names[conn.ID()]; ok && prev != name {
		delete(d.conns, prev)
	}
	if old, ok := d.conns[name]; ok && old.ID() != conn.ID() {
		delete(d.names, old.ID())
	}
	d.conns[name] = conn
	d.names[conn.ID()] = name
}

// Unbind releases the binding held by conn, returning the name it was bound to
func (d *Directory) Unbind(conn notify.Conn) (model.PlayerName, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, ok := d.names[conn.ID()]
	if !ok {
		return "", false
	}
	delete(d.names, conn.ID())
	if cur, ok := d.conns[name]; ok && cur.ID() == conn.ID() {
		delete(d.conns, name)
	}
	return name, true
}

// FindByConn returns the player bound to conn
func (d *Directory) FindByConn(ctx context.Context, conn notify.Conn) (*model.Player, error) {
	d.mu.RLock()
	name, ok := d.names[conn.ID()]
	d.mu.RUnlock()

	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return d.storage.GetPlayer(ctx, name)
}

// FindByName returns the named player
func (d *Directory) FindByName(ctx context.Context, name model.PlayerName) (*model.Player, error) {
	return d.storage.GetPlayer(ctx, name)
}

// Conn returns the live connection bound to name, or nil
func (d *Directory) Conn(name model.PlayerName) notify.Conn {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.conns[name]
}

// Conns resolves the live connections for the given names, skipping unbound ones
func (d *Directory) Conns(names ...model.PlayerName) []notify.Conn {
	d.mu.RLock()
	defer d.mu.RUnlock()

	conns := make([]notify.Conn, 0, len(names))
	for _, name := range names {
		if conn, ok := d.conns[name]; ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

// ConnectionCount returns the number of bound connections
func (d *Directory) ConnectionCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conns)
}

// IncrementWins adds a win to the named player. Unknown names are ignored.
func (d *Directory) IncrementWins(ctx context.Context, name model.PlayerName) error {
	d.regMu.Lock()
	defer d.regMu.Unlock()

	player, err := d.storage.GetPlayer(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil
		}
		return fmt.Errorf("load player: %w", err)
	}

	player.Wins++
	if err := d.storage.SavePlayer(ctx, player); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	return nil
}

// ListPlayers returns every player in registration order
func (d *Directory) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return d.storage.ListPlayers(ctx)
}

// ListWinners returns players with at least one win, in registration order
func (d *Directory) ListWinners(ctx context.Context) ([]*model.Player, error) {
	players, err := d.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	winners := make([]*model.Player, 0, len(players))
	for _, p := range players {
		if p.Wins > 0 {
			winners = append(winners, p)
		}
	}
	return winners, nil
}

// Broadcast sends msg to every bound connection. The binding table is
// snapshotted first so no lock is held while sending.
func (d *Directory) Broadcast(msg protocol.Payload) int {
	d.mu.RLock()
	conns := make([]notify.Conn, 0, len(d.conns))
	for _, conn := range d.conns {
		conns = append(conns, conn)
	}
	d.mu.RUnlock()

	return d.notifier.Fanout(conns, msg)
}
