// Package session composes board generation, door arbitration, the turn
// scheduler and persistence into the operations of a game session.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/apperrors"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/game/arbiter"
	"github.com/Cryborg/sugoroku/internal/game/board"
	"github.com/Cryborg/sugoroku/internal/game/turn"
	"github.com/Cryborg/sugoroku/internal/server/storage"
)

// defaultRetries 并发冲突时的重试次数
const defaultRetries = 3

// Options configures a Manager.
type Options struct {
	TurnTimer      time.Duration
	MaxTurns       int
	StartingPoints int
	FreeRooms      bool
	Resolution     game.Resolution
	// Retries bounds how often an update is retried after a write conflict.
	Retries int
	// Now and Rand are replaced in tests.
	Now  func() time.Time
	Rand game.Rand
}

func (o *Options) applyDefaults() {
	if o.TurnTimer <= 0 {
		o.TurnTimer = game.DefaultTurnTimer * time.Second
	}
	if o.MaxTurns <= 0 {
		o.MaxTurns = game.DefaultMaxTurns
	}
	if o.StartingPoints <= 0 {
		o.StartingPoints = game.DefaultStartingPoints
	}
	if !o.Resolution.Valid() {
		o.Resolution = game.ResolutionImmediate
	}
	if o.Retries <= 0 {
		o.Retries = defaultRetries
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = globalRand{}
	}
}

// globalRand uses the concurrency-safe top-level functions of math/rand/v2.
type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Float64() float64                   { return rand.Float64() }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Manager runs game sessions on top of a Store.
type Manager struct {
	store storage.Store
	opts  Options

	mu       sync.RWMutex
	notifier Notifier
}

// NewManager 创建会话管理器
func NewManager(store storage.Store, opts Options) *Manager {
	opts.applyDefaults()
	return &Manager{store: store, opts: opts}
}

// SetNotifier registers the receiver of change notifications.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

func (m *Manager) notify(sessionID string) {
	m.mu.RLock()
	n := m.notifier
	m.mu.RUnlock()
	if n != nil {
		n.SessionChanged(sessionID)
	}
}

// errNoChange aborts an update that turned out to be unnecessary.
var errNoChange = errors.New("session: nothing to change")

// update runs fn through the store, retrying on write conflicts. fn may run
// more than once and must reset anything it captures.
func (m *Manager) update(ctx context.Context, sessionID string, fn storage.MutateFunc) (*game.State, error) {
	for attempt := 0; ; attempt++ {
		st, err := m.store.Update(ctx, sessionID, fn)
		switch {
		case err == nil:
			m.notify(sessionID)
			return st, nil
		case errors.Is(err, storage.ErrConflict) && attempt < m.opts.Retries:
			log.Debug().Str("session", sessionID).Int("attempt", attempt+1).Msg("update conflict, retrying")
			continue
		case errors.Is(err, storage.ErrNotFound):
			return nil, apperrors.ErrSessionNotFound
		case errors.Is(err, errNoChange):
			return nil, err
		case apperrors.KindOf(err) != "":
			return nil, err
		default:
			return nil, fmt.Errorf("update session %s: %w", sessionID, err)
		}
	}
}

func (m *Manager) load(ctx context.Context, sessionID string) (*game.State, error) {
	st, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return st, nil
}

func (m *Manager) sessionOf(ctx context.Context, playerID string) (string, error) {
	id, err := m.store.SessionOf(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", apperrors.ErrPlayerNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup player %s: %w", playerID, err)
	}
	return id, nil
}

// CreateSession generates a board and seats 3 to 8 named players on the
// start room. The session waits for StartSession.
func (m *Manager) CreateSession(ctx context.Context, roster []string, co CreateOptions) (string, error) {
	if len(roster) < game.MinRoster || len(roster) > game.MaxRoster {
		return "", apperrors.ErrInvalidRoster
	}
	names := make([]string, 0, len(roster))
	for _, name := range roster {
		name = strings.TrimSpace(name)
		if name == "" {
			return "", apperrors.ErrInvalidRoster
		}
		names = append(names, name)
	}

	points := co.StartingPoints
	if points == 0 {
		points = m.opts.StartingPoints
	}
	if points < 1 || points > game.MaxStartingPoints {
		return "", apperrors.ErrInvalidOptions
	}
	resolution := co.Resolution
	if resolution == "" {
		resolution = m.opts.Resolution
	}
	if !resolution.Valid() {
		return "", apperrors.ErrInvalidOptions
	}
	freeRooms := m.opts.FreeRooms
	if co.FreeRooms != nil {
		freeRooms = *co.FreeRooms
	}

	now := m.opts.Now()
	layout := board.Generate(m.opts.Rand, board.Options{FreeRooms: freeRooms})
	st := &game.State{
		Session: game.Session{
			ID:               uuid.New().String(),
			CurrentTurn:      1,
			MaxTurns:         m.opts.MaxTurns,
			Status:           game.StatusWaiting,
			TurnTimerSeconds: int(m.opts.TurnTimer / time.Second),
			StartingPoints:   points,
			FreeRoomsEnabled: freeRooms,
			Resolution:       resolution,
			CreatedAt:        now,
		},
		Rooms: layout.Rooms,
		Doors: layout.Doors,
	}
	start := layout.Start()
	for _, name := range names {
		st.Players = append(st.Players, &game.Player{
			ID:            uuid.New().String(),
			Name:          name,
			Points:        points,
			CurrentRoomID: start.ID,
			Status:        game.PlayerAlive,
			CreatedAt:     now,
		})
	}

	if err := m.store.Create(ctx, st); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	log.Info().Str("session", st.Session.ID).Int("players", len(names)).Str("resolution", string(resolution)).Msg("session created")
	return st.Session.ID, nil
}

// StartSession moves a waiting session to its first turn.
func (m *Manager) StartSession(ctx context.Context, sessionID string) (*game.Snapshot, error) {
	st, err := m.update(ctx, sessionID, func(st *game.State) error {
		if st.Session.Status != game.StatusWaiting {
			return apperrors.ErrSessionNotWaiting
		}
		now := m.opts.Now()
		st.Session.Status = game.StatusPlaying
		st.Session.CurrentTurn = 1
		st.Session.TurnStartedAt = &now
		arbiter.RollOccupied(st, 1, m.opts.Rand)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("session", sessionID).Msg("session started")
	return m.snapshotOf(st, ""), nil
}

// Snapshot returns the session as seen by viewerID (may be empty).
func (m *Manager) Snapshot(ctx context.Context, sessionID, viewerID string) (*game.Snapshot, error) {
	st, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.snapshotOf(st, viewerID), nil
}

// SnapshotOfPlayer resolves the player's session and returns their view.
func (m *Manager) SnapshotOfPlayer(ctx context.Context, playerID string) (*game.Snapshot, error) {
	id, err := m.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return m.Snapshot(ctx, id, playerID)
}

func (m *Manager) snapshotOf(st *game.State, viewerID string) *game.Snapshot {
	return game.BuildSnapshot(st, m.remaining(&st.Session), viewerID)
}

func (m *Manager) remaining(sess *game.Session) time.Duration {
	switch sess.Status {
	case game.StatusPlaying:
		return turn.RemainingTime(sess, m.opts.Now())
	case game.StatusFinished:
		return 0
	}
	return turn.Timer(sess)
}

// Choices lists the choices of the current turn.
func (m *Manager) Choices(ctx context.Context, sessionID string) ([]*game.Choice, error) {
	st, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return st.TurnChoices(st.Session.CurrentTurn), nil
}

// DeleteSession removes a session and its players.
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	err := m.store.Delete(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	log.Info().Str("session", sessionID).Msg("session deleted")
	m.notify(sessionID)
	return nil
}

// ActiveSessions lists sessions that are not finished.
func (m *Manager) ActiveSessions(ctx context.Context) ([]string, error) {
	return m.store.ActiveSessions(ctx)
}
