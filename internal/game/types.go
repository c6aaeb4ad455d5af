// Package game holds the typed records of a session (session, rooms, doors,
// players, choices, bonus cards) and the state transitions that apply to a
// single record. Cross-record algorithms live in the board, arbiter and turn
// subpackages.
package game

import "time"

// SessionStatus 会话状态，只能 waiting → playing → finished
type SessionStatus string

const (
	StatusWaiting  SessionStatus = "waiting"
	StatusPlaying  SessionStatus = "playing"
	StatusFinished SessionStatus = "finished"
)

// PlayerStatus 玩家状态
type PlayerStatus string

const (
	PlayerAlive   PlayerStatus = "alive"
	PlayerDead    PlayerStatus = "dead"
	PlayerBlocked PlayerStatus = "blocked"
	PlayerWinner  PlayerStatus = "winner"
)

// Resolution selects the door-crossing policy of a session.
type Resolution string

const (
	// ResolutionImmediate moves players when they commit to an open door,
	// first committed first served.
	ResolutionImmediate Resolution = "immediate"
	// ResolutionBatch records commitments and resolves them all at the turn
	// boundary, picking passers at random when a door is over capacity.
	ResolutionBatch Resolution = "batch"
)

// Valid reports whether r is a known resolution mode.
func (r Resolution) Valid() bool {
	return r == ResolutionImmediate || r == ResolutionBatch
}

// CardKind tags a bonus card variant.
type CardKind string

const (
	CardTemporaryPoints CardKind = "temporary_points"
	CardMinimumDice     CardKind = "minimum_dice"
	CardRevealBonus     CardKind = "reveal_bonus"
	CardDoublePlay      CardKind = "double_play"
)

// Session 一局游戏
type Session struct {
	ID               string        `json:"id"`
	CurrentTurn      int           `json:"current_turn"`
	MaxTurns         int           `json:"max_turns"`
	Status           SessionStatus `json:"status"`
	TurnStartedAt    *time.Time    `json:"turn_started_at,omitempty"`
	TurnTimerSeconds int           `json:"turn_timer_seconds"`
	StartingPoints   int           `json:"starting_points"`
	FreeRoomsEnabled bool          `json:"free_rooms_enabled"`
	Resolution       Resolution    `json:"resolution"`
	CreatedAt        time.Time     `json:"created_at"`
}

// Room 棋盘上的一个房间
type Room struct {
	ID         int  `json:"id"`
	X          int  `json:"x"`
	Y          int  `json:"y"`
	PointsCost int  `json:"points_cost"`
	DoorCount  int  `json:"door_count"`
	IsStart    bool `json:"is_start"`
	IsExit     bool `json:"is_exit"`
	IsVisited  bool `json:"is_visited"`
}

// Door is a one-way door record owned by a room. The adjacent room owns the
// matching door facing back.
type Door struct {
	ID                int       `json:"id"`
	RoomID            int       `json:"room_id"`
	Direction         Direction `json:"direction"`
	Capacity          int       `json:"capacity"`
	CapacityTurn      int       `json:"capacity_turn"`
	OpenedBy          *string   `json:"opened_by,omitempty"`
	HappinessModifier int       `json:"happiness_modifier"`
}

// Player 玩家
type Player struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Points            int          `json:"points"`
	Happiness         int          `json:"happiness"`
	HappinessPositive int          `json:"happiness_positive"`
	HappinessNegative int          `json:"happiness_negative"`
	CurrentRoomID     int          `json:"current_room_id"`
	Status            PlayerStatus `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
}

// Choice is a player's committed action for one turn. A nil DoorID means
// the player stays.
type Choice struct {
	PlayerID string `json:"player_id"`
	Turn     int    `json:"turn"`
	DoorID   *int   `json:"door_id,omitempty"`
	Moves    int    `json:"moves"`
}

// Card is a bonus card held by a player.
type Card struct {
	ID       string     `json:"id"`
	PlayerID string     `json:"player_id"`
	Kind     CardKind   `json:"kind"`
	Used     bool       `json:"used"`
	UsedAt   *time.Time `json:"used_at,omitempty"`
	UsedTurn int        `json:"used_turn,omitempty"`
}

// Effect is a bonus card effect active for a single turn.
type Effect struct {
	CardID   string   `json:"card_id"`
	Kind     CardKind `json:"kind"`
	PlayerID string   `json:"player_id"`
	Turn     int      `json:"turn"`
	Value    int      `json:"value"`
	RoomID   int      `json:"room_id,omitempty"`

	// PointsAfter is the player's balance right after a points bonus.
	PointsAfter int `json:"points_after,omitempty"`
}

// State is the whole persisted aggregate of one session.
type State struct {
	Version int64     `json:"version"`
	Session Session   `json:"session"`
	Rooms   []*Room   `json:"rooms"`
	Doors   []*Door   `json:"doors"`
	Players []*Player `json:"players"`
	Choices []*Choice `json:"choices"`
	Cards   []*Card   `json:"cards"`
	Effects []*Effect `json:"effects"`
}
