package session

import (
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/game/turn"
)

// 动作类型
const (
	ActionOpen   = "open"
	ActionChoose = "choose"
	ActionStay   = "stay"
	ActionFree   = "free"
	ActionGiveUp = "give_up"
)

// 结束原因
const (
	EndVictory = "victory"
	EndAllDead = "all_dead"
	EndTimeout = "timeout"
)

// 回合推进原因
const (
	AdvanceTimeout   = "timeout"
	AdvanceAllActed  = "all_acted"
	AdvanceForced    = "forced"
	AdvanceNotNeeded = ""
)

// CreateOptions tunes a new session. Zero values take the manager defaults.
type CreateOptions struct {
	StartingPoints int             `json:"starting_points,omitempty"`
	FreeRooms      *bool           `json:"free_rooms,omitempty"`
	Resolution     game.Resolution `json:"resolution,omitempty"`
}

// MoveResult is the outcome of open / choose / stay.
type MoveResult struct {
	PlayerID   string            `json:"player_id"`
	Action     string            `json:"action"`
	DoorID     *int              `json:"door_id,omitempty"`
	FromRoomID int               `json:"from_room_id"`
	ToRoomID   int               `json:"to_room_id"`
	Moved      bool              `json:"moved"`
	Pending    bool              `json:"pending"`
	Blocked    bool              `json:"blocked"`
	Reason     string            `json:"reason,omitempty"`
	Points     int               `json:"points"`
	Happiness  int               `json:"happiness"`
	Status     game.PlayerStatus `json:"status"`
	End        *EndResult        `json:"end,omitempty"`
}

// PlayerSummary is a player as listed in an end result.
type PlayerSummary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Points    int               `json:"points"`
	Happiness int               `json:"happiness"`
	Status    game.PlayerStatus `json:"status"`
}

// EndResult is the outcome of an end-condition check.
type EndResult struct {
	Ended   bool            `json:"ended"`
	Reason  string          `json:"reason,omitempty"`
	Winners []PlayerSummary `json:"winners"`
	Dead    []PlayerSummary `json:"dead"`
	Alive   []PlayerSummary `json:"alive"`
}

// AdvanceResult is returned by CheckAndAdvance and ForceAdvance.
type AdvanceResult struct {
	Advanced      bool         `json:"advanced"`
	Reason        string       `json:"reason,omitempty"`
	RemainingTime int          `json:"remaining_time"`
	Report        *turn.Report `json:"report,omitempty"`
	End           *EndResult   `json:"end,omitempty"`
}

// CardInfo is a held card with its rules text.
type CardInfo struct {
	*game.Card
	Description string `json:"description"`
}

// Notifier is told about every committed change of a session.
type Notifier interface {
	SessionChanged(sessionID string)
}

func summarize(players []*game.Player) []PlayerSummary {
	out := make([]PlayerSummary, 0, len(players))
	for _, p := range players {
		out = append(out, PlayerSummary{ID: p.ID, Name: p.Name, Points: p.Points, Happiness: p.Happiness, Status: p.Status})
	}
	return out
}
