package game

import "time"

// Snapshot is the read-only view of a session handed to clients.
type Snapshot struct {
	SessionID      string        `json:"session_id"`
	Turn           int           `json:"turn"`
	Status         SessionStatus `json:"status"`
	Resolution     Resolution    `json:"resolution"`
	RemainingTime  int           `json:"remaining_time"`
	MaxTurns       int           `json:"max_turns"`
	StartingPoints int           `json:"starting_points"`
	Players        []PlayerView  `json:"players"`
	Rooms          []RoomView    `json:"rooms"`
}

type PlayerView struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Points            int          `json:"points"`
	Happiness         int          `json:"happiness"`
	HappinessPositive int          `json:"happiness_positive"`
	HappinessNegative int          `json:"happiness_negative"`
	CurrentRoomID     int          `json:"current_room_id"`
	Status            PlayerStatus `json:"status"`
	HasActed          bool         `json:"has_acted"`
}

// RoomView hides the cost of rooms nobody has visited yet.
type RoomView struct {
	ID         int        `json:"id"`
	X          int        `json:"x"`
	Y          int        `json:"y"`
	PointsCost *int       `json:"points_cost,omitempty"`
	DoorCount  int        `json:"door_count"`
	IsStart    bool       `json:"is_start"`
	IsExit     bool       `json:"is_exit"`
	IsVisited  bool       `json:"is_visited"`
	Doors      []DoorView `json:"doors"`
}

// DoorView carries the capacity only when it was rolled for the current turn
// and the happiness modifier only when the owning room was visited or
// revealed to the viewer.
type DoorView struct {
	ID                int       `json:"id"`
	Direction         Direction `json:"direction"`
	IsOpen            bool      `json:"is_open"`
	OpenedBy          *string   `json:"opened_by,omitempty"`
	Capacity          *int      `json:"capacity,omitempty"`
	HappinessModifier *int      `json:"happiness_modifier,omitempty"`
	TargetRoomID      *int      `json:"target_room_id,omitempty"`
}

// BuildSnapshot renders the state as seen by viewerID. An empty viewer gets
// the public view.
func BuildSnapshot(s *State, remaining time.Duration, viewerID string) *Snapshot {
	turn := s.Session.CurrentTurn
	revealed := -1
	if viewerID != "" {
		if e := s.Effect(viewerID, turn, CardRevealBonus); e != nil {
			revealed = e.RoomID
		}
	}

	snap := &Snapshot{
		SessionID:      s.Session.ID,
		Turn:           turn,
		Status:         s.Session.Status,
		Resolution:     s.Session.Resolution,
		RemainingTime:  int(remaining / time.Second),
		MaxTurns:       s.Session.MaxTurns,
		StartingPoints: s.Session.StartingPoints,
		Players:        make([]PlayerView, 0, len(s.Players)),
		Rooms:          make([]RoomView, 0, len(s.Rooms)),
	}

	for _, p := range s.Players {
		snap.Players = append(snap.Players, PlayerView{
			ID:                p.ID,
			Name:              p.Name,
			Points:            p.Points,
			Happiness:         p.Happiness,
			HappinessPositive: p.HappinessPositive,
			HappinessNegative: p.HappinessNegative,
			CurrentRoomID:     p.CurrentRoomID,
			Status:            p.Status,
			HasActed:          s.Choice(p.ID, turn) != nil,
		})
	}

	for _, r := range s.Rooms {
		view := RoomView{
			ID:        r.ID,
			X:         r.X,
			Y:         r.Y,
			DoorCount: r.DoorCount,
			IsStart:   r.IsStart,
			IsExit:    r.IsExit,
			IsVisited: r.IsVisited,
		}
		if r.IsVisited {
			view.PointsCost = intPtr(r.PointsCost)
		}
		for _, d := range s.DoorsOf(r.ID) {
			dv := DoorView{
				ID:        d.ID,
				Direction: d.Direction,
				IsOpen:    d.IsOpen(),
				OpenedBy:  d.OpenedBy,
			}
			if d.RolledFor(turn) {
				dv.Capacity = intPtr(d.Capacity)
			}
			if r.IsVisited || r.ID == revealed {
				dv.HappinessModifier = intPtr(d.HappinessModifier)
			}
			if target := s.Target(d); target != nil {
				dv.TargetRoomID = intPtr(target.ID)
			}
			view.Doors = append(view.Doors, dv)
		}
		snap.Rooms = append(snap.Rooms, view)
	}
	return snap
}

func intPtr(v int) *int {
	return &v
}
