package game

import "sort"

// Player 按 ID 查找玩家
func (s *State) Player(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Room 按 ID 查找房间
func (s *State) Room(id int) *Room {
	for _, r := range s.Rooms {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Door 按 ID 查找门
func (s *State) Door(id int) *Door {
	for _, d := range s.Doors {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Card 按 ID 查找奖励卡
func (s *State) Card(id string) *Card {
	for _, c := range s.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// RoomAt returns the room at (x, y).
func (s *State) RoomAt(x, y int) *Room {
	for _, r := range s.Rooms {
		if r.X == x && r.Y == y {
			return r
		}
	}
	return nil
}

func (s *State) StartRoom() *Room {
	for _, r := range s.Rooms {
		if r.IsStart {
			return r
		}
	}
	return nil
}

func (s *State) ExitRoom() *Room {
	for _, r := range s.Rooms {
		if r.IsExit {
			return r
		}
	}
	return nil
}

// DoorsOf returns the doors owned by a room.
func (s *State) DoorsOf(roomID int) []*Door {
	var doors []*Door
	for _, d := range s.Doors {
		if d.RoomID == roomID {
			doors = append(doors, d)
		}
	}
	return doors
}

// Target returns the room a door leads to.
func (s *State) Target(d *Door) *Room {
	from := s.Room(d.RoomID)
	if from == nil {
		return nil
	}
	x, y, ok := Neighbor(from.X, from.Y, d.Direction)
	if !ok {
		return nil
	}
	return s.RoomAt(x, y)
}

// Occupants returns every player standing in a room, whatever their status.
func (s *State) Occupants(roomID int) []*Player {
	var players []*Player
	for _, p := range s.Players {
		if p.CurrentRoomID == roomID {
			players = append(players, p)
		}
	}
	return players
}

// ActiveCount counts alive and blocked players.
func (s *State) ActiveCount() int {
	n := 0
	for _, p := range s.Players {
		if p.IsActive() {
			n++
		}
	}
	return n
}

// OccupiedRooms returns the rooms holding at least one active player, in
// room order.
func (s *State) OccupiedRooms() []*Room {
	seen := make(map[int]bool)
	for _, p := range s.Players {
		if p.IsActive() {
			seen[p.CurrentRoomID] = true
		}
	}
	var rooms []*Room
	for _, r := range s.Rooms {
		if seen[r.ID] {
			rooms = append(rooms, r)
		}
	}
	return rooms
}

// Choice returns the player's choice for turn, or nil.
func (s *State) Choice(playerID string, turn int) *Choice {
	for _, c := range s.Choices {
		if c.PlayerID == playerID && c.Turn == turn {
			return c
		}
	}
	return nil
}

// RecordChoice stores the player's choice for turn, replacing any earlier
// one. The move counter of the turn is kept.
func (s *State) RecordChoice(playerID string, turn int, doorID *int) *Choice {
	if c := s.Choice(playerID, turn); c != nil {
		c.DoorID = doorID
		return c
	}
	c := &Choice{PlayerID: playerID, Turn: turn, DoorID: doorID}
	s.Choices = append(s.Choices, c)
	return c
}

// ChoicesFor returns the choices of a turn committed to a door, in
// commitment order.
func (s *State) ChoicesFor(doorID, turn int) []*Choice {
	var choices []*Choice
	for _, c := range s.Choices {
		if c.Turn == turn && c.DoorID != nil && *c.DoorID == doorID {
			choices = append(choices, c)
		}
	}
	return choices
}

// TurnChoices returns every choice of a turn.
func (s *State) TurnChoices(turn int) []*Choice {
	var choices []*Choice
	for _, c := range s.Choices {
		if c.Turn == turn {
			choices = append(choices, c)
		}
	}
	return choices
}

// CardsOf returns the cards held by a player.
func (s *State) CardsOf(playerID string) []*Card {
	var cards []*Card
	for _, c := range s.Cards {
		if c.PlayerID == playerID {
			cards = append(cards, c)
		}
	}
	return cards
}

// Effect returns the first effect of kind held by a player for turn.
func (s *State) Effect(playerID string, turn int, kind CardKind) *Effect {
	for _, e := range s.Effects {
		if e.PlayerID == playerID && e.Turn == turn && e.Kind == kind {
			return e
		}
	}
	return nil
}

// RemoveEffect drops the effect created by a card.
func (s *State) RemoveEffect(cardID string) {
	kept := s.Effects[:0]
	for _, e := range s.Effects {
		if e.CardID != cardID {
			kept = append(kept, e)
		}
	}
	s.Effects = kept
}

// MinCapacity returns the floor imposed on door capacities for turn by
// active minimum-dice effects, or 0.
func (s *State) MinCapacity(turn int) int {
	floor := 0
	for _, e := range s.Effects {
		if e.Turn == turn && e.Kind == CardMinimumDice && e.Value > floor {
			floor = e.Value
		}
	}
	return floor
}

// MoveAllowance returns how many moves a player may make in turn.
func (s *State) MoveAllowance(playerID string, turn int) int {
	allowance := 1
	for _, e := range s.Effects {
		if e.PlayerID == playerID && e.Turn == turn && e.Kind == CardDoublePlay {
			allowance += e.Value
		}
	}
	return allowance
}

// Partition splits players by outcome: dead ones, those standing in the exit
// with at least one point, and the remaining active ones.
func (s *State) Partition() (dead, inExit, alive []*Player) {
	exit := s.ExitRoom()
	for _, p := range s.Players {
		switch {
		case p.Status == PlayerDead:
			dead = append(dead, p)
		case p.Status == PlayerWinner:
			inExit = append(inExit, p)
		case exit != nil && p.CurrentRoomID == exit.ID && p.Points >= 1:
			inExit = append(inExit, p)
		default:
			alive = append(alive, p)
		}
	}
	return dead, inExit, alive
}

// SortByHappiness orders players by descending happiness, ties by name.
func SortByHappiness(players []*Player) {
	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Happiness != players[j].Happiness {
			return players[i].Happiness > players[j].Happiness
		}
		return players[i].Name < players[j].Name
	})
}
