package game

// twoRoomState builds a 1×2 strip: room 1 (start) at (0,0) with an east door
// to room 2 (exit) at (1,0), which has a west door back.
func twoRoomState() *State {
	return &State{
		Session: Session{ID: "s1", CurrentTurn: 1, MaxTurns: DefaultMaxTurns, Status: StatusPlaying, StartingPoints: 10, Resolution: ResolutionImmediate},
		Rooms: []*Room{
			{ID: 1, X: 0, Y: 0, PointsCost: 0, DoorCount: 1, IsStart: true, IsVisited: true},
			{ID: 2, X: 1, Y: 0, PointsCost: 3, DoorCount: 1, IsExit: true},
		},
		Doors: []*Door{
			{ID: 10, RoomID: 1, Direction: East, Capacity: 1, CapacityTurn: 1, HappinessModifier: 2},
			{ID: 20, RoomID: 2, Direction: West, Capacity: 2, CapacityTurn: 0, HappinessModifier: -4},
		},
		Players: []*Player{
			{ID: "a", Name: "Alice", Points: 10, CurrentRoomID: 1, Status: PlayerAlive},
			{ID: "b", Name: "Bob", Points: 10, CurrentRoomID: 1, Status: PlayerAlive},
			{ID: "c", Name: "Carol", Points: 10, CurrentRoomID: 2, Status: PlayerBlocked},
		},
	}
}
