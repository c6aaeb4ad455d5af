package render

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/Cryborg/sugoroku/internal/game"
)

// Session renders the header, the board and the player list of snap.
func Session(snap *game.Snapshot) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		Header(snap),
		Board(snap),
		Players(snap),
	)
}

// Header 标题行
func Header(snap *game.Snapshot) string {
	return titleStyle(fmt.Sprintf("Session %s  turn %d/%d  %s  %s  %ds left",
		snap.SessionID, snap.Turn, snap.MaxTurns, snap.Status, snap.Resolution, snap.RemainingTime))
}

// Board draws the grid. Unvisited rooms show "?" instead of their cost;
// each cell lists the initials of the players standing in it.
func Board(snap *game.Snapshot) string {
	occupants := make(map[int][]string)
	for _, p := range snap.Players {
		if p.Status == game.PlayerDead {
			continue
		}
		occupants[p.CurrentRoomID] = append(occupants[p.CurrentRoomID], marker(p))
	}

	var grid [game.GridSize][game.GridSize]string
	for _, r := range snap.Rooms {
		if r.X < 0 || r.X >= game.GridSize || r.Y < 0 || r.Y >= game.GridSize {
			continue
		}
		grid[r.Y][r.X] = cell(r, occupants[r.ID])
	}

	rows := make([]string, 0, game.GridSize)
	for y := range game.GridSize {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, grid[y][:]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func cell(r game.RoomView, who []string) string {
	label := fmt.Sprintf("#%d", r.ID)
	style := cellStyle
	switch {
	case r.IsExit:
		label += " EXIT"
		style = exitStyle
	case r.IsStart:
		label += " S"
		style = startStyle
	case !r.IsVisited:
		style = hiddenStyle
	}

	cost := "?"
	if r.PointsCost != nil {
		cost = fmt.Sprintf("-%d", *r.PointsCost)
	}
	return style.Render(strings.Join([]string{label, cost, strings.Join(who, "")}, "\n"))
}

// marker is the player's initial, "!" marks a blocked player and "*" a winner.
func marker(p game.PlayerView) string {
	r, _ := utf8.DecodeRuneInString(p.Name)
	m := string(unicode.ToUpper(r))
	switch p.Status {
	case game.PlayerBlocked:
		m += "!"
	case game.PlayerWinner:
		m += "*"
	}
	return m
}

// Players lists every player with points, happiness and status.
func Players(snap *game.Snapshot) string {
	lines := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		line := fmt.Sprintf("%-12s %3d pts  %+4d happy  room %-3d %s", p.Name, p.Points, p.Happiness, p.CurrentRoomID, p.Status)
		switch {
		case p.Status == game.PlayerWinner:
			line = winnerStyle.Render(line)
		case p.Status == game.PlayerDead:
			line = mutedStyle.Render(line)
		case p.HasActed:
			line += "  ✓"
		}
		lines = append(lines, line)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// Error renders a failure message.
func Error(err error) string {
	return errorStyle.Render(err.Error())
}
