// Package bonus implements the bonus cards a player can hold and play.
//
// Every card kind is a stateless value registered in a static table. Effects
// that outlive the Apply call are stored on the game state as game.Effect
// records tagged with the card id, so that Revert can find and drop them.
package bonus

import (
	"fmt"

	"github.com/Cryborg/sugoroku/internal/apperrors"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/game/arbiter"
)

// TemporaryPoints 临时加分卡的点数
const TemporaryPoints = 3

// Context carries what a card needs to act.
type Context struct {
	State  *game.State
	Player *game.Player
	Card   *game.Card
}

func (c *Context) turn() int {
	return c.State.Session.CurrentTurn
}

func (c *Context) hasActed() bool {
	return c.State.Choice(c.Player.ID, c.turn()) != nil
}

// Outcome describes what a card did.
type Outcome struct {
	Kind    game.CardKind `json:"kind"`
	Message string        `json:"message"`
	Value   int           `json:"value"`
}

// Card is one bonus card variant.
type Card interface {
	Kind() game.CardKind
	Description() string
	CanApply(ctx *Context) bool
	Apply(ctx *Context) (Outcome, error)
	Revert(ctx *Context) (Outcome, error)
}

var registry = map[game.CardKind]Card{
	game.CardTemporaryPoints: temporaryPoints{},
	game.CardMinimumDice:     minimumDice{},
	game.CardRevealBonus:     revealBonus{},
	game.CardDoublePlay:      doublePlay{},
}

// Lookup returns the card implementation of a kind.
func Lookup(kind game.CardKind) (Card, bool) {
	c, ok := registry[kind]
	return c, ok
}

// Kinds lists every card kind in a stable order.
func Kinds() []game.CardKind {
	return []game.CardKind{game.CardTemporaryPoints, game.CardMinimumDice, game.CardRevealBonus, game.CardDoublePlay}
}

func addEffect(ctx *Context, e *game.Effect) {
	e.CardID = ctx.Card.ID
	e.Kind = ctx.Card.Kind
	e.PlayerID = ctx.Player.ID
	e.Turn = ctx.turn()
	ctx.State.Effects = append(ctx.State.Effects, e)
}

func findEffect(ctx *Context) *game.Effect {
	for _, e := range ctx.State.Effects {
		if e.CardID == ctx.Card.ID {
			return e
		}
	}
	return nil
}

type temporaryPoints struct{}

func (temporaryPoints) Kind() game.CardKind { return game.CardTemporaryPoints }

func (temporaryPoints) Description() string {
	return fmt.Sprintf("gain %d points for the rest of the game", TemporaryPoints)
}

func (temporaryPoints) CanApply(ctx *Context) bool {
	return ctx.Player.IsActive()
}

func (temporaryPoints) Apply(ctx *Context) (Outcome, error) {
	before := ctx.Player.Points
	ctx.Player.AddPoints(TemporaryPoints, ctx.State.Session.StartingPoints)
	gained := ctx.Player.Points - before
	addEffect(ctx, &game.Effect{Value: gained, PointsAfter: ctx.Player.Points})
	return Outcome{Kind: game.CardTemporaryPoints, Value: gained, Message: fmt.Sprintf("+%d points", gained)}, nil
}

// Revert takes the bonus back only while the player has not spent any
// points since playing the card.
func (temporaryPoints) Revert(ctx *Context) (Outcome, error) {
	out := Outcome{Kind: game.CardTemporaryPoints}
	e := findEffect(ctx)
	if e == nil {
		return out, apperrors.ErrCardNotUsed
	}
	ctx.State.RemoveEffect(ctx.Card.ID)
	if ctx.Player.Points < e.PointsAfter {
		out.Message = "points already spent, nothing removed"
		return out, nil
	}
	ctx.Player.RevokePoints(e.Value)
	out.Value = -e.Value
	out.Message = fmt.Sprintf("-%d points", e.Value)
	return out, nil
}

type minimumDice struct{}

func (minimumDice) Kind() game.CardKind { return game.CardMinimumDice }

func (minimumDice) Description() string {
	return "every door lets at least half of the players through this turn"
}

func (minimumDice) CanApply(ctx *Context) bool {
	return ctx.Player.IsActive() && len(ctx.State.Players)/2 > 0
}

func (minimumDice) Apply(ctx *Context) (Outcome, error) {
	floor := len(ctx.State.Players) / 2
	addEffect(ctx, &game.Effect{Value: floor})
	arbiter.ApplyFloor(ctx.State, ctx.turn(), floor)
	return Outcome{Kind: game.CardMinimumDice, Value: floor, Message: fmt.Sprintf("door capacity is at least %d this turn", floor)}, nil
}

// Revert drops the floor for rolls still to come. Capacities already raised
// this turn keep their value.
func (minimumDice) Revert(ctx *Context) (Outcome, error) {
	if findEffect(ctx) == nil {
		return Outcome{Kind: game.CardMinimumDice}, apperrors.ErrCardNotUsed
	}
	ctx.State.RemoveEffect(ctx.Card.ID)
	return Outcome{Kind: game.CardMinimumDice, Message: "minimum capacity removed"}, nil
}

type revealBonus struct{}

func (revealBonus) Kind() game.CardKind { return game.CardRevealBonus }

func (revealBonus) Description() string {
	return "reveal the happiness of the doors of your room"
}

func (revealBonus) CanApply(ctx *Context) bool {
	return ctx.Player.IsAlive() && !ctx.hasActed()
}

func (revealBonus) Apply(ctx *Context) (Outcome, error) {
	addEffect(ctx, &game.Effect{RoomID: ctx.Player.CurrentRoomID})
	return Outcome{Kind: game.CardRevealBonus, Value: ctx.Player.CurrentRoomID, Message: "door happiness revealed"}, nil
}

func (revealBonus) Revert(ctx *Context) (Outcome, error) {
	if findEffect(ctx) == nil {
		return Outcome{Kind: game.CardRevealBonus}, apperrors.ErrCardNotUsed
	}
	ctx.State.RemoveEffect(ctx.Card.ID)
	return Outcome{Kind: game.CardRevealBonus, Message: "door happiness hidden"}, nil
}

type doublePlay struct{}

func (doublePlay) Kind() game.CardKind { return game.CardDoublePlay }

func (doublePlay) Description() string {
	return "move twice this turn"
}

func (doublePlay) CanApply(ctx *Context) bool {
	return ctx.Player.IsAlive() && !ctx.hasActed()
}

func (doublePlay) Apply(ctx *Context) (Outcome, error) {
	addEffect(ctx, &game.Effect{Value: 1})
	return Outcome{Kind: game.CardDoublePlay, Value: 1, Message: "one extra move this turn"}, nil
}

func (doublePlay) Revert(ctx *Context) (Outcome, error) {
	if findEffect(ctx) == nil {
		return Outcome{Kind: game.CardDoublePlay}, apperrors.ErrCardNotUsed
	}
	ctx.State.RemoveEffect(ctx.Card.ID)
	return Outcome{Kind: game.CardDoublePlay, Message: "extra move removed"}, nil
}
