package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Cryborg/sugoroku/internal/apperrors"
	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/game/bonus"
)

// GiveCard hands a bonus card of kind to a player.
func (m *Manager) GiveCard(ctx context.Context, playerID string, kind game.CardKind) (*CardInfo, error) {
	impl, ok := bonus.Lookup(kind)
	if !ok {
		return nil, apperrors.ErrInvalidOptions
	}
	sessionID, err := m.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}

	var card *game.Card
	_, err = m.update(ctx, sessionID, func(st *game.State) error {
		if st.Session.Status == game.StatusFinished {
			return apperrors.ErrSessionNotPlaying
		}
		if st.Player(playerID) == nil {
			return apperrors.ErrPlayerNotFound
		}
		card = &game.Card{ID: uuid.New().String(), PlayerID: playerID, Kind: kind}
		st.Cards = append(st.Cards, card)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("session", sessionID).Str("player", playerID).Str("card", string(kind)).Msg("card given")
	return &CardInfo{Card: card, Description: impl.Description()}, nil
}

// ListCards returns the cards held by a player.
func (m *Manager) ListCards(ctx context.Context, playerID string) ([]CardInfo, error) {
	sessionID, err := m.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}
	st, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cards := st.CardsOf(playerID)
	out := make([]CardInfo, 0, len(cards))
	for _, c := range cards {
		info := CardInfo{Card: c}
		if impl, ok := bonus.Lookup(c.Kind); ok {
			info.Description = impl.Description()
		}
		out = append(out, info)
	}
	return out, nil
}

// cardAction loads a player's card and runs fn with its implementation.
func (m *Manager) cardAction(ctx context.Context, playerID, cardID string, fn func(st *game.State, bctx *bonus.Context, impl bonus.Card) (bonus.Outcome, error)) (*bonus.Outcome, error) {
	sessionID, err := m.sessionOf(ctx, playerID)
	if err != nil {
		return nil, err
	}

	var out bonus.Outcome
	_, err = m.update(ctx, sessionID, func(st *game.State) error {
		if st.Session.Status != game.StatusPlaying {
			return apperrors.ErrSessionNotPlaying
		}
		p := st.Player(playerID)
		if p == nil {
			return apperrors.ErrPlayerNotFound
		}
		card := st.Card(cardID)
		if card == nil || card.PlayerID != playerID {
			return apperrors.ErrCardNotFound
		}
		impl, ok := bonus.Lookup(card.Kind)
		if !ok {
			return apperrors.ErrCardNotFound
		}
		o, ferr := fn(st, &bonus.Context{State: st, Player: p, Card: card}, impl)
		out = o
		return ferr
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("session", sessionID).Str("player", playerID).Str("card", string(out.Kind)).Str("outcome", out.Message).Msg("card played")
	return &out, nil
}

// UseCard plays a held card.
func (m *Manager) UseCard(ctx context.Context, playerID, cardID string) (*bonus.Outcome, error) {
	return m.cardAction(ctx, playerID, cardID, func(st *game.State, bctx *bonus.Context, impl bonus.Card) (bonus.Outcome, error) {
		if bctx.Card.Used {
			return bonus.Outcome{}, apperrors.ErrCardAlreadyUsed
		}
		if !impl.CanApply(bctx) {
			return bonus.Outcome{}, apperrors.ErrCardNotUsableNow
		}
		out, err := impl.Apply(bctx)
		if err != nil {
			return out, err
		}
		now := m.opts.Now()
		bctx.Card.Used = true
		bctx.Card.UsedAt = &now
		bctx.Card.UsedTurn = st.Session.CurrentTurn
		return out, nil
	})
}

// RevertCard cancels a played card and gives it back to the player.
func (m *Manager) RevertCard(ctx context.Context, playerID, cardID string) (*bonus.Outcome, error) {
	return m.cardAction(ctx, playerID, cardID, func(st *game.State, bctx *bonus.Context, impl bonus.Card) (bonus.Outcome, error) {
		if !bctx.Card.Used {
			return bonus.Outcome{}, apperrors.ErrCardNotUsed
		}
		out, err := impl.Revert(bctx)
		if err != nil {
			return out, err
		}
		bctx.Card.Used = false
		bctx.Card.UsedAt = nil
		bctx.Card.UsedTurn = 0
		return out, nil
	})
}
