package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Cryborg/sugoroku/internal/game"
	"github.com/Cryborg/sugoroku/internal/server/session"
)

type createGameRequest struct {
	Players        []string        `json:"players" binding:"required"`
	StartingPoints int             `json:"starting_points"`
	FreeRooms      *bool           `json:"free_rooms"`
	Resolution     game.Resolution `json:"resolution"`
}

type createGameResponse struct {
	SessionID string         `json:"session_id"`
	State     *game.Snapshot `json:"state"`
}

type openDoorRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

type chooseDoorRequest struct {
	DoorID int `json:"door_id" binding:"required"`
}

type freePlayerRequest struct {
	LiberatorID string `json:"liberator_id" binding:"required"`
}

type giveCardRequest struct {
	Kind game.CardKind `json:"kind" binding:"required"`
}

func (s *Server) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "players is required")
		return
	}

	ctx := c.Request.Context()
	id, err := s.manager.CreateSession(ctx, req.Players, session.CreateOptions{
		StartingPoints: req.StartingPoints,
		FreeRooms:      req.FreeRooms,
		Resolution:     req.Resolution,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	snap, err := s.manager.Snapshot(ctx, id, "")
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, createGameResponse{SessionID: id, State: snap})
}

func (s *Server) startGame(c *gin.Context) {
	snap, err := s.manager.StartSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, snap)
}

func (s *Server) gameState(c *gin.Context) {
	snap, err := s.manager.Snapshot(c.Request.Context(), c.Param("id"), c.Query("player"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, snap)
}

func (s *Server) checkEnd(c *gin.Context) {
	res, err := s.manager.EvaluateEndConditions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *Server) gameChoices(c *gin.Context) {
	choices, err := s.manager.Choices(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, choices)
}

func (s *Server) deleteGame(c *gin.Context) {
	if err := s.manager.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"session_id": c.Param("id")})
}

func (s *Server) openDoor(c *gin.Context) {
	doorID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "door id must be a number")
		return
	}
	var req openDoorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "player_id is required")
		return
	}

	res, err := s.manager.OpenDoor(c.Request.Context(), req.PlayerID, doorID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *Server) chooseDoor(c *gin.Context) {
	var req chooseDoorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "door_id is required")
		return
	}

	res, err := s.manager.ChooseDoor(c.Request.Context(), c.Param("id"), req.DoorID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *Server) stay(c *gin.Context) {
	res, err := s.manager.Stay(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *Server) freePlayer(c *gin.Context) {
	var req freePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "liberator_id is required")
		return
	}

	res, err := s.manager.FreePlayer(c.Request.Context(), req.LiberatorID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *Server) giveUp(c *gin.Context) {
	res, err := s.manager.GiveUp(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *Server) listCards(c *gin.Context) {
	cards, err := s.manager.ListCards(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, cards)
}

func (s *Server) giveCard(c *gin.Context) {
	var req giveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "kind is required")
		return
	}

	card, err := s.manager.GiveCard(c.Request.Context(), c.Param("id"), req.Kind)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, card)
}

func (s *Server) useCard(c *gin.Context) {
	out, err := s.manager.UseCard(c.Request.Context(), c.Param("id"), c.Param("card"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (s *Server) revertCard(c *gin.Context) {
	out, err := s.manager.RevertCard(c.Request.Context(), c.Param("id"), c.Param("card"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}

func (s *Server) checkTurn(c *gin.Context) {
	res, err := s.manager.CheckAndAdvance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *Server) forceResolve(c *gin.Context) {
	res, err := s.manager.ForceAdvance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"status": "ok", "subscribers": s.hub.Count()})
}
