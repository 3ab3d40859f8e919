package web

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"escape-chat/domain"
)

var validate = validator.New()

type setupRequest struct {
	RoomID     string `validate:"required,max=64"`
	ScenarioID string `validate:"required,max=64"`
}

func (s *Server) handleCharacters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"characters": s.service.Characters(),
	})
}

func (s *Server) handleSetupDialogue(w http.ResponseWriter, r *http.Request) {
	req := setupRequest{
		RoomID:     r.PathValue("roomId"),
		ScenarioID: r.URL.Query().Get("scenarioId"),
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "roomId and scenarioId are required",
		})
		return
	}

	total, err := s.service.SetupDialogue(r.Context(), domain.SetupDialogueCommand{
		Room:       domain.RoomID(req.RoomID),
		ScenarioID: req.ScenarioID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"scenarioId":    req.ScenarioID,
		"totalMessages": total,
	})
}

func (s *Server) handleNextPart(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(r.PathValue("roomId"))

	outcome, err := s.service.AdvanceNextPart(r.Context(), domain.AdvancePartCommand{Room: roomID})
	if err != nil {
		writeError(w, err)
		return
	}
	if outcome.Exhausted {
		writeJSON(w, http.StatusOK, map[string]string{"status": "no_more_messages"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "sent",
		"partNumber":  outcome.PartNumber,
		"messages":    toWireMessages(outcome.Messages),
		"dialogueEnd": outcome.DialogueEnd,
	})
}

func (s *Server) handleGetPart(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(r.PathValue("roomId"))
	partNumber, err := strconv.Atoi(r.PathValue("n"))
	if err != nil || partNumber < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "part number must be a positive integer",
		})
		return
	}

	messages, err := s.service.GetPart(r.Context(), domain.GetPartCommand{
		Room:       roomID,
		PartNumber: partNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if len(messages) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "part_not_found",
			"partNumber": partNumber,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "sent",
		"partNumber": partNumber,
		"messages":   toWireMessages(messages),
	})
}
