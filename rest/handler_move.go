package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/model"
)

func (s *Server) HandleTransition(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	vars := mux.Vars(r)
	itemId := vars["id"]
	var req model.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	move := model.ForwardMove(req.TransitionId, req.Note)
	move.Confirmed = req.Confirmed
	s.respondMove(w, *actor, itemId, move)
}

func (s *Server) HandleBackward(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	vars := mux.Vars(r)
	itemId := vars["id"]
	var req model.BackwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	s.respondMove(w, *actor, itemId, model.BackwardMove(req.TargetStepId, req.Note))
}

func (s *Server) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	vars := mux.Vars(r)
	itemId := vars["id"]
	var req model.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	s.respondMove(w, *actor, itemId, model.TransferMove(req.DestGraphId, req.DestStepId, req.PreserveAssignee, req.Note))
}

// Blocked moves are expected business outcomes; they come back with the
// structured result and a 200, not an error status.
func (s *Server) respondMove(w http.ResponseWriter, actor model.ActorContext, itemId string, move model.Move) {
	result, err := s.executorService.ExecuteMove(actor, itemId, move)
	if err != nil {
		logger.Error("error executing move", zap.String("itemId", itemId), zap.Error(err))
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
