package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/model"
)

func (s *Server) HandleCreateWorkItem(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	var req model.WorkItemCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	item, err := s.executorService.CreateWorkItem(*actor, req)
	if err != nil {
		logger.Error("error creating work item", zap.String("graphId", req.GraphId), zap.Error(err))
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (s *Server) HandleGetWorkItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemId, ok := vars["id"]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	item, err := s.executorService.GetWorkItem(itemId)
	if err != nil {
		respondWithError(w, statusFor(err), "work item does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (s *Server) HandleDeleteWorkItem(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	vars := mux.Vars(r)
	itemId, ok := vars["id"]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := s.executorService.DeleteWorkItem(*actor, itemId); err != nil {
		logger.Error("error deleting work item", zap.String("itemId", itemId), zap.Error(err))
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondOKWithoutBody(w)
}

func (s *Server) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemId, ok := vars["id"]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	records, err := s.executorService.GetHistory(itemId)
	if err != nil {
		respondWithError(w, statusFor(err), "error reading history")
		return
	}
	respondWithJSON(w, http.StatusOK, records)
}

func (s *Server) HandleGetBackwardTargets(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemId, ok := vars["id"]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	targets, err := s.executorService.BackwardTargets(itemId)
	if err != nil {
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, targets)
}

func (s *Server) HandleAssign(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	vars := mux.Vars(r)
	itemId := vars["id"]
	var req model.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	item, err := s.executorService.Assign(*actor, itemId, req.AssigneeId)
	if err != nil {
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (s *Server) HandlePriority(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	vars := mux.Vars(r)
	itemId := vars["id"]
	var req model.PriorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	item, err := s.executorService.SetPriority(*actor, itemId, req.Priority)
	if err != nil {
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

func (s *Server) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, err := s.actor(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	vars := mux.Vars(r)
	itemId := vars["id"]
	var req model.BookingCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	booking, err := s.executorService.CreateBooking(*actor, itemId, req)
	if err != nil {
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

func (s *Server) HandleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingId := vars["id"]
	booking, err := s.executorService.CompleteBooking(bookingId)
	if err != nil {
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

func (s *Server) HandleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingId := vars["id"]
	if err := s.executorService.DeleteBooking(bookingId); err != nil {
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondOKWithoutBody(w)
}
