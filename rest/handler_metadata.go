package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	api "github.com/mohitkumar/stepline/api/v1"
	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/model"
)

func (s *Server) HandleCreateGraph(w http.ResponseWriter, r *http.Request) {
	var g model.Graph
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	saved, err := s.metadataService.SaveGraph(g)
	if err != nil {
		logger.Error("error creating graph", zap.Error(err))
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, saved)
}

func (s *Server) HandleGetGraph(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	graphId, ok := vars["id"]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	g, err := s.metadataService.GetGraph(graphId)
	if err != nil {
		logger.Info("graph does not exist", zap.String("id", graphId))
		respondWithError(w, statusFor(err), "graph does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, g)
}

func (s *Server) HandleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	graphId, ok := vars["id"]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := s.metadataService.DeleteGraph(graphId); err != nil {
		logger.Error("error deleting graph", zap.String("id", graphId), zap.Error(err))
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondOK(w, map[string]any{"status": "deleted", "id": graphId})
}

func (s *Server) HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var t model.Team
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	saved, err := s.metadataService.SaveTeam(t)
	if err != nil {
		logger.Error("error creating team", zap.Error(err))
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, saved)
}

func (s *Server) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	teamId, ok := vars["id"]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	t, err := s.metadataService.GetTeam(teamId)
	if err != nil {
		respondWithError(w, statusFor(err), "team does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

func (s *Server) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var u model.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	saved, err := s.metadataService.SaveUser(u)
	if err != nil {
		logger.Error("error creating user", zap.Error(err))
		respondWithError(w, statusFor(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, saved)
}

func (s *Server) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userId, ok := vars["id"]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	u, err := s.metadataService.GetUser(userId)
	if err != nil {
		respondWithError(w, statusFor(err), "user does not exist")
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

func statusFor(err error) int {
	switch err.(type) {
	case api.NotFoundError:
		return http.StatusNotFound
	case api.ValidationError:
		return http.StatusBadRequest
	case api.ConflictError:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
