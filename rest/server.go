package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/stepline/logger"
	"github.com/mohitkumar/stepline/metadata"
	"github.com/mohitkumar/stepline/model"
	"github.com/mohitkumar/stepline/service"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port            int
	metadataService metadata.MetadataService
	executorService *service.WorkItemExecutionService
}

func NewServer(httpPort int, metadataService metadata.MetadataService, executorService *service.WorkItemExecutionService) (*Server, error) {

	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", httpPort),
			IdleTimeout: 2 * time.Second,
		},
		metadataService: metadataService,
		executorService: executorService,
		Port:            httpPort,
	}

	router := mux.NewRouter()
	router.HandleFunc("/metadata/graph", s.HandleCreateGraph).Methods(http.MethodPost)
	router.HandleFunc("/metadata/graph/{id}", s.HandleGetGraph).Methods(http.MethodGet)
	router.HandleFunc("/metadata/graph/{id}", s.HandleDeleteGraph).Methods(http.MethodDelete)

	router.HandleFunc("/metadata/team", s.HandleCreateTeam).Methods(http.MethodPost)
	router.HandleFunc("/metadata/team/{id}", s.HandleGetTeam).Methods(http.MethodGet)
	router.HandleFunc("/metadata/user", s.HandleCreateUser).Methods(http.MethodPost)
	router.HandleFunc("/metadata/user/{id}", s.HandleGetUser).Methods(http.MethodGet)

	router.HandleFunc("/workitem", s.HandleCreateWorkItem).Methods(http.MethodPost)
	router.HandleFunc("/workitem/{id}", s.HandleGetWorkItem).Methods(http.MethodGet)
	router.HandleFunc("/workitem/{id}", s.HandleDeleteWorkItem).Methods(http.MethodDelete)
	router.HandleFunc("/workitem/{id}/history", s.HandleGetHistory).Methods(http.MethodGet)
	router.HandleFunc("/workitem/{id}/targets", s.HandleGetBackwardTargets).Methods(http.MethodGet)
	router.HandleFunc("/workitem/{id}/transition", s.HandleTransition).Methods(http.MethodPost)
	router.HandleFunc("/workitem/{id}/back", s.HandleBackward).Methods(http.MethodPost)
	router.HandleFunc("/workitem/{id}/transfer", s.HandleTransfer).Methods(http.MethodPost)
	router.HandleFunc("/workitem/{id}/assign", s.HandleAssign).Methods(http.MethodPost)
	router.HandleFunc("/workitem/{id}/priority", s.HandlePriority).Methods(http.MethodPost)

	router.HandleFunc("/workitem/{id}/booking", s.HandleCreateBooking).Methods(http.MethodPost)
	router.HandleFunc("/booking/{id}/complete", s.HandleCompleteBooking).Methods(http.MethodPost)
	router.HandleFunc("/booking/{id}", s.HandleDeleteBooking).Methods(http.MethodDelete)

	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server")
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) actor(r *http.Request) (*model.ActorContext, error) {
	userId := r.Header.Get("X-Actor-Id")
	if userId == "" {
		return nil, fmt.Errorf("missing X-Actor-Id header")
	}
	return s.metadataService.ActorContext(userId)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, message map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	res, _ := json.Marshal(message)
	w.Write(res)
}

func respondOKWithoutBody(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
