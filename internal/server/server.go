// Package server exposes the question-answering pipeline and the course
// registry over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"studyrag/internal/adapter/registry"
	"studyrag/internal/domain"
	"studyrag/internal/usecase"
)

// Server handles the HTTP API. Each request runs the pipeline to
// completion; shared state is limited to the course registry.
type Server struct {
	answer        *usecase.AnswerUseCase
	registry      *registry.Registry
	defaultCourse string
	logger        *slog.Logger
}

// New creates a server over the pipeline and registry.
func New(answer *usecase.AnswerUseCase, reg *registry.Registry, defaultCourse string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		answer:        answer,
		registry:      reg,
		defaultCourse: defaultCourse,
		logger:        logger,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ask", s.handleAsk)
	mux.HandleFunc("POST /ask", s.handleAsk)
	mux.HandleFunc("GET /courses", s.handleListCourses)
	mux.HandleFunc("GET /courses/{code}", s.handleCourseInfo)
	mux.HandleFunc("POST /courses/{code}/reload", s.handleReloadCourse)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ListenAndServe starts the server on addr and blocks.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		ReadTimeout: 10 * time.Second,
		// No write timeout: model calls block until the upstream
		// responds and the client is expected to wait.
	}
	s.logger.Info("listening", "addr", addr)
	return srv.ListenAndServe()
}

type askResponse struct {
	Answer string `json:"answer"`
	Course string `json:"course"`
}

type coursesResponse struct {
	DefaultCourse    string              `json:"default_course"`
	AvailableCourses []courseAvailability `json:"available_courses"`
	LoadedCourses    []string            `json:"loaded_courses"`
}

type courseAvailability struct {
	CourseCode string `json:"course_code"`
	Indexed    bool   `json:"indexed"`
}

type reloadResponse struct {
	Status string `json:"status"`
	Course string `json:"course"`
	Chunks int    `json:"chunks"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	course := r.URL.Query().Get("course")
	if course == "" {
		course = s.defaultCourse
	}

	answer, err := s.answer.Answer(r.Context(), course, question)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Answer: answer, Course: course})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	available := s.registry.Available()
	courses := make([]courseAvailability, 0, len(available))
	for _, code := range available {
		courses = append(courses, courseAvailability{
			CourseCode: code,
			Indexed:    s.registry.IsIndexed(code),
		})
	}

	writeJSON(w, http.StatusOK, coursesResponse{
		DefaultCourse:    s.defaultCourse,
		AvailableCourses: courses,
		LoadedCourses:    s.registry.Loaded(),
	})
}

func (s *Server) handleCourseInfo(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	writeJSON(w, http.StatusOK, s.registry.Info(code))
}

func (s *Server) handleReloadCourse(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	s.registry.Invalidate(code)
	vs, err := s.registry.Store(code)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reloadResponse{
		Status: "ok",
		Course: code,
		Chunks: vs.Count(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps the error taxonomy to HTTP status codes. Every error
// surfaces to the caller with a readable message; nothing is swallowed.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUpstreamModel):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrEmptyIndex), errors.Is(err, domain.ErrCorruptIndex):
		status = http.StatusInternalServerError
	}

	s.logger.Error("request failed", "status", status, "error", err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
