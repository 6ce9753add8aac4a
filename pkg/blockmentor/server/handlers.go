package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/randalmurphal/blockmentor/pkg/blockmentor"
	"github.com/randalmurphal/blockmentor/pkg/blockmentor/observability"
)

type codeRequest struct {
	Code string `json:"code"`
}

type updateRequest struct {
	OldCode string `json:"oldcode"`
	NewCode string `json:"newcode"`
}

type flowchartResponse struct {
	Lines   []string `json:"lines"`
	Blocks  int      `json:"blocks"`
	Skipped int      `json:"skipped"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello, Music Blocks!"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProjectCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !s.decode(w, r, &req) {
		return
	}
	desc, err := s.backend.Describe(r.Context(), req.Code)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

func (s *Server) handleUpdateCode(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !s.decode(w, r, &req) {
		return
	}
	desc, err := s.backend.DescribeUpdate(r.Context(), req.OldCode, req.NewCode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, desc)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req blockmentor.ChatRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.backend.Chat(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req blockmentor.AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.backend.Analyze(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFlowchart(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.backend.Flowchart(r.Context(), req.Code)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flowchartResponse{Lines: res.Lines, Blocks: res.Blocks, Skipped: res.Skipped})
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

// fail maps a service error to a status: request problems are 400, a
// missing model is 503, and upstream failures are 502.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	switch {
	case blockmentor.IsClientError(err):
		status = http.StatusBadRequest
	case errors.Is(err, blockmentor.ErrNoLLM):
		status = http.StatusServiceUnavailable
	}
	if status >= 500 {
		observability.LoggerFrom(r.Context(), s.logger).Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
