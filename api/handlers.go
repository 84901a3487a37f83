package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"verynews/agent"
	"verynews/pkg/reportstore"

	"go.uber.org/zap"
)

const maxNewsBytes = 1 << 20

type JudgeRequest struct {
	News string `json:"news"`
}

func (s *Server) handleJudge(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req JudgeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxNewsBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.News) == "" {
		http.Error(w, "missing news parameter", http.StatusBadRequest)
		return
	}

	res, err := s.judge.Run(r.Context(), req.News)
	if err != nil {
		s.logger.Error("judge failed", zap.Error(err))
		http.Error(w, "judge failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if s.archive != nil {
		if err := s.archive.Save(res.RunID, res.CreatedAt, res); err != nil {
			s.logger.Error("failed to archive report", zap.String("run_id", res.RunID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		http.Error(w, "report archive is disabled", http.StatusNotFound)
		return
	}

	id := r.PathValue("id")
	var res agent.Result
	err := s.archive.Load(id, &res)
	switch {
	case errors.Is(err, reportstore.ErrNotFound):
		http.Error(w, "report not found", http.StatusNotFound)
		return
	case err != nil:
		s.logger.Error("failed to load report", zap.String("run_id", id), zap.Error(err))
		http.Error(w, "failed to load report", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(res.Report))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		http.Error(w, "report archive is disabled", http.StatusNotFound)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.archive.List(limit)
	if err != nil {
		s.logger.Error("failed to list reports", zap.Error(err))
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []reportstore.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
