package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/sdkchat/internal/answer"
	"github.com/hyperjump/sdkchat/internal/models"
	"go.uber.org/zap"
)

type pageData struct {
	Question string
	Answer   string
	Sources  []*models.RetrievalResult
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, pageData{})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.Warn("invalid form", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	question := r.PostFormValue("question")
	s.logger.Debug("form question", zap.String("request_id", middleware.GetReqID(r.Context())), zap.String("question", question))
	a, _ := s.answers.Ask(r.Context(), question)
	s.renderPage(w, pageData{Question: question, Answer: a.Answer, Sources: a.Sources})
}

func (s *Server) renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		s.logger.Error("render page failed", zap.Error(err))
	}
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, err := s.answers.Ask(r.Context(), req.Question)
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusOK, a)
	case errors.Is(err, answer.ErrEmptyQuestion):
		s.respondError(w, http.StatusBadRequest, a.Answer)
	case errors.Is(err, answer.ErrGeneration):
		s.respondJSON(w, http.StatusBadGateway, a)
	default:
		s.respondJSON(w, http.StatusInternalServerError, a)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.retriever.Query(r.Context(), &query, s.topK)
	if err != nil {
		if errors.Is(err, models.ErrEmptyQuery) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"index_size":           s.retriever.Size(),
		"index_type":           s.retriever.IndexType(),
		"embedding_dimensions": s.retriever.Dimensions(),
		"top_k":                s.topK,
		"corpus_stale":         false,
		"watching":             s.drift != nil,
	}
	if s.drift != nil {
		st := s.drift.Status()
		resp["corpus_stale"] = st.Stale
		resp["corpus_changes"] = st.Changes
		if st.LastPath != "" {
			resp["corpus_last_path"] = st.LastPath
		}
	}
	if s.report != nil {
		resp["documents"] = len(s.report.Documents)
		resp["skipped"] = s.report.Skipped
		resp["bytes"] = s.report.Bytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
