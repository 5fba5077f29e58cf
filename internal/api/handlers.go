package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmalbrecht/histvet/pkg/commit"
	"github.com/jmalbrecht/histvet/pkg/errors"
	"github.com/jmalbrecht/histvet/pkg/pipeline"
	"github.com/jmalbrecht/histvet/pkg/store"
)

// checkRequest is the body of POST /v1/check.
type checkRequest struct {
	Commits []commit.Declaration `json:"commits"`
	Policy  string               `json:"policy,omitempty"`
	Source  string               `json:"source,omitempty"`
	Persist bool                 `json:"persist,omitempty"`
	Refresh bool                 `json:"refresh,omitempty"`
}

// checkResponse is the body of a successful check. Reason labels a
// rejection ("CYCLE") so ingest pipelines need not parse prose; it is
// empty for an acyclic history.
type checkResponse struct {
	Acyclic     bool   `json:"acyclic"`
	Reason      string `json:"reason,omitempty"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	HistoryHash string `json:"history_hash"`
	Cached      bool   `json:"cached"`
	ReportID    string `json:"report_id,omitempty"`
}

// errorResponse is the body of any failed request.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	for i, d := range req.Commits {
		if err := errors.ValidateCommitID(d.ID); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(errors.GetCode(err), err, "commit %d", i))
			return
		}
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Declarations: req.Commits,
		Policy:       req.Policy,
		Source:       req.Source,
		Persist:      req.Persist && s.store != nil,
		Refresh:      req.Refresh,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := checkResponse{
		Acyclic:     result.Acyclic,
		Nodes:       result.Stats.Nodes,
		Edges:       result.Stats.Edges,
		HistoryHash: result.HistoryHash,
		Cached:      result.CacheInfo.CheckHit,
	}
	if !result.Acyclic {
		resp.Reason = string(errors.ErrCodeCycle)
	}
	if result.Report != nil {
		resp.ReportID = result.Report.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeReportNotFound, "report storage not configured"))
		return
	}
	id := chi.URLParam(r, "id")
	rep, err := s.store.Get(r.Context(), id)
	if stderrors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeReportNotFound, "no report with id %s", id))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeInternal, err, "load report"))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleRecentReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []store.Report{})
		return
	}
	reports, err := s.store.Recent(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeInternal, err, "list reports"))
		return
	}
	if reports == nil {
		reports = []store.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// statusFor maps error codes to HTTP statuses. A cyclic history never
// reaches here - it is a 200 with acyclic=false.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCommitID,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPolicy,
		errors.ErrCodeInvalidPath, errors.ErrCodeDanglingParent:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeReportNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}
