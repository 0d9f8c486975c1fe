package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/josephgoksu/SprintReview/internal/loader"
	"github.com/josephgoksu/SprintReview/models"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// reviewRequest is the embedded-body shape: both documents under named keys.
type reviewRequest struct {
	SprintData  json.RawMessage `json:"sprint_data"`
	MeetingData json.RawMessage `json:"meeting_data"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body", "")
		return
	}

	sprint, meeting, err := parseRequest(req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if s.cfg.Fixtures.Enabled {
		sprint, meeting, err = s.loadFixtures()
		if err != nil {
			s.logger.Error("fixture load failed",
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, codeInternal, "fixture data unavailable", "")
			return
		}
	}

	result, err := s.reviewer.Generate(r.Context(), sprint, meeting)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, details := statusFor(err)
	log := s.logger.Warn
	if status >= http.StatusInternalServerError {
		log = s.logger.Error
	}
	log("review failed",
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Int("status", status),
		zap.Error(err))
	writeJSON(w, status, errorBody{Error: details})
}

// parseRequest validates both embedded documents. Field paths are reported
// relative to the request body, e.g. sprint_data.tasks[0].points.
func parseRequest(req reviewRequest) (models.Sprint, models.Meeting, error) {
	if isAbsent(req.SprintData) {
		return models.Sprint{}, models.Meeting{}, &loader.ValidationError{Field: "sprint_data", Reason: "is required"}
	}
	if isAbsent(req.MeetingData) {
		return models.Sprint{}, models.Meeting{}, &loader.ValidationError{Field: "meeting_data", Reason: "is required"}
	}

	sprint, err := loader.ParseSprint(req.SprintData)
	if err != nil {
		return models.Sprint{}, models.Meeting{}, prefixField("sprint_data", err)
	}
	meeting, err := loader.ParseMeeting(req.MeetingData)
	if err != nil {
		return models.Sprint{}, models.Meeting{}, prefixField("meeting_data", err)
	}
	return sprint, meeting, nil
}

func (s *Server) loadFixtures() (models.Sprint, models.Meeting, error) {
	sprint, err := s.fixtures.LoadSprint(s.cfg.Fixtures.SprintFile)
	if err != nil {
		return models.Sprint{}, models.Meeting{}, fmt.Errorf("sprint fixture: %w", err)
	}
	meeting, err := s.fixtures.LoadMeeting(s.cfg.Fixtures.MeetingFile)
	if err != nil {
		return models.Sprint{}, models.Meeting{}, fmt.Errorf("meeting fixture: %w", err)
	}
	return sprint, meeting, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func prefixField(prefix string, err error) error {
	var vErr *loader.ValidationError
	if !errors.As(err, &vErr) {
		return err
	}
	field := prefix
	if vErr.Field != "" {
		field = prefix + "." + vErr.Field
	}
	return &loader.ValidationError{Field: field, Reason: vErr.Reason, Err: vErr.Err}
}
