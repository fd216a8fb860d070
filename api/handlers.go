package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hearthlang/hearth/service"
)

// runTimeout bounds how long a single POST /sessions/{id}/run waits for a
// guest program to halt. A program built entirely of pause statements can
// otherwise wedge the request (and, left unchecked, the server) forever.
const runTimeout = 30 * time.Second

// handleCreateSession handles POST /sessions.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.CreateSession()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create session: %v", err))
		return
	}

	response := SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	}

	writeJSON(w, http.StatusCreated, response)
}

// handleGetSessionStatus handles GET /sessions/{id}.
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	response := SessionStatusResponse{
		SessionID: sessionID,
		State:     string(session.Service.GetExecutionState()),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleDestroySession handles DELETE /sessions/{id}.
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "session destroyed",
	})
}

// handleLoadProgram handles POST /sessions/{id}/load. It runs source
// through the full lex/parse/semantic/TAC/bytecode pipeline and reports
// the first stage that failed, along with the TAC and bytecode on success.
func (s *Server) handleLoadProgram(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req LoadProgramRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	compiled, compileErr := session.Service.Compile(req.Source, sessionID+".hearth")
	if compileErr != nil {
		debugLog("session %s: compile failed: %v", sessionID, compileErr)
		writeJSON(w, http.StatusBadRequest, LoadProgramResponse{
			Success: false,
			Error:   compileErr.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, LoadProgramResponse{
		Success:  true,
		TAC:      compiled.TAC,
		Bytecode: compiled.Bytecode,
	})
}

// handleRun handles POST /sessions/{id}/run, executing the most recently
// loaded program to completion and streaming its output over the
// session's WebSocket subscription as it runs.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req RunRequest
	if r.ContentLength != 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	bytecode := session.Service.Bytecode()
	if bytecode == nil {
		writeError(w, http.StatusBadRequest, "no program loaded; call /load first")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
	defer cancel()

	compiled := &service.CompiledProgram{Bytecode: bytecode}
	output, runErr := session.Service.Run(ctx, compiled, req.Inputs)
	if runErr != nil {
		if s.broadcaster != nil {
			s.broadcaster.BroadcastExecutionEvent(sessionID, "error", map[string]interface{}{
				"message": runErr.Error(),
			})
		}
		writeJSON(w, http.StatusOK, RunResponse{
			Success: false,
			Output:  output,
			Error:   runErr.Error(),
		})
		return
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastExecutionEvent(sessionID, "halted", nil)
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Success: true,
		Output:  output,
	})
}
