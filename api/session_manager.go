package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/hearthlang/hearth/service"
)

var (
	// ErrSessionNotFound is returned when a session is not found.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExists is returned when trying to create a session with an existing ID.
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Session represents an active compile-and-run session.
type Session struct {
	ID        string
	Service   *service.Service
	CreatedAt time.Time
}

// SessionManager manages multiple concurrent sessions.
type SessionManager struct {
	sessions    map[string]*Session
	broadcaster *Broadcaster
	mu          sync.RWMutex
}

// NewSessionManager creates a new session manager.
func NewSessionManager(broadcaster *Broadcaster) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
	}
}

// CreateSession creates a new session with a unique ID, wiring its
// Service's output and state-change events to the broadcaster.
func (sm *SessionManager) CreateSession() (*Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	svc := service.NewService()

	if sm.broadcaster != nil {
		svc.SetOutputWriter(NewEventWriter(sm.broadcaster, sessionID, "stdout"))
		broadcaster := sm.broadcaster
		sid := sessionID
		svc.SetStateChangedCallback(func(state service.ExecutionState) {
			broadcaster.BroadcastState(sid, executionStateSnapshot(svc, state))
		})
		debugLog("Session %s: EventWriter and state callback wired to broadcaster", sessionID)
	} else {
		debugLog("Session %s: WARNING - no broadcaster available for output", sessionID)
	}

	session := &Session{
		ID:        sessionID,
		Service:   svc,
		CreatedAt: time.Now(),
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; exists {
		return nil, ErrSessionAlreadyExists
	}

	sm.sessions[sessionID] = session
	return session, nil
}

// GetSession retrieves a session by ID.
func (sm *SessionManager) GetSession(sessionID string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// DestroySession removes a session by ID.
func (sm *SessionManager) DestroySession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}
	delete(sm.sessions, sessionID)
	return nil
}

// ListSessions returns a list of all session IDs.
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// executionStateSnapshot builds the payload for a state-change broadcast:
// the new status plus whatever the VM currently has loaded. PC/Vars/Stack
// read as zero values before anything has been compiled or stepped.
func executionStateSnapshot(svc *service.Service, state service.ExecutionState) ExecutionStateData {
	vars := make(map[string]interface{}, len(svc.Vars()))
	for name, v := range svc.Vars() {
		vars[name] = v
	}

	stack := svc.Stack()
	stackValues := make([]interface{}, len(stack))
	for i, v := range stack {
		stackValues[i] = v
	}

	return ExecutionStateData{
		Status: string(state),
		PC:     svc.PC(),
		Vars:   vars,
		Stack:  stackValues,
	}
}

func generateSessionID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
