package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_CreateGetDestroy(t *testing.T) {
	sm := NewSessionManager(NewBroadcaster())

	session, err := sm.CreateSession()
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, 1, sm.Count())

	got, err := sm.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	require.NoError(t, sm.DestroySession(session.ID))
	assert.Equal(t, 0, sm.Count())

	_, err = sm.GetSession(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_DestroyUnknownSessionIsError(t *testing.T) {
	sm := NewSessionManager(NewBroadcaster())
	err := sm.DestroySession("does-not-exist")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionManager_OutputIsBroadcast(t *testing.T) {
	broadcaster := NewBroadcaster()
	defer broadcaster.Close()
	sm := NewSessionManager(broadcaster)

	session, err := sm.CreateSession()
	require.NoError(t, err)

	sub := broadcaster.Subscribe(session.ID, nil)
	defer broadcaster.Unsubscribe(sub)

	compiled, err := session.Service.Compile("remember x = 1\nspeak x\n", "t.hearth")
	require.NoError(t, err)

	_, err = session.Service.Run(context.Background(), compiled, nil)
	require.NoError(t, err)

	select {
	case event := <-sub.Channel:
		assert.Equal(t, session.ID, event.SessionID)
	default:
		t.Fatal("expected at least one broadcast event from output or state change")
	}
}
