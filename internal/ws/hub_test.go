package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/models"
	"taskdesk/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	m.Run()
}

type fakeConn struct {
	messages  chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	failWrite bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		messages: make(chan []byte, 8),
		closed:   make(chan struct{}),
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	if f.failWrite {
		return errors.New("connection gone")
	}
	f.messages <- data
	return nil
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func receiveEvent(t *testing.T, conn *fakeConn) Event {
	t.Helper()
	select {
	case payload := <-conn.messages:
		var event Event
		require.NoError(t, json.Unmarshal(payload, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func waitClosed(t *testing.T, conn *fakeConn) {
	t.Helper()
	select {
	case <-conn.closed:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for connection close")
	}
}

func TestPublishReachesOwnerOnly(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ownerConn := newFakeConn()
	otherConn := newFakeConn()
	hub.Register <- &Client{OwnerID: 1, Conn: ownerConn}
	hub.Register <- &Client{OwnerID: 2, Conn: otherConn}

	hub.Publish(1, "created", &models.Task{ID: 7, UserID: 1, Title: "Water the plants"})

	event := receiveEvent(t, ownerConn)
	assert.Equal(t, "created", event.Action)
	require.NotNil(t, event.Task)
	assert.Equal(t, 7, event.Task.ID)
	assert.Equal(t, "Water the plants", event.Task.Title)

	// Events are fanned out one at a time, so once the owner has this one,
	// the other connection's turn has already passed.
	assert.Zero(t, len(otherConn.messages), "foreign owner must not receive the event")
}

func TestPublishFansOutToAllOwnerConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	first := newFakeConn()
	second := newFakeConn()
	hub.Register <- &Client{OwnerID: 3, Conn: first}
	hub.Register <- &Client{OwnerID: 3, Conn: second}

	hub.Publish(3, "deleted", &models.Task{ID: 11, UserID: 3})

	assert.Equal(t, "deleted", receiveEvent(t, first).Action)
	assert.Equal(t, "deleted", receiveEvent(t, second).Action)
}

func TestFailedWriteEvictsClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	broken := newFakeConn()
	broken.failWrite = true
	healthy := newFakeConn()
	hub.Register <- &Client{OwnerID: 4, Conn: broken}
	hub.Register <- &Client{OwnerID: 4, Conn: healthy}

	hub.Publish(4, "created", &models.Task{ID: 1, UserID: 4})
	receiveEvent(t, healthy)
	waitClosed(t, broken)

	// The evicted connection is gone; later events still reach the rest.
	hub.Publish(4, "updated", &models.Task{ID: 1, UserID: 4})
	assert.Equal(t, "updated", receiveEvent(t, healthy).Action)
}

func TestUnregisterClosesConnection(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := newFakeConn()
	client := &Client{OwnerID: 5, Conn: conn}
	hub.Register <- client
	hub.Unregister <- client
	waitClosed(t, conn)
}
