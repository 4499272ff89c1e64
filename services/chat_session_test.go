package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astromatch_server/hub"
	"astromatch_server/models"
)

type fakeChatStore struct {
	mu            sync.Mutex
	room          *models.ChatRoom
	match         *models.Match
	messages      []models.Message
	inserted      []models.Message
	markRoomCalls int
	markedRead    []string

	// when set, InsertMessage signals entered and then waits on gate
	entered chan struct{}
	gate    chan struct{}
}

func (f *fakeChatStore) GetChatRoom(ctx context.Context, chatRoomID string) (*models.ChatRoom, error) {
	if f.room == nil || f.room.ChatRoomID != chatRoomID {
		return nil, ErrItemNotFound
	}
	room := *f.room
	return &room, nil
}

func (f *fakeChatStore) GetMatch(ctx context.Context, matchID, userID string) (*models.Match, error) {
	if f.match == nil {
		return nil, ErrItemNotFound
	}
	match := *f.match
	return &match, nil
}

func (f *fakeChatStore) GetMessages(ctx context.Context, chatRoomID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Message, len(f.messages))
	copy(out, f.messages)
	return out, nil
}

func (f *fakeChatStore) InsertMessage(ctx context.Context, chatRoomID, senderID, content string) (*models.Message, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m := models.Message{
		ChatRoomID:  chatRoomID,
		MessageID:   fmt.Sprintf("m%d", len(f.inserted)+1),
		SenderID:    senderID,
		Content:     content,
		MessageType: models.MessageTypeText,
	}
	f.inserted = append(f.inserted, m)
	return &m, nil
}

func (f *fakeChatStore) MarkMessagesRead(ctx context.Context, chatRoomID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markRoomCalls++
	return nil
}

func (f *fakeChatStore) MarkMessageRead(ctx context.Context, chatRoomID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedRead = append(f.markedRead, messageID)
	return nil
}

func (f *fakeChatStore) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func (f *fakeChatStore) wasMarkedRead(messageID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.markedRead {
		if id == messageID {
			return true
		}
	}
	return false
}

type fakeProfileStore struct {
	profiles map[string]models.UserProfile
}

func (f *fakeProfileStore) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, ErrItemNotFound
	}
	return &p, nil
}

func newChatFixture() (*fakeChatStore, *fakeProfileStore) {
	store := &fakeChatStore{
		room: &models.ChatRoom{
			ChatRoomID: "room-1",
			MatchID:    "match-1",
			User1ID:    "alice",
			User2ID:    "bob",
			IsActive:   true,
		},
		match: &models.Match{
			MatchID:      "match-1",
			UserID:       "alice",
			TargetUserID: "bob",
			MatchScore:   74,
			Status:       models.MatchStatusActive,
		},
		messages: []models.Message{
			{ChatRoomID: "room-1", MessageID: "m-a", SenderID: "bob", Content: "hey", MessageType: models.MessageTypeText},
			{ChatRoomID: "room-1", MessageID: "m-b", SenderID: "alice", Content: "hi!", MessageType: models.MessageTypeText},
		},
	}
	profiles := &fakeProfileStore{profiles: map[string]models.UserProfile{
		"bob": {
			UserID:      "bob",
			Name:        "Bob",
			DateOfBirth: "1994-02-10",
			Bio:         "stargazer",
			CurrentCity: "Springfield",
		},
	}}
	return store, profiles
}

func TestChatLoadHydratesEverything(t *testing.T) {
	store, profiles := newChatFixture()
	session := NewChatSession(store, profiles, hub.New(), "alice", "room-1")

	require.NoError(t, session.Load(context.Background()))

	counterpart := session.Counterpart()
	require.NotNil(t, counterpart)
	assert.Equal(t, "bob", counterpart.UserID)
	assert.Equal(t, "Bob", counterpart.Name)
	assert.Greater(t, counterpart.Age, 0)

	match := session.Match()
	require.NotNil(t, match)
	assert.Equal(t, 74, match.MatchScore)

	assert.Len(t, session.Messages(), 2)
	assert.Equal(t, 1, store.markRoomCalls)
}

func TestChatLoadAccessDenied(t *testing.T) {
	store, profiles := newChatFixture()
	session := NewChatSession(store, profiles, hub.New(), "mallory", "room-1")

	err := session.Load(context.Background())
	assert.ErrorIs(t, err, ErrChatAccessDenied)
	assert.Nil(t, session.Counterpart())
}

func TestChatSendBlankIsNoOp(t *testing.T) {
	store, profiles := newChatFixture()
	session := NewChatSession(store, profiles, hub.New(), "alice", "room-1")
	require.NoError(t, session.Load(context.Background()))

	require.NoError(t, session.Send(context.Background(), "   \n\t"))
	assert.Equal(t, 0, store.insertCount())
}

func TestChatSendDoesNotAppendLocally(t *testing.T) {
	store, profiles := newChatFixture()
	session := NewChatSession(store, profiles, hub.New(), "alice", "room-1")
	require.NoError(t, session.Load(context.Background()))

	require.NoError(t, session.Send(context.Background(), "see you at 8"))

	assert.Equal(t, 1, store.insertCount())
	// The transcript only grows when the insert comes back through the hub
	assert.Len(t, session.Messages(), 2)
}

func TestChatSendInFlightGuard(t *testing.T) {
	store, profiles := newChatFixture()
	store.entered = make(chan struct{}, 1)
	store.gate = make(chan struct{})
	session := NewChatSession(store, profiles, hub.New(), "alice", "room-1")
	require.NoError(t, session.Load(context.Background()))

	done := make(chan error, 1)
	go func() { done <- session.Send(context.Background(), "first") }()
	<-store.entered

	// A second send while one is in flight is silently dropped
	require.NoError(t, session.Send(context.Background(), "second"))

	close(store.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.insertCount())
}

func TestChatHubInsertAppendsAndDeduplicates(t *testing.T) {
	store, profiles := newChatFixture()
	h := hub.New()
	session := NewChatSession(store, profiles, h, "alice", "room-1")
	session.markReadAfter = 5 * time.Millisecond
	require.NoError(t, session.Load(context.Background()))

	incoming := models.Message{
		ChatRoomID:  "room-1",
		MessageID:   "m-live",
		SenderID:    "bob",
		Content:     "are you free tonight?",
		MessageType: models.MessageTypeText,
	}
	h.Publish(hub.MessageEvent{Type: hub.EventMessageInserted, Message: incoming})

	require.Eventually(t, func() bool {
		return len(session.Messages()) == 3
	}, time.Second, 5*time.Millisecond)

	// Redelivery of the same insert must be idempotent
	h.Publish(hub.MessageEvent{Type: hub.EventMessageInserted, Message: incoming})
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, session.Messages(), 3)

	// A counterpart message gets marked read after the short delay
	require.Eventually(t, func() bool {
		return store.wasMarkedRead("m-live")
	}, time.Second, 5*time.Millisecond)
}

func TestChatHubOwnInsertNotMarkedRead(t *testing.T) {
	store, profiles := newChatFixture()
	h := hub.New()
	session := NewChatSession(store, profiles, h, "alice", "room-1")
	session.markReadAfter = 5 * time.Millisecond
	require.NoError(t, session.Load(context.Background()))

	own := models.Message{
		ChatRoomID: "room-1",
		MessageID:  "m-own",
		SenderID:   "alice",
		Content:    "sent from another tab",
	}
	h.Publish(hub.MessageEvent{Type: hub.EventMessageInserted, Message: own})

	require.Eventually(t, func() bool {
		return len(session.Messages()) == 3
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, store.wasMarkedRead("m-own"))
}

func TestChatHubUpdateReplacesByID(t *testing.T) {
	store, profiles := newChatFixture()
	h := hub.New()
	session := NewChatSession(store, profiles, h, "alice", "room-1")
	require.NoError(t, session.Load(context.Background()))

	updated := models.Message{
		ChatRoomID: "room-1",
		MessageID:  "m-a",
		SenderID:   "bob",
		Content:    "hey",
		IsRead:     true,
	}
	h.Publish(hub.MessageEvent{Type: hub.EventMessageUpdated, Message: updated})

	require.Eventually(t, func() bool {
		for _, m := range session.Messages() {
			if m.MessageID == "m-a" && m.IsRead {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	// Updates for ids never seen are dropped
	h.Publish(hub.MessageEvent{Type: hub.EventMessageUpdated, Message: models.Message{
		ChatRoomID: "room-1", MessageID: "m-ghost", IsRead: true,
	}})
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, session.Messages(), 2)
}

func TestChatCloseStopsLiveEvents(t *testing.T) {
	store, profiles := newChatFixture()
	h := hub.New()
	session := NewChatSession(store, profiles, h, "alice", "room-1")
	require.NoError(t, session.Load(context.Background()))

	session.Close()
	h.Publish(hub.MessageEvent{Type: hub.EventMessageInserted, Message: models.Message{
		ChatRoomID: "room-1", MessageID: "m-late", SenderID: "bob", Content: "too late",
	}})

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, session.Messages(), 2)

	require.Error(t, session.Send(context.Background(), "after close"))
	assert.Equal(t, 0, store.insertCount())
}
