package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"astromatch_server/hub"
	"astromatch_server/models"
)

// ErrChatAccessDenied is returned when the requesting user is not a member of
// the chat room. Terminal for that screen.
var ErrChatAccessDenied = errors.New("user is not a participant of this chat room")

// markReadDelay is how long a session waits before marking a freshly received
// counterpart message as read, mirroring the brief on-screen delay in the app
const markReadDelay = time.Second

// ChatStore is the persistence slice a chat session needs
type ChatStore interface {
	GetChatRoom(ctx context.Context, chatRoomID string) (*models.ChatRoom, error)
	GetMatch(ctx context.Context, matchID, userID string) (*models.Match, error)
	GetMessages(ctx context.Context, chatRoomID string) ([]models.Message, error)
	InsertMessage(ctx context.Context, chatRoomID, senderID, content string) (*models.Message, error)
	MarkMessagesRead(ctx context.Context, chatRoomID, userID string) error
	MarkMessageRead(ctx context.Context, chatRoomID, messageID string) error
}

// ProfileGetter fetches the counterpart's profile
type ProfileGetter interface {
	GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

// ChatCounterpart is the matched user's profile as shown in the chat header
type ChatCounterpart struct {
	UserID        string   `json:"userId"`
	Name          string   `json:"name"`
	Age           int      `json:"age"`
	Bio           string   `json:"bio"`
	ProfileImages []string `json:"profileImages"`
	CurrentCity   string   `json:"currentCity"`
}

// ChatSession hydrates and keeps live a single chat room's transcript for one
// user. It owns the room's hub subscription; Close must be called when the
// screen goes away.
type ChatSession struct {
	store    ChatStore
	profiles ProfileGetter
	hub      *hub.Hub
	userID   string
	roomID   string

	// markReadAfter is overridable in tests
	markReadAfter time.Duration

	mu          sync.Mutex
	room        *models.ChatRoom
	counterpart *ChatCounterpart
	match       *models.Match
	messages    []models.Message
	sending     bool
	closed      bool
	cancelSub   func()
}

func NewChatSession(store ChatStore, profiles ProfileGetter, h *hub.Hub, userID, roomID string) *ChatSession {
	return &ChatSession{
		store:         store,
		profiles:      profiles,
		hub:           h,
		userID:        userID,
		roomID:        roomID,
		markReadAfter: markReadDelay,
	}
}

// Load fetches the room, verifies access, hydrates the counterpart profile,
// match metadata and transcript, marks counterpart messages read, and starts
// the live subscription. Any failure is terminal for the screen.
func (cs *ChatSession) Load(ctx context.Context) error {
	room, err := cs.store.GetChatRoom(ctx, cs.roomID)
	if err != nil {
		return err
	}
	if !room.HasParticipant(cs.userID) {
		return ErrChatAccessDenied
	}

	counterpartID := room.CounterpartOf(cs.userID)
	profile, err := cs.profiles.GetUserProfile(ctx, counterpartID)
	if err != nil {
		return fmt.Errorf("counterpart profile not found: %w", err)
	}

	match, err := cs.store.GetMatch(ctx, room.MatchID, cs.userID)
	if err != nil {
		return err
	}

	messages, err := cs.store.GetMessages(ctx, cs.roomID)
	if err != nil {
		return err
	}

	// Opening the chat reads everything the counterpart sent
	if err := cs.store.MarkMessagesRead(ctx, cs.roomID, cs.userID); err != nil {
		log.Printf("Failed to mark messages read on load for room %s: %v", cs.roomID, err)
	}

	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return errors.New("chat session is closed")
	}
	cs.room = room
	cs.counterpart = &ChatCounterpart{
		UserID:        profile.UserID,
		Name:          profile.Name,
		Age:           profile.Age(),
		Bio:           profile.Bio,
		ProfileImages: profile.ProfileImages,
		CurrentCity:   profile.CurrentCity,
	}
	cs.match = match
	cs.messages = messages
	alreadySubscribed := cs.cancelSub != nil
	cs.mu.Unlock()

	if !alreadySubscribed && cs.hub != nil {
		events, cancel := cs.hub.Subscribe(cs.roomID)
		cs.mu.Lock()
		cs.cancelSub = cancel
		cs.mu.Unlock()
		go cs.consume(events)
	}
	return nil
}

// Send inserts a new text message. Blank or whitespace-only content is a
// silent no-op, as is a call arriving while a send is in flight. The message
// is not appended locally; it arrives back through the hub subscription.
func (cs *ChatSession) Send(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return errors.New("chat session is closed")
	}
	if cs.sending {
		cs.mu.Unlock()
		return nil
	}
	cs.sending = true
	cs.mu.Unlock()

	_, err := cs.store.InsertMessage(ctx, cs.roomID, cs.userID, content)

	cs.mu.Lock()
	cs.sending = false
	cs.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// MarkRead flips the read flag on all unread counterpart messages in the room
func (cs *ChatSession) MarkRead(ctx context.Context) error {
	return cs.store.MarkMessagesRead(ctx, cs.roomID, cs.userID)
}

// Messages returns a copy of the current transcript
func (cs *ChatSession) Messages() []models.Message {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]models.Message, len(cs.messages))
	copy(out, cs.messages)
	return out
}

// Counterpart returns the matched user's header profile, nil before Load
func (cs *ChatSession) Counterpart() *ChatCounterpart {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.counterpart
}

// Match returns the match metadata behind the room, nil before Load
func (cs *ChatSession) Match() *models.Match {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.match
}

// Room returns the chat room, nil before Load
func (cs *ChatSession) Room() *models.ChatRoom {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.room
}

// Close tears down the live subscription and stops the session from applying
// any event that arrives afterwards.
func (cs *ChatSession) Close() {
	cs.mu.Lock()
	cs.closed = true
	cancel := cs.cancelSub
	cs.cancelSub = nil
	cs.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (cs *ChatSession) consume(events <-chan hub.MessageEvent) {
	for ev := range events {
		switch ev.Type {
		case hub.EventMessageInserted:
			cs.applyInsert(ev.Message)
		case hub.EventMessageUpdated:
			cs.applyUpdate(ev.Message)
		}
	}
}

// applyInsert appends the message unless one with the same id is already in the
// transcript; delivery is at-least-once so duplicates must be idempotent.
// Counterpart messages get marked read after a short delay.
func (cs *ChatSession) applyInsert(m models.Message) {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return
	}
	for _, existing := range cs.messages {
		if existing.MessageID == m.MessageID {
			cs.mu.Unlock()
			return
		}
	}
	cs.messages = append(cs.messages, m)
	fromCounterpart := m.SenderID != cs.userID
	delay := cs.markReadAfter
	cs.mu.Unlock()

	if fromCounterpart {
		time.AfterFunc(delay, func() {
			cs.mu.Lock()
			closed := cs.closed
			cs.mu.Unlock()
			if closed {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := cs.store.MarkMessageRead(ctx, m.ChatRoomID, m.MessageID); err != nil {
				log.Printf("Failed to mark live message %s as read: %v", m.MessageID, err)
			}
		})
	}
}

// applyUpdate replaces the matching message by id; unknown ids are ignored
func (cs *ChatSession) applyUpdate(m models.Message) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.closed {
		return
	}
	for i, existing := range cs.messages {
		if existing.MessageID == m.MessageID {
			cs.messages[i] = m
			return
		}
	}
}
