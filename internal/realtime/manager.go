package realtime

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/core/account"
	"github.com/frahmantamala/teamchat/internal/core/events"
	"github.com/frahmantamala/teamchat/internal/group"
	"github.com/frahmantamala/teamchat/internal/message"
	"github.com/frahmantamala/teamchat/internal/metrics"
)

// Identity reloads an account so every privileged action sees its current state.
type Identity interface {
	Resolve(ctx context.Context, accountID int64) (*account.Account, error)
}

type GroupAuthorizer interface {
	Authorize(ctx context.Context, actor *account.Account, groupID int64) (*group.Group, error)
}

type MessageSender interface {
	Send(ctx context.Context, actor *account.Account, groupID int64, content string) (*message.MessageResponse, error)
}

// errFatal marks an error after which the connection is closed.
type errFatal struct{ error }

// targetError records the group a failed join or send was aimed at.
type targetError struct {
	groupID int64
	err     error
}

func (e targetError) Error() string { return e.err.Error() }

func (e targetError) Unwrap() error { return e.err }

type Manager struct {
	hub      *Hub
	identity Identity
	groups   GroupAuthorizer
	messages MessageSender
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewManager(hub *Hub, identity Identity, groups GroupAuthorizer, messages MessageSender, m *metrics.Metrics, logger *slog.Logger) *Manager {
	mgr := &Manager{
		hub:      hub,
		identity: identity,
		groups:   groups,
		messages: messages,
		metrics:  m,
		logger:   logger,
	}
	hub.onSlow = func(s *Session) {
		m.SlowConsumer()
		logger.Warn("dropping slow realtime consumer", "session_id", s.ID, "actor_id", s.AccountID)
	}
	return mgr
}

// Subscribe wires the manager to domain events so messages written over REST
// reach the rooms too.
func (m *Manager) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeMessageCreated, m.onMessageCreated)
	bus.Subscribe(events.EventTypeMessageDeleted, m.onMessageDeleted)
	bus.Subscribe(events.EventTypeAccountDeactivated, m.onAccountDeactivated)
	bus.Subscribe(events.EventTypeAccountReassigned, m.onAccountReassigned)
}

func (m *Manager) Hub() *Hub {
	return m.hub
}

// Connect registers s and greets it.
func (m *Manager) Connect(s *Session) {
	m.hub.Add(s)
	m.reply(s, EventConnected, ConnectedPayload{UserID: s.AccountID, Name: s.Name})
	m.logger.Info("realtime session opened", "session_id", s.ID, "actor_id", s.AccountID, "company_id", s.CompanyID)
}

func (m *Manager) Disconnect(s *Session) {
	s.Close()
	m.hub.Remove(s)
	m.logger.Info("realtime session closed", "session_id", s.ID, "actor_id", s.AccountID)
}

// Dispatch handles one inbound frame. Frames of one session are never dispatched concurrently.
func (m *Manager) Dispatch(ctx context.Context, s *Session, frame []byte) {
	eventType := "invalid"
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("realtime handler panicked", "session_id", s.ID, "event_type", eventType, "panic", r)
			m.metrics.Event(eventType, "panic")
			m.replyError(s, "Internal server error")
		}
	}()

	env, err := decodeEnvelope(frame)
	if err != nil {
		m.metrics.Event(eventType, "invalid")
		m.replyError(s, "Invalid message format")
		return
	}
	eventType = env.Type

	switch env.Type {
	case EventJoinRoom:
		err = m.handleJoin(ctx, s, env)
	case EventSendMessage:
		err = m.handleSend(ctx, s, env)
	case EventTypingStart:
		err = m.handleTyping(s, true)
	case EventTypingStop:
		err = m.handleTyping(s, false)
	default:
		eventType = "unknown"
		m.logger.Debug("unknown realtime event", "session_id", s.ID, "type", env.Type)
		m.metrics.Event(eventType, "invalid")
		m.replyError(s, "Unknown event type")
		return
	}

	if err == nil {
		m.metrics.Event(eventType, "ok")
		return
	}
	m.fail(s, eventType, err)
}

func (m *Manager) handleJoin(ctx context.Context, s *Session, env *Envelope) error {
	var p JoinRoomPayload
	if err := decodePayload(env, &p); err != nil || p.GroupID <= 0 {
		return errors.NewValidationError("groupId is required", errors.ErrCodeValidationFailed)
	}

	actor, err := m.resolve(ctx, s)
	if err != nil {
		return err
	}
	g, err := m.groups.Authorize(ctx, actor, p.GroupID)
	if err != nil {
		return targetError{groupID: p.GroupID, err: err}
	}
	if !m.hub.Join(s, g.ID) {
		return errFatal{errors.ErrUnauthenticated}
	}

	m.reply(s, EventJoinedRoom, JoinedRoomPayload{GroupID: g.ID, GroupName: g.Name})
	m.logger.Debug("joined room",
		"session_id", s.ID,
		"actor_id", actor.ID,
		"group_id", g.ID,
		"members", len(m.hub.Members(RoomName(g.ID))))
	return nil
}

func (m *Manager) handleSend(ctx context.Context, s *Session, env *Envelope) error {
	groupID, ok := m.hub.Current(s)
	if !ok {
		return errors.ErrNoRoomJoined
	}
	var p SendMessagePayload
	if err := decodePayload(env, &p); err != nil {
		return errors.NewValidationError("Invalid message format", errors.ErrCodeValidationFailed)
	}

	actor, err := m.resolve(ctx, s)
	if err != nil {
		return err
	}
	// Persist and fan-out happen inside Send; the new_message frame arrives through onMessageCreated.
	if _, err := m.messages.Send(ctx, actor, groupID, p.Content); err != nil {
		return targetError{groupID: groupID, err: err}
	}
	m.metrics.MessageSent("realtime")
	return nil
}

func (m *Manager) handleTyping(s *Session, started bool) error {
	groupID, ok := m.hub.Current(s)
	if !ok {
		return nil
	}

	var frame []byte
	var err error
	if started {
		frame, err = Encode(EventUserTyping, TypingPayload{UserID: s.AccountID, Name: s.Name})
	} else {
		frame, err = Encode(EventUserStoppedTyping, TypingPayload{UserID: s.AccountID})
	}
	if err != nil {
		return err
	}
	m.hub.Broadcast(RoomName(groupID), frame, s.ID)
	return nil
}

func (m *Manager) resolve(ctx context.Context, s *Session) (*account.Account, error) {
	actor, err := m.identity.Resolve(ctx, s.AccountID)
	if err != nil {
		if stderrors.Is(err, errors.ErrAccountInactive) || stderrors.Is(err, errors.ErrUnauthenticated) {
			return nil, errFatal{err}
		}
		return nil, err
	}
	return actor, nil
}

// fail reports err to the sender only and closes the session when err is fatal.
func (m *Manager) fail(s *Session, eventType string, err error) {
	var fatal errFatal
	isFatal := stderrors.As(err, &fatal)
	if isFatal {
		err = fatal.error
	}

	var target targetError
	stderrors.As(err, &target)

	appErr, ok := errors.IsAppError(err)
	msg := "Internal server error"
	outcome := "error"
	switch {
	case !ok || appErr.Type == errors.ErrorTypeInternal:
		m.logger.Error("realtime handler failed", "session_id", s.ID, "event_type", eventType, "error", err)
	case appErr.Type == errors.ErrorTypeNotFound || appErr.Type == errors.ErrorTypeForbidden:
		msg = errors.ErrAccessDenied.Message
		outcome = "denied"
		m.metrics.AccessDenied(eventType)
		m.logger.Warn("realtime access denied",
			"session_id", s.ID,
			"actor_id", s.AccountID,
			"company_id", s.CompanyID,
			"event_type", eventType,
			"group_id", target.groupID,
			"reason", appErr.Code)
	default:
		msg = appErr.GetDetailedMessage()
		outcome = "rejected"
	}

	m.metrics.Event(eventType, outcome)
	m.replyError(s, msg)
	if isFatal {
		m.logger.Warn("closing realtime session", "session_id", s.ID, "actor_id", s.AccountID, "reason", msg)
		s.Close()
	}
}

func (m *Manager) reply(s *Session, eventType string, payload interface{}) {
	frame, err := Encode(eventType, payload)
	if err != nil {
		m.logger.Error("failed to encode frame", "event_type", eventType, "error", err)
		return
	}
	m.hub.Send(s, frame)
}

func (m *Manager) replyError(s *Session, msg string) {
	m.reply(s, EventError, ErrorPayload{Message: msg})
}

func (m *Manager) onMessageCreated(_ context.Context, e events.Event) error {
	evt, ok := e.(*events.MessageCreatedEvent)
	if !ok {
		return nil
	}
	frame, err := Encode(EventNewMessage, NewMessagePayload{Message: evt.Message})
	if err != nil {
		m.logger.Error("failed to encode new message", "message_id", evt.MessageID, "error", err)
		return nil
	}
	n := m.hub.Broadcast(RoomName(evt.GroupID), frame, "")
	m.logger.Debug("broadcast message", "group_id", evt.GroupID, "message_id", evt.MessageID, "recipients", n)
	return nil
}

func (m *Manager) onMessageDeleted(_ context.Context, e events.Event) error {
	evt, ok := e.(*events.MessageDeletedEvent)
	if !ok {
		return nil
	}
	frame, err := Encode(EventMessageDeleted, MessageDeletedPayload{MessageID: evt.MessageID, GroupID: evt.GroupID})
	if err != nil {
		return nil
	}
	m.hub.Broadcast(RoomName(evt.GroupID), frame, "")
	return nil
}

func (m *Manager) onAccountDeactivated(_ context.Context, e events.Event) error {
	evt, ok := e.(*events.AccountDeactivatedEvent)
	if !ok {
		return nil
	}
	for _, s := range m.hub.SessionsOf(evt.AccountID) {
		m.replyError(s, errors.ErrAccountInactive.Message)
		s.Close()
		m.logger.Info("closed session of deactivated account", "session_id", s.ID, "actor_id", evt.AccountID)
	}
	return nil
}

// onAccountReassigned takes sessions out of rooms the account may no longer read.
func (m *Manager) onAccountReassigned(ctx context.Context, e events.Event) error {
	evt, ok := e.(*events.AccountReassignedEvent)
	if !ok {
		return nil
	}
	sessions := m.hub.SessionsOf(evt.AccountID)
	if len(sessions) == 0 {
		return nil
	}

	actor, err := m.identity.Resolve(ctx, evt.AccountID)
	if err != nil {
		m.logger.Error("failed to reload reassigned account", "actor_id", evt.AccountID, "error", err)
		return nil
	}
	for _, s := range sessions {
		groupID, joined := m.hub.Current(s)
		if !joined {
			continue
		}
		_, err := m.groups.Authorize(ctx, actor, groupID)
		if err == nil {
			continue
		}
		if appErr, ok := errors.IsAppError(err); !ok || appErr.Type == errors.ErrorTypeInternal {
			m.logger.Error("failed to recheck room access", "session_id", s.ID, "group_id", groupID, "error", err)
			continue
		}
		if m.hub.LeaveIf(s, groupID) {
			m.replyError(s, errors.ErrAccessDenied.Message)
			m.logger.Info("removed session from room after department change",
				"session_id", s.ID,
				"actor_id", evt.AccountID,
				"group_id", groupID)
		}
	}
	return nil
}
