package relay

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"codesync/internal/metrics"
	"codesync/internal/models"
	"codesync/internal/registry"
)

// Transport is the delivery surface the router fans out through. The
// session hub implements it; tests substitute a recording fake.
type Transport interface {
	JoinGroup(socketID, roomID string)
	LeaveGroup(socketID, roomID string)
	EmitToConnection(socketID string, frame models.WSFrame)
	EmitToGroupExcluding(roomID, excludedID string, frame models.WSFrame)
}

// Router classifies inbound events, applies the fanout rules, and keeps
// the registry current. Event handling is fully serialized: one event at
// a time, so the duplicate-username check and the insert that follows it
// are atomic, and broadcast order matches processing order.
//
// Lookup failures (unknown connection, unresolvable room) are handled by
// a logged no-op, never by closing the connection or surfacing an error
// to the sender. Events and disconnects race; the loser must land
// harmlessly.
type Router struct {
	mu  sync.Mutex
	log *zap.Logger
	reg *registry.Registry
	tr  Transport
}

func NewRouter(log *zap.Logger, reg *registry.Registry, tr Transport) *Router {
	return &Router{log: log, reg: reg, tr: tr}
}

// Dispatch routes one inbound frame from a connection.
func (rt *Router) Dispatch(socketID string, frame models.WSFrame) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	metrics.EventReceived(frame.Type)

	switch frame.Type {
	case models.EventJoinRequest:
		var req models.JoinRequest
		decode(frame.Data, &req)
		rt.handleJoin(socketID, req)

	case models.EventSyncFiles:
		var files models.SyncFiles
		decode(frame.Data, &files)
		rt.tr.EmitToConnection(files.SocketID, models.WSFrame{
			Type: models.EventSyncFiles,
			Data: models.SyncFiles{Files: files.Files, CurrentFile: files.CurrentFile},
		})

	case models.EventFileCreated, models.EventFileUpdated, models.EventFileRenamed:
		var file models.FileEvent
		decode(frame.Data, &file)
		rt.relayToRoom(socketID, frame.Type, file)

	case models.EventFileDeleted:
		var del models.FileDeleted
		decode(frame.Data, &del)
		rt.relayToRoom(socketID, models.EventFileDeleted, del)

	case models.EventUserOffline:
		var target models.StatusChange
		decode(frame.Data, &target)
		rt.handleStatusChange(socketID, target.SocketID, models.StatusOffline, models.EventUserOffline)

	case models.EventUserOnline:
		var target models.StatusChange
		decode(frame.Data, &target)
		rt.handleStatusChange(socketID, target.SocketID, models.StatusOnline, models.EventUserOnline)

	case models.EventSendMessage:
		var msg models.ChatMessage
		decode(frame.Data, &msg)
		// renamed on the way out
		rt.relayToRoom(socketID, models.EventReceiveMessage, msg)

	case models.EventTypingStart:
		var typing models.TypingStart
		decode(frame.Data, &typing)
		user, ok := rt.reg.StartTyping(socketID, typing.CursorPosition)
		if !ok {
			rt.dropped(models.EventTypingStart, socketID)
			return
		}
		rt.tr.EmitToGroupExcluding(user.RoomID, socketID, models.WSFrame{
			Type: models.EventTypingStart,
			Data: models.UserEvent{User: user},
		})

	case models.EventTypingPause:
		user, ok := rt.reg.PauseTyping(socketID)
		if !ok {
			rt.dropped(models.EventTypingPause, socketID)
			return
		}
		rt.tr.EmitToGroupExcluding(user.RoomID, socketID, models.WSFrame{
			Type: models.EventTypingPause,
			Data: models.UserEvent{User: user},
		})

	case models.EventRequestDrawing:
		rt.relayToRoom(socketID, models.EventRequestDrawing, models.RequestDrawing{SocketID: socketID})

	case models.EventSyncDrawing:
		var drawing models.SyncDrawing
		decode(frame.Data, &drawing)
		rt.tr.EmitToConnection(drawing.SocketID, models.WSFrame{
			Type: models.EventSyncDrawing,
			Data: models.SyncDrawing{DrawingData: drawing.DrawingData},
		})

	case models.EventDrawingUpdate:
		var update models.DrawingUpdate
		decode(frame.Data, &update)
		rt.relayToRoom(socketID, models.EventDrawingUpdate, update)

	default:
		rt.log.Debug("unknown event dropped",
			zap.String("event", frame.Type), zap.String("socketId", socketID))
	}
}

// Disconnecting handles transport-level teardown. The farewell broadcast
// resolves the room while the record still exists; removal follows
// emission, never precedes it.
func (rt *Router) Disconnecting(socketID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	user, ok := rt.reg.FindByConnection(socketID)
	if !ok {
		rt.dropped("disconnecting", socketID)
		return
	}

	rt.leave(user)
	rt.log.Info("user disconnected",
		zap.String("username", user.Username),
		zap.String("roomId", user.RoomID),
		zap.String("socketId", socketID))
}

func (rt *Router) handleJoin(socketID string, req models.JoinRequest) {
	if rt.reg.UsernameTaken(req.RoomID, req.Username) {
		rt.tr.EmitToConnection(socketID, models.WSFrame{Type: models.EventUsernameExists})
		rt.log.Warn("join rejected, username taken",
			zap.String("username", req.Username), zap.String("roomId", req.RoomID))
		return
	}

	// A connection holds at most one registration. A repeat join under a
	// new name replaces the old one, so the previous room sees a
	// departure before the new room sees an arrival.
	if prev, ok := rt.reg.FindByConnection(socketID); ok {
		rt.leave(prev)
	}

	user := models.User{
		Username: req.Username,
		RoomID:   req.RoomID,
		Status:   models.StatusOnline,
		SocketID: socketID,
	}
	rt.reg.Insert(user)
	rt.tr.JoinGroup(socketID, req.RoomID)

	rt.tr.EmitToGroupExcluding(req.RoomID, socketID, models.WSFrame{
		Type: models.EventUserJoined,
		Data: models.UserEvent{User: user},
	})

	users := rt.reg.ListByRoom(req.RoomID)
	rt.tr.EmitToConnection(socketID, models.WSFrame{
		Type: models.EventJoinAccepted,
		Data: models.JoinAccepted{User: user, Users: users},
	})

	if len(users) == 1 {
		metrics.RoomOpened()
	}
	rt.log.Info("user joined",
		zap.String("username", user.Username),
		zap.String("roomId", user.RoomID),
		zap.String("socketId", socketID))
}

// leave broadcasts the farewell while the record still exists, then
// drops the record and the group membership.
func (rt *Router) leave(user models.User) {
	rt.tr.EmitToGroupExcluding(user.RoomID, user.SocketID, models.WSFrame{
		Type: models.EventUserDisconnected,
		Data: models.UserEvent{User: user},
	})
	rt.reg.Remove(user.SocketID)
	rt.tr.LeaveGroup(user.SocketID, user.RoomID)

	if len(rt.reg.ListByRoom(user.RoomID)) == 0 {
		metrics.RoomClosed()
	}
}

// handleStatusChange flips the target's online flag and notifies the
// target's room. The room is resolved via the target, not the sender.
func (rt *Router) handleStatusChange(senderID, targetID string, status models.UserStatus, event string) {
	user, ok := rt.reg.UpdateStatus(targetID, status)
	if !ok {
		rt.dropped(event, targetID)
		return
	}
	rt.tr.EmitToGroupExcluding(user.RoomID, senderID, models.WSFrame{
		Type: event,
		Data: models.StatusChange{SocketID: targetID},
	})
}

// relayToRoom broadcasts a payload to the sender's room, excluding the
// sender. Senders with no room (never joined, or already gone) are
// dropped silently.
func (rt *Router) relayToRoom(socketID, event string, payload interface{}) {
	user, ok := rt.reg.FindByConnection(socketID)
	if !ok {
		rt.dropped(event, socketID)
		return
	}
	rt.tr.EmitToGroupExcluding(user.RoomID, socketID, models.WSFrame{Type: event, Data: payload})
}

func (rt *Router) dropped(event, socketID string) {
	rt.log.Debug("event dropped, no participant for connection",
		zap.String("event", event), zap.String("socketId", socketID))
}

// decode re-marshals a frame's data into a typed payload.
func decode(in, out interface{}) {
	b, _ := json.Marshal(in)
	_ = json.Unmarshal(b, out)
}
