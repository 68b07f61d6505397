package models

import "encoding/json"

// Wire-level event names. These strings are the contract between client
// and server and must not be renamed.
const (
	EventJoinRequest      = "JOIN_REQUEST"
	EventJoinAccepted     = "JOIN_ACCEPTED"
	EventUsernameExists   = "USERNAME_EXISTS"
	EventUserJoined       = "USER_JOINED"
	EventUserDisconnected = "USER_DISCONNECTED"

	EventSyncFiles   = "SYNC_FILES"
	EventFileCreated = "FILE_CREATED"
	EventFileUpdated = "FILE_UPDATED"
	EventFileRenamed = "FILE_RENAMED"
	EventFileDeleted = "FILE_DELETED"

	EventUserOffline = "USER_OFFLINE"
	EventUserOnline  = "USER_ONLINE"

	EventSendMessage    = "SEND_MESSAGE"
	EventReceiveMessage = "RECEIVE_MESSAGE"

	EventTypingStart = "TYPING_START"
	EventTypingPause = "TYPING_PAUSE"

	EventRequestDrawing = "REQUEST_DRAWING"
	EventSyncDrawing    = "SYNC_DRAWING"
	EventDrawingUpdate  = "DRAWING_UPDATE"
)

type UserStatus string

const (
	StatusOnline  UserStatus = "online"
	StatusOffline UserStatus = "offline"
)

// User is one participant: a live connection that joined a room under a
// display name. SocketID is assigned by the transport and is the primary
// lookup key. CurrentFile is carried for wire compatibility but no event
// mutates it.
type User struct {
	Username       string     `json:"username"`
	RoomID         string     `json:"roomId"`
	Status         UserStatus `json:"status"`
	CursorPosition int        `json:"cursorPosition"`
	Typing         bool       `json:"typing"`
	SocketID       string     `json:"socketId"`
	CurrentFile    *string    `json:"currentFile"`
}

// WSFrame is the envelope for every inbound and outbound event.
type WSFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

/*** Inbound payloads ***/

type JoinRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type TypingStart struct {
	CursorPosition int `json:"cursorPosition"`
}

// StatusChange targets another participant by socket id (USER_OFFLINE /
// USER_ONLINE are routed via the target's room, not the sender's).
type StatusChange struct {
	SocketID string `json:"socketId"`
}

/*** Relayed payloads — opaque fields pass through verbatim ***/

// SyncFiles pushes full file-tree state to one participant. Inbound
// frames name the target connection in SocketID; the relayed frame
// omits it.
type SyncFiles struct {
	Files       json.RawMessage `json:"files"`
	CurrentFile json.RawMessage `json:"currentFile"`
	SocketID    string          `json:"socketId,omitempty"`
}

type FileEvent struct {
	File json.RawMessage `json:"file"`
}

type FileDeleted struct {
	ID json.RawMessage `json:"id"`
}

type ChatMessage struct {
	Message json.RawMessage `json:"message"`
}

type SyncDrawing struct {
	DrawingData json.RawMessage `json:"drawingData"`
	SocketID    string          `json:"socketId,omitempty"`
}

type DrawingUpdate struct {
	Snapshot json.RawMessage `json:"snapshot"`
}

/*** Outbound payloads ***/

// UserEvent carries the full participant record (USER_JOINED,
// USER_DISCONNECTED, TYPING_START, TYPING_PAUSE).
type UserEvent struct {
	User User `json:"user"`
}

// JoinAccepted is sent to the joining connection only; Users is the
// room roster in join order, including the new participant.
type JoinAccepted struct {
	User  User   `json:"user"`
	Users []User `json:"users"`
}

// RequestDrawing asks peers to sync canvas state to a new participant.
type RequestDrawing struct {
	SocketID string `json:"socketId"`
}
