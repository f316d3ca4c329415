package ws

import "encoding/json"

// Запросы клиента
const (
	TypeCreateRoom  = "CreateRoom"
	TypeJoinRoom    = "JoinRoom"
	TypeSetVideo    = "SetVideo"
	TypePlayPause   = "PlayPause"
	TypeSeek        = "Seek"
	TypeSendMessage = "SendMessage"
	TypeLeaveRoom   = "LeaveRoom"
	TypePing        = "Ping"
)

// Ответы транспорта (остальные события шлёт сервис)
const (
	TypeError = "Error"
	TypePong  = "Pong"
)

// Коды ошибок в TypeError
const (
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeRoomNotFound     = "ROOM_NOT_FOUND"
	CodeWrongAccessCode  = "WRONG_ACCESS_CODE"
	CodeRoomFull         = "ROOM_FULL"
	CodeAlreadyMember    = "ALREADY_A_MEMBER"
	CodeNotInRoom        = "NOT_IN_A_ROOM"
	CodeNotRoomMember    = "NOT_A_ROOM_MEMBER"
	CodeInvalidVideo     = "INVALID_VIDEO"
	CodeMessageEmpty     = "MESSAGE_EMPTY"
	CodeMessageTooLong   = "MESSAGE_TOO_LONG"
	CodeBadRequest       = "BAD_REQUEST"
	CodeInternal         = "INTERNAL_ERROR"
)

type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Request: входящий кадр, payload разбирается уже по типу запроса.
type Request struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type JoinRoomRequest struct {
	RoomID     string `json:"roomId"`
	AccessCode string `json:"accessCode"`
}

type SetVideoRequest struct {
	VideoURL string `json:"videoUrl"`
}

type PlayPauseRequest struct {
	IsPlaying bool    `json:"isPlaying"`
	Time      float64 `json:"time"`
}

type SeekRequest struct {
	Time float64 `json:"time"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Request string `json:"request,omitempty"`
}
