// Package protocol 定义客户端与服务端之间的消息格式，所有消息都以 type 字段区分类型
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// 消息类型
const (
	TYPE_CHAT_MESSAGE        = "TYPE_CHAT_MESSAGE"
	TYPE_DRAW_DATA           = "TYPE_DRAW_DATA"
	TYPE_ANNOUNCEMENT        = "TYPE_ANNOUNCEMENT"
	TYPE_JOIN_ROOM_HANDSHAKE = "TYPE_JOIN_ROOM_HANDSHAKE"
	TYPE_GAME_ERROR          = "TYPE_GAME_ERROR"
	TYPE_PHASE_CHANGE        = "TYPE_PHASE_CHANGE"
	TYPE_CHOOSEN_WORD        = "TYPE_CHOOSEN_WORD"
	TYPE_GAME_STATE          = "TYPE_GAME_STATE"
	TYPE_NEW_WORDS           = "TYPE_NEW_WORDS"
	TYPE_PLAYERS_LIST        = "TYPE_PLAYERS_LIST"
)

// 公告类型
const (
	ANNOUNCEMENT_PLAYER_GUESSED_WORD = 0
	ANNOUNCEMENT_PLAYER_JOINED       = 1
	ANNOUNCEMENT_PLAYER_LEFT         = 2
	ANNOUNCEMENT_EVERYONE_GUESSED_IT = 3
)

// 错误类型
const (
	ERROR_ROOM_NOT_FOUND  = 0
	ERROR_USERNAME_TAKEN  = 1
	ERROR_ROOM_FULL       = 2
	ERROR_INVALID_REQUEST = 3
)

var (
	ErrMalformedFrame = errors.New("消息格式错误")
	ErrUnknownType    = errors.New("未知的消息类型")
)

// 客户端可以发送的消息类型，其余类型只由服务端下发
var inboundTypes = map[string]bool{
	TYPE_CHAT_MESSAGE:        true,
	TYPE_DRAW_DATA:           true,
	TYPE_JOIN_ROOM_HANDSHAKE: true,
	TYPE_CHOOSEN_WORD:        true,
}

type JoinRoomHandshake struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	RoomName string `json:"roomName"`
	ClientID string `json:"clientId"`
}

type ChatMessage struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	RoomName  string `json:"roomName"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timeStamp"`
}

// DrawData 只解析路由需要的字段，笔画数据原样转发
type DrawData struct {
	Type     string `json:"type"`
	RoomName string `json:"roomName"`
}

type ChosenWord struct {
	Type       string `json:"type"`
	ChosenWord string `json:"chosenWord"`
	RoomName   string `json:"roomName"`
}

// PhaseChange 的 Phase 为 nil 表示阶段未变，仅更新剩余时间（毫秒）
type PhaseChange struct {
	Type          string  `json:"type"`
	Phase         *string `json:"phase"`
	Time          int64   `json:"time"`
	DrawingPlayer string  `json:"drawingPlayer,omitempty"`
}

type NewWords struct {
	Type     string   `json:"type"`
	NewWords []string `json:"newWords"`
}

type GameState struct {
	Type          string `json:"type"`
	DrawingPlayer string `json:"drawingPlayer"`
	ChosenWord    string `json:"chosenWord"`
}

type Announcement struct {
	Type             string `json:"type"`
	Message          string `json:"message"`
	Timestamp        int64  `json:"timestamp"`
	AnnouncementType int    `json:"announcementType"`
}

type GameError struct {
	Type      string `json:"type"`
	ErrorType int    `json:"errorType"`
	Message   string `json:"message,omitempty"`
}

type PlayerData struct {
	Username  string `json:"username"`
	IsDrawing bool   `json:"isDrawing"`
	Score     int    `json:"score"`
	Rank      int    `json:"rank"`
}

type PlayersList struct {
	Type    string       `json:"type"`
	Players []PlayerData `json:"players"`
}

func NewChatMessage(from, roomName, message string, timestamp int64) ChatMessage {
	return ChatMessage{
		Type:      TYPE_CHAT_MESSAGE,
		From:      from,
		RoomName:  roomName,
		Message:   message,
		Timestamp: timestamp,
	}
}

func NewPhaseChange(phase *string, remaining int64, drawingPlayer string) PhaseChange {
	return PhaseChange{
		Type:          TYPE_PHASE_CHANGE,
		Phase:         phase,
		Time:          remaining,
		DrawingPlayer: drawingPlayer,
	}
}

func NewNewWords(words []string) NewWords {
	return NewWords{Type: TYPE_NEW_WORDS, NewWords: words}
}

func NewGameState(drawingPlayer, word string) GameState {
	return GameState{Type: TYPE_GAME_STATE, DrawingPlayer: drawingPlayer, ChosenWord: word}
}

func NewRevealedWord(word, roomName string) ChosenWord {
	return ChosenWord{Type: TYPE_CHOOSEN_WORD, ChosenWord: word, RoomName: roomName}
}

func NewAnnouncement(message string, timestamp int64, kind int) Announcement {
	return Announcement{
		Type:             TYPE_ANNOUNCEMENT,
		Message:          message,
		Timestamp:        timestamp,
		AnnouncementType: kind,
	}
}

func NewGameError(kind int, message string) GameError {
	return GameError{Type: TYPE_GAME_ERROR, ErrorType: kind, Message: message}
}

func NewPlayersList(players []PlayerData) PlayersList {
	return PlayersList{Type: TYPE_PLAYERS_LIST, Players: players}
}

// Frame 是解码后的入站消息，Raw 保留原始字节以便原样转发
type Frame struct {
	Type string
	Raw  json.RawMessage
}

// Decode 只读取 type 字段，具体结构由 TryUnwrapXxx 解析
func Decode(data []byte) (Frame, error) {
	var envelope struct {
		Type *string `json:"type"`
	}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	if envelope.Type == nil {
		return Frame{}, fmt.Errorf("%w: 缺少 type 字段", ErrMalformedFrame)
	}

	if !inboundTypes[*envelope.Type] {
		return Frame{}, fmt.Errorf("%w: %q", ErrUnknownType, *envelope.Type)
	}

	return Frame{Type: *envelope.Type, Raw: data}, nil
}

func TryUnwrapJoinRoomHandshake(frame Frame) *JoinRoomHandshake {
	return tryUnwrap[JoinRoomHandshake](frame, TYPE_JOIN_ROOM_HANDSHAKE)
}

func TryUnwrapChatMessage(frame Frame) *ChatMessage {
	return tryUnwrap[ChatMessage](frame, TYPE_CHAT_MESSAGE)
}

func TryUnwrapDrawData(frame Frame) *DrawData {
	return tryUnwrap[DrawData](frame, TYPE_DRAW_DATA)
}

func TryUnwrapChosenWord(frame Frame) *ChosenWord {
	return tryUnwrap[ChosenWord](frame, TYPE_CHOOSEN_WORD)
}

func tryUnwrap[T any](frame Frame, want string) *T {
	if frame.Type != want {
		return nil
	}

	var v T

	err := json.Unmarshal(frame.Raw, &v)
	if err != nil {
		zap.L().Error(
			"解析消息失败",
			zap.String("type", want),
			zap.Error(err),
			zap.ByteString("frame", frame.Raw),
		)
		return nil
	}

	return &v
}

// MustEncode 用于服务端构造的消息，编码失败属于程序错误
func MustEncode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic("Failed to marshal: " + err.Error())
	}

	return data
}
