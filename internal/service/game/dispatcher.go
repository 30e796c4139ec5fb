package game

import (
	"errors"
	"fmt"
	"strings"

	"drawing-server/internal/service/protocol"

	"go.uber.org/zap"
)

// Dispatcher 解码入站消息并路由到对应的房间
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch 处理一个入站帧。返回的错误只用于记录日志，连接不会因此关闭
func (d *Dispatcher) Dispatch(clientID string, conn Connection, data []byte) error {
	frame, err := protocol.Decode(data)
	if err != nil {
		return err
	}

	if req := protocol.TryUnwrapJoinRoomHandshake(frame); req != nil {
		return d.handleJoin(clientID, conn, req)
	}

	if req := protocol.TryUnwrapChatMessage(frame); req != nil {
		room, err := d.roomOf(clientID)
		if err != nil {
			return err
		}

		room.Chat(clientID, req.Message, req.Timestamp)
		return nil
	}

	if req := protocol.TryUnwrapDrawData(frame); req != nil {
		room, err := d.roomOf(clientID)
		if err != nil {
			return err
		}

		if !room.Draw(clientID, frame.Raw) {
			zap.L().Debug(
				"丢弃非游戏阶段的笔画",
				zap.String("room", room.Name()),
				zap.String("client_id", clientID),
			)
		}
		return nil
	}

	if req := protocol.TryUnwrapChosenWord(frame); req != nil {
		room, err := d.roomOf(clientID)
		if err != nil {
			return err
		}

		return room.ChooseWord(clientID, req.ChosenWord)
	}

	return fmt.Errorf("%w: %s", protocol.ErrMalformedFrame, frame.Type)
}

func (d *Dispatcher) handleJoin(clientID string, conn Connection, req *protocol.JoinRoomHandshake) error {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		sendError(conn, protocol.ERROR_INVALID_REQUEST, "Username must not be empty.")
		return &ValidationError{Field: "username", Reason: "must not be empty"}
	}

	if req.ClientID != "" && req.ClientID != clientID {
		sendError(conn, protocol.ERROR_INVALID_REQUEST, "Client id does not match the session.")
		return &ValidationError{Field: "clientId", Reason: "does not match the session"}
	}

	room, ok := d.registry.Get(req.RoomName)
	if !ok {
		sendError(conn, protocol.ERROR_ROOM_NOT_FOUND, "Room not found.")
		return fmt.Errorf("%w: %s", ErrRoomNotFound, req.RoomName)
	}

	previous, inPrevious := d.registry.RoomOf(clientID)

	p, err := room.Join(clientID, username, conn)
	switch {
	case errors.Is(err, ErrUsernameTaken):
		sendError(conn, protocol.ERROR_USERNAME_TAKEN, "Username is already taken in this room.")
		return err
	case errors.Is(err, ErrRoomFull):
		sendError(conn, protocol.ERROR_ROOM_FULL, "Room is full.")
		return err
	case errors.Is(err, ErrRoomClosed):
		sendError(conn, protocol.ERROR_ROOM_NOT_FOUND, "Room not found.")
		return err
	case err != nil:
		return err
	}

	// 同一客户端只能在一个房间内，新房间接受后才离开原房间
	if inPrevious && previous != room {
		previous.Leave(clientID, nil)
	}

	d.registry.Track(p)

	return nil
}

// Disconnect 在连接关闭后调用，只有 conn 仍是玩家当前的连接时才会移除玩家
func (d *Dispatcher) Disconnect(clientID string, conn Connection) {
	room, ok := d.registry.RoomOf(clientID)
	if !ok {
		return
	}

	if room.Leave(clientID, conn) {
		d.registry.Forget(clientID)
	}
}

func (d *Dispatcher) roomOf(clientID string) (*Room, error) {
	room, ok := d.registry.RoomOf(clientID)
	if !ok {
		return nil, fmt.Errorf("%w: 客户端 %s 不在任何房间内", ErrRoomNotFound, clientID)
	}

	return room, nil
}

func sendError(conn Connection, kind int, message string) {
	if conn == nil || !conn.IsOpen() {
		return
	}

	if err := conn.Send(protocol.MustEncode(protocol.NewGameError(kind, message))); err != nil {
		zap.L().Warn("发送错误消息失败", zap.Error(err))
	}
}
