package websocket

import (
	"errors"
	"time"

	"drawing-server/internal/service/game"
	"drawing-server/internal/service/protocol"
	"drawing-server/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func DrawGame(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		clientID := SessionClientID(ctx)
		clientIP := ctx.RemoteAddr()
		cfg := appState.Cfg.Socket

		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("升级到WebSocket失败", zap.Error(err))
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		// 没有会话的连接属于协议违规，直接关闭
		if clientID == "" {
			zap.L().Warn("WebSocket连接缺少会话", zap.String("client_ip", clientIP))

			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "No session was found."),
				time.Now().Add(cfg.WriteTimeout),
			)
			conn.Close()
			return
		}

		conn.SetReadLimit(cfg.ReadLimit)
		conn.SetReadDeadline(time.Now().Add(cfg.HeartbeatTimeout))
		conn.SetPongHandler(heartbeatHandler(conn, cfg.HeartbeatTimeout))

		wsConn := newConnection(conn, clientID, cfg)
		go wsConn.writePump()

		zap.L().Info(
			"WebSocket连接建立",
			zap.String("client_ip", clientIP),
			zap.String("client_id", clientID),
		)

		limiter := rate.NewLimiter(rate.Limit(cfg.MessageRate), cfg.MessageBurst)

		// 读取协程（主协程）
		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(
					err,
					websocket.CloseGoingAway,
					websocket.CloseNormalClosure,
					websocket.CloseAbnormalClosure,
				) {
					zap.L().Error(
						"读取消息失败",
						zap.String("client_id", clientID),
						zap.Error(err),
					)
				}

				break
			}

			conn.SetReadDeadline(time.Now().Add(cfg.HeartbeatTimeout))

			if msgType != websocket.TextMessage {
				continue
			}

			if !limiter.Allow() {
				zap.L().Warn(
					"消息过于频繁，已丢弃",
					zap.String("client_id", clientID),
				)
				continue
			}

			if err := appState.Dispatcher.Dispatch(clientID, wsConn, msg); err != nil {
				logDispatchError(clientID, err)
			}
		}

		// 读循环退出，表示客户端断开连接
		wsConn.Close("connection closed")
		appState.Dispatcher.Disconnect(clientID, wsConn)

		<-wsConn.stopped

		zap.L().Info(
			"WebSocket连接处理完成",
			zap.String("client_ip", clientIP),
			zap.String("client_id", clientID),
		)
	}
}

// logDispatchError 按错误类型选择日志级别，消息被丢弃但连接保持
func logDispatchError(clientID string, err error) {
	var verr *game.ValidationError

	switch {
	case errors.Is(err, protocol.ErrMalformedFrame),
		errors.Is(err, protocol.ErrUnknownType),
		errors.As(err, &verr):
		zap.L().Warn("拒绝无效消息", zap.String("client_id", clientID), zap.Error(err))

	case errors.Is(err, game.ErrRoomNotFound),
		errors.Is(err, game.ErrUsernameTaken),
		errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrRoomClosed):
		zap.L().Info("请求被拒绝", zap.String("client_id", clientID), zap.Error(err))

	default:
		zap.L().Debug("忽略消息", zap.String("client_id", clientID), zap.Error(err))
	}
}
