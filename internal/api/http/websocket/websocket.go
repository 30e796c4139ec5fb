package websocket

import (
	"net/http"
	"sync"
	"time"

	"drawing-server/internal/config"
	"drawing-server/internal/service/game"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// NOTE: 暂时允许所有来源
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var heartbeatHandler = func(conn *websocket.Conn, timeout time.Duration) func(string) error {
	return func(string) error {
		conn.SetReadDeadline(time.Now().Add(timeout))
		return nil
	}
}

// wsConnection 实现 game.Connection，发送的帧先进入有界队列，由写协程写出
type wsConnection struct {
	conn     *websocket.Conn
	clientID string
	cfg      config.WebSocketConfig

	sendCh chan []byte
	done   chan struct{}
	// 写协程退出后关闭
	stopped chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	reason    string
}

func newConnection(conn *websocket.Conn, clientID string, cfg config.WebSocketConfig) *wsConnection {
	return &wsConnection{
		conn:     conn,
		clientID: clientID,
		cfg:      cfg,
		sendCh:   make(chan []byte, cfg.SendBuffer),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (c *wsConnection) Send(frame []byte) error {
	select {
	case <-c.done:
		return game.ErrConnectionClosed
	default:
	}

	select {
	case c.sendCh <- frame:
		return nil
	default:
		// 队列已满说明客户端太慢，直接断开，避免拖住房间
		c.Close("send buffer full")
		return game.ErrSendBufferFull
	}
}

func (c *wsConnection) IsOpen() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *wsConnection) Close(reason string) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.reason = reason
		c.mu.Unlock()

		close(c.done)
	})
}

func (c *wsConnection) closeReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reason
}

// writePump 是唯一写 conn 的协程，退出时关闭底层连接以结束读循环
func (c *wsConnection) writePump() {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)

	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.stopped)
	}()

	for {
		select {
		case <-c.done:
			c.flush()
			c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, c.closeReason()),
				time.Now().Add(c.cfg.WriteTimeout),
			)

			zap.L().Debug(
				"WebSocket写入协程退出",
				zap.String("client_id", c.clientID),
				zap.String("reason", c.closeReason()),
			)
			return

		case frame := <-c.sendCh:
			if err := c.write(frame); err != nil {
				zap.L().Warn(
					"发送消息失败",
					zap.String("client_id", c.clientID),
					zap.Error(err),
				)
				c.Close("write failed")
			}

		case <-ticker.C:
			err := c.conn.WriteControl(
				websocket.PingMessage,
				nil,
				time.Now().Add(c.cfg.WriteTimeout),
			)
			if err != nil {
				zap.L().Warn(
					"发送心跳失败",
					zap.String("client_id", c.clientID),
					zap.Error(err),
				)
				c.Close("heartbeat failed")
			}
		}
	}
}

// flush 尽量写出关闭前已入队的帧
func (c *wsConnection) flush() {
	for {
		select {
		case frame := <-c.sendCh:
			if err := c.write(frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *wsConnection) write(frame []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))

	return c.conn.WriteMessage(websocket.TextMessage, frame)
}
