package game

import (
	"cmp"
	"slices"

	"drawing-server/internal/service/protocol"

	"go.uber.org/zap"
)

// Connection 表示一个客户端的实时连接，每个连接只属于一个玩家
type Connection interface {
	// Send 非阻塞地投递一个文本帧
	Send(frame []byte) error
	IsOpen() bool
	Close(reason string)
}

// Player 由所在房间持有，conn、isDrawing 和 score 只能在房间锁内访问
type Player struct {
	clientID string
	username string

	conn      Connection
	isDrawing bool
	score     int
}

func newPlayer(clientID, username string, conn Connection) *Player {
	return &Player{
		clientID: clientID,
		username: username,
		conn:     conn,
	}
}

func (p *Player) ClientID() string {
	return p.clientID
}

func (p *Player) Username() string {
	return p.username
}

// send 跳过已关闭的连接，发送失败只记录日志
func (p *Player) send(frame []byte) bool {
	if p.conn == nil || !p.conn.IsOpen() {
		zap.L().Debug(
			"跳过已关闭的连接",
			zap.String("client_id", p.clientID),
		)
		return false
	}

	if err := p.conn.Send(frame); err != nil {
		zap.L().Warn(
			"发送消息失败",
			zap.String("client_id", p.clientID),
			zap.String("username", p.username),
			zap.Error(err),
		)
		return false
	}

	return true
}

// rankPlayers 按分数降序计算名次，同分同名次，输出保持房间内的顺序
func rankPlayers(players []*Player) []protocol.PlayerData {
	scores := make([]int, 0, len(players))
	for _, p := range players {
		scores = append(scores, p.score)
	}

	slices.SortFunc(scores, func(a, b int) int {
		return cmp.Compare(b, a)
	})

	data := make([]protocol.PlayerData, 0, len(players))
	for _, p := range players {
		rank, _ := slices.BinarySearchFunc(scores, p.score, func(a, target int) int {
			return cmp.Compare(target, a)
		})

		data = append(data, protocol.PlayerData{
			Username:  p.username,
			IsDrawing: p.isDrawing,
			Score:     p.score,
			Rank:      rank + 1,
		})
	}

	return data
}
