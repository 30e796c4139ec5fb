package game

import (
	"drawing-server/internal/service/protocol"
)

// broadcast 向房间内所有玩家发送消息，跳过已关闭的连接而不是中断，必须持有 mu
func (r *Room) broadcast(v any) {
	r.broadcastFrame(protocol.MustEncode(v), "")
}

// broadcastFrame 发送已编码的帧，exceptClientID 对应的玩家不会收到
func (r *Room) broadcastFrame(frame []byte, exceptClientID string) int {
	delivered := 0

	for _, p := range r.players {
		if exceptClientID != "" && p.clientID == exceptClientID {
			continue
		}

		if p.send(frame) {
			delivered++
		}
	}

	return delivered
}

func (r *Room) unicast(p *Player, v any) {
	p.send(protocol.MustEncode(v))
}

func (r *Room) broadcastPlayers() {
	r.broadcast(protocol.NewPlayersList(rankPlayers(r.players)))
}

// Broadcast 向房间内所有在线玩家发送一个帧，返回成功投递的数量
func (r *Room) Broadcast(frame []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.broadcastFrame(frame, "")
}
