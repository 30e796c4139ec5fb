package service

import (
	"time"

	"drawing-server/internal/service/dto"
	"drawing-server/internal/service/game"
)

// isRoomIdle 判断房间是否已经空置超过 ttl
func isRoomIdle(room *game.Room, ttl time.Duration, now time.Time) bool {
	if room == nil {
		return true
	}

	since, empty := room.IdleSince()
	if !empty {
		return false
	}

	return now.Sub(since) >= ttl
}

func toRoomResponse(info game.RoomInfo) dto.RoomResponse {
	return dto.RoomResponse{
		Name:        info.Name,
		MaxPlayers:  info.MaxPlayers,
		PlayerCount: info.PlayerCount,
	}
}
