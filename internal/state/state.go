package state

import (
	"drawing-server/internal/config"
	"drawing-server/internal/service"
	"drawing-server/internal/service/game"
)

type AppState struct {
	Cfg        *config.AppConfig
	RoomSvc    *service.RoomService
	Registry   *game.Registry
	Dispatcher *game.Dispatcher
}

func NewAppState(
	cfg *config.AppConfig,
	registry *game.Registry,
	roomSvc *service.RoomService,
) *AppState {
	return &AppState{
		Cfg:        cfg,
		RoomSvc:    roomSvc,
		Registry:   registry,
		Dispatcher: game.NewDispatcher(registry),
	}
}

// Close 停止后台清理并关闭所有房间
func (s *AppState) Close() {
	s.RoomSvc.Close()
	s.Registry.Close()
}
