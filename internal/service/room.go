package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"drawing-server/internal/config"
	"drawing-server/internal/service/dto"
	"drawing-server/internal/service/game"

	"go.uber.org/zap"
)

type RoomService struct {
	registry *game.Registry
	words    game.WordSource
	gameCfg  config.GameConfig
	settings game.Settings

	idleTTL       time.Duration
	sweepInterval time.Duration
	now           func() time.Time

	cleanUpDone chan struct{}
	closeOnce   sync.Once
}

func NewRoomService(
	registry *game.Registry,
	words game.WordSource,
	gameCfg config.GameConfig,
	roomCfg config.RoomConfig,
) *RoomService {
	rs := &RoomService{
		registry:      registry,
		words:         words,
		gameCfg:       gameCfg,
		settings:      SettingsFromConfig(gameCfg),
		idleTTL:       roomCfg.IdleTTL,
		sweepInterval: time.Minute,
		now:           time.Now,
		cleanUpDone:   make(chan struct{}),
	}

	// idle_ttl 为 0 时不清理空房间
	if rs.idleTTL > 0 {
		go rs.startCleanupLoop()
	}

	return rs
}

func SettingsFromConfig(cfg config.GameConfig) game.Settings {
	return game.Settings{
		MinPlayers:       cfg.MinPlayers,
		CandidateWords:   cfg.CandidateWords,
		Tick:             cfg.Tick,
		WaitingForStart:  cfg.WaitingForStart,
		NewRound:         cfg.NewRound,
		GameRunning:      cfg.GameRunning,
		ShowWord:         cfg.ShowWord,
		GuessScore:       cfg.GuessScore,
		SpeedMultiplier:  cfg.SpeedMultiplier,
		DrawerBonus:      cfg.DrawerBonus,
		UnguessedPenalty: cfg.UnguessedPenalty,
	}
}

func (rs *RoomService) startCleanupLoop() {
	ticker := time.NewTicker(rs.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.cleanUpDone:
			return

		case <-ticker.C:
			rs.sweepIdle()
		}
	}
}

// sweepIdle 移除空置超过 idle_ttl 的房间，返回移除的数量
func (rs *RoomService) sweepIdle() int {
	now := rs.now()
	removed := 0

	for _, room := range rs.registry.Rooms() {
		if !isRoomIdle(room, rs.idleTTL, now) {
			continue
		}

		zap.S().Infof("房间 %s 空置超过 %s，开始清理", room.Name(), rs.idleTTL)

		if rs.registry.Remove(room.Name()) {
			removed++
		}
	}

	return removed
}

func (rs *RoomService) Close() {
	rs.closeOnce.Do(func() {
		close(rs.cleanUpDone)
	})
}

func (rs *RoomService) CreateRoom(req dto.CreateRoomRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return &game.ValidationError{Field: "name", Reason: "Room name must not be empty."}
	}

	if req.MaxPlayers < rs.gameCfg.MinPlayers {
		return &game.ValidationError{
			Field:  "maxPlayers",
			Reason: fmt.Sprintf("a room must have at least %d players.", rs.gameCfg.MinPlayers),
		}
	}

	if req.MaxPlayers > rs.gameCfg.MaxPlayers {
		return &game.ValidationError{
			Field:  "maxPlayers",
			Reason: fmt.Sprintf("a room can have at most %d players.", rs.gameCfg.MaxPlayers),
		}
	}

	room, err := game.NewRoom(name, req.MaxPlayers, rs.settings, rs.words)
	if err != nil {
		return err
	}

	if err := rs.registry.Create(room); err != nil {
		room.Close()
		return err
	}

	return nil
}

func (rs *RoomService) ListRooms(query string) []dto.RoomResponse {
	infos := rs.registry.List(query)

	rooms := make([]dto.RoomResponse, 0, len(infos))
	for _, info := range infos {
		rooms = append(rooms, toRoomResponse(info))
	}

	return rooms
}

func (rs *RoomService) GetRoom(name string) (dto.RoomDetailResponse, error) {
	room, ok := rs.registry.Get(name)
	if !ok {
		return dto.RoomDetailResponse{}, fmt.Errorf("%w: %s", game.ErrRoomNotFound, name)
	}

	players := make([]dto.Player, 0)
	for _, p := range room.Players() {
		players = append(players, dto.Player{
			Username:  p.Username,
			IsDrawing: p.IsDrawing,
			Score:     p.Score,
			Rank:      p.Rank,
		})
	}

	return dto.RoomDetailResponse{
		RoomResponse: dto.RoomResponse{
			Name:        room.Name(),
			MaxPlayers:  room.MaxPlayers(),
			PlayerCount: len(players),
		},
		Phase:   string(room.Phase()),
		Players: players,
	}, nil
}

// CheckJoin 在建立 WS 连接前检查能否加入房间，不修改任何状态
func (rs *RoomService) CheckJoin(req dto.JoinRoomRequest) error {
	if strings.TrimSpace(req.Username) == "" {
		return &game.ValidationError{Field: "username", Reason: "Username must not be empty."}
	}

	room, ok := rs.registry.Get(req.RoomName)
	if !ok {
		return fmt.Errorf("%w: %s", game.ErrRoomNotFound, req.RoomName)
	}

	if room.HasUsername(req.Username) {
		return game.ErrUsernameTaken
	}

	if room.PlayerCount() >= room.MaxPlayers() {
		return game.ErrRoomFull
	}

	return nil
}

// Message 将服务层错误转成返回给客户端的提示
func Message(err error) string {
	var verr *game.ValidationError

	switch {
	case errors.As(err, &verr):
		return verr.Reason
	case errors.Is(err, game.ErrAlreadyExists):
		return "A room with that name already exists."
	case errors.Is(err, game.ErrRoomNotFound):
		return "Room not found."
	case errors.Is(err, game.ErrUsernameTaken):
		return "Username is already taken in this room."
	case errors.Is(err, game.ErrRoomFull):
		return "Room is full."
	default:
		return "Internal error."
	}
}
