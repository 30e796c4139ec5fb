package game

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type RoomInfo struct {
	Name        string
	MaxPlayers  int
	PlayerCount int
}

// Registry 是进程内所有房间和玩家的索引，玩家索引只用于路由，不持有玩家
type Registry struct {
	mu sync.RWMutex

	rooms   map[string]*Room
	players map[string]*Player
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		players: make(map[string]*Player),
	}
}

func (reg *Registry) Create(room *Room) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.rooms[room.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, room.Name())
	}

	reg.rooms[room.Name()] = room

	zap.S().Infof("房间 %s 已创建，最多 %d 人", room.Name(), room.MaxPlayers())

	return nil
}

func (reg *Registry) Get(name string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[name]

	return room, ok
}

// List 按房间名忽略大小写做子串匹配，结果按房间名排序
func (reg *Registry) List(query string) []RoomInfo {
	query = strings.ToLower(query)

	infos := make([]RoomInfo, 0)
	for _, room := range reg.snapshot() {
		if !strings.Contains(strings.ToLower(room.Name()), query) {
			continue
		}

		infos = append(infos, RoomInfo{
			Name:        room.Name(),
			MaxPlayers:  room.MaxPlayers(),
			PlayerCount: room.PlayerCount(),
		})
	}

	slices.SortFunc(infos, func(a, b RoomInfo) int {
		return strings.Compare(a.Name, b.Name)
	})

	return infos
}

// Remove 从索引中删除并关闭房间，同时移除该房间玩家的索引
func (reg *Registry) Remove(name string) bool {
	reg.mu.Lock()

	room, ok := reg.rooms[name]
	if !ok {
		reg.mu.Unlock()
		return false
	}

	delete(reg.rooms, name)

	for clientID := range reg.players {
		if room.Has(clientID) {
			delete(reg.players, clientID)
		}
	}

	reg.mu.Unlock()

	room.Close()

	zap.S().Infof("房间 %s 已移除", name)

	return true
}

func (reg *Registry) Track(p *Player) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.players[p.ClientID()] = p
}

func (reg *Registry) Forget(clientID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	delete(reg.players, clientID)
}

func (reg *Registry) Player(clientID string) (*Player, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	p, ok := reg.players[clientID]

	return p, ok
}

// RoomOf 找到包含该客户端的房间。未登记的客户端直接返回，不遍历房间
func (reg *Registry) RoomOf(clientID string) (*Room, bool) {
	if _, ok := reg.Player(clientID); !ok {
		return nil, false
	}

	for _, room := range reg.snapshot() {
		if room.Has(clientID) {
			return room, true
		}
	}

	return nil, false
}

func (reg *Registry) Rooms() []*Room {
	return reg.snapshot()
}

// Close 关闭所有房间，用于进程退出
func (reg *Registry) Close() {
	reg.mu.Lock()
	rooms := slices.Collect(maps.Values(reg.rooms))
	clear(reg.rooms)
	clear(reg.players)
	reg.mu.Unlock()

	for _, room := range rooms {
		room.Close()
	}
}

// snapshot 在读锁内复制房间列表，之后的操作不再持有注册表的锁
func (reg *Registry) snapshot() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return slices.Collect(maps.Values(reg.rooms))
}
