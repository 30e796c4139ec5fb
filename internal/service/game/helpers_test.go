package game

import (
	"encoding/json"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	open   bool
	reason string
}

func newFakeConn() *fakeConn {
	return &fakeConn{open: true}
}

func (c *fakeConn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return ErrConnectionClosed
	}

	c.frames = append(c.frames, slices.Clone(frame))

	return nil
}

func (c *fakeConn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.open
}

func (c *fakeConn) Close(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		c.open = false
		c.reason = reason
	}
}

func (c *fakeConn) closeReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reason
}

// messages 返回指定类型的已解码消息
func (c *fakeConn) messages(typ string) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []map[string]any
	for _, f := range c.frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			continue
		}
		if m["type"] == typ {
			out = append(out, m)
		}
	}

	return out
}

func (c *fakeConn) rawFrames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		out = append(out, string(f))
	}

	return out
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frames = nil
}

type fixedWords struct {
	list []string
}

func (w fixedWords) Random() string {
	return w.list[0]
}

func (w fixedWords) RandomN(n int) []string {
	return slices.Clone(w.list[:min(n, len(w.list))])
}

func testWords() fixedWords {
	return fixedWords{list: []string{"ice cream", "apple", "rocket", "guitar"}}
}

// testSettings 的计时足够长，测试中由 expire 手动推进
func testSettings() Settings {
	s := DefaultSettings()
	s.Tick = time.Hour
	s.WaitingForStart = time.Hour
	s.NewRound = time.Hour
	s.GameRunning = time.Hour
	s.ShowWord = time.Hour
	return s
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

func newTestRoom(t *testing.T, maxPlayers int) *Room {
	t.Helper()

	r, err := NewRoom("room-"+GenID(), maxPlayers, testSettings(), testWords())
	require.NoError(t, err)
	t.Cleanup(r.Close)

	return r
}

// expire 模拟当前倒计时到期
func expire(r *Room) bool {
	r.mu.Lock()
	gen := r.activeGen
	r.mu.Unlock()

	if gen == 0 {
		return false
	}

	r.onCountdownExpired(gen)

	return true
}

func (r *Room) drawerID() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drawer == nil {
		return ""
	}

	return r.drawer.clientID
}

func (r *Room) candidateWords() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.candidates)
}

func (r *Room) clientIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		ids = append(ids, p.clientID)
	}

	return ids
}

func (r *Room) scoreOf(clientID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(clientID); i >= 0 {
		return r.players[i].score
	}

	return 0
}

func (r *Room) winnerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.winners)
}

// joinAll 依次加入玩家，返回 clientID -> 连接
func joinAll(t *testing.T, r *Room, names ...string) map[string]*fakeConn {
	t.Helper()

	conns := make(map[string]*fakeConn, len(names))
	for _, name := range names {
		conn := newFakeConn()
		_, err := r.Join("id-"+name, name, conn)
		require.NoError(t, err)
		conns["id-"+name] = conn
	}

	return conns
}

// startRunning 将满员房间推进到 GAME_RUNNING，返回绘画玩家的 clientID
func startRunning(t *testing.T, r *Room) string {
	t.Helper()

	require.Equal(t, PHASE_NEW_ROUND, r.Phase())

	drawer := r.drawerID()
	require.NotEmpty(t, drawer)
	require.NoError(t, r.ChooseWord(drawer, "ice cream"))
	require.Equal(t, PHASE_GAME_RUNNING, r.Phase())

	return drawer
}
