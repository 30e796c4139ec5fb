package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"drawing-server/internal/service/protocol"

	"go.uber.org/zap"
)

// WordSource 为房间提供候选词
type WordSource interface {
	Random() string
	RandomN(n int) []string
}

type Settings struct {
	MinPlayers     int
	CandidateWords int

	Tick            time.Duration
	WaitingForStart time.Duration
	NewRound        time.Duration
	GameRunning     time.Duration
	ShowWord        time.Duration

	GuessScore       int
	SpeedMultiplier  int
	DrawerBonus      int
	UnguessedPenalty int
}

func DefaultSettings() Settings {
	return Settings{
		MinPlayers:       2,
		CandidateWords:   3,
		Tick:             time.Second,
		WaitingForStart:  10 * time.Second,
		NewRound:         20 * time.Second,
		GameRunning:      60 * time.Second,
		ShowWord:         10 * time.Second,
		GuessScore:       50,
		SpeedMultiplier:  50,
		DrawerBonus:      50,
		UnguessedPenalty: 50,
	}
}

// Room 是一个房间的状态机，所有状态都由 mu 保护
type Room struct {
	name       string
	maxPlayers int
	settings   Settings
	words      WordSource
	now        func() time.Time

	mu sync.Mutex

	players    []*Player
	phase      Phase
	drawingIdx int
	drawer     *Player

	word       string
	candidates []string
	winners    map[string]struct{}

	roundStart time.Time
	deadline   time.Time

	// 倒计时代数，只有与 activeGen 相同的倒计时才能推进状态
	timerGen        uint64
	activeGen       uint64
	cancelCountdown context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool

	lastActive time.Time
}

func NewRoom(name string, maxPlayers int, settings Settings, words WordSource) (*Room, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if maxPlayers < settings.MinPlayers {
		return nil, &ValidationError{
			Field:  "maxPlayers",
			Reason: fmt.Sprintf("must be at least %d", settings.MinPlayers),
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &Room{
		name:       name,
		maxPlayers: maxPlayers,
		settings:   settings,
		words:      words,
		now:        time.Now,
		phase:      PHASE_WAITING_FOR_PLAYERS,
		winners:    make(map[string]struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
	r.lastActive = r.now()

	return r, nil
}

func (r *Room) Name() string {
	return r.name
}

func (r *Room) MaxPlayers() int {
	return r.maxPlayers
}

func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.phase
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.players)
}

func (r *Room) Players() []protocol.PlayerData {
	r.mu.Lock()
	defer r.mu.Unlock()

	return rankPlayers(r.players)
}

// Drawer 返回当前绘画玩家的用户名，没有时返回空字符串
func (r *Room) Drawer() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.drawerName()
}

func (r *Room) Word() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.word
}

func (r *Room) Has(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.indexOf(clientID) >= 0
}

func (r *Room) HasUsername(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.findByUsername(username) != nil
}

// IdleSince 返回房间变空的时间，房间非空时 ok 为 false
func (r *Room) IdleSince() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) > 0 {
		return time.Time{}, false
	}

	return r.lastActive, true
}

// Join 将玩家加入房间。clientID 已在房间内时视为重连，保留分数并替换连接
func (r *Room) Join(clientID, username string, conn Connection) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRoomClosed
	}

	r.lastActive = r.now()

	if i := r.indexOf(clientID); i >= 0 {
		p := r.players[i]

		old := p.conn
		p.conn = conn
		if old != nil && old != conn {
			old.Close("replaced")
		}

		zap.L().Info(
			"玩家重新连接",
			zap.String("room", r.name),
			zap.String("client_id", clientID),
			zap.String("username", p.username),
		)

		r.sendSnapshot(p)
		r.unicast(p, protocol.NewPlayersList(rankPlayers(r.players)))

		return p, nil
	}

	if r.findByUsername(username) != nil {
		return nil, ErrUsernameTaken
	}

	if len(r.players) >= r.maxPlayers {
		return nil, ErrRoomFull
	}

	p := newPlayer(clientID, username, conn)
	r.players = append(r.players, p)

	zap.L().Info(
		"玩家加入房间",
		zap.String("room", r.name),
		zap.String("client_id", clientID),
		zap.String("username", username),
		zap.Int("player_count", len(r.players)),
	)

	r.broadcast(protocol.NewAnnouncement(
		fmt.Sprintf("%s has joined the game!", username),
		r.now().UnixMilli(),
		protocol.ANNOUNCEMENT_PLAYER_JOINED,
	))
	r.broadcastPlayers()

	phase := r.phase

	if r.phase == PHASE_WAITING_FOR_PLAYERS && len(r.players) >= r.settings.MinPlayers {
		r.fire(EVENT_PLAYERS_READY)
	}

	if r.phase == PHASE_WAITING_FOR_START && len(r.players) == r.maxPlayers {
		r.fire(EVENT_ROOM_FULL)
	}

	// 阶段没有变化时，新玩家没有收到阶段通知，需要单独补发
	if r.phase == phase {
		r.sendSnapshot(p)
	}

	return p, nil
}

// Leave 移除玩家。conn 不为 nil 时，只有它仍是玩家当前的连接才会移除
func (r *Room) Leave(clientID string, conn Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(clientID)
	if i < 0 {
		return false
	}

	p := r.players[i]
	if conn != nil && p.conn != conn {
		return false
	}

	r.players = slices.Delete(r.players, i, i+1)
	delete(r.winners, p.username)

	wasDrawer := p == r.drawer
	if i < r.drawingIdx {
		r.drawingIdx--
	}
	if wasDrawer {
		p.isDrawing = false
		r.drawer = nil
	}
	if r.drawingIdx >= len(r.players) {
		r.drawingIdx = 0
	}

	r.lastActive = r.now()

	zap.L().Info(
		"玩家离开房间",
		zap.String("room", r.name),
		zap.String("client_id", clientID),
		zap.String("username", p.username),
		zap.Int("player_count", len(r.players)),
	)

	r.broadcast(protocol.NewAnnouncement(
		fmt.Sprintf("%s has left the game.", p.username),
		r.now().UnixMilli(),
		protocol.ANNOUNCEMENT_PLAYER_LEFT,
	))
	r.broadcastPlayers()

	switch {
	case r.phase != PHASE_WAITING_FOR_PLAYERS && len(r.players) < r.settings.MinPlayers:
		r.fire(EVENT_PLAYERS_DEPLETED)

	case wasDrawer && (r.phase == PHASE_NEW_ROUND || r.phase == PHASE_GAME_RUNNING):
		r.fire(EVENT_DRAWER_LEFT)

	case r.phase == PHASE_GAME_RUNNING && r.drawer != nil && len(r.winners) == len(r.players)-1:
		r.finishByEveryoneGuessed()
	}

	return true
}

// Chat 先判断消息是否猜中，再把聊天内容转发给房间内所有玩家
func (r *Room) Chat(clientID, message string, timestamp int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(clientID)
	if i < 0 {
		return false
	}

	p := r.players[i]

	if timestamp == 0 {
		timestamp = r.now().UnixMilli()
	}

	correct := r.evaluateGuess(p, message)

	r.broadcast(protocol.NewChatMessage(p.username, r.name, message, timestamp))

	return correct
}

func (r *Room) evaluateGuess(p *Player, guess string) bool {
	if r.phase != PHASE_GAME_RUNNING || r.word == "" {
		return false
	}
	if p == r.drawer || p.isDrawing {
		return false
	}
	if _, ok := r.winners[p.username]; ok {
		return false
	}
	if !MatchesWord(guess, r.word) {
		return false
	}

	elapsed := r.now().Sub(r.roundStart)
	left := 1 - float64(elapsed)/float64(r.settings.GameRunning)
	left = min(max(left, 0), 1)

	p.score += int(float64(r.settings.GuessScore) + float64(r.settings.SpeedMultiplier)*left)
	if r.drawer != nil {
		r.drawer.score += r.settings.DrawerBonus / len(r.players)
	}

	r.winners[p.username] = struct{}{}

	zap.L().Info(
		"玩家猜中词语",
		zap.String("room", r.name),
		zap.String("username", p.username),
		zap.Int("score", p.score),
	)

	r.broadcast(protocol.NewAnnouncement(
		fmt.Sprintf("%s has guessed the word!", p.username),
		r.now().UnixMilli(),
		protocol.ANNOUNCEMENT_PLAYER_GUESSED_WORD,
	))
	r.broadcastPlayers()

	if len(r.winners) == len(r.players)-1 {
		r.finishByEveryoneGuessed()
	}

	return true
}

func (r *Room) finishByEveryoneGuessed() {
	r.broadcast(protocol.NewAnnouncement(
		"Round is now over everyone has guessed the word correctly!",
		r.now().UnixMilli(),
		protocol.ANNOUNCEMENT_EVERYONE_GUESSED_IT,
	))

	r.fire(EVENT_EVERYONE_GUESSED)
}

// Draw 只在 GAME_RUNNING 阶段把笔画原样转发给其他玩家
func (r *Room) Draw(clientID string, frame []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PHASE_GAME_RUNNING || r.indexOf(clientID) < 0 {
		return false
	}

	r.broadcastFrame(frame, clientID)

	return true
}

// ChooseWord 由绘画玩家在 NEW_ROUND 阶段调用，词语必须来自候选列表
func (r *Room) ChooseWord(clientID, word string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PHASE_NEW_ROUND {
		return fmt.Errorf("%w: %s", ErrWrongPhase, r.phase)
	}

	if r.drawer == nil || r.drawer.clientID != clientID {
		return ErrNotDrawer
	}

	chosen := word
	if len(r.candidates) > 0 {
		i := slices.IndexFunc(r.candidates, func(c string) bool {
			return MatchesWord(word, c)
		})
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrInvalidWord, word)
		}
		chosen = r.candidates[i]
	} else if chosen == "" {
		return fmt.Errorf("%w: 词语为空", ErrInvalidWord)
	}

	r.word = chosen
	r.fire(EVENT_WORD_CHOSEN)

	return nil
}

// Close 停止倒计时并等待其协程退出，之后房间不再接受加入
func (r *Room) Close() {
	r.mu.Lock()

	if r.closed {
		r.mu.Unlock()
		return
	}

	r.closed = true
	r.stopCountdown()
	r.cancel()

	for _, p := range r.players {
		if p.conn != nil {
			p.conn.Close("Room was closed.")
		}
	}

	r.mu.Unlock()

	r.wg.Wait()

	zap.L().Info("房间已关闭", zap.String("room", r.name))
}

// fire 驱动状态机，必须持有 mu
func (r *Room) fire(event Event) {
	next, effects, err := Transition(r.phase, event)
	if err != nil {
		zap.L().Warn(
			"忽略非法的阶段转换",
			zap.String("room", r.name),
			zap.String("phase", string(r.phase)),
			zap.String("event", string(event)),
		)
		return
	}

	zap.L().Debug(
		"阶段转换",
		zap.String("room", r.name),
		zap.String("from", string(r.phase)),
		zap.String("to", string(next)),
		zap.String("event", string(event)),
		zap.Stringers("effects", effects),
	)

	r.phase = next

	for _, e := range effects {
		r.apply(e)
	}
}

func (r *Room) apply(e Effect) {
	switch e {
	case EFFECT_SHUFFLE_PLAYERS:
		rand.Shuffle(len(r.players), func(i, j int) {
			r.players[i], r.players[j] = r.players[j], r.players[i]
		})
		if r.drawer != nil {
			r.drawingIdx = slices.Index(r.players, r.drawer)
		}

	case EFFECT_ADVANCE_DRAWER:
		r.advanceDrawer()

	case EFFECT_OFFER_WORDS:
		r.word = ""
		clear(r.winners)
		r.candidates = r.words.RandomN(r.settings.CandidateWords)
		if r.drawer != nil {
			r.unicast(r.drawer, protocol.NewNewWords(r.candidates))
		}

	case EFFECT_PICK_FALLBACK_WORD:
		if r.word != "" {
			return
		}
		if len(r.candidates) > 0 {
			r.word = r.candidates[rand.IntN(len(r.candidates))]
		} else {
			r.word = r.words.Random()
		}

	case EFFECT_START_ROUND:
		clear(r.winners)
		r.roundStart = r.now()
		r.sendGameState()

	case EFFECT_PENALIZE_DRAWER:
		if r.drawer != nil && len(r.winners) == 0 {
			r.drawer.score -= r.settings.UnguessedPenalty
			r.broadcastPlayers()
		}

	case EFFECT_REVEAL_WORD:
		if r.word != "" {
			r.broadcast(protocol.NewRevealedWord(r.word, r.name))
		}

	case EFFECT_RESET_ROUND:
		if r.drawer != nil {
			r.drawer.isDrawing = false
			r.drawer = nil
		}
		r.word = ""
		r.candidates = nil
		clear(r.winners)
		r.drawingIdx = 0

	case EFFECT_START_COUNTDOWN:
		r.startCountdown()
	}
}

// advanceDrawer 清除上一位绘画玩家的标记后再设置下一位
func (r *Room) advanceDrawer() {
	if len(r.players) == 0 {
		return
	}

	if r.drawer != nil {
		r.drawer.isDrawing = false
		r.drawingIdx = (r.drawingIdx + 1) % len(r.players)
	} else {
		r.drawingIdx %= len(r.players)
	}

	r.drawer = r.players[r.drawingIdx]
	r.drawer.isDrawing = true

	r.broadcastPlayers()
}

func (r *Room) sendGameState() {
	drawer := r.drawerName()
	masked := protocol.MustEncode(protocol.NewGameState(drawer, Mask(r.word)))

	for _, p := range r.players {
		if p == r.drawer {
			r.unicast(p, protocol.NewGameState(drawer, r.word))
			continue
		}
		p.send(masked)
	}
}

// sendSnapshot 向单个玩家补发当前阶段和词语信息
func (r *Room) sendSnapshot(p *Player) {
	phase := string(r.phase)
	r.unicast(p, protocol.NewPhaseChange(&phase, r.remaining().Milliseconds(), r.drawerName()))

	switch r.phase {
	case PHASE_NEW_ROUND:
		if p == r.drawer && len(r.candidates) > 0 {
			r.unicast(p, protocol.NewNewWords(r.candidates))
		}

	case PHASE_GAME_RUNNING:
		word := Mask(r.word)
		if p == r.drawer {
			word = r.word
		}
		r.unicast(p, protocol.NewGameState(r.drawerName(), word))

	case PHASE_SHOW_WORD:
		if r.word != "" {
			r.unicast(p, protocol.NewRevealedWord(r.word, r.name))
		}
	}
}

func (r *Room) remaining() time.Duration {
	if r.activeGen == 0 {
		return 0
	}

	return max(r.deadline.Sub(r.now()), 0)
}

func (r *Room) drawerName() string {
	if r.drawer == nil {
		return ""
	}

	return r.drawer.username
}

func (r *Room) indexOf(clientID string) int {
	return slices.IndexFunc(r.players, func(p *Player) bool {
		return p.clientID == clientID
	})
}

func (r *Room) findByUsername(username string) *Player {
	for _, p := range r.players {
		if p.username == username {
			return p
		}
	}

	return nil
}
