package game

import (
	"fmt"
	"slices"
)

type Phase string

// 房间状态机的 5 个阶段：
// 1. 等待玩家（WAITING_FOR_PLAYERS）：人数不足，没有计时
// 2. 等待开始（WAITING_FOR_START）：人数足够，倒计时结束或房间满员后开始
// 3. 新回合（NEW_ROUND）：轮换绘画玩家并发送候选词，等待选词
// 4. 游戏进行（GAME_RUNNING）：绘画和猜词
// 5. 展示答案（SHOW_WORD）：公布答案，之后进入下一回合
const (
	PHASE_WAITING_FOR_PLAYERS Phase = "WAITING_FOR_PLAYERS"
	PHASE_WAITING_FOR_START   Phase = "WAITING_FOR_START"
	PHASE_NEW_ROUND           Phase = "NEW_ROUND"
	PHASE_GAME_RUNNING        Phase = "GAME_RUNNING"
	PHASE_SHOW_WORD           Phase = "SHOW_WORD"
)

type Event string

const (
	EVENT_PLAYERS_READY    Event = "PlayersReady"
	EVENT_ROOM_FULL        Event = "RoomFull"
	EVENT_TIMER_EXPIRED    Event = "TimerExpired"
	EVENT_WORD_CHOSEN      Event = "WordChosen"
	EVENT_EVERYONE_GUESSED Event = "EveryoneGuessed"
	EVENT_DRAWER_LEFT      Event = "DrawerLeft"
	EVENT_PLAYERS_DEPLETED Event = "PlayersDepleted"
)

// Effect 是阶段转换附带的副作用，由 Room 在持锁状态下按顺序执行
type Effect int

const (
	EFFECT_SHUFFLE_PLAYERS Effect = iota
	EFFECT_ADVANCE_DRAWER
	EFFECT_OFFER_WORDS
	EFFECT_PICK_FALLBACK_WORD
	EFFECT_START_ROUND
	EFFECT_PENALIZE_DRAWER
	EFFECT_REVEAL_WORD
	EFFECT_RESET_ROUND
	EFFECT_START_COUNTDOWN
)

var effectNames = map[Effect]string{
	EFFECT_SHUFFLE_PLAYERS:    "ShufflePlayers",
	EFFECT_ADVANCE_DRAWER:     "AdvanceDrawer",
	EFFECT_OFFER_WORDS:        "OfferWords",
	EFFECT_PICK_FALLBACK_WORD: "PickFallbackWord",
	EFFECT_START_ROUND:        "StartRound",
	EFFECT_PENALIZE_DRAWER:    "PenalizeDrawer",
	EFFECT_REVEAL_WORD:        "RevealWord",
	EFFECT_RESET_ROUND:        "ResetRound",
	EFFECT_START_COUNTDOWN:    "StartCountdown",
}

func (e Effect) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}

	return fmt.Sprintf("Effect(%d)", int(e))
}

type transitionKey struct {
	from  Phase
	event Event
}

type transition struct {
	next    Phase
	effects []Effect
}

var (
	enterNewRound = []Effect{EFFECT_ADVANCE_DRAWER, EFFECT_OFFER_WORDS, EFFECT_START_COUNTDOWN}
	enterShowWord = []Effect{EFFECT_PENALIZE_DRAWER, EFFECT_REVEAL_WORD, EFFECT_START_COUNTDOWN}
	enterWaiting  = []Effect{EFFECT_RESET_ROUND, EFFECT_START_COUNTDOWN}
)

var transitions = map[transitionKey]transition{
	{PHASE_WAITING_FOR_PLAYERS, EVENT_PLAYERS_READY}: {
		PHASE_WAITING_FOR_START, []Effect{EFFECT_SHUFFLE_PLAYERS, EFFECT_START_COUNTDOWN},
	},

	{PHASE_WAITING_FOR_START, EVENT_ROOM_FULL}: {
		PHASE_NEW_ROUND, append([]Effect{EFFECT_SHUFFLE_PLAYERS}, enterNewRound...),
	},
	{PHASE_WAITING_FOR_START, EVENT_TIMER_EXPIRED}: {PHASE_NEW_ROUND, enterNewRound},

	{PHASE_NEW_ROUND, EVENT_WORD_CHOSEN}: {
		PHASE_GAME_RUNNING, []Effect{EFFECT_START_ROUND, EFFECT_START_COUNTDOWN},
	},
	{PHASE_NEW_ROUND, EVENT_TIMER_EXPIRED}: {
		PHASE_GAME_RUNNING, []Effect{EFFECT_PICK_FALLBACK_WORD, EFFECT_START_ROUND, EFFECT_START_COUNTDOWN},
	},
	{PHASE_NEW_ROUND, EVENT_DRAWER_LEFT}: {PHASE_NEW_ROUND, enterNewRound},

	{PHASE_GAME_RUNNING, EVENT_EVERYONE_GUESSED}: {PHASE_SHOW_WORD, enterShowWord},
	{PHASE_GAME_RUNNING, EVENT_TIMER_EXPIRED}:    {PHASE_SHOW_WORD, enterShowWord},
	{PHASE_GAME_RUNNING, EVENT_DRAWER_LEFT}:      {PHASE_SHOW_WORD, enterShowWord},

	{PHASE_SHOW_WORD, EVENT_TIMER_EXPIRED}: {PHASE_NEW_ROUND, enterNewRound},

	{PHASE_WAITING_FOR_START, EVENT_PLAYERS_DEPLETED}: {PHASE_WAITING_FOR_PLAYERS, enterWaiting},
	{PHASE_NEW_ROUND, EVENT_PLAYERS_DEPLETED}:         {PHASE_WAITING_FOR_PLAYERS, enterWaiting},
	{PHASE_GAME_RUNNING, EVENT_PLAYERS_DEPLETED}:      {PHASE_WAITING_FOR_PLAYERS, enterWaiting},
	{PHASE_SHOW_WORD, EVENT_PLAYERS_DEPLETED}:         {PHASE_WAITING_FOR_PLAYERS, enterWaiting},
}

// Transition 根据当前阶段和事件计算下一阶段及需要执行的副作用，本身不修改任何状态
func Transition(phase Phase, event Event) (Phase, []Effect, error) {
	t, ok := transitions[transitionKey{phase, event}]
	if !ok {
		return phase, nil, fmt.Errorf("%w: %s 阶段不处理 %s 事件", ErrIllegalTransition, phase, event)
	}

	return t.next, slices.Clone(t.effects), nil
}

// CanTransition 判断 from -> to 是否存在于转换表中
func CanTransition(from, to Phase) bool {
	for key, t := range transitions {
		if key.from == from && t.next == to {
			return true
		}
	}

	return false
}
