package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var allPhases = []Phase{
	PHASE_WAITING_FOR_PLAYERS,
	PHASE_WAITING_FOR_START,
	PHASE_NEW_ROUND,
	PHASE_GAME_RUNNING,
	PHASE_SHOW_WORD,
}

var allEvents = []Event{
	EVENT_PLAYERS_READY,
	EVENT_ROOM_FULL,
	EVENT_TIMER_EXPIRED,
	EVENT_WORD_CHOSEN,
	EVENT_EVERYONE_GUESSED,
	EVENT_DRAWER_LEFT,
	EVENT_PLAYERS_DEPLETED,
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from  Phase
		event Event
		want  Phase
	}{
		{PHASE_WAITING_FOR_PLAYERS, EVENT_PLAYERS_READY, PHASE_WAITING_FOR_START},
		{PHASE_WAITING_FOR_START, EVENT_ROOM_FULL, PHASE_NEW_ROUND},
		{PHASE_WAITING_FOR_START, EVENT_TIMER_EXPIRED, PHASE_NEW_ROUND},
		{PHASE_NEW_ROUND, EVENT_WORD_CHOSEN, PHASE_GAME_RUNNING},
		{PHASE_NEW_ROUND, EVENT_TIMER_EXPIRED, PHASE_GAME_RUNNING},
		{PHASE_NEW_ROUND, EVENT_DRAWER_LEFT, PHASE_NEW_ROUND},
		{PHASE_GAME_RUNNING, EVENT_EVERYONE_GUESSED, PHASE_SHOW_WORD},
		{PHASE_GAME_RUNNING, EVENT_TIMER_EXPIRED, PHASE_SHOW_WORD},
		{PHASE_GAME_RUNNING, EVENT_DRAWER_LEFT, PHASE_SHOW_WORD},
		{PHASE_SHOW_WORD, EVENT_TIMER_EXPIRED, PHASE_NEW_ROUND},
		{PHASE_SHOW_WORD, EVENT_PLAYERS_DEPLETED, PHASE_WAITING_FOR_PLAYERS},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.event), func(t *testing.T) {
			next, effects, err := Transition(tt.from, tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
			require.NotEmpty(t, effects)
			assert.Equal(t, EFFECT_START_COUNTDOWN, effects[len(effects)-1])
		})
	}
}

func TestTransition_Rejected(t *testing.T) {
	next, effects, err := Transition(PHASE_WAITING_FOR_PLAYERS, EVENT_TIMER_EXPIRED)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, PHASE_WAITING_FOR_PLAYERS, next)
	assert.Nil(t, effects)

	_, _, err = Transition(PHASE_SHOW_WORD, EVENT_WORD_CHOSEN)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestTransition_EffectsAreCopies(t *testing.T) {
	_, effects, err := Transition(PHASE_SHOW_WORD, EVENT_TIMER_EXPIRED)
	require.NoError(t, err)
	effects[0] = EFFECT_RESET_ROUND

	_, again, err := Transition(PHASE_SHOW_WORD, EVENT_TIMER_EXPIRED)
	require.NoError(t, err)
	assert.Equal(t, EFFECT_ADVANCE_DRAWER, again[0])
}

func TestRoomFullShufflesBeforeFirstDrawer(t *testing.T) {
	_, effects, err := Transition(PHASE_WAITING_FOR_START, EVENT_ROOM_FULL)
	require.NoError(t, err)
	assert.Equal(t, []Effect{
		EFFECT_SHUFFLE_PLAYERS, EFFECT_ADVANCE_DRAWER, EFFECT_OFFER_WORDS, EFFECT_START_COUNTDOWN,
	}, effects)
}

func TestTransition_NeverSkipsPhases(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := rapid.SampledFrom(allPhases).Draw(t, "from")
		event := rapid.SampledFrom(allEvents).Draw(t, "event")

		next, _, err := Transition(from, event)
		if err != nil {
			if next != from {
				t.Fatalf("rejected transition changed phase %s -> %s", from, next)
			}
			return
		}

		if !CanTransition(from, next) {
			t.Fatalf("%s -> %s accepted but not in table", from, next)
		}

		// 除人数不足回到等待外，不允许回到等待阶段
		if event != EVENT_PLAYERS_DEPLETED && (next == PHASE_WAITING_FOR_PLAYERS || next == PHASE_WAITING_FOR_START) &&
			from != PHASE_WAITING_FOR_PLAYERS {
			t.Fatalf("%s -> %s moves backwards on %s", from, next, event)
		}
	})
}

func TestEffectString(t *testing.T) {
	assert.Equal(t, "StartCountdown", EFFECT_START_COUNTDOWN.String())
	assert.Equal(t, "Effect(99)", Effect(99).String())
}
