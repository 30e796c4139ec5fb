package game

import (
	"context"
	"time"

	"drawing-server/internal/service/protocol"

	"go.uber.org/zap"
)

func (r *Room) phaseDuration(phase Phase) time.Duration {
	switch phase {
	case PHASE_WAITING_FOR_START:
		return r.settings.WaitingForStart
	case PHASE_NEW_ROUND:
		return r.settings.NewRound
	case PHASE_GAME_RUNNING:
		return r.settings.GameRunning
	case PHASE_SHOW_WORD:
		return r.settings.ShowWord
	default:
		return 0
	}
}

// startCountdown 先取消旧的倒计时，再为当前阶段启动新的倒计时，必须持有 mu。
// WAITING_FOR_PLAYERS 阶段没有计时，只广播一次阶段变化
func (r *Room) startCountdown() {
	r.stopCountdown()

	d := r.phaseDuration(r.phase)
	phase := string(r.phase)

	r.broadcast(protocol.NewPhaseChange(&phase, d.Milliseconds(), r.drawerName()))

	if d <= 0 || r.closed {
		return
	}

	r.timerGen++
	gen := r.timerGen

	ctx, cancel := context.WithCancel(r.ctx)

	r.activeGen = gen
	r.cancelCountdown = cancel
	r.deadline = r.now().Add(d)

	r.wg.Add(1)
	go r.runCountdown(ctx, gen, d)
}

func (r *Room) runCountdown(ctx context.Context, gen uint64, d time.Duration) {
	defer r.wg.Done()

	remaining := d

	for remaining > 0 {
		step := min(r.settings.Tick, remaining)

		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		remaining -= step

		if remaining > 0 {
			r.onCountdownTick(gen, remaining)
		}
	}

	r.onCountdownExpired(gen)
}

func (r *Room) onCountdownTick(gen uint64, remaining time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.activeGen {
		return
	}

	r.broadcast(protocol.NewPhaseChange(nil, remaining.Milliseconds(), r.drawerName()))
}

// onCountdownExpired 只有代数与当前倒计时一致时才推进状态，已取消的倒计时到期不做任何事
func (r *Room) onCountdownExpired(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen == 0 || gen != r.activeGen {
		zap.L().Debug(
			"忽略过期的倒计时",
			zap.String("room", r.name),
			zap.Uint64("gen", gen),
			zap.Uint64("active_gen", r.activeGen),
		)
		return
	}

	r.stopCountdown()

	r.fire(EVENT_TIMER_EXPIRED)
}

// stopCountdown 可重复调用，必须持有 mu
func (r *Room) stopCountdown() {
	if r.cancelCountdown != nil {
		r.cancelCountdown()
		r.cancelCountdown = nil
	}

	r.activeGen = 0
}

// StopCountdown 取消当前倒计时，阶段保持不变
func (r *Room) StopCountdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopCountdown()
}
