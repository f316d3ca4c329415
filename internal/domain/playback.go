package domain

import "time"

// CountdownDuration: обратный отсчёт после смены видео.
const CountdownDuration = 3 * time.Second

// Playback: состояние воспроизведения комнаты.
// Нулевое время в PlayStartedAt/CountdownStartedAt означает «не задано».
type Playback struct {
	LastKnownTime      float64
	IsPlaying          bool
	PlayStartedAt      time.Time
	CountdownStartedAt time.Time
}

// CurrentVideoTime восстанавливает позицию видео на момент now.
func (p Playback) CurrentVideoTime(now time.Time) float64 {
	if !p.IsPlaying || p.PlayStartedAt.IsZero() {
		return p.LastKnownTime
	}
	elapsed := now.Sub(p.PlayStartedAt).Seconds()
	if elapsed < 0 {
		// часы сдвинулись назад, время видео не уменьшаем
		elapsed = 0
	}

	return p.LastKnownTime + elapsed
}

// CountdownRemaining возвращает остаток отсчёта в секундах.
// false: отсчёт не запускался или уже сброшен.
func (p Playback) CountdownRemaining(now time.Time) (float64, bool) {
	if p.CountdownStartedAt.IsZero() {
		return 0, false
	}
	left := CountdownDuration.Seconds() - now.Sub(p.CountdownStartedAt).Seconds()
	if left < 0 {
		left = 0
	}

	return left, true
}

type Phase string

const (
	PhaseEmpty     Phase = "EMPTY"
	PhaseCountdown Phase = "COUNTDOWN"
	PhasePaused    Phase = "PAUSED"
	PhasePlaying   Phase = "PLAYING"
)
