package gamepad

import (
	"sync"
	"time"

	"go.uber.org/atomic"
)

// FrameFunc receives one navigation frame per tick. stop ends polling from
// inside the callback without waiting; Poller.Stop must not be used there.
type FrameFunc func(frame NavigationIntentFrame, stop func())

// Poller drives GetNavigationInput on a fixed interval until stopped.
type Poller struct {
	m       *Manager
	onFrame FrameFunc

	stopped  atomic.Bool
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartNavigation starts polling the active controller every PollInterval.
// onFrame receives every frame, including empty ones; it may be nil.
func (m *Manager) StartNavigation(onFrame FrameFunc) *Poller {
	p := &Poller{
		m:       m,
		onFrame: onFrame,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	ticker := m.clock.Ticker(m.interval)
	go p.run(ticker.C, ticker.Stop)
	m.logger.Debugw("navigation polling started", "interval", m.interval)
	return p
}

func (p *Poller) run(ticks <-chan time.Time, stop func()) {
	defer close(p.done)
	defer stop()
	for {
		select {
		case <-p.quit:
			return
		case <-ticks:
			if p.stopped.Load() {
				return
			}
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	frame := p.m.GetNavigationInput()
	if p.onFrame != nil && !p.stopped.Load() {
		p.onFrame(frame, p.halt)
	}
	if p.m.feedback == nil {
		return
	}
	for _, i := range frame.Active() {
		if p.stopped.Load() {
			return
		}
		p.m.feedback(i)
	}
}

// halt marks the poller stopped and wakes the loop without joining it.
func (p *Poller) halt() {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)
		close(p.quit)
		p.m.logger.Debugw("navigation polling stopped")
	})
}

// Stop ends polling and waits for an in-flight tick, including its
// callbacks, to return. After Stop returns no further ticks run. It is safe
// to call more than once. Inside onFrame or Feedback use the stop function
// passed to onFrame instead; Stop would wait on its own tick.
func (p *Poller) Stop() {
	p.halt()
	<-p.done
}
