package app

import (
	"sync"
	"time"
)

// ticker is a scoped repeating timer handle. It is armed on state entry
// and must be halted on every exit path; halt is idempotent and safe on
// a nil receiver so teardown paths can halt unconditionally.
type ticker struct {
	stop chan struct{}
	once sync.Once
}

func startTicker(interval time.Duration, fn func()) *ticker {
	t := &ticker{stop: make(chan struct{})}
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-tk.C:
				fn()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

func (t *ticker) halt() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
}

// delay runs fn once after d unless halted first.
type delay struct {
	timer *time.Timer
}

func startDelay(d time.Duration, fn func()) *delay {
	return &delay{timer: time.AfterFunc(d, fn)}
}

func (d *delay) halt() {
	if d == nil {
		return
	}
	d.timer.Stop()
}
