package timefmt

import (
	"sync"
	"time"

	"github.com/spec-kit/ticket-desk/internal/clock"
)

// DefaultRefresh is the live refresh period used when none is given.
const DefaultRefresh = time.Minute

// Live recomputes the display of timestamps on a fixed interval and hands
// each result to a callback until Stop is called.
type Live struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewLive renders ts immediately, then again on every tick of interval.
// fn runs on the Live's goroutine for ticks after the first.
func NewLive(clk clock.Clock, f Formatter, ts time.Time, interval time.Duration, fn func(Display)) *Live {
	return NewLiveSet(clk, f, []time.Time{ts}, interval, func(d []Display) { fn(d[0]) })
}

// NewLiveSet is NewLive for several timestamps rendered together.
func NewLiveSet(clk clock.Clock, f Formatter, ts []time.Time, interval time.Duration, fn func([]Display)) *Live {
	if interval <= 0 {
		interval = DefaultRefresh
	}
	stamps := append([]time.Time(nil), ts...)
	render := func() {
		out := make([]Display, len(stamps))
		for i, t := range stamps {
			out[i] = f.Format(t)
		}
		fn(out)
	}

	l := &Live{stop: make(chan struct{}), done: make(chan struct{})}
	render()
	ticker := clk.NewTicker(interval)

	go func() {
		defer close(l.done)
		defer ticker.Stop()
		for {
			select {
			case <-l.stop:
				return
			case <-ticker.C:
				render()
			}
		}
	}()
	return l
}

// Stop ends the refresh loop and waits for it to exit. Safe to call twice.
func (l *Live) Stop() {
	l.once.Do(func() { close(l.stop) })
	<-l.done
}
