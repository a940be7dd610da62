package soundfont

import "time"

// A delay is a timeout that can be retriggered.
type delay struct {
	timer       *time.Timer
	channel     <-chan time.Time
	lastTrigger time.Time
}

// trigger arms the delay to fire dt from now. Triggering an armed delay
// pushes the deadline back instead of resetting the timer.
func (d *delay) trigger(dt time.Duration) {
	if d.channel != nil {
		d.lastTrigger = time.Now().Add(dt)
		return
	}
	if d.timer == nil {
		d.timer = time.NewTimer(dt)
	} else {
		d.timer.Reset(dt)
	}
	d.channel = d.timer.C
	d.lastTrigger = time.Time{}
}

// remainingTime returns how long the delay still has to run after the timer
// fired. Zero or less means the deadline has passed.
func (d *delay) remainingTime() time.Duration {
	if d.lastTrigger.IsZero() {
		return 0
	}
	return time.Until(d.lastTrigger)
}

func (d *delay) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.channel = nil
}
