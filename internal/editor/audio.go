package editor

import "time"

// Audio is the playback clock the editor reads time from.
type Audio interface {
	Spawn(path string) error
	Seek(seconds float64)
	Play()
	Pause()
	Playing() bool
	// Position is the playback position in seconds from the start of the music.
	Position() float64
}

// SilentClock is an Audio that produces no sound. It advances only when told to.
type SilentClock struct {
	path    string
	pos     float64
	playing bool
}

func (c *SilentClock) Spawn(path string) error {
	c.path, c.pos, c.playing = path, 0, false
	return nil
}

func (c *SilentClock) Seek(seconds float64) { c.pos = max(0, seconds) }

func (c *SilentClock) Play() { c.playing = true }

func (c *SilentClock) Pause() { c.playing = false }

func (c *SilentClock) Playing() bool { return c.playing }

func (c *SilentClock) Position() float64 { return c.pos }

// Advance moves the clock forward by dt while playing.
func (c *SilentClock) Advance(dt time.Duration) {
	if c.playing {
		c.pos += dt.Seconds()
	}
}
