package app

import (
	"fmt"
	"time"
)

// FPSCounter averages frame times over one-second windows.
type FPSCounter struct {
	frames  int
	elapsed time.Duration
}

// Tick records one frame of length dt. Once a second has accumulated it
// returns the frame count and mean frame time of that window and starts a new one.
func (c *FPSCounter) Tick(dt time.Duration) (fps int, ms float64, ok bool) {
	c.frames++
	c.elapsed += dt
	if c.elapsed < time.Second {
		return 0, 0, false
	}
	fps = int(float64(c.frames) / c.elapsed.Seconds())
	ms = float64(c.elapsed.Microseconds()) / 1000 / float64(c.frames)
	c.frames = 0
	c.elapsed = 0
	return fps, ms, true
}

// Title formats the window title shown once per second.
func Title(glVersion string, fps int, ms float64) string {
	return fmt.Sprintf("OpenGL %s | FPS: %d | %.1f ms", glVersion, fps, ms)
}
