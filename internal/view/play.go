package view

import (
	"time"

	"github.com/kvanlaer/ndview/internal/axis"
)

// Play starts advancing the index along axisName at the viewer's frame
// rate, wrapping at the end of the axis. At most one axis plays at a
// time; playing a second axis stops the first.
func (v *Viewer) Play(axisName string, fps float64) error {
	if err := axis.Check(v.axes, axisName, 0); err != nil {
		return err
	}
	size := 0
	for _, ax := range v.axes {
		if ax.Name == axisName {
			size = ax.Size
		}
	}
	if size < 2 {
		return nil // nothing to animate
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.stopPlayLocked()
	if fps > 0 {
		v.playFPS = fps
	}
	v.playAxis = axisName
	stop := make(chan struct{})
	v.playStop = stop

	interval := time.Duration(float64(time.Second) / v.playFPS)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				v.mu.Lock()
				if v.closed || v.playStop != stop {
					v.mu.Unlock()
					return
				}
				next := (v.index.Get(axisName) + 1) % size
				v.index[axisName] = next
				frameNo := axis.FrameNumber(v.axes, v.index)
				for _, r := range v.resetters {
					r.plugin.(InteractionResetter).ResetInteraction(frameNo)
				}
				v.requestRecomputeLocked()
				v.mu.Unlock()
			}
		}
	}()
	return nil
}

// Playing reports the axis currently animating, or "" when stopped.
func (v *Viewer) Playing() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playAxis
}

// FPS returns the playback rate.
func (v *Viewer) FPS() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playFPS
}

// SetFPS adjusts the playback rate; when playing, the ticker restarts at
// the new rate.
func (v *Viewer) SetFPS(fps float64) {
	if fps <= 0 {
		return
	}
	v.mu.Lock()
	playing := v.playAxis
	v.playFPS = fps
	v.mu.Unlock()
	if playing != "" {
		_ = v.Play(playing, fps)
	}
}

// Stop halts playback.
func (v *Viewer) Stop() {
	v.mu.Lock()
	v.stopPlayLocked()
	v.mu.Unlock()
}

func (v *Viewer) stopPlayLocked() {
	if v.playStop != nil {
		close(v.playStop)
		v.playStop = nil
	}
	v.playAxis = ""
}
