package clock

// Stats is a point-in-time view of the runner counters, used by /metrics.
type Stats struct {
	FramesRendered uint64
	FramesSent     uint64
	FramesDropped  uint64
	Observers      int64
	LogErrors      uint64
}

func (r *Runner) Stats() Stats {
	return Stats{
		FramesRendered: r.framesRendered.Load(),
		FramesSent:     r.framesSent.Load(),
		FramesDropped:  r.framesDropped.Load(),
		Observers:      r.observerCount.Load(),
		LogErrors:      r.logErrors.Load(),
	}
}
