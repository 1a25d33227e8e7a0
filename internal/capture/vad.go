package capture

import "math"

// DetectorParams are the end-of-speech tunables. SilenceHoldFrames and
// TrailingWindow are deliberately separate knobs rather than a single
// hard-coded constant: the hold is how long silence must persist, the
// window is the minimum span of recent frames inspected.
type DetectorParams struct {
	Threshold         float64
	MinFrames         int
	SilenceHoldFrames int
	TrailingWindow    int
}

// Detector decides when speech has ended. A frame is silent when its
// energy is at or below the threshold; end-of-speech fires once the
// trailing frames have all been silent for the hold duration, at least
// one speech frame was seen, and the recording floor has elapsed.
// Pure silence never fires; those sessions end at the duration cap.
type Detector struct {
	params    DetectorParams
	seen      int
	sawSpeech bool
	silentRun int
}

// NewDetector creates a detector with the given tunables.
func NewDetector(params DetectorParams) *Detector {
	if params.SilenceHoldFrames < 1 {
		params.SilenceHoldFrames = 1
	}
	if params.TrailingWindow < 1 {
		params.TrailingWindow = 1
	}
	return &Detector{params: params}
}

// Feed consumes one frame energy and reports whether end-of-speech
// fired on this frame.
func (d *Detector) Feed(energy float64) bool {
	d.seen++
	if energy > d.params.Threshold {
		d.sawSpeech = true
		d.silentRun = 0
		return false
	}
	d.silentRun++

	if d.seen < d.params.MinFrames {
		return false
	}
	if !d.sawSpeech {
		return false
	}
	required := d.params.SilenceHoldFrames
	if d.params.TrailingWindow > required {
		required = d.params.TrailingWindow
	}
	return d.silentRun >= required
}

// SawSpeech reports whether any frame exceeded the threshold.
func (d *Detector) SawSpeech() bool { return d.sawSpeech }

// Energy computes the RMS energy of a frame, normalized to 0..1.
func Energy(frame Frame) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}
