package capture

// NoiseReducer transforms a frame before energy computation and before
// the frame is committed to the session. Implementations must be pure:
// same input frame, same output.
type NoiseReducer func(Frame) Frame

// Denoise is the built-in reducer: a 3-tap moving average that knocks
// down impulse noise without shifting speech energy much.
func Denoise(frame Frame) Frame {
	if len(frame) < 3 {
		return frame
	}
	out := make(Frame, len(frame))
	out[0] = frame[0]
	out[len(frame)-1] = frame[len(frame)-1]
	for i := 1; i < len(frame)-1; i++ {
		out[i] = int16((int32(frame[i-1]) + int32(frame[i]) + int32(frame[i+1])) / 3)
	}
	return out
}
