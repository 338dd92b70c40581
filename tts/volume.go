package tts

// scaleSample applies playback gain with clipping.
func scaleSample(s int16, volume float64) int16 {
	if volume == 1.0 {
		return s
	}
	v := float64(s) * volume
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
