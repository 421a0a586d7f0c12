package audio

const (
	// SampleRate is the output rate of every voice.
	SampleRate = 44100
	// FramesPerSecond is the timer and display refresh rate.
	FramesPerSecond = 60
	// SamplesPerFrame is the number of samples rendered per frame.
	SamplesPerFrame = SampleRate / FramesPerSecond

	// squareAmplitude is the peak of generated square waves.
	squareAmplitude = 4 << 8

	// maxBufferedFrames bounds the mixer backlog when nobody drains it.
	maxBufferedFrames = 8
)
