package handlers

const (
	midiContentType = "audio/midi"
	wavContentType  = "audio/wav"
	wavDownloadName = "chord_output.wav"

	methodAudio = "audio"
	methodMIDI  = "midi"
)
