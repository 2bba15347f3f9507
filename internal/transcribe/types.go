package transcribe

// DiarizedWord is a single recognized word with the speaker the backend
// attributed it to, in spoken order.
type DiarizedWord struct {
	Word       string `json:"word"`
	SpeakerTag int    `json:"speakerTag"`
}

// SpeakerTurn is a maximal run of consecutive words from one speaker.
type SpeakerTurn struct {
	Speaker int    `json:"speaker"`
	Text    string `json:"text"`
}

// FinalResult is one final (non-interim) recognition result. Words is only
// populated in diarization mode.
type FinalResult struct {
	Transcript string
	Words      []DiarizedWord
}

// Fragment is the transcript produced from a single audio chunk: plain text
// in non-diarized mode, or the ordered word stream when diarizing.
type Fragment struct {
	Text  string
	Words []DiarizedWord
}
