package transcribe

import (
	"fmt"
	"strings"
)

// Stitch groups a flat diarized word stream into contiguous speaker turns.
// Words are accumulated while the speaker tag is unchanged; a change closes
// the current run. Word order is preserved exactly and no word is dropped.
func Stitch(words []DiarizedWord) []SpeakerTurn {
	if len(words) == 0 {
		return nil
	}

	var turns []SpeakerTurn
	currentSpeaker := words[0].SpeakerTag
	var currentWords []string

	for _, w := range words {
		if w.SpeakerTag != currentSpeaker {
			turns = append(turns, SpeakerTurn{
				Speaker: currentSpeaker,
				Text:    strings.Join(currentWords, " "),
			})
			currentSpeaker = w.SpeakerTag
			currentWords = []string{w.Word}
		} else {
			currentWords = append(currentWords, w.Word)
		}
	}

	// flush the final run
	turns = append(turns, SpeakerTurn{
		Speaker: currentSpeaker,
		Text:    strings.Join(currentWords, " "),
	})

	return turns
}

// FormatTurns renders speaker turns as one "Speaker N: ..." line per turn.
func FormatTurns(turns []SpeakerTurn) string {
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		lines = append(lines, fmt.Sprintf("Speaker %d: %s", turn.Speaker, turn.Text))
	}
	return strings.Join(lines, "\n")
}
