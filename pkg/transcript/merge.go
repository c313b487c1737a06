package transcript

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// Sentinel stands in for the text of a segment whose transcription never succeeded.
const Sentinel = "[SEGMENT FAILED]"

// sentenceTerminators are Latin and Persian sentence-final marks.
const sentenceTerminators = ".،؟!"

// IsFailed reports whether text carries the failure sentinel.
func IsFailed(text string) bool {
	return strings.Contains(text, Sentinel)
}

// CountFailed returns how many texts carry the failure sentinel.
func CountFailed(texts []string) int {
	n := 0
	for _, t := range texts {
		if IsFailed(t) {
			n++
		}
	}
	return n
}

// Merge joins ordered segment transcripts into one document.
//
// Lines are trimmed, empty lines dropped and inner whitespace collapsed. A
// blank line is kept after a sentence terminator when the following line
// opens with an uppercase letter or a bracketed marker such as Sentinel.
func Merge(texts []string) string {
	if failed := CountFailed(texts); failed > 0 {
		log.Warn().Int("valid", len(texts)-failed).Int("failed", failed).Msg("merging with failed segments")
	}

	var lines []string
	for _, line := range strings.Split(strings.Join(texts, "\n\n"), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, strings.Join(fields, " "))
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if i < len(lines)-1 && endsSentence(line) && opensParagraph(lines[i+1]) {
			b.WriteByte('\n')
		}
	}

	merged := b.String()
	log.Info().
		Int("segments", len(texts)).
		Int("characters", utf8.RuneCountInString(merged)).
		Msg("merged transcripts")
	return merged
}

func endsSentence(line string) bool {
	last, _ := utf8.DecodeLastRuneInString(line)
	return strings.ContainsRune(sentenceTerminators, last)
}

func opensParagraph(line string) bool {
	first, _ := utf8.DecodeRuneInString(line)
	return first == '[' || unicode.IsUpper(first)
}
