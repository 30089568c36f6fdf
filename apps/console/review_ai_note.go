package main

import (
	"strings"
	"unicode/utf8"

	"citydesk/libs/gateway"
)

const (
	aiNoteMaxRunes  = 4000
	aiNoteKeepRunes = aiNoteMaxRunes - 50
)

func formatAIReviewNote(lang string, analysis gateway.FloodAnalysis) string {
	details := strings.TrimSpace(analysis.Analysis)
	if details == "" {
		details = adminText(lang, "ai_note_no_analysis")
	}
	recommendations := strings.TrimSpace(analysis.Recommendations)
	if recommendations == "" {
		recommendations = adminText(lang, "ai_note_no_recommendations")
	}

	var b strings.Builder
	b.WriteString(adminText(lang, "ai_note_heading"))
	b.WriteString("\n\n")
	b.WriteString(adminText(lang, "ai_note_level") + ": " + analysis.WaterLevel + "\n")
	b.WriteString(adminText(lang, "ai_note_depth") + ": " + analysis.EstimatedDepth + "\n")
	b.WriteString(adminText(lang, "ai_note_confidence") + ": " + analysis.Confidence + "\n\n")
	b.WriteString(adminText(lang, "ai_note_details") + ":\n" + details + "\n\n")
	b.WriteString(adminText(lang, "ai_note_recommendations") + ":\n" + recommendations)
	return truncateAIReviewNote(lang, b.String())
}

// truncateAIReviewNote caps the note at aiNoteMaxRunes, counting runes so a
// multi-byte character is never split.
func truncateAIReviewNote(lang, note string) string {
	if utf8.RuneCountInString(note) <= aiNoteMaxRunes {
		return note
	}
	runes := []rune(note)
	return string(runes[:aiNoteKeepRunes]) + "\n\n" + adminText(lang, "ai_note_truncated")
}
