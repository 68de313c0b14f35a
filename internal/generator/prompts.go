package generator

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write multiple-choice quiz questions for a self-paced learning platform.

RULES:
- Every question has exactly 4 options labeled A, B, C and D.
- Exactly one option is correct. The other three are plausible but clearly wrong to someone who knows the material.
- All four option texts must be different from each other.
- Keep each question under 300 characters and each option under 150 characters.
- Do not write "all of the above" or "none of the above" options.
- Vary which label holds the correct option across the batch.

OUTPUT FORMAT:
Respond with JSON only, no prose, in this shape:
{"questions":[{"question":"...","options":{"A":"...","B":"...","C":"...","D":"..."},"correct_option":"A"}]}`

func SystemPrompt() string {
	return systemPrompt
}

// BuildChapterPrompt asks for count questions on topic. Questions are served
// in modules of ten, so the prompt nudges the model from basic to advanced in
// that order.
func BuildChapterPrompt(chapter int, topic string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d questions for chapter %d. Topic: %s.\n", count, chapter, strings.TrimSpace(topic))
	b.WriteString("Order them from introductory to advanced; the first ten form the free module.\n")
	b.WriteString("Return the JSON object with the \"questions\" array, using \"options\" and \"correct_option\" exactly as specified.")
	return b.String()
}
