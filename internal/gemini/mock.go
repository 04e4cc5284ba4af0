package gemini

import (
	"fmt"

	"examprep/internal/models"
)

// Mock generators keep the frontend usable when no GEMINI_API_KEY is
// configured. Output is deterministic and clearly labeled.

// MockMCQs returns count placeholder questions about topic.
func MockMCQs(topic string, count int, difficulty string) []models.MCQ {
	count = clamp(count, 1, 20)

	questions := make([]models.MCQ, 0, count)
	for i := 1; i <= count; i++ {
		questions = append(questions, models.MCQ{
			ID:       i,
			Question: fmt.Sprintf("[MOCK] What is a key fact about %s? (mock #%d)", topic, i),
			Options:  []string{"Option A", "Option B", "Option C", "Option D"},
			Answer:   "Option B",
			Explain:  fmt.Sprintf("Because of reason %d, memorize the key phrase for %s.", i, topic),

			Difficulty: difficulty,
		})
	}
	return questions
}

// MockPoints returns up to maxPoints placeholder study points about topic.
func MockPoints(topic string, maxPoints int) []models.PointItem {
	maxPoints = clamp(maxPoints, 1, 12)

	points := make([]models.PointItem, 0, maxPoints)
	for i := 1; i <= maxPoints; i++ {
		points = append(points, models.PointItem{
			ID:   i,
			Text: fmt.Sprintf("[MOCK] Key point %d about %s", i, topic),
		})
	}
	return points
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
