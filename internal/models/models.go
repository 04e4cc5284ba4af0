package models

import "strings"

// MCQ is a single generated multiple-choice question. Options is expected to
// hold exactly four entries; AnswerLetter points at the correct one ("A".."D").
// Older generator output may carry only Answer (the full option text).
type MCQ struct {
	ID           int      `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	AnswerLetter string   `json:"answer_letter,omitempty"`
	Answer       string   `json:"answer,omitempty"`
	Explain      string   `json:"explain,omitempty"`
	Difficulty   string   `json:"difficulty,omitempty"`
	SourceNote   string   `json:"source_note,omitempty"`
	Mnemonic     string   `json:"mnemonic,omitempty"`
}

// PointItem is one memorizable study point.
type PointItem struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	Mnemonic string `json:"mnemonic,omitempty"`
}

// MCQRequest is the body of POST /generate/mcq.
type MCQRequest struct {
	Topic      string `json:"topic" binding:"required"`
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
	Context    string `json:"context,omitempty"`
	VideoURL   string `json:"video_url,omitempty"`
}

// PointsRequest is the body of POST /generate/points.
type PointsRequest struct {
	Topic     string `json:"topic" binding:"required"`
	MaxPoints int    `json:"max_points"`
	Context   string `json:"context,omitempty"`
	VideoURL  string `json:"video_url,omitempty"`
}

// MCQResponse is the envelope returned by /generate/mcq. Result is nil when
// the generator produced output we could not parse; RawText then carries the
// raw model output and Status is "parse_error".
type MCQResponse struct {
	RequestID  string `json:"request_id"`
	Status     string `json:"status"`
	TokensUsed int    `json:"tokens_used"`
	Result     []MCQ  `json:"result,omitempty"`
	RawText    string `json:"raw_text,omitempty"`
}

// PointsResponse is the envelope returned by /generate/points.
type PointsResponse struct {
	RequestID  string      `json:"request_id"`
	Status     string      `json:"status"`
	TokensUsed int         `json:"tokens_used"`
	Result     []PointItem `json:"result,omitempty"`
	RawText    string      `json:"raw_text,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// AnswerIndex maps an answer letter to a 0-based option index:
// "A" is 0, "B" is 1, "C" is 2, "D" is 3. The input is trimmed and
// uppercased first. Anything that is not a single letter yields an index
// that matches no rendered option (negative or out of range).
func AnswerIndex(letter string) int {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 {
		return -1
	}
	return int(letter[0]) - 'A'
}

// CorrectIndex returns the index of the correct option, preferring
// AnswerLetter and falling back to Answer. -1 when neither resolves to a
// single letter; callers still display the raw Answer/Explain text.
func (q MCQ) CorrectIndex() int {
	letter := q.AnswerLetter
	if letter == "" {
		letter = q.Answer
	}
	idx := AnswerIndex(letter)
	if idx < 0 || idx >= len(q.Options) {
		return -1
	}
	return idx
}
