package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"examprep/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ModelName is the Gemini model to use
const ModelName = "gemini-2.0-flash"

const maxAttempts = 3

// mcqSystemPrompt frames the model as an exam writer. Kept separate from the
// task text so both generators share the strict-JSON instruction style.
const mcqSystemPrompt = `You are an expert JKSSB exam writer and teacher. Your job: produce clear, factual, unambiguous multiple-choice questions suitable for competitive exams. Do NOT invent facts. If you do not know a fact, say so in the explanation. Always return valid JSON only (no surrounding markdown).`

const pointsSystemPrompt = `You are an expert JKSSB instructor who writes clear, concise study notes for aspirants. Return only valid JSON. Keep language simple and memorization-focused.`

// Client wraps the Gemini client
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a new Gemini client. It fails when GEMINI_API_KEY is not
// set; callers fall back to the mock generators in that case.
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(ModelName)
	model.ResponseMIMEType = "application/json"

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() {
	c.client.Close()
}

// ParseError reports model output that never decoded into the expected JSON
// shape. The raw text is kept so the API can surface it as a parse_error
// envelope instead of failing the request.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return "model output was not valid JSON"
}

// GenerateMCQs asks the model for req.Count multiple-choice questions on
// req.Topic. Returns the questions and the total token count reported by the
// API.
func (c *Client) GenerateMCQs(ctx context.Context, req models.MCQRequest) ([]models.MCQ, int, error) {
	text, tokens, err := c.generate(ctx, buildMCQPrompt(req.Topic, req.Count, req.Difficulty, req.Context), 4096)
	if err != nil {
		return nil, 0, err
	}

	var payload struct {
		Questions []models.MCQ `json:"questions"`
		Result    []models.MCQ `json:"result"`
	}
	if err := json.Unmarshal([]byte(extractJSONFromText(text, "questions")), &payload); err != nil {
		return nil, tokens, &ParseError{Raw: text}
	}

	questions := payload.Questions
	if len(questions) == 0 {
		questions = payload.Result
	}
	if len(questions) == 0 {
		return nil, tokens, &ParseError{Raw: text}
	}

	return questions, tokens, nil
}

// GeneratePoints asks the model for up to req.MaxPoints study points on
// req.Topic.
func (c *Client) GeneratePoints(ctx context.Context, req models.PointsRequest) ([]models.PointItem, int, error) {
	text, tokens, err := c.generate(ctx, buildPointsPrompt(req.Topic, req.MaxPoints, req.Context), 1024)
	if err != nil {
		return nil, 0, err
	}

	var payload struct {
		Points []models.PointItem `json:"points"`
		Result []models.PointItem `json:"result"`
	}
	if err := json.Unmarshal([]byte(extractJSONFromText(text, "points")), &payload); err != nil {
		return nil, tokens, &ParseError{Raw: text}
	}

	points := payload.Points
	if len(points) == 0 {
		points = payload.Result
	}
	if len(points) == 0 {
		return nil, tokens, &ParseError{Raw: text}
	}

	return points, tokens, nil
}

// generate sends the prompt to Gemini and returns the raw text of the first
// candidate, retrying transient failures.
func (c *Client) generate(ctx context.Context, prompt string, maxTokens int32) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	// Low temperature for deterministic, parseable output.
	c.model.SetTemperature(0.2)
	c.model.SetTopK(40)
	c.model.SetTopP(0.95)
	c.model.SetMaxOutputTokens(maxTokens)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = fmt.Errorf("failed to generate content (attempt %d): %w", attempt+1, err)
			time.Sleep(2 * time.Second)
			continue
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			lastErr = fmt.Errorf("no content generated (attempt %d)", attempt+1)
			time.Sleep(2 * time.Second)
			continue
		}

		var text strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}

		tokens := 0
		if resp.UsageMetadata != nil {
			tokens = int(resp.UsageMetadata.TotalTokenCount)
		}

		return text.String(), tokens, nil
	}

	return "", 0, fmt.Errorf("failed to generate after %d attempts: %w", maxAttempts, lastErr)
}

// buildMCQPrompt assembles the MCQ generation prompt. The output contract is
// a top-level "questions" array; answer_letter positions the correct option.
func buildMCQPrompt(topic string, count int, difficulty string, context string) string {
	var b strings.Builder

	b.WriteString(mcqSystemPrompt)
	b.WriteString("\n\n")

	if context != "" {
		fmt.Fprintf(&b, "Context:\n%s\n\nPlease prioritize facts from the context above.\n\n", context)
	}

	fmt.Fprintf(&b, "Task: Create exactly %d multiple-choice questions on the topic: %q. Target difficulty: %s.\n\n", count, topic, difficulty)
	b.WriteString(`Requirements for each question object:
 - id: integer
 - question: concise, clear question statement (avoid ambiguous pronouns)
 - options: array of 4 distinct short option texts (A-D). Place the correct option among them.
 - answer_letter: single uppercase letter 'A'/'B'/'C'/'D' indicating the correct option position
 - answer: the full text of the correct option
 - explain: one-line (12-30 words) fact-based explanation referencing the reason for the correct answer
 - difficulty: one of [easy, medium, hard]
 - source_note: short phrase saying either 'derived from provided context' OR 'common knowledge'
 - mnemonic: optional short memory tip (<=12 words) or empty string if none

Rules:
 1) Prefer facts from the provided context. If context is provided, say 'derived from provided context' in source_note.
 2) Do NOT hallucinate specific dates/names outside the context. If unsure, keep the question conceptual and mark the explanation accordingly.
 3) Use straightforward language suitable for JKSSB aspirants.
 4) Output MUST be valid JSON with a top-level key "questions" whose value is an array of question objects exactly like above.

Example required output format (must follow exactly):
{"questions":[{"id":1,"question":"...","options":["A","B","C","D"],"answer_letter":"B","answer":"...","explain":"...","difficulty":"easy","source_note":"common knowledge","mnemonic":""}]}
`)

	return b.String()
}

// buildPointsPrompt assembles the study-points prompt; output contract is a
// top-level "points" array.
func buildPointsPrompt(topic string, maxPoints int, context string) string {
	var b strings.Builder

	b.WriteString(pointsSystemPrompt)
	b.WriteString("\n\n")

	if context != "" {
		fmt.Fprintf(&b, "Context:\n%s\n\n", context)
	}

	fmt.Fprintf(&b, "Task: Summarize the topic %q into up to %d short bullet points that a JKSSB aspirant can memorize.\n\n", topic, maxPoints)
	b.WriteString(`Requirements for each bullet:
 - Keep it one short sentence (<= 14 words) when possible.
 - Preserve key facts, names, or numbers if necessary.
 - Use a short mnemonic (<= 6 words) for the topic if helpful. If none, put empty string.

Return JSON with top-level key "points" whose value is an array of objects:
{"points":[{"id":1,"text":"...","mnemonic":""}]}
`)

	return b.String()
}

// extractJSONFromText pulls a JSON object out of model output that may be
// wrapped in markdown or truncated. key names the top-level array we expect
// ("questions" or "points").
func extractJSONFromText(text, key string) string {
	// Most responses are already a bare JSON object.
	jsonPattern := regexp.MustCompile(`(?s)\{.*"` + key + `".*\}`)
	if match := jsonPattern.FindString(text); match != "" && json.Valid([]byte(match)) {
		return match
	}

	// JSON inside a code fence.
	codeBlockPattern := regexp.MustCompile("```(?:json)?\\s*(\\{.*?\\})\\s*```")
	if matches := codeBlockPattern.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}

	// Truncated output: balance the braces and see if it parses.
	marker := `{"` + key + `"`
	if startIdx := strings.Index(text, marker); startIdx >= 0 {
		partial := text[startIdx:]

		openBraces, closeBraces := 0, 0
		inString, escaped := false, false
		for _, char := range partial {
			if escaped {
				escaped = false
				continue
			}
			if char == '\\' {
				escaped = true
				continue
			}
			if char == '"' {
				inString = !inString
				continue
			}
			if !inString {
				switch char {
				case '{':
					openBraces++
				case '}':
					closeBraces++
				}
			}
		}
		for i := 0; i < openBraces-closeBraces; i++ {
			partial += "}"
		}

		var probe map[string]interface{}
		if err := json.Unmarshal([]byte(partial), &probe); err == nil {
			return partial
		}
	}

	return text
}
