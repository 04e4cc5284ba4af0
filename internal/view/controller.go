// Package view owns the mutable state behind the study form: topic and
// count inputs, the two generation cycles, and per-question reveal flags.
package view

import (
	"context"
	"fmt"
	"log"
	"sync"

	"examprep/internal/client"
	"examprep/internal/models"
)

// DefaultCount is the question count the form starts with and resets to.
const DefaultCount = 5

// Fixed user-facing messages for a 2xx response that carried no result.
const (
	noQuestionsMsg = "No questions returned from the generator. Try again."
	noPointsMsg    = "No points returned from the generator. Try again."
)

// Generator is the backend the controller submits to. *client.Client
// satisfies it; tests substitute fakes.
type Generator interface {
	GenerateMCQs(ctx context.Context, q client.Query) (*models.MCQResponse, error)
	GeneratePoints(ctx context.Context, q client.Query) (*models.PointsResponse, error)
}

// Controller holds one user's form state. The MCQ and points cycles are
// fully independent: each has its own loading flag, error and result, so a
// failure in one never clobbers the other. A mutex guards everything since
// gin serves each request on its own goroutine.
type Controller struct {
	mu      sync.Mutex
	backend Generator

	topic string
	count int

	mcqLoading bool
	mcqGen     int
	mcqErr     string
	questions  []models.MCQ

	pointsLoading bool
	pointsGen     int
	pointsErr     string
	points        []models.PointItem

	revealed map[int]bool
}

// NewController creates a Controller in its reset state.
func NewController(backend Generator) *Controller {
	return &Controller{
		backend:  backend,
		count:    DefaultCount,
		revealed: make(map[int]bool),
	}
}

// SetTopic stores the topic input.
func (c *Controller) SetTopic(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = topic
}

// SetCount stores the count input, clamped to [1, 20].
func (c *Controller) SetCount(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if count < 1 {
		count = 1
	}
	if count > 20 {
		count = 20
	}
	c.count = count
}

// SubmitMCQ runs one MCQ generation cycle: clear the previous result and
// error, mark loading, call the backend, apply the outcome. Returns
// immediately if a cycle is already in flight. Blocks until the cycle
// completes.
func (c *Controller) SubmitMCQ(ctx context.Context) {
	c.mu.Lock()
	if c.mcqLoading {
		c.mu.Unlock()
		return
	}
	c.mcqLoading = true
	c.mcqErr = ""
	c.questions = nil
	c.revealed = make(map[int]bool)
	c.mcqGen++
	gen := c.mcqGen
	q := client.Query{Topic: c.topic, Count: c.count}
	c.mu.Unlock()

	resp, err := c.backend.GenerateMCQs(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.mcqGen {
		// A reset superseded this request; drop the stale response.
		return
	}
	c.mcqLoading = false
	switch {
	case err != nil:
		c.mcqErr = fmt.Sprintf("MCQ generation failed: %v", err)
	case resp.Result == nil:
		log.Printf("mcq response carried no result: status=%q raw_text=%q", resp.Status, resp.RawText)
		c.mcqErr = noQuestionsMsg
	default:
		c.questions = resp.Result
	}
}

// SubmitPoints runs one points generation cycle, independent of the MCQ
// cycle.
func (c *Controller) SubmitPoints(ctx context.Context) {
	c.mu.Lock()
	if c.pointsLoading {
		c.mu.Unlock()
		return
	}
	c.pointsLoading = true
	c.pointsErr = ""
	c.points = nil
	c.pointsGen++
	gen := c.pointsGen
	q := client.Query{Topic: c.topic}
	c.mu.Unlock()

	resp, err := c.backend.GeneratePoints(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.pointsGen {
		return
	}
	c.pointsLoading = false
	switch {
	case err != nil:
		c.pointsErr = fmt.Sprintf("points generation failed: %v", err)
	case resp.Result == nil:
		log.Printf("points response carried no result: status=%q raw_text=%q", resp.Status, resp.RawText)
		c.pointsErr = noPointsMsg
	default:
		c.points = resp.Result
	}
}

// Reset returns the form to its initial state. In-flight requests are not
// cancelled; bumping the generation counters makes their completions no-ops.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = ""
	c.count = DefaultCount
	c.questions = nil
	c.points = nil
	c.mcqErr = ""
	c.pointsErr = ""
	c.revealed = make(map[int]bool)
	c.mcqGen++
	c.pointsGen++
	c.mcqLoading = false
	c.pointsLoading = false
}

// ToggleReveal flips the reveal flag for the question at index. No other
// question and no server state is touched.
func (c *Controller) ToggleReveal(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.questions) {
		return
	}
	c.revealed[index] = !c.revealed[index]
}

// QuestionView is one question prepared for rendering. CorrectIndex is -1
// unless the question is revealed and its answer letter resolves.
type QuestionView struct {
	Index        int
	MCQ          models.MCQ
	Revealed     bool
	CorrectIndex int
}

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	Topic string
	Count int

	MCQLoading bool
	MCQError   string
	Questions  []QuestionView

	PointsLoading bool
	PointsError   string
	Points        []models.PointItem
}

// Loading reports whether either cycle is still in flight.
func (s Snapshot) Loading() bool {
	return s.MCQLoading || s.PointsLoading
}

// Snapshot copies the current state under the lock.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Topic:         c.topic,
		Count:         c.count,
		MCQLoading:    c.mcqLoading,
		MCQError:      c.mcqErr,
		PointsLoading: c.pointsLoading,
		PointsError:   c.pointsErr,
		Points:        append([]models.PointItem(nil), c.points...),
	}
	for i, q := range c.questions {
		s.Questions = append(s.Questions, questionView(i, q, c.revealed[i]))
	}
	return s
}

// questionView derives the display fields for one question from the item
// and its reveal flag alone.
func questionView(index int, q models.MCQ, revealed bool) QuestionView {
	v := QuestionView{Index: index, MCQ: q, Revealed: revealed, CorrectIndex: -1}
	if revealed {
		v.CorrectIndex = q.CorrectIndex()
	}
	return v
}
