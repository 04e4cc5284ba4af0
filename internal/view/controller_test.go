package view

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"examprep/internal/client"
	"examprep/internal/models"
)

// fakeBackend lets each test script the two generation calls.
type fakeBackend struct {
	mcqCalls    atomic.Int64
	pointsCalls atomic.Int64

	generateMCQs   func(ctx context.Context, q client.Query) (*models.MCQResponse, error)
	generatePoints func(ctx context.Context, q client.Query) (*models.PointsResponse, error)
}

func (f *fakeBackend) GenerateMCQs(ctx context.Context, q client.Query) (*models.MCQResponse, error) {
	f.mcqCalls.Add(1)
	if f.generateMCQs != nil {
		return f.generateMCQs(ctx, q)
	}
	return &models.MCQResponse{Status: "ok", Result: sampleQuestions()}, nil
}

func (f *fakeBackend) GeneratePoints(ctx context.Context, q client.Query) (*models.PointsResponse, error) {
	f.pointsCalls.Add(1)
	if f.generatePoints != nil {
		return f.generatePoints(ctx, q)
	}
	return &models.PointsResponse{Status: "ok", Result: []models.PointItem{{ID: 1, Text: "point one"}}}, nil
}

func sampleQuestions() []models.MCQ {
	return []models.MCQ{
		{ID: 1, Question: "q1", Options: []string{"a", "b", "c", "d"}, AnswerLetter: "C", Explain: "because"},
		{ID: 2, Question: "q2", Options: []string{"a", "b", "c", "d"}, AnswerLetter: "A"},
	}
}

func TestSubmitMCQSuccess(t *testing.T) {
	ctrl := NewController(&fakeBackend{})
	ctrl.SetTopic("Indian Polity")
	ctrl.SubmitMCQ(context.Background())

	s := ctrl.Snapshot()
	if s.MCQLoading {
		t.Error("loading flag still set after completion")
	}
	if s.MCQError != "" {
		t.Errorf("error = %q, want empty", s.MCQError)
	}
	if len(s.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(s.Questions))
	}
	if s.Questions[0].Revealed {
		t.Error("new questions must start hidden")
	}
}

func TestSubmitMCQSoftEmptyResult(t *testing.T) {
	backend := &fakeBackend{
		generateMCQs: func(ctx context.Context, q client.Query) (*models.MCQResponse, error) {
			return &models.MCQResponse{Status: "parse_error", RawText: "garbled"}, nil
		},
	}
	ctrl := NewController(backend)
	ctrl.SetTopic("t")
	ctrl.SubmitMCQ(context.Background())

	s := ctrl.Snapshot()
	if s.Questions != nil {
		t.Errorf("questions = %v, want none", s.Questions)
	}
	if s.MCQError != "No questions returned from the generator. Try again." {
		t.Errorf("error = %q", s.MCQError)
	}
	if s.MCQLoading {
		t.Error("loading flag still set")
	}
}

func TestSubmitMCQTransportError(t *testing.T) {
	backend := &fakeBackend{
		generateMCQs: func(ctx context.Context, q client.Query) (*models.MCQResponse, error) {
			return nil, &client.RequestError{Status: 500, Body: "boom"}
		},
	}
	ctrl := NewController(backend)
	ctrl.SetTopic("t")
	ctrl.SubmitMCQ(context.Background())

	s := ctrl.Snapshot()
	if !strings.Contains(s.MCQError, "500") || !strings.Contains(s.MCQError, "boom") {
		t.Errorf("error %q should contain the status code and the body", s.MCQError)
	}
	if s.PointsError != "" {
		t.Errorf("MCQ failure leaked into points error: %q", s.PointsError)
	}
}

func TestLoadingTransitionsOncePerSubmission(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &fakeBackend{
		generateMCQs: func(ctx context.Context, q client.Query) (*models.MCQResponse, error) {
			close(started)
			<-release
			return &models.MCQResponse{Status: "ok", Result: sampleQuestions()}, nil
		},
	}
	ctrl := NewController(backend)
	ctrl.SetTopic("t")

	done := make(chan struct{})
	go func() {
		ctrl.SubmitMCQ(context.Background())
		close(done)
	}()

	<-started
	if !ctrl.Snapshot().MCQLoading {
		t.Error("loading flag not set while request is in flight")
	}

	// A second submission while in flight is a no-op.
	ctrl.SubmitMCQ(context.Background())
	if got := backend.mcqCalls.Load(); got != 1 {
		t.Errorf("backend called %d times, want 1", got)
	}

	close(release)
	<-done
	if ctrl.Snapshot().MCQLoading {
		t.Error("loading flag still set after completion")
	}
}

func TestResetClearsEverything(t *testing.T) {
	ctrl := NewController(&fakeBackend{})
	ctrl.SetTopic("Mughal Empire")
	ctrl.SetCount(12)
	ctrl.SubmitMCQ(context.Background())
	ctrl.SubmitPoints(context.Background())
	ctrl.ToggleReveal(0)

	ctrl.Reset()

	s := ctrl.Snapshot()
	if s.Topic != "" {
		t.Errorf("topic = %q, want empty", s.Topic)
	}
	if s.Count != DefaultCount {
		t.Errorf("count = %d, want %d", s.Count, DefaultCount)
	}
	if s.Questions != nil || s.Points != nil {
		t.Error("results not cleared by reset")
	}
	if s.MCQError != "" || s.PointsError != "" {
		t.Error("errors not cleared by reset")
	}
}

func TestStaleResponseDroppedAfterReset(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &fakeBackend{
		generateMCQs: func(ctx context.Context, q client.Query) (*models.MCQResponse, error) {
			close(started)
			<-release
			return &models.MCQResponse{Status: "ok", Result: sampleQuestions()}, nil
		},
	}
	ctrl := NewController(backend)
	ctrl.SetTopic("t")

	done := make(chan struct{})
	go func() {
		ctrl.SubmitMCQ(context.Background())
		close(done)
	}()

	<-started
	ctrl.Reset()
	close(release)
	<-done

	s := ctrl.Snapshot()
	if s.Questions != nil {
		t.Error("stale response wrote results after reset")
	}
	if s.MCQLoading {
		t.Error("loading flag set after reset dropped the response")
	}
}

func TestRevealToggle(t *testing.T) {
	ctrl := NewController(&fakeBackend{})
	ctrl.SetTopic("t")
	ctrl.SubmitMCQ(context.Background())

	ctrl.ToggleReveal(0)
	s := ctrl.Snapshot()
	if !s.Questions[0].Revealed {
		t.Fatal("question 0 not revealed after toggle")
	}
	if s.Questions[0].CorrectIndex != 2 {
		t.Errorf("answer letter C should mark index 2, got %d", s.Questions[0].CorrectIndex)
	}
	if s.Questions[1].Revealed {
		t.Error("toggling question 0 must not reveal question 1")
	}

	// Toggling again restores the hidden state with no residual marking.
	ctrl.ToggleReveal(0)
	s = ctrl.Snapshot()
	if s.Questions[0].Revealed {
		t.Error("question 0 still revealed after second toggle")
	}
	if s.Questions[0].CorrectIndex != -1 {
		t.Errorf("hidden question should carry no correct index, got %d", s.Questions[0].CorrectIndex)
	}
}

func TestRevealWithInvalidLetter(t *testing.T) {
	backend := &fakeBackend{
		generateMCQs: func(ctx context.Context, q client.Query) (*models.MCQResponse, error) {
			return &models.MCQResponse{Status: "ok", Result: []models.MCQ{
				{ID: 1, Question: "q", Options: []string{"a", "b", "c", "d"}, Answer: "Option B", Explain: "why"},
			}}, nil
		},
	}
	ctrl := NewController(backend)
	ctrl.SetTopic("t")
	ctrl.SubmitMCQ(context.Background())
	ctrl.ToggleReveal(0)

	s := ctrl.Snapshot()
	if !s.Questions[0].Revealed {
		t.Fatal("question not revealed")
	}
	// No option can be marked, but the raw answer text is still there to show.
	if s.Questions[0].CorrectIndex != -1 {
		t.Errorf("CorrectIndex = %d, want -1", s.Questions[0].CorrectIndex)
	}
	if s.Questions[0].MCQ.Answer != "Option B" {
		t.Errorf("raw answer text lost: %q", s.Questions[0].MCQ.Answer)
	}
}

func TestOperationsCompleteIndependently(t *testing.T) {
	mcqRelease := make(chan struct{})
	mcqStarted := make(chan struct{})
	pointsRelease := make(chan struct{})
	pointsStarted := make(chan struct{})
	backend := &fakeBackend{
		generateMCQs: func(ctx context.Context, q client.Query) (*models.MCQResponse, error) {
			close(mcqStarted)
			<-mcqRelease
			return &models.MCQResponse{Status: "ok", Result: sampleQuestions()}, nil
		},
		generatePoints: func(ctx context.Context, q client.Query) (*models.PointsResponse, error) {
			close(pointsStarted)
			<-pointsRelease
			return &models.PointsResponse{Status: "ok", Result: []models.PointItem{{ID: 1, Text: "p"}}}, nil
		},
	}
	ctrl := NewController(backend)
	ctrl.SetTopic("t")

	mcqDone := make(chan struct{})
	pointsDone := make(chan struct{})
	go func() { ctrl.SubmitMCQ(context.Background()); close(mcqDone) }()
	go func() { ctrl.SubmitPoints(context.Background()); close(pointsDone) }()
	<-mcqStarted
	<-pointsStarted

	// Finish points while MCQ is still in flight.
	close(pointsRelease)
	<-pointsDone

	s := ctrl.Snapshot()
	if len(s.Points) != 1 {
		t.Errorf("points not applied while MCQ in flight: %v", s.Points)
	}
	if !s.MCQLoading {
		t.Error("points completion cleared the MCQ loading flag")
	}
	if s.Questions != nil {
		t.Error("points completion altered the MCQ result")
	}

	close(mcqRelease)
	<-mcqDone

	s = ctrl.Snapshot()
	if s.MCQLoading || s.PointsLoading {
		t.Error("a loading flag is still set after both completed")
	}
	if len(s.Questions) != 2 || len(s.Points) != 1 {
		t.Errorf("final state wrong: %d questions, %d points", len(s.Questions), len(s.Points))
	}
}

func TestSetCountClamps(t *testing.T) {
	ctrl := NewController(&fakeBackend{})

	ctrl.SetCount(0)
	if got := ctrl.Snapshot().Count; got != 1 {
		t.Errorf("SetCount(0) stored %d, want 1", got)
	}
	ctrl.SetCount(99)
	if got := ctrl.Snapshot().Count; got != 20 {
		t.Errorf("SetCount(99) stored %d, want 20", got)
	}
	ctrl.SetCount(7)
	if got := ctrl.Snapshot().Count; got != 7 {
		t.Errorf("SetCount(7) stored %d, want 7", got)
	}
}

func TestSubmitClearsPreviousError(t *testing.T) {
	fail := true
	backend := &fakeBackend{
		generateMCQs: func(ctx context.Context, q client.Query) (*models.MCQResponse, error) {
			if fail {
				return nil, &client.RequestError{Status: 502, Body: "bad gateway"}
			}
			return &models.MCQResponse{Status: "ok", Result: sampleQuestions()}, nil
		},
	}
	ctrl := NewController(backend)
	ctrl.SetTopic("t")

	ctrl.SubmitMCQ(context.Background())
	if ctrl.Snapshot().MCQError == "" {
		t.Fatal("expected an error from the first submission")
	}

	fail = false
	ctrl.SubmitMCQ(context.Background())
	s := ctrl.Snapshot()
	if s.MCQError != "" {
		t.Errorf("error not cleared on resubmission: %q", s.MCQError)
	}
	if len(s.Questions) != 2 {
		t.Errorf("got %d questions after retry, want 2", len(s.Questions))
	}
}

func TestCallerContextEndsHungSubmit(t *testing.T) {
	// There is no internal timeout; a context deadline from the caller is
	// the only way a hung request ends.
	backend := &fakeBackend{
		generateMCQs: func(ctx context.Context, q client.Query) (*models.MCQResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	ctrl := NewController(backend)
	ctrl.SetTopic("t")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ctrl.SubmitMCQ(ctx)

	s := ctrl.Snapshot()
	if s.MCQLoading {
		t.Error("loading flag still set after context cancellation")
	}
	if !strings.Contains(s.MCQError, "context deadline exceeded") {
		t.Errorf("error = %q", s.MCQError)
	}
}
