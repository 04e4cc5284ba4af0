package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"examprep/internal/db"
	"examprep/internal/gemini"
	"examprep/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultCount     = 5
	maxCount         = 20
	defaultMaxPoints = 8
	maxPointsLimit   = 12
)

// HandleRoot reports that the service is up.
func (h *Handler) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "JKSSB exam prep backend is running. POST /generate/mcq"})
}

// HandleGenerateMCQ handles POST /generate/mcq.
func (h *Handler) HandleGenerateMCQ(c *gin.Context) {
	var req models.MCQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if req.Count == 0 {
		req.Count = defaultCount
	}
	req.Count = clampInt(req.Count, 1, maxCount)
	if req.Difficulty == "" {
		req.Difficulty = "medium"
	}
	req.Context = h.resolveContext(req.Context, req.VideoURL)

	if h.Gemini == nil {
		questions := gemini.MockMCQs(req.Topic, req.Count, req.Difficulty)
		h.recordGeneration(c.Request.Context(), "local-mock-no-key", db.KindMCQ, req.Topic, len(questions), 0)
		c.JSON(http.StatusOK, models.MCQResponse{
			RequestID: "local-mock-no-key",
			Status:    "ok",
			Result:    questions,
		})
		return
	}

	requestID := uuid.New().String()
	questions, tokens, err := h.Gemini.GenerateMCQs(c.Request.Context(), req)
	if err != nil {
		var parseErr *gemini.ParseError
		if errors.As(err, &parseErr) {
			// The model answered but not in a shape we could decode; hand the
			// raw text back rather than failing the request.
			c.JSON(http.StatusOK, models.MCQResponse{
				RequestID:  requestID,
				Status:     "parse_error",
				TokensUsed: tokens,
				RawText:    parseErr.Raw,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("MCQ generation failed: %v", err)})
		return
	}

	h.recordGeneration(c.Request.Context(), requestID, db.KindMCQ, req.Topic, len(questions), tokens)
	c.JSON(http.StatusOK, models.MCQResponse{
		RequestID:  requestID,
		Status:     "ok",
		TokensUsed: tokens,
		Result:     questions,
	})
}

// HandleGeneratePoints handles POST /generate/points.
func (h *Handler) HandleGeneratePoints(c *gin.Context) {
	var req models.PointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if req.MaxPoints == 0 {
		req.MaxPoints = defaultMaxPoints
	}
	req.MaxPoints = clampInt(req.MaxPoints, 1, maxPointsLimit)
	req.Context = h.resolveContext(req.Context, req.VideoURL)

	if h.Gemini == nil {
		points := gemini.MockPoints(req.Topic, req.MaxPoints)
		h.recordGeneration(c.Request.Context(), "local-mock-points", db.KindPoints, req.Topic, len(points), 0)
		c.JSON(http.StatusOK, models.PointsResponse{
			RequestID: "local-mock-points",
			Status:    "ok",
			Result:    points,
		})
		return
	}

	requestID := uuid.New().String()
	points, tokens, err := h.Gemini.GeneratePoints(c.Request.Context(), req)
	if err != nil {
		var parseErr *gemini.ParseError
		if errors.As(err, &parseErr) {
			c.JSON(http.StatusOK, models.PointsResponse{
				RequestID:  requestID,
				Status:     "parse_error",
				TokensUsed: tokens,
				RawText:    parseErr.Raw,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("points generation failed: %v", err)})
		return
	}

	h.recordGeneration(c.Request.Context(), requestID, db.KindPoints, req.Topic, len(points), tokens)
	c.JSON(http.StatusOK, models.PointsResponse{
		RequestID:  requestID,
		Status:     "ok",
		TokensUsed: tokens,
		Result:     points,
	})
}

// HandleHistory handles GET /history.
func (h *Handler) HandleHistory(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusOK, gin.H{"history": []db.GenerationRecord{}})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	records, err := h.DB.RecentGenerations(c.Request.Context(), limit)
	if err != nil {
		log.Printf("ERROR: failed to load generation history: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load history"})
		return
	}
	if records == nil {
		records = []db.GenerationRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}

// resolveContext merges explicit context text with a video transcript when a
// video URL was supplied. Transcript failures are logged and skipped so
// generation still runs on whatever material we have.
func (h *Handler) resolveContext(contextText, videoURL string) string {
	if videoURL == "" {
		return contextText
	}

	transcript, err := h.Youtube.Transcript(videoURL)
	if err != nil {
		log.Printf("WARN: failed to fetch transcript for %s: %v", videoURL, err)
		return contextText
	}

	if contextText == "" {
		return transcript
	}
	return contextText + "\n\n" + transcript
}

func (h *Handler) recordGeneration(ctx context.Context, requestID, kind, topic string, itemCount, tokens int) {
	if h.DB == nil {
		return
	}
	if err := h.DB.RecordGeneration(ctx, requestID, kind, topic, itemCount, tokens); err != nil {
		log.Printf("WARN: failed to record %s generation: %v", kind, err)
	}
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
