// Package api exposes the player-facing HTTP surface: daily puzzle
// retrieval and attempt submission. Event years never leave this layer
// until the attempt is scored.
package api

import (
	"errors"
	"log"
	"math/rand"
	"net/http"
	"time"

	"chronle/app"
	"chronle/domain/core"
	"chronle/domain/puzzle"

	"github.com/gin-gonic/gin"
)

// Server is the player-facing API server
type Server struct {
	router *gin.Engine
	play   *app.PlayService
}

// NewServer creates the API server and registers its routes
func NewServer(play *app.PlayService) *Server {
	s := &Server{
		router: gin.Default(),
		play:   play,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/puzzles/daily", s.handleDailyPuzzle)
		api.POST("/puzzles/:id/attempts", s.handleSubmitAttempt)
		api.GET("/puzzles/:id/attempts/:user", s.handleGetAttempt)
		api.GET("/users/:user/attempts", s.handleListAttempts)
	}
}

// Run starts the HTTP server on the given address
func (s *Server) Run(addr string) error {
	log.Printf("[API] listening on %s", addr)
	return s.router.Run(addr)
}

// Handler exposes the underlying handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// puzzleEventDTO is one puzzle slot as shown to the player. The year is
// withheld; revealing it would solve the puzzle.
type puzzleEventDTO struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type puzzleDTO struct {
	ID     string           `json:"id"`
	Day    string           `json:"day"`
	Events []puzzleEventDTO `json:"events"`
}

func toPuzzleDTO(p *puzzle.Puzzle) puzzleDTO {
	events := make([]puzzleEventDTO, 0, len(p.Events))
	for _, ev := range p.Events {
		events = append(events, puzzleEventDTO{ID: ev.ID.String(), Text: ev.Text})
	}
	// Stored order is chronological; shuffle so the presentation does
	// not leak the answer.
	rand.Shuffle(len(events), func(i, j int) {
		events[i], events[j] = events[j], events[i]
	})
	return puzzleDTO{ID: p.ID.String(), Day: p.Day, Events: events}
}

func (s *Server) handleDailyPuzzle(c *gin.Context) {
	day := c.Query("day")
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
		return
	}

	p, err := s.play.GetDailyPuzzle(c.Request.Context(), day)
	if errors.Is(err, core.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no puzzle published for " + day})
		return
	}
	if err != nil {
		log.Printf("[API] daily puzzle lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toPuzzleDTO(p))
}

type submitAttemptRequest struct {
	UserID   string   `json:"user_id" binding:"required"`
	Ordering []string `json:"ordering" binding:"required"`
}

type attemptDTO struct {
	ID           string                    `json:"id"`
	PuzzleID     string                    `json:"puzzle_id"`
	Feedback     []puzzle.PositionFeedback `json:"feedback"`
	PairsCorrect int                       `json:"pairs_correct"`
	TotalPairs   int                       `json:"total_pairs"`
	Solved       bool                      `json:"solved"`
}

func toAttemptDTO(a *puzzle.OrderAttempt) attemptDTO {
	return attemptDTO{
		ID:           a.ID.String(),
		PuzzleID:     a.PuzzleID.String(),
		Feedback:     a.Result.Feedback,
		PairsCorrect: a.Result.PairsCorrect,
		TotalPairs:   a.Result.TotalPairs,
		Solved:       a.Solved,
	}
}

func (s *Server) handleSubmitAttempt(c *gin.Context) {
	puzzleID, err := core.ParsePuzzleID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid puzzle id"})
		return
	}

	var req submitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, err := core.ParseUserID(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	ordering := make([]core.EventID, 0, len(req.Ordering))
	for _, raw := range req.Ordering {
		id, err := core.ParseEventID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id in ordering"})
			return
		}
		ordering = append(ordering, id)
	}

	attempt, err := s.play.SubmitAttempt(c.Request.Context(), userID, puzzleID, ordering)
	switch {
	case errors.Is(err, core.ErrPuzzleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "puzzle not found"})
	case errors.Is(err, core.ErrAttemptExists):
		c.JSON(http.StatusConflict, gin.H{"error": "attempt already recorded"})
	case errors.Is(err, core.ErrEmptyPuzzle):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "puzzle has no events"})
	case errors.Is(err, core.ErrOrderingLengthMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "ordering must include every puzzle event exactly once"})
	case err != nil:
		log.Printf("[API] attempt submission failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		c.JSON(http.StatusCreated, toAttemptDTO(attempt))
	}
}

func (s *Server) handleGetAttempt(c *gin.Context) {
	puzzleID, err := core.ParsePuzzleID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid puzzle id"})
		return
	}
	userID, err := core.ParseUserID(c.Param("user"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	attempt, err := s.play.GetAttempt(c.Request.Context(), userID, puzzleID)
	if errors.Is(err, core.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "attempt not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toAttemptDTO(attempt))
}

func (s *Server) handleListAttempts(c *gin.Context) {
	userID, err := core.ParseUserID(c.Param("user"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	attempts, err := s.play.ListUserAttempts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	dtos := make([]attemptDTO, 0, len(attempts))
	for _, attempt := range attempts {
		dtos = append(dtos, toAttemptDTO(attempt))
	}
	c.JSON(http.StatusOK, gin.H{"attempts": dtos})
}
