package api

import (
	"net/http"

	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/http/response"
)

// handleGetUserAchievements returns the per-category achievement summary,
// freshly recalculated so lazily created ladders show up on first read.
func (s *Server) handleGetUserAchievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := s.achievements.GetUserAchievements(ctx, getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, summary, s.logger)
}

// handleCheckAchievements returns the caller's unlocked achievements,
// optionally filtered by ?category=.
func (s *Server) handleCheckAchievements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var category *domain.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c := domain.Category(raw)
		if !c.Valid() {
			response.BadRequest(w, "Unknown achievement category", s.logger)
			return
		}
		category = &c
	}

	unlocked, err := s.achievements.CheckAchievements(ctx, getUserID(ctx), category)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, unlocked, s.logger)
}
