package api

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/http/response"
	"github.com/medialogapp/medialog-server/internal/service"
)

// updateProgressRequest addresses a media item and carries either an episode
// or a chapter position, depending on the medium.
type updateProgressRequest struct {
	MediaID   int64            `json:"media_id"`
	MediaType domain.MediaType `json:"media_type"`

	CurrentEpisode *int `json:"current_episode,omitempty"`
	TotalEpisodes  *int `json:"total_episodes,omitempty"`
	WatchedMinutes *int `json:"watched_minutes,omitempty"`

	CurrentChapter *int `json:"current_chapter,omitempty"`
	TotalChapters  *int `json:"total_chapters,omitempty"`
}

// handleUpdateProgress sets the consumption position for a list entry.
// Episodic types take episode fields, print types chapter fields.
func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var req updateProgressRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if !req.MediaType.Valid() {
		response.BadRequest(w, "Unknown media type", s.logger)
		return
	}

	var (
		progress *domain.ProgressItem
		err      error
	)
	if req.MediaType.Episodic() {
		if req.CurrentEpisode == nil {
			response.BadRequest(w, "current_episode is required", s.logger)
			return
		}
		progress, err = s.progress.UpdateEpisodes(ctx, userID, req.MediaType, req.MediaID, service.UpdateEpisodesRequest{
			CurrentEpisode: *req.CurrentEpisode,
			TotalEpisodes:  req.TotalEpisodes,
			WatchedMinutes: req.WatchedMinutes,
		})
	} else {
		if req.CurrentChapter == nil {
			response.BadRequest(w, "current_chapter is required", s.logger)
			return
		}
		progress, err = s.progress.UpdateChapters(ctx, userID, req.MediaType, req.MediaID, service.UpdateChaptersRequest{
			CurrentChapter: *req.CurrentChapter,
			TotalChapters:  req.TotalChapters,
		})
	}
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, progress, s.logger)
}

// handleGetProgress returns the progress record for one media item.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	mediaType := domain.MediaType(chi.URLParam(r, "type"))
	if !mediaType.Valid() {
		response.BadRequest(w, "Unknown media type", s.logger)
		return
	}

	mediaID, err := strconv.ParseInt(chi.URLParam(r, "mediaID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Media ID must be an integer", s.logger)
		return
	}

	progress, err := s.progress.GetProgress(ctx, userID, mediaType, mediaID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, progress, s.logger)
}
