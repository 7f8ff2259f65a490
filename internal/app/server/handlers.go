package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"tubetext/internal/config"
	"tubetext/internal/pool"
	"tubetext/internal/transcript"
)

type handlerSet struct {
	pool        *pool.Pool
	transcripts *transcript.Client
}

func (h *handlerSet) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"proxies": h.pool.Size(),
	})
}

func (h *handlerSet) getTranscript(w http.ResponseWriter, r *http.Request) {
	videoID, ok := transcript.ExtractVideoID(r.PathValue("id"))
	if !ok {
		writeError(w, "not a valid video id or URL", http.StatusBadRequest)
		return
	}

	languages := config.GetConfig().Transcript.Languages
	if param := r.URL.Query().Get("languages"); param != "" {
		languages = strings.Split(param, ",")
	}
	preserveFormatting := r.URL.Query().Get("preserveFormatting") == "true"

	fetched, err := h.transcripts.Fetch(r.Context(), videoID, languages, preserveFormatting)
	if err != nil {
		writeTranscriptError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "text":
		writeText(w, fetched.Text())
	case "srt":
		writeText(w, fetched.SRT())
	default:
		writeJSON(w, http.StatusOK, fetched)
	}
}

func (h *handlerSet) listTranscripts(w http.ResponseWriter, r *http.Request) {
	videoID, ok := transcript.ExtractVideoID(r.PathValue("id"))
	if !ok {
		writeError(w, "not a valid video id or URL", http.StatusBadRequest)
		return
	}

	list, err := h.transcripts.List(r.Context(), videoID)
	if err != nil {
		writeTranscriptError(w, err)
		return
	}

	type trackInfo struct {
		Language     string `json:"language"`
		LanguageCode string `json:"languageCode"`
		IsGenerated  bool   `json:"isGenerated"`
		Translatable bool   `json:"translatable"`
	}

	tracks := make([]trackInfo, 0)
	for _, track := range list.Transcripts() {
		tracks = append(tracks, trackInfo{
			Language:     track.Language,
			LanguageCode: track.LanguageCode,
			IsGenerated:  track.IsGenerated,
			Translatable: track.IsTranslatable(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"videoId": list.VideoID,
		"tracks":  tracks,
	})
}

// warm is the idempotent "ensure pool refreshed" trigger used by deployment
// glue, optionally followed by a list-file export.
func (h *handlerSet) warm(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.Refresh(r.Context()); err != nil {
		writeError(w, err.Error(), http.StatusBadGateway)
		return
	}

	exported := false
	if path := config.GetConfig().Server.ExportPath; path != "" {
		if err := h.pool.ExportList(path); err != nil {
			log.Warn("list export after warm failed", "path", path, "error", err)
		} else {
			exported = true
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"proxies":  h.pool.Size(),
		"exported": exported,
	})
}

func (h *handlerSet) getSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, config.GetConfig())
}

// updateSettings replaces and persists the configuration. Pool and provider
// changes take effect on the next restart; transcript languages apply
// immediately.
func (h *handlerSet) updateSettings(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, "invalid settings payload", http.StatusBadRequest)
		return
	}

	config.SetConfig(cfg)
	writeJSON(w, http.StatusOK, cfg)
}

func writeTranscriptError(w http.ResponseWriter, err error) {
	var videoErr *transcript.VideoError
	if !errors.As(err, &videoErr) {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusNotFound
	switch videoErr.Kind {
	case transcript.KindRequestBlocked, transcript.KindIPBlocked:
		status = http.StatusTooManyRequests
	case transcript.KindInvalidVideoID:
		status = http.StatusBadRequest
	case transcript.KindRequestFailed, transcript.KindDataUnparsable,
		transcript.KindConsentCookieFailed:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, map[string]string{
		"error": videoErr.Error(),
		"kind":  string(videoErr.Kind),
	})
}
