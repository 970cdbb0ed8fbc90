package delivery

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/mediavault/internal/domain"
	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/go-chi/chi/v5"
)

const multipartMemory = 32 << 20

type uploadForm struct {
	Title string `validate:"required,max=255"`
	Type  string `validate:"required,oneof=video audio"`
}

type mediaResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	FileURL   string    `json:"file_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type viewResponse struct {
	MediaID    string    `json:"media_id"`
	ViewedAt   time.Time `json:"viewed_at"`
	ViewedByIP string    `json:"viewed_by_ip"`
}

type dateRangeResponse struct {
	Start *time.Time `json:"start"`
	End   time.Time  `json:"end"`
}

type analyticsResponse struct {
	Media          mediaResponse     `json:"media"`
	Range          string            `json:"range"`
	TotalViews     int               `json:"total_views"`
	UniqueIPs      int               `json:"unique_ips"`
	ViewsPerDay    map[string]int    `json:"views_per_day"` // encoding/json sorts keys, so days come out ascending
	ViewsByCountry map[string]int    `json:"views_by_country"`
	DateRange      dateRangeResponse `json:"date_range"`
	RecentViews    []viewResponse    `json:"recent_views"`
}

type MediaHandler struct {
	media     *domain.MediaService
	views     *domain.ViewRecorder
	analytics *domain.AnalyticsService
	maxUpload int64
	log       *logger.ZapLogger
}

func NewMediaHandler(
	media *domain.MediaService,
	views *domain.ViewRecorder,
	analytics *domain.AnalyticsService,
	maxUpload int64,
	log *logger.ZapLogger,
) *MediaHandler {
	return &MediaHandler{
		media:     media,
		views:     views,
		analytics: analytics,
		maxUpload: maxUpload,
		log:       log,
	}
}

// POST /media
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	adminID, ok := AdminIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "media file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	form := uploadForm{
		Title: strings.TrimSpace(r.FormValue("title")),
		Type:  strings.TrimSpace(r.FormValue("type")),
	}
	if err := validate.Struct(form); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "title and type are required")
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "media file is required")
		return
	}
	defer file.Close()

	media, err := h.media.Upload(r.Context(), domain.UploadInput{
		Title:       form.Title,
		Type:        models.MediaType(form.Type),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		UploadedBy:  adminID,
	})
	if err != nil {
		handleDomainError(w, h.log, "media upload", err)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "media uploaded",
		Fields: map[string]any{
			"mediaID": media.ID,
			"type":    media.Type,
			"size":    header.Size,
		},
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Media uploaded successfully.",
		"media":   toMediaResponse(media, true),
	})
}

// GET /media/{id}
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	media, err := h.media.GetMedia(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, h.log, "get media", err)
		return
	}
	writeJSON(w, http.StatusOK, toMediaResponse(media, true))
}

// GET /media/{id}/stream-url
func (h *MediaHandler) StreamURL(w http.ResponseWriter, r *http.Request) {
	grant, err := h.media.StreamURL(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, h.log, "stream url", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stream_url": grant.URL,
		"expires":    grant.ExpiresAt,
	})
}

// GET /media/stream/{id}?token=&expires=
func (h *MediaHandler) Stream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := chi.URLParam(r, "id")

	media, body, err := h.media.OpenStream(r.Context(), id, q.Get("token"), q.Get("expires"), ClientIP(r))
	if err != nil {
		handleDomainError(w, h.log, "media stream", err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", media.Type.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, strings.ReplaceAll(media.Title, `"`, `'`)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "media stream interrupted",
			Fields:  map[string]any{"mediaID": media.ID},
			Error:   err,
		})
	}
}

// GET /media/{id}/views
func (h *MediaHandler) LogView(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Record(r.Context(), chi.URLParam(r, "id"), ClientIP(r))
	if err != nil {
		handleDomainError(w, h.log, "log view", err)
		return
	}
	writeJSON(w, http.StatusOK, toViewResponse(*view))
}

// GET /media/{id}/analytics?range=7d|30d|90d|all
//
// An absent range means all. A present value outside the set is a 400.
func (h *MediaHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	rng := r.URL.Query().Get("range")
	if rng == "" {
		rng = string(domain.RangeAll)
	}

	report, err := h.analytics.Report(r.Context(), chi.URLParam(r, "id"), rng)
	if err != nil {
		handleDomainError(w, h.log, "media analytics", err)
		return
	}

	recent := make([]viewResponse, 0, len(report.RecentViews))
	for _, v := range report.RecentViews {
		recent = append(recent, toViewResponse(v))
	}

	writeJSON(w, http.StatusOK, analyticsResponse{
		Media:          toMediaResponse(report.Media, false),
		Range:          string(report.Range),
		TotalViews:     report.TotalViews,
		UniqueIPs:      report.UniqueIPs,
		ViewsPerDay:    report.ViewsPerDay,
		ViewsByCountry: report.ViewsByCountry,
		DateRange:      dateRangeResponse{Start: report.Start, End: report.End},
		RecentViews:    recent,
	})
}

func toMediaResponse(m *models.MediaAsset, withFile bool) mediaResponse {
	resp := mediaResponse{
		ID:        m.ID,
		Title:     m.Title,
		Type:      string(m.Type),
		CreatedAt: m.CreatedAt,
	}
	if withFile {
		resp.FileURL = m.FileLocator
	}
	return resp
}

func toViewResponse(v models.ViewEvent) viewResponse {
	return viewResponse{
		MediaID:    v.MediaID,
		ViewedAt:   v.Timestamp,
		ViewedByIP: v.ViewedByIP,
	}
}
