package domain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/Vovarama1992/mediavault/internal/ports"
	"github.com/google/uuid"
)

var mediaExtensions = map[string]bool{
	".mp4": true, ".m4v": true, ".mov": true, ".webm": true, ".mkv": true, ".avi": true,
	".mp3": true, ".m4a": true, ".aac": true, ".wav": true, ".ogg": true, ".flac": true,
}

type UploadInput struct {
	Title       string
	Type        models.MediaType
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	UploadedBy  string
}

type MediaService struct {
	repo      ports.MediaRepository
	storage   ports.FileStorage
	signer    *URLSigner
	validator *URLValidator
	views     *ViewRecorder
	metrics   ports.MediaMetrics
	now       func() time.Time
}

func NewMediaService(
	repo ports.MediaRepository,
	storage ports.FileStorage,
	signer *URLSigner,
	validator *URLValidator,
	views *ViewRecorder,
	metrics ports.MediaMetrics,
) *MediaService {
	return &MediaService{
		repo:      repo,
		storage:   storage,
		signer:    signer,
		validator: validator,
		views:     views,
		metrics:   metricsOrNoop(metrics),
		now:       time.Now,
	}
}

// Upload stores the bytes first and then creates the asset record.
func (m *MediaService) Upload(ctx context.Context, in UploadInput) (*models.MediaAsset, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || !in.Type.Valid() {
		return nil, fmt.Errorf("%w: title and type are required", ErrValidation)
	}
	if in.Body == nil || in.Size <= 0 {
		return nil, fmt.Errorf("%w: media file is required", ErrValidation)
	}
	if !isMediaFile(in.FileName, in.ContentType) {
		return nil, fmt.Errorf("%w: only video and audio files are allowed", ErrValidation)
	}

	name, err := m.storedFileName(in.FileName)
	if err != nil {
		return nil, fmt.Errorf("build file name: %w", err)
	}

	locator, err := m.storage.Save(ctx, name, in.Body, in.Size, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("save media file: %w", err)
	}

	media, err := m.repo.InsertMedia(ctx, &models.MediaAsset{
		ID:          uuid.NewString(),
		Title:       title,
		Type:        in.Type,
		FileLocator: locator,
		UploadedBy:  in.UploadedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}
	return media, nil
}

func (m *MediaService) GetMedia(ctx context.Context, id string) (*models.MediaAsset, error) {
	media, err := m.repo.GetMediaByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get media: %w", err)
	}
	if media == nil {
		return nil, ErrNotFound
	}
	return media, nil
}

// StreamURL issues a signed URL for an existing asset.
func (m *MediaService) StreamURL(ctx context.Context, id string) (Grant, error) {
	media, err := m.GetMedia(ctx, id)
	if err != nil {
		return Grant{}, err
	}

	grant, err := m.signer.Issue(media.ID, media.FileLocator, 0)
	if err != nil {
		return Grant{}, err
	}

	m.metrics.StreamURLIssued()
	return grant, nil
}

// OpenStream validates a signed request, records the view and returns the
// asset bytes. Nothing is recorded when validation or lookup fails.
func (m *MediaService) OpenStream(ctx context.Context, id, token, expires, clientIP string) (*models.MediaAsset, io.ReadCloser, error) {
	if token == "" || expires == "" {
		m.metrics.StreamRejected("missing")
		return nil, nil, fmt.Errorf("%w: token and expiration are required", ErrForbidden)
	}
	if !m.validator.Validate(token, expires) {
		m.metrics.StreamRejected("expired")
		return nil, nil, fmt.Errorf("%w: url has expired or is invalid", ErrForbidden)
	}

	media, err := m.GetMedia(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	body, err := m.storage.Open(ctx, media.FileLocator)
	if err != nil {
		return nil, nil, fmt.Errorf("open media file: %w", err)
	}

	if _, err := m.views.RecordAsset(ctx, media, clientIP); err != nil {
		body.Close()
		return nil, nil, err
	}

	return media, body, nil
}

func (m *MediaService) storedFileName(original string) (string, error) {
	rnd := make([]byte, 6)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(original)))
	return fmt.Sprintf("media-%d-%s%s", m.now().UnixMilli(), hex.EncodeToString(rnd), ext), nil
}

func isMediaFile(fileName, contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(ct, "video/") && !strings.HasPrefix(ct, "audio/") {
		return false
	}
	return mediaExtensions[strings.ToLower(filepath.Ext(fileName))]
}
