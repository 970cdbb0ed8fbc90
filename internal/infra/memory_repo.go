package infra

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Vovarama1992/mediavault/internal/models"
	"github.com/Vovarama1992/mediavault/internal/ports"
	"github.com/google/uuid"
)

// MemoryStore keeps assets, views and admins in process memory. It backs the
// server when no DATABASE_URL is configured and the package tests.
type MemoryStore struct {
	mu     sync.RWMutex
	media  map[string]models.MediaAsset
	views  []models.ViewEvent
	admins map[string]models.AdminUser
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		media:  make(map[string]models.MediaAsset),
		admins: make(map[string]models.AdminUser),
		now:    time.Now,
	}
}

var (
	_ ports.MediaRepository = (*MemoryStore)(nil)
	_ ports.ViewRepository  = (*MemoryStore)(nil)
	_ ports.AdminRepository = (*MemoryStore)(nil)
)

func (s *MemoryStore) InsertMedia(_ context.Context, media *models.MediaAsset) (*models.MediaAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if media.ID == "" {
		media.ID = uuid.NewString()
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = s.now().UTC()
	}
	s.media[media.ID] = *media
	return media, nil
}

func (s *MemoryStore) GetMediaByID(_ context.Context, id string) (*models.MediaAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.media[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *MemoryStore) AppendView(_ context.Context, view *models.ViewEvent) (*models.ViewEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	if view.Timestamp.IsZero() {
		view.Timestamp = s.now().UTC()
	}
	s.views = append(s.views, *view)
	return view, nil
}

func (s *MemoryStore) ListViews(_ context.Context, mediaID string, since *time.Time) ([]models.ViewEvent, error) {
	s.mu.RLock()
	out := make([]models.ViewEvent, 0)
	for _, v := range s.views {
		if v.MediaID != mediaID {
			continue
		}
		if since != nil && v.Timestamp.Before(*since) {
			continue
		}
		out = append(out, v)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *MemoryStore) InsertAdmin(_ context.Context, admin *models.AdminUser) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[admin.Email]; ok {
		return nil, ports.ErrDuplicate
	}
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = s.now().UTC()
	}
	s.admins[admin.Email] = *admin
	return admin, nil
}

func (s *MemoryStore) GetAdminByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admins[email]
	if !ok {
		return nil, nil
	}
	return &a, nil
}
