package store

import (
	"context"
	"sort"
	"sync"

	"github.com/amal-sh/Blockchain-supplychain/models"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process. Used by tests and STORE_DRIVER=memory.
type MemoryStore struct {
	mu       sync.Mutex
	readings []models.SensorReading
	farms    []models.Farm
	images   []models.ImageRecord
	users    []models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertReading(_ context.Context, r *models.SensorReading) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.readings = append(m.readings, *r)
	return r.ID, nil
}

func (m *MemoryStore) FindReadings(_ context.Context, farmID string, limit int64) ([]models.SensorReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.SensorReading{}
	for _, r := range m.readings {
		if r.FarmID == farmID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) InsertFarm(_ context.Context, f *models.Farm) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	m.farms = append(m.farms, *f)
	return f.ID, nil
}

func (m *MemoryStore) FindFarm(_ context.Context, id string) (*models.Farm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.farms {
		if f.ID == id {
			farm := f
			return &farm, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindFarmByName(_ context.Context, name string) (*models.Farm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.farms {
		if f.Name == name {
			farm := f
			return &farm, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) InsertImage(_ context.Context, img *models.ImageRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if img.ID == "" {
		img.ID = uuid.NewString()
	}
	m.images = append(m.images, *img)
	return img.ID, nil
}

func (m *MemoryStore) FindImages(_ context.Context, limit int64) ([]models.ImageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ImageRecord, len(m.images))
	copy(out, m.images)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) InsertUser(_ context.Context, u *models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return "", ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	m.users = append(m.users, *u)
	return u.ID, nil
}

func (m *MemoryStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateUserRole(_ context.Context, email, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Email == email {
			m.users[i].Role = role
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) Close(context.Context) error { return nil }
