package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironbros/aura-api/internal/models"
	appErrors "github.com/ironbros/aura-api/pkg/errors"
)

type missionRepoStub struct {
	missions  []models.Mission
	byID      map[string]*models.Mission
	logros    []models.Mission
	seeded    []models.Mission
	listCalls int
}

func (s *missionRepoStub) FindByID(ctx context.Context, id string) (*models.Mission, error) {
	if mission, ok := s.byID[id]; ok {
		return mission, nil
	}
	return nil, sql.ErrNoRows
}

func (s *missionRepoStub) List(ctx context.Context) ([]models.Mission, error) {
	s.listCalls++
	return s.missions, nil
}

func (s *missionRepoStub) ListLogros(ctx context.Context) ([]models.Mission, error) {
	return s.logros, nil
}

func (s *missionRepoStub) Seed(ctx context.Context, missions []models.Mission) error {
	s.seeded = missions
	return nil
}

type memoryCacheStub struct {
	store   map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCacheStub {
	return &memoryCacheStub{store: map[string][]byte{}}
}

func (c *memoryCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = raw
	return nil
}

func (c *memoryCacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	c.store = map[string][]byte{}
	return nil
}

func TestMissionServiceListCachesResult(t *testing.T) {
	repo := &missionRepoStub{missions: []models.Mission{
		{ID: "1", Nombre: "Primer paso", Recompensa: 50},
	}}
	cache := newMemoryCache()
	svc := NewMissionService(repo, cache, time.Hour, nil)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.listCalls)
}

func TestMissionServiceFindByIDNotFound(t *testing.T) {
	svc := NewMissionService(&missionRepoStub{byID: map[string]*models.Mission{}}, newMemoryCache(), time.Hour, nil)

	_, err := svc.FindByID(context.Background(), "99")
	require.Error(t, err)
	assertAppCode(t, err, appErrors.ErrNotFound.Code)
}

func TestMissionServiceListLogrosFlattens(t *testing.T) {
	repo := &missionRepoStub{logros: []models.Mission{
		{ID: "2", Nombre: "Constancia", Logro: &models.MissionLogro{Nombre: "Hermano de hierro", Pegatina: "hierro.png"}},
	}}
	svc := NewMissionService(repo, newMemoryCache(), time.Hour, nil)

	logros, err := svc.ListLogros(context.Background())
	require.NoError(t, err)
	require.Len(t, logros, 1)
	assert.Equal(t, "Hermano de hierro", logros[0].Nombre)
}

func TestMissionServiceInitializeSeedsAndBustsCache(t *testing.T) {
	repo := &missionRepoStub{}
	cache := newMemoryCache()
	cache.store[cacheKeyMissionList] = []byte(`[]`)
	svc := NewMissionService(repo, cache, time.Hour, nil)

	seedFile := writeSeedFile(t, `[
	  {"id": "1", "nombre": "Primer paso", "descripcion": "Primera semana.", "recompensa": 50},
	  {"id": "2", "nombre": "Constancia", "descripcion": "Dos semanas.", "recompensa": 100,
	   "logro": {"nombre": "Hermano de hierro", "descripcion": "", "pegatina": "hierro.png"}}
	]`)

	require.NoError(t, svc.Initialize(context.Background(), seedFile))
	require.Len(t, repo.seeded, 2)
	assert.Equal(t, "Primer paso", repo.seeded[0].Nombre)
	require.NotNil(t, repo.seeded[1].Logro)
	assert.NotEmpty(t, cache.deleted)
	assert.Empty(t, cache.store)
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "init_missions.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMissionServiceInitializeMissingFile(t *testing.T) {
	repo := &missionRepoStub{}
	svc := NewMissionService(repo, newMemoryCache(), time.Hour, nil)

	require.NoError(t, svc.Initialize(context.Background(), "does-not-exist.json"))
	assert.Nil(t, repo.seeded)
}
