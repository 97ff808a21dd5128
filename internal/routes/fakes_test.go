package routes

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pickup-archive/pickups-api/internal/config"
	"github.com/pickup-archive/pickups-api/internal/middleware"
	"github.com/pickup-archive/pickups-api/internal/models"
	"github.com/pickup-archive/pickups-api/internal/query"
	"github.com/pickup-archive/pickups-api/internal/store"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTSecret = "routes-test-secret"

// memoryPickups is an in-memory PickupRepository.
type memoryPickups struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]models.Pickup
	calls   int
	failAll error
}

func newMemoryPickups() *memoryPickups {
	return &memoryPickups{records: make(map[primitive.ObjectID]models.Pickup)}
}

func (m *memoryPickups) touch() error {
	m.calls++
	return m.failAll
}

func (m *memoryPickups) matching(search string) []models.Pickup {
	var out []models.Pickup
	for _, r := range m.records {
		if search == "" || strings.Contains(strings.ToLower(r.Player), strings.ToLower(search)) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out
}

func (m *memoryPickups) List(_ context.Context, q query.Query) ([]models.Pickup, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, 0, err
	}

	all := m.matching(q.Params.Search)
	total := int64(len(all))
	if q.Skip >= total {
		return nil, total, nil
	}
	end := q.Skip + q.Limit
	if end > total {
		end = total
	}
	return all[q.Skip:end], total, nil
}

func (m *memoryPickups) Get(_ context.Context, id primitive.ObjectID) (*models.Pickup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	r, ok := m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (m *memoryPickups) Create(_ context.Context, p *models.Pickup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return err
	}
	p.ID = primitive.NewObjectID()
	m.records[p.ID] = *p
	return nil
}

func (m *memoryPickups) Replace(_ context.Context, id primitive.ObjectID, p *models.Pickup) (*models.Pickup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	if _, ok := m.records[id]; !ok {
		return nil, store.ErrNotFound
	}
	p.ID = id
	m.records[id] = *p
	out := *p
	return &out, nil
}

func (m *memoryPickups) Delete(_ context.Context, id primitive.ObjectID) (*models.Pickup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	r, ok := m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(m.records, id)
	return &r, nil
}

func (m *memoryPickups) SuggestNames(_ context.Context, partial string, limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var names []string
	for _, r := range m.matching(partial) {
		if !seen[r.Player] {
			seen[r.Player] = true
			names = append(names, r.Player)
		}
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (m *memoryPickups) Summary(_ context.Context, player string) (*models.PlayerSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	var mine []models.Pickup
	for _, r := range m.records {
		if strings.EqualFold(r.Player, player) {
			mine = append(mine, r)
		}
	}
	if len(mine) == 0 {
		return nil, store.ErrNotFound
	}
	return summarize(mine[0].Player, mine), nil
}

// summarize mirrors the store's aggregation pipeline in memory.
func summarize(player string, records []models.Pickup) *models.PlayerSummary {
	s := &models.PlayerSummary{Player: player}
	for _, r := range records {
		s.Games++
		s.Wins += int64(r.Win)
		s.AvgScore += r.Score
		s.AvgKills += r.Kills
		s.AvgDeaths += r.Deaths
		s.AvgAssists += r.Assists
		s.AvgTeamKills += r.TeamKills
		s.AvgBlocks += r.Blocks
		s.AvgImpactRating += r.ImpactRating
	}
	n := float64(s.Games)
	s.AvgScore /= n
	s.AvgKills /= n
	s.AvgDeaths /= n
	s.AvgAssists /= n
	s.AvgTeamKills /= n
	s.AvgBlocks /= n
	s.AvgImpactRating /= n
	s.Finalize()
	return s
}

func (m *memoryPickups) seed(player, date string, impact float64) models.Pickup {
	p := models.Pickup{
		Player: player, Score: impact * 10, Kills: 5, Deaths: 2, Assists: 1,
		Blocks: 3, ImpactRating: impact, Regiment: "63e", Win: 1, Date: models.MustDate(date),
	}
	_ = m.Create(context.Background(), &p)
	m.calls--
	return p
}

type memoryAdmins struct {
	admins map[string]*models.Admin
}

func (m *memoryAdmins) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	a, ok := m.admins[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Issuer:   "pickup-archive",
			Audience: "pickup-archive-admin",
			TokenTTL: time.Hour,
		},
		Pagination: config.PaginationConfig{
			DefaultLimit:    10,
			MaxLimit:        100,
			SuggestionLimit: 10,
		},
		Observability: config.ObservabilityConfig{MetricsPath: "/metrics"},
	}
}

type testEnv struct {
	app     *fiber.App
	pickups *memoryPickups
	admins  *memoryAdmins
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith lets a test adjust the config before routes are set up.
func newTestEnvWith(t *testing.T, configure func(*config.Config)) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := testConfig()
	if configure != nil {
		configure(cfg)
	}
	auth, err := middleware.NewAuthMiddleware(&cfg.JWT, testJWTSecret, logger)
	require.NoError(t, err)

	models.PasswordCost = 4
	admin := &models.Admin{AdminID: "admin-1", Username: "archivist"}
	_, err = admin.SetPassword("correct horse")
	require.NoError(t, err)

	env := &testEnv{
		app: fiber.New(fiber.Config{
			JSONEncoder: sonic.Marshal,
			JSONDecoder: sonic.Unmarshal,
		}),
		pickups: newMemoryPickups(),
		admins:  &memoryAdmins{admins: map[string]*models.Admin{"archivist": admin}},
	}

	Setup(env.app, cfg, logger, Dependencies{
		Pickups:   env.pickups,
		Admins:    env.admins,
		Auth:      auth,
		JWTSecret: testJWTSecret,
	})
	return env
}
