package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordicgem/diamond-indexer/internal/api/middleware"
	"github.com/nordicgem/diamond-indexer/internal/api/rest"
	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/logger"
	"github.com/nordicgem/diamond-indexer/internal/store"
	"github.com/nordicgem/diamond-indexer/internal/store/schema"
)

const testAPIKey = "test-api-key"

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	gin.SetMode(gin.TestMode)

	code := m.Run()
	os.Exit(code)
}

// fakeStore records the queries handlers build and serves canned results
type fakeStore struct {
	lastQuery        store.DiamondQuery
	searchResult     []*schema.Diamond
	searchTotal      uint64
	job              *schema.ImportJob
	jobs             []*schema.ImportJob
	intervals        []*schema.MarkupInterval
	replacedType     domain.FeedType
	replacedLadder   []*schema.MarkupInterval
	replaceErr       error
	searchErr        error
}

func (s *fakeStore) SearchDiamonds(_ context.Context, query store.DiamondQuery) ([]*schema.Diamond, uint64, error) {
	s.lastQuery = query
	return s.searchResult, s.searchTotal, s.searchErr
}

func (s *fakeStore) GetDiamondByItemID(context.Context, string) (*schema.Diamond, error) {
	return nil, nil
}

func (s *fakeStore) CountDiamondsByType(context.Context, domain.FeedType) (int64, error) {
	return 0, nil
}

func (s *fakeStore) DeleteDiamondsByType(context.Context, domain.FeedType) (int64, error) {
	return 0, nil
}

func (s *fakeStore) UpsertDiamondBatch(context.Context, []*schema.Diamond) error { return nil }

func (s *fakeStore) CreateImportJob(context.Context, *schema.ImportJob) error { return nil }

func (s *fakeStore) UpdateImportJob(context.Context, uuid.UUID, store.ImportJobUpdate) error {
	return nil
}

func (s *fakeStore) GetImportJob(_ context.Context, id uuid.UUID) (*schema.ImportJob, error) {
	if s.job == nil || s.job.ID != id {
		return nil, domain.ErrJobNotFound
	}
	return s.job, nil
}

func (s *fakeStore) ListImportJobs(context.Context, int) ([]*schema.ImportJob, error) {
	return s.jobs, nil
}

func (s *fakeStore) GetCurrentExchangeRate(context.Context, string, string) (*schema.ExchangeRate, error) {
	return nil, nil
}

func (s *fakeStore) SaveExchangeRate(context.Context, string, string, float64, time.Time) (*schema.ExchangeRate, error) {
	return nil, nil
}

func (s *fakeStore) ListMarkupIntervals(context.Context, domain.FeedType) ([]*schema.MarkupInterval, error) {
	return s.intervals, nil
}

func (s *fakeStore) ReplaceMarkupIntervals(_ context.Context, feedType domain.FeedType, intervals []*schema.MarkupInterval) error {
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.replacedType = feedType
	s.replacedLadder = intervals
	return nil
}

type fakeRefresher struct {
	triggered []domain.FeedType
	err       error
}

func (r *fakeRefresher) RefreshAsync(feedType domain.FeedType) error {
	if r.err != nil {
		return r.err
	}
	r.triggered = append(r.triggered, feedType)
	return nil
}

type fakeTierCache struct {
	invalidated []domain.FeedType
}

func (t *fakeTierCache) Invalidate(feedType domain.FeedType) {
	t.invalidated = append(t.invalidated, feedType)
}

func newTestRouter(s *fakeStore, r *fakeRefresher, t *fakeTierCache) *gin.Engine {
	router := gin.New()
	handler := rest.NewHandler(s, r, t)
	rest.SetupRoutes(router, handler, middleware.AuthConfig{APIKeys: []string{testAPIKey}})
	return router
}

func doRequest(router *gin.Engine, method, path, body string, authed bool) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "ApiKey "+testAPIKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&fakeStore{}, &fakeRefresher{}, &fakeTierCache{})

	w := doRequest(router, http.MethodGet, "/health", "", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSearchDiamonds_ResolvesFacets(t *testing.T) {
	price := 28400.0
	s := &fakeStore{
		searchResult: []*schema.Diamond{{ItemID: "IDX-1", Type: domain.FeedTypeNatural, FinalPriceSek: &price}},
		searchTotal:  1,
	}
	router := newTestRouter(s, &fakeRefresher{}, &fakeTierCache{})

	w := doRequest(router, http.MethodGet,
		"/api/v1/diamonds?type=natural&minColour=G&maxColour=D_MAX&minClarity=VS1&limit=24&offset=48", "", false)

	require.Equal(t, http.StatusOK, w.Code)

	// Facets arrive at the store as resolved label sets
	assert.Equal(t, domain.FeedTypeNatural, s.lastQuery.Type)
	assert.Equal(t, []string{"G", "F", "E", "D"}, s.lastQuery.Colors)
	assert.True(t, s.lastQuery.ExcludeFancy)
	assert.Equal(t, []string{"VS1", "VVS2", "VVS1", "IF", "FL"}, s.lastQuery.Clarities)
	assert.Equal(t, 24, s.lastQuery.Limit)
	assert.Equal(t, 48, s.lastQuery.Offset)

	var resp struct {
		Diamonds []struct {
			ItemID        string   `json:"itemId"`
			FinalPriceSek *float64 `json:"finalPriceSek"`
		} `json:"diamonds"`
		TotalCount uint64 `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Diamonds, 1)
	assert.Equal(t, "IDX-1", resp.Diamonds[0].ItemID)
	require.NotNil(t, resp.Diamonds[0].FinalPriceSek)
	assert.InDelta(t, 28400, *resp.Diamonds[0].FinalPriceSek, 1e-9)
	assert.Equal(t, uint64(1), resp.TotalCount)
}

func TestListDiamondsByType(t *testing.T) {
	s := &fakeStore{searchTotal: 7}
	router := newTestRouter(s, &fakeRefresher{}, &fakeTierCache{})

	w := doRequest(router, http.MethodGet, "/api/v1/diamonds/lab?limit=5", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.FeedTypeLab, s.lastQuery.Type)
	assert.Equal(t, 5, s.lastQuery.Limit)

	w = doRequest(router, http.MethodGet, "/api/v1/diamonds/moissanite", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerImport_Accepted(t *testing.T) {
	refresher := &fakeRefresher{}
	router := newTestRouter(&fakeStore{}, refresher, &fakeTierCache{})

	w := doRequest(router, http.MethodPost, "/api/v1/imports/natural", `{"force":true}`, true)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []domain.FeedType{domain.FeedTypeNatural}, refresher.triggered)

	var result domain.RefreshResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, domain.FeedTypeNatural, result.Type)
}

func TestTriggerImport_AlreadyInProgress(t *testing.T) {
	refresher := &fakeRefresher{err: domain.ErrRefreshInProgress}
	router := newTestRouter(&fakeStore{}, refresher, &fakeTierCache{})

	w := doRequest(router, http.MethodPost, "/api/v1/imports/lab", "", true)

	require.Equal(t, http.StatusConflict, w.Code)

	var result domain.RefreshResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "already in progress")
}

func TestTriggerImport_RequiresAuth(t *testing.T) {
	refresher := &fakeRefresher{}
	router := newTestRouter(&fakeStore{}, refresher, &fakeTierCache{})

	w := doRequest(router, http.MethodPost, "/api/v1/imports/natural", "", false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, refresher.triggered)
}

func TestTriggerImport_UnknownType(t *testing.T) {
	router := newTestRouter(&fakeStore{}, &fakeRefresher{}, &fakeTierCache{})

	w := doRequest(router, http.MethodPost, "/api/v1/imports/synthetic", "", true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetImportJob(t *testing.T) {
	jobID := uuid.New()
	s := &fakeStore{job: &schema.ImportJob{
		ID:     jobID,
		Type:   domain.FeedTypeNatural,
		Status: domain.ImportStatusCompleted,
	}}
	router := newTestRouter(s, &fakeRefresher{}, &fakeTierCache{})

	w := doRequest(router, http.MethodGet, "/api/v1/imports/jobs/"+jobID.String(), "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"COMPLETED"`)

	w = doRequest(router, http.MethodGet, "/api/v1/imports/jobs/"+uuid.NewString(), "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/imports/jobs/not-a-uuid", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMarkupIntervals(t *testing.T) {
	s := &fakeStore{intervals: []*schema.MarkupInterval{
		{Type: domain.FeedTypeNatural, MinCarat: 0, MaxCarat: 1, Multiplier: 2.5},
	}}
	router := newTestRouter(s, &fakeRefresher{}, &fakeTierCache{})

	w := doRequest(router, http.MethodGet, "/api/v1/markup-intervals?type=natural", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"multiplier":2.5`)

	w = doRequest(router, http.MethodGet, "/api/v1/markup-intervals", "", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplaceMarkupIntervals(t *testing.T) {
	s := &fakeStore{}
	tiers := &fakeTierCache{}
	router := newTestRouter(s, &fakeRefresher{}, tiers)

	body := `{"type":"natural","intervals":[
		{"minCarat":0,"maxCarat":1,"multiplier":2.5},
		{"minCarat":1,"maxCarat":150,"multiplier":2.0}
	]}`
	w := doRequest(router, http.MethodPut, "/api/v1/markup-intervals", body, true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.FeedTypeNatural, s.replacedType)
	require.Len(t, s.replacedLadder, 2)
	assert.InDelta(t, 2.0, s.replacedLadder[1].Multiplier, 1e-9)

	// The pricing cache is flushed so the new ladder takes effect immediately
	assert.Equal(t, []domain.FeedType{domain.FeedTypeNatural}, tiers.invalidated)
}

func TestReplaceMarkupIntervals_RejectsOverlap(t *testing.T) {
	s := &fakeStore{}
	tiers := &fakeTierCache{}
	router := newTestRouter(s, &fakeRefresher{}, tiers)

	body := `{"type":"natural","intervals":[
		{"minCarat":0,"maxCarat":1,"multiplier":2.5},
		{"minCarat":0.5,"maxCarat":150,"multiplier":2.0}
	]}`
	w := doRequest(router, http.MethodPut, "/api/v1/markup-intervals", body, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, tiers.invalidated)
}
