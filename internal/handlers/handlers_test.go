package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"linkdesk-backend/internal/dataforseo"
	"linkdesk-backend/internal/drafts"
	"linkdesk-backend/internal/handlers"
	"linkdesk-backend/internal/logger"
	"linkdesk-backend/internal/metrics"
	"linkdesk-backend/internal/middleware"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/qualification"
	"linkdesk-backend/internal/review"
	"linkdesk-backend/internal/supabase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeDB is an in-memory stand-in for supabase.DatabaseClient.
type fakeDB struct {
	mu      sync.Mutex
	order   models.Order
	deleted bool
	domain  models.BulkAnalysisDomain
	saves   []json.RawMessage
}

func (f *fakeDB) copyOrder() *models.Order {
	o := f.order
	o.Groups = make([]models.OrderGroup, len(f.order.Groups))
	for i, g := range f.order.Groups {
		g.Submissions = append([]models.SiteSubmission(nil), g.Submissions...)
		o.Groups[i] = g
	}
	return &o
}

func (f *fakeDB) ListOrders(_ context.Context, accountID uuid.UUID) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleted || accountID != f.order.AccountID {
		return []models.Order{}, nil
	}
	return []models.Order{*f.copyOrder()}, nil
}

func (f *fakeDB) GetOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleted || id != f.order.ID {
		return nil, supabase.ErrNotFound
	}
	return f.copyOrder(), nil
}

func (f *fakeDB) UpdateOrderStatus(_ context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.order.Status != from {
		return supabase.ErrConflict
	}
	f.order.Status = to
	return nil
}

func (f *fakeDB) DeleteOrder(context.Context, uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = true
	return nil
}

func (f *fakeDB) UpdateGroupTargets(_ context.Context, groupID uuid.UUID, pages []models.TargetPage, anchors []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := f.order.Group(groupID)
	g.TargetPages, g.AnchorTexts = pages, anchors
	return nil
}

func (f *fakeDB) submission(id uuid.UUID) *models.SiteSubmission {
	for gi := range f.order.Groups {
		if s := f.order.Groups[gi].Submission(id); s != nil {
			return s
		}
	}
	return nil
}

func (f *fakeDB) AssignTargetPage(_ context.Context, id uuid.UUID, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submission(id).TargetPageURL = url
	return nil
}

func (f *fakeDB) SwitchToPrimary(context.Context, uuid.UUID, uuid.UUID) error {
	return errors.New("not used")
}

func (f *fakeDB) SetSubmissionStatus(_ context.Context, id uuid.UUID, status models.SubmissionStatus, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.submission(id)
	s.Status, s.SubmissionStatus, s.RejectionReason = status, status, reason
	return nil
}

func (f *fakeDB) UpdateLineItem(_ context.Context, id uuid.UUID, status *models.SubmissionStatus, notes *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.submission(id)
	if status != nil {
		s.Status, s.SubmissionStatus = *status, *status
	}
	if notes != nil {
		s.Notes = *notes
	}
	return nil
}

func (f *fakeDB) ListDomains(_ context.Context, clientID uuid.UUID) ([]models.BulkAnalysisDomain, error) {
	if clientID != f.domain.ClientID {
		return []models.BulkAnalysisDomain{}, nil
	}
	return []models.BulkAnalysisDomain{f.domain}, nil
}

func (f *fakeDB) GetDomain(_ context.Context, id uuid.UUID) (*models.BulkAnalysisDomain, error) {
	if id != f.domain.ID {
		return nil, supabase.ErrNotFound
	}
	d := f.domain
	return &d, nil
}

func (f *fakeDB) SaveQualification(_ context.Context, d *models.BulkAnalysisDomain) error {
	f.domain = *d
	return nil
}

func (f *fakeDB) ReplaceKeywordResults(context.Context, uuid.UUID, []models.KeywordResult) error {
	return nil
}

func (f *fakeDB) KeywordResults(context.Context, uuid.UUID, int) ([]models.KeywordResult, error) {
	return []models.KeywordResult{}, nil
}

func (f *fakeDB) KeywordSummary(context.Context, uuid.UUID) (models.KeywordSummary, error) {
	return models.KeywordSummary{}, nil
}

func (f *fakeDB) CreateDraft(_ context.Context, d *models.DraftOrder) error {
	d.ID = uuid.New()
	return nil
}

func (f *fakeDB) SaveDraft(_ context.Context, _, _ uuid.UUID, payload json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, payload)
	return nil
}

func (f *fakeDB) ListDrafts(context.Context, uuid.UUID) ([]models.DraftOrder, error) {
	return []models.DraftOrder{}, nil
}

func (f *fakeDB) draftSaves() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

type nopPublisher struct{}

func (nopPublisher) PublishAsync(models.ReviewEvent) {}

type fixture struct {
	db       *fakeDB
	router   *gin.Engine
	drafts   *drafts.Service
	account  uuid.UUID
	groupID  uuid.UUID
	primary  uuid.UUID
	floating uuid.UUID
}

const (
	toolsURL = "https://acme.test/tools"
	hosesURL = "https://acme.test/hoses"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		account:  uuid.New(),
		groupID:  uuid.New(),
		primary:  uuid.New(),
		floating: uuid.New(),
	}
	rank := 1
	f.db = &fakeDB{
		order: models.Order{
			ID:        uuid.New(),
			AccountID: f.account,
			Status:    models.OrderClientReview,
			Groups: []models.OrderGroup{{
				ID:          f.groupID,
				Client:      models.ClientInfo{Name: "Acme Garden"},
				LinkCount:   2,
				TargetPages: []models.TargetPage{{URL: toolsURL}, {URL: hosesURL}},
				AnchorTexts: []string{"garden tools", "hoses"},
				Submissions: []models.SiteSubmission{
					{ID: f.primary, OrderGroupID: f.groupID, Status: models.StatusSubmitted, SelectionPool: models.PoolPrimary, PoolRank: &rank, TargetPageURL: toolsURL, Domain: &models.SubmissionDomain{Domain: "blog.example"}},
					{ID: f.floating, OrderGroupID: f.groupID, Status: models.StatusSubmitted, SelectionPool: models.PoolPrimary, Domain: &models.SubmissionDomain{Domain: "loose.example"}},
				},
			}},
		},
		domain: models.BulkAnalysisDomain{
			ID:                  uuid.New(),
			ClientID:            uuid.New(),
			Domain:              "blog.example",
			QualificationStatus: models.QualificationPending,
		},
	}

	m := metrics.New(prometheus.NewRegistry())
	log := logger.NewNop()
	reviewSvc := review.NewService(f.db, nopPublisher{}, m, log, review.Options{MutationTimeout: time.Second})
	f.drafts = drafts.NewService(f.db, time.Hour, m, log)
	t.Cleanup(f.drafts.Close)

	f.router = gin.New()
	api := f.router.Group("/api/v1", fakeAuth)
	handlers.RegisterRoutes(api, handlers.Handlers{
		Orders:       handlers.NewOrdersHandler(f.db, reviewSvc, nil),
		Review:       handlers.NewReviewHandler(f.db, reviewSvc),
		Drafts:       handlers.NewDraftsHandler(f.drafts),
		BulkAnalysis: handlers.NewBulkAnalysisHandler(qualification.NewService(f.db, m, log)),
		DataForSEO:   handlers.NewDataForSEOHandler(dataforseo.NewService(f.db, nil, nil, m, log)),
	})
	return f
}

// fakeAuth trusts the X-User and X-Role headers.
func fakeAuth(c *gin.Context) {
	c.Set(middleware.UserIDKey, c.GetHeader("X-User"))
	c.Set(middleware.UserRoleKey, c.GetHeader("X-Role"))
	c.Next()
}

func (f *fixture) do(method, path string, body interface{}, role string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", f.account.String())
	if role != "" {
		req.Header.Set("X-Role", role)
		req.Header.Set("X-User", uuid.NewString())
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) orderPath(suffix string) string {
	return "/api/v1/orders/" + f.db.order.ID.String() + suffix
}

func (f *fixture) submissionPath(id uuid.UUID, action string) string {
	return f.orderPath("/groups/" + f.groupID.String() + "/submissions/" + id.String() + "/" + action)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestListAndGetOrder(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/v1/orders", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list models.OrderListResponse
	decode(t, w, &list)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, f.db.order.ID.String(), list.Orders[0].ID)

	w = f.do(http.MethodGet, f.orderPath(""), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetOrder_OtherAccountIsForbidden(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, f.orderPath(""), nil)
	req.Header.Set("X-User", uuid.NewString())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// staff may look at any order
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, f.orderPath(""), nil, "admin").Code)
}

func TestMalformedOrderRedirects(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{uuid.Nil.String(), "not-an-id"} {
		w := f.do(http.MethodGet, "/api/v1/orders/"+id+"/review", nil, "")
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.JSONEq(t, `{"error":"malformed order","redirect":"/orders"}`, w.Body.String())
	}

	w := f.do(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetReview_RendersTableState(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, f.orderPath("/review?expand=all&edit="+f.groupID.String()+":0"), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var view review.View
	decode(t, w, &view)
	require.Len(t, view.Groups, 1)
	assert.True(t, view.Groups[0].Expanded)
	assert.True(t, view.Editor.Open)
	require.Len(t, view.Groups[0].Rows, 2)
	require.NotNil(t, view.Groups[0].Rows[0].Display)
	assert.Equal(t, "blog.example", view.Groups[0].Rows[0].Display.Domain)
	// the hoses slot has nothing assigned but can pick from the shared pool
	assert.Nil(t, view.Groups[0].Rows[1].Display)
	assert.Equal(t, 1, view.Groups[0].Rows[1].AlternateCount)
	assert.Empty(t, view.Groups[0].Rows[1].Placeholder)

	w = f.do(http.MethodGet, f.orderPath("/review?edit=garbage"), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignThenApprove(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, f.submissionPath(f.floating, "assign"),
		models.AssignTargetPageRequest{TargetPageURL: hosesURL}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view review.View
	decode(t, w, &view)
	assert.Equal(t, hosesURL, f.db.submission(f.floating).TargetPageURL)

	w = f.do(http.MethodPost, f.submissionPath(f.floating, "approve"), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusClientApproved, f.db.submission(f.floating).EffectiveStatus())
}

func TestAssign_UnknownTarget(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, f.submissionPath(f.floating, "assign"),
		models.AssignTargetPageRequest{TargetPageURL: "https://elsewhere.test/"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSwitch_PrimaryIsConflict(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, f.submissionPath(f.primary, "switch"), nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReject_WithReason(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, f.submissionPath(f.primary, "reject"), models.RejectSubmissionRequest{Reason: "off topic"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	s := f.db.submission(f.primary)
	assert.Equal(t, models.StatusClientRejected, s.EffectiveStatus())
	assert.Equal(t, "off topic", s.RejectionReason)
}

func TestReject_BodyIsOptionalButMustBeValid(t *testing.T) {
	f := newFixture(t)
	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, f.submissionPath(f.primary, "reject"), bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User", f.account.String())
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		return w
	}

	w := post(`{"reason": `)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEqual(t, models.StatusClientRejected, f.db.submission(f.primary).EffectiveStatus())

	w = post("")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusClientRejected, f.db.submission(f.primary).EffectiveStatus())
	assert.Empty(t, f.db.submission(f.primary).RejectionReason)
}

func TestUpdateLineItem(t *testing.T) {
	f := newFixture(t)
	notes := "call back"
	w := f.do(http.MethodPatch, f.orderPath("/line-items/"+f.primary.String()), models.UpdateLineItemRequest{Notes: &notes}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "call back", f.db.submission(f.primary).Notes)

	w = f.do(http.MethodPatch, f.orderPath("/line-items/"+f.primary.String()), models.UpdateLineItemRequest{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateState(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, f.orderPath("/state"), models.UpdateOrderStateRequest{Status: models.OrderApproved}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderApproved, f.db.order.Status)

	w = f.do(http.MethodPost, f.orderPath("/state"), models.UpdateOrderStateRequest{Status: models.OrderDraft}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeleteOrder_OnlyEarlyStatuses(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodDelete, f.orderPath(""), nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	f.db.order.Status = models.OrderDraft
	w = f.do(http.MethodDelete, f.orderPath(""), nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, f.db.deleted)
}

func TestUpdateGroupTargets_LockedAfterConfirmation(t *testing.T) {
	f := newFixture(t)
	body := models.UpdateGroupTargetsRequest{TargetPages: []models.TargetPage{{URL: toolsURL}}, AnchorTexts: []string{"tools"}}

	w := f.do(http.MethodPut, f.orderPath("/groups/"+f.groupID.String()), body, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	f.db.order.Status = models.OrderPendingConfirmation
	w = f.do(http.MethodPut, f.orderPath("/groups/"+f.groupID.String()), body, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"tools"}, f.db.order.Groups[0].AnchorTexts)

	w = f.do(http.MethodPut, f.orderPath("/groups/"+uuid.NewString()), body, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraftAutosaveIsAccepted(t *testing.T) {
	f := newFixture(t)
	draftID := uuid.New()

	w := f.do(http.MethodPut, "/api/v1/orders/drafts/"+draftID.String()+"?autosave=true",
		map[string]interface{}{"payload": map[string]interface{}{"title": "x"}}, "")
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Zero(t, f.db.draftSaves())
	assert.True(t, f.drafts.Pending(draftID))

	w = f.do(http.MethodPut, "/api/v1/orders/drafts/"+draftID.String(),
		map[string]interface{}{"payload": map[string]interface{}{"title": "y"}}, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, f.db.draftSaves())

	w = f.do(http.MethodPost, "/api/v1/orders/drafts", nil, "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBulkAnalysis_StaffOnly(t *testing.T) {
	f := newFixture(t)
	path := "/api/v1/clients/" + f.db.domain.ClientID.String() + "/bulk-analysis/domains"

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, path, nil, "").Code)

	w := f.do(http.MethodGet, path, nil, "admin")
	require.Equal(t, http.StatusOK, w.Code)
	var list models.DomainListResponse
	decode(t, w, &list)
	assert.Len(t, list.Domains, 1)
}

func TestBulkAnalysis_ShortcutQualifiesFocusedDomain(t *testing.T) {
	f := newFixture(t)
	path := "/api/v1/clients/" + f.db.domain.ClientID.String() + "/bulk-analysis/domains/" + f.db.domain.ID.String() + "/shortcut"

	w := f.do(http.MethodPost, path, models.ShortcutRequest{Key: "1"}, "admin")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result qualification.ShortcutResult
	decode(t, w, &result)
	assert.True(t, result.Changed)
	assert.Equal(t, models.QualificationHighQuality, f.db.domain.QualificationStatus)

	// a judged domain ignores further shortcuts
	w = f.do(http.MethodPost, path, models.ShortcutRequest{Key: "3"}, "admin")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.False(t, result.Changed)
	assert.Equal(t, models.QualificationHighQuality, f.db.domain.QualificationStatus)
}

func TestBulkAnalysis_ManualStatus(t *testing.T) {
	f := newFixture(t)
	path := "/api/v1/clients/" + f.db.domain.ClientID.String() + "/bulk-analysis/domains/" + f.db.domain.ID.String() + "/status"

	w := f.do(http.MethodPost, path, models.UpdateQualificationRequest{Status: models.QualificationDisqualified, IsManual: true}, "admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.QualificationDisqualified, f.db.domain.QualificationStatus)
	assert.True(t, f.db.domain.WasManuallyQualified)

	w = f.do(http.MethodPost, path, models.UpdateQualificationRequest{Status: "great"}, "admin")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkAnalysis_NonManualStatusOverwritesVerdict(t *testing.T) {
	f := newFixture(t)
	f.db.domain.QualificationStatus = models.QualificationHighQuality
	path := "/api/v1/clients/" + f.db.domain.ClientID.String() + "/bulk-analysis/domains/" + f.db.domain.ID.String() + "/status"

	w := f.do(http.MethodPost, path, models.UpdateQualificationRequest{Status: models.QualificationDisqualified}, "admin")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.QualificationResponse
	decode(t, w, &resp)
	assert.True(t, resp.Changed)
	assert.Equal(t, models.QualificationDisqualified, f.db.domain.QualificationStatus)
	assert.False(t, f.db.domain.WasManuallyQualified)
}

func TestBulkAnalysis_AISourceOnlyTouchesPending(t *testing.T) {
	f := newFixture(t)
	path := "/api/v1/clients/" + f.db.domain.ClientID.String() + "/bulk-analysis/domains/" + f.db.domain.ID.String() + "/status"

	w := f.do(http.MethodPost, path, models.UpdateQualificationRequest{
		Status: models.QualificationAverage, Source: "ai", Reasoning: "thin content",
	}, "admin")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.QualificationAverage, f.db.domain.QualificationStatus)
	assert.Equal(t, "thin content", f.db.domain.AIQualificationReasoning)

	w = f.do(http.MethodPost, path, models.UpdateQualificationRequest{Status: models.QualificationDisqualified, Source: "ai"}, "admin")
	require.Equal(t, http.StatusOK, w.Code)
	var resp models.QualificationResponse
	decode(t, w, &resp)
	assert.False(t, resp.Changed)
	assert.Equal(t, models.QualificationAverage, f.db.domain.QualificationStatus)

	w = f.do(http.MethodPost, path, models.UpdateQualificationRequest{Status: models.QualificationAverage, Source: "robot"}, "admin")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDataForSEO_RequiresDomainID(t *testing.T) {
	f := newFixture(t)
	path := "/api/v1/clients/" + f.db.domain.ClientID.String() + "/bulk-analysis/dataforseo/check-analyzed"

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, path, nil, "admin").Code)

	w := f.do(http.MethodGet, path+"?domainId="+f.db.domain.ID.String(), nil, "admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"analyzed":false,"resultCount":0}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/health", handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"database": func(context.Context) error { return nil },
		"redis":    nil,
	}).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","services":{"database":"ok"}}`, w.Body.String())

	r = gin.New()
	r.GET("/health", handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"database": func(context.Context) error { return errors.New("down") },
	}).Health)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
