package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	appErrors "github.com/waveleap/broadcast-backend/internal/errors"
	"github.com/waveleap/broadcast-backend/internal/gateway"
	"github.com/waveleap/broadcast-backend/internal/model"
)

// --- Mock campaign repository ---

type MockCampaignRepo struct {
	mu        sync.Mutex
	nextID    int
	campaigns map[int]*model.Campaign
}

func NewMockCampaignRepo() *MockCampaignRepo {
	return &MockCampaignRepo{campaigns: map[int]*model.Campaign{}}
}

func (m *MockCampaignRepo) Create(c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *MockCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *MockCampaignRepo) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Campaign{}
	for _, c := range m.campaigns {
		if status == "" || string(c.Status) == status {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *MockCampaignRepo) Transition(campaignID int, from, to model.CampaignStatus) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("illegal campaign transition %s -> %s", from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[campaignID]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	return true, nil
}

func (m *MockCampaignRepo) MarkFailed(campaignID int, from model.CampaignStatus, reason model.FailureReason) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[campaignID]
	if !ok || c.Status != from {
		return false, nil
	}
	now := time.Now()
	c.Status = model.CampaignFailed
	c.FailReason = reason
	c.CompletedAt = &now
	return true, nil
}

func (m *MockCampaignRepo) MarkSending(campaignID int, startedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[campaignID]
	if !ok || c.Status != model.CampaignWaitingApproval {
		return false, nil
	}
	c.Status = model.CampaignSending
	c.StartedAt = &startedAt
	return true, nil
}

func (m *MockCampaignRepo) SetTemplate(campaignID int, templateID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[campaignID]; ok {
		c.TemplateID = templateID
	}
	return nil
}

func (m *MockCampaignRepo) IncrementSent(campaignID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[campaignID]; ok {
		c.SentCount++
	}
	return nil
}

func (m *MockCampaignRepo) IncrementFailed(campaignID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[campaignID]; ok {
		c.FailedCount++
	}
	return nil
}

func (m *MockCampaignRepo) Finalize(campaignID int, status model.CampaignStatus, reason model.FailureReason, actualCost decimal.Decimal, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[campaignID]; ok {
		c.Status = status
		c.FailReason = reason
		c.ActualCost = actualCost
		c.CompletedAt = &completedAt
	}
	return nil
}

// Count returns how many campaign rows exist.
func (m *MockCampaignRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.campaigns)
}

// --- Mock contact repository ---

type MockContactRepo struct {
	contacts map[int]model.Contact
}

func NewMockContactRepo(contacts ...model.Contact) *MockContactRepo {
	m := &MockContactRepo{contacts: map[int]model.Contact{}}
	for _, c := range contacts {
		m.contacts[c.ID] = c
	}
	return m
}

func (m *MockContactRepo) FindAddressable(ownerID int, ids []int64) ([]model.Contact, error) {
	out := []model.Contact{}
	for _, id := range ids {
		c, ok := m.contacts[int(id)]
		if ok && c.OwnerID == ownerID && !c.Deleted && c.Phone != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *MockContactRepo) GetByID(id int) (*model.Contact, error) {
	c, ok := m.contacts[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// --- Mock billing repository ---

type MockBillingRepo struct {
	mu           sync.Mutex
	balances     map[int]decimal.Decimal
	Transactions []model.Transaction
}

func NewMockBillingRepo(balances map[int]decimal.Decimal) *MockBillingRepo {
	return &MockBillingRepo{balances: balances}
}

func (m *MockBillingRepo) GetBalance(ownerID int) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[ownerID]
	if !ok {
		return decimal.Zero, errors.New("no account")
	}
	return b, nil
}

func (m *MockBillingRepo) Debit(ownerID int, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before, ok := m.balances[ownerID]
	if !ok {
		return decimal.Zero, decimal.Zero, decimal.Zero, errors.New("no account")
	}
	debited := amount
	if before.LessThan(amount) {
		debited = before
	}
	after := before.Sub(debited)
	m.balances[ownerID] = after
	return before, after, debited, nil
}

func (m *MockBillingRepo) InsertTransaction(t *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = len(m.Transactions) + 1
	t.CreatedAt = time.Now()
	m.Transactions = append(m.Transactions, *t)
	return nil
}

// --- Mock delivery repository ---

type MockDeliveryRepo struct {
	mu       sync.Mutex
	nextID   int
	attempts map[string]*model.DeliveryAttempt
}

func NewMockDeliveryRepo() *MockDeliveryRepo {
	return &MockDeliveryRepo{attempts: map[string]*model.DeliveryAttempt{}}
}

func deliveryKey(campaignID, contactID int) string {
	return fmt.Sprintf("%d/%d", campaignID, contactID)
}

func (m *MockDeliveryRepo) Create(a *model.DeliveryAttempt) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := deliveryKey(a.CampaignID, a.ContactID)
	if _, ok := m.attempts[key]; ok {
		return false, nil
	}
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	cp := *a
	m.attempts[key] = &cp
	return true, nil
}

func (m *MockDeliveryRepo) Exists(campaignID, contactID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.attempts[deliveryKey(campaignID, contactID)]
	return ok, nil
}

func (m *MockDeliveryRepo) ListByCampaign(campaignID int) ([]*model.DeliveryAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.DeliveryAttempt{}
	for _, a := range m.attempts {
		if a.CampaignID == campaignID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockDeliveryRepo) CountByStatus(campaignID int) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := map[string]int{"sent": 0, "failed": 0}
	for _, a := range m.attempts {
		if a.CampaignID == campaignID {
			stats[string(a.Status)]++
		}
	}
	return stats, nil
}

// --- Mock template repository ---

type MockTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]*model.Template
}

func NewMockTemplateRepo() *MockTemplateRepo {
	return &MockTemplateRepo{templates: map[string]*model.Template{}}
}

func (m *MockTemplateRepo) Create(t *model.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.CreatedAt = time.Now()
	if t.Status == "" {
		t.Status = model.TemplatePending
	}
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *MockTemplateRepo) GetByID(id string) (*model.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *MockTemplateRepo) MarkDecided(id string, status model.TemplateStatus, decidedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.templates[id]; ok && t.Status == model.TemplatePending {
		t.Status = status
		t.DecidedAt = &decidedAt
	}
	return nil
}

func (m *MockTemplateRepo) IncrementCheckCount(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.templates[id]; ok {
		t.CheckCount++
	}
	return nil
}

// --- Mock approval queue repository ---

type MockApprovalQueueRepo struct {
	mu      sync.Mutex
	nextID  int
	entries map[int]*model.ApprovalEntry
}

func NewMockApprovalQueueRepo() *MockApprovalQueueRepo {
	return &MockApprovalQueueRepo{entries: map[int]*model.ApprovalEntry{}}
}

func (m *MockApprovalQueueRepo) Enqueue(e *model.ApprovalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.entries {
		if existing.TemplateID == e.TemplateID {
			return nil // at most one live entry per template
		}
	}
	m.nextID++
	e.ID = m.nextID
	e.CreatedAt = time.Now()
	cp := *e
	m.entries[e.ID] = &cp
	return nil
}

func (m *MockApprovalQueueRepo) ClaimDue(now time.Time, limit, maxChecks int, lease time.Duration) ([]*model.ApprovalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.ApprovalEntry{}
	for _, e := range m.entries {
		if len(out) >= limit {
			break
		}
		if !e.NextCheckAt.After(now) && e.CheckCount < maxChecks {
			cp := *e
			out = append(out, &cp)
			e.NextCheckAt = now.Add(lease)
		}
	}
	return out, nil
}

func (m *MockApprovalQueueRepo) Reschedule(id int, nextCheckAt time.Time, intervalMs int64, checkCount int, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		e.NextCheckAt = nextCheckAt
		e.CheckIntervalMs = intervalMs
		e.CheckCount = checkCount
		e.LastError = lastError
	}
	return nil
}

func (m *MockApprovalQueueRepo) Remove(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *MockApprovalQueueRepo) RemoveStale(olderThan time.Time, maxChecks int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.entries {
		if e.CreatedAt.Before(olderThan) || e.CheckCount >= maxChecks {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

// ForceDue rewinds every entry so the next ClaimDue picks it up.
func (m *MockApprovalQueueRepo) ForceDue() {
	m.mu.Lock()
	defer m.mu.Unlock()
	past := time.Now().Add(-time.Minute)
	for _, e := range m.entries {
		e.NextCheckAt = past
	}
}

// Entries returns a snapshot for assertions.
func (m *MockApprovalQueueRepo) Entries() []*model.ApprovalEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.ApprovalEntry{}
	for _, e := range m.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// --- Fake gateway ---

type FakeGateway struct {
	mu sync.Mutex

	CreateErr error
	Status    gateway.TemplateState
	StatusErr error
	// SendFunc decides per-address success; nil means every send succeeds.
	SendFunc func(address string) (string, error)

	CreateCalls int
	StatusCalls int
	SendCalls   []string
}

func (g *FakeGateway) CreateTemplate(ctx context.Context, name, bodyText, mediaRef string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CreateCalls++
	if g.CreateErr != nil {
		return "", g.CreateErr
	}
	return fmt.Sprintf("tpl-%s", name), nil
}

func (g *FakeGateway) GetTemplateStatus(ctx context.Context, templateID string) (gateway.TemplateState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.StatusCalls++
	if g.StatusErr != nil {
		return "", g.StatusErr
	}
	if g.Status == "" {
		return gateway.StatePending, nil
	}
	return g.Status, nil
}

func (g *FakeGateway) SendTemplateMessage(ctx context.Context, address, templateName string, vars map[string]string, mediaRef string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.SendCalls = append(g.SendCalls, address)
	if g.SendFunc != nil {
		return g.SendFunc(address)
	}
	return fmt.Sprintf("wamid-%d", len(g.SendCalls)), nil
}

// --- Capture queue ---

type CaptureQueue struct {
	mu        sync.Mutex
	Published []int
}

func (q *CaptureQueue) Publish(topic string, payload int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Published = append(q.Published, payload)
	return nil
}

func (q *CaptureQueue) Subscribe(topic string, handler func(payload int) error) error {
	return nil
}
