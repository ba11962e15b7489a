package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"workhub/internal/models/db_models"
	"workhub/internal/providers"
	"workhub/pkg/utils"
)

// mockProvider records calls and returns canned responses. Unset function
// fields fail the call so tests only exercise the paths they stub.
type mockProvider struct {
	createCustomerFn    func(ctx context.Context, email, name, organizationID string) (string, error)
	getPriceFn          func(ctx context.Context, lookupKey string) (*providers.Price, error)
	checkoutFn          func(ctx context.Context, params providers.CheckoutParams) (*providers.CheckoutSession, error)
	freeSubscriptionFn  func(ctx context.Context, customerID, priceID, idempotencyKey string) (*providers.Subscription, error)
	getSubscriptionFn   func(ctx context.Context, subscriptionID string) (*providers.Subscription, error)
	cancelFn            func(ctx context.Context, subscriptionID string) (*providers.Subscription, error)
	reactivateFn        func(ctx context.Context, subscriptionID string) (*providers.Subscription, error)
	downgradeScheduleFn func(ctx context.Context, subscriptionID, currentPriceID, newPriceID string) (string, error)
	findScheduleFn      func(ctx context.Context, subscriptionID string) (string, error)
	releaseScheduleFn   func(ctx context.Context, scheduleID string) error
	portalFn            func(ctx context.Context, customerID, returnURL string) (string, error)
	verifyWebhookFn     func(payload []byte, signature string) (*providers.WebhookEvent, error)

	calls []string
}

func (m *mockProvider) record(name string) {
	m.calls = append(m.calls, name)
}

func (m *mockProvider) called(name string) bool {
	for _, c := range m.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (m *mockProvider) CreateCustomer(ctx context.Context, email, name, organizationID string) (string, error) {
	m.record("CreateCustomer")
	if m.createCustomerFn == nil {
		return "", fmt.Errorf("unexpected CreateCustomer call")
	}
	return m.createCustomerFn(ctx, email, name, organizationID)
}

func (m *mockProvider) GetPriceByLookupKey(ctx context.Context, lookupKey string) (*providers.Price, error) {
	m.record("GetPriceByLookupKey")
	if m.getPriceFn == nil {
		return nil, fmt.Errorf("unexpected GetPriceByLookupKey call")
	}
	return m.getPriceFn(ctx, lookupKey)
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, params providers.CheckoutParams) (*providers.CheckoutSession, error) {
	m.record("CreateCheckoutSession")
	if m.checkoutFn == nil {
		return nil, fmt.Errorf("unexpected CreateCheckoutSession call")
	}
	return m.checkoutFn(ctx, params)
}

func (m *mockProvider) CreateFreeSubscription(ctx context.Context, customerID, priceID, idempotencyKey string) (*providers.Subscription, error) {
	m.record("CreateFreeSubscription")
	if m.freeSubscriptionFn == nil {
		return nil, fmt.Errorf("unexpected CreateFreeSubscription call")
	}
	return m.freeSubscriptionFn(ctx, customerID, priceID, idempotencyKey)
}

func (m *mockProvider) GetSubscription(ctx context.Context, subscriptionID string) (*providers.Subscription, error) {
	m.record("GetSubscription")
	if m.getSubscriptionFn == nil {
		return nil, fmt.Errorf("unexpected GetSubscription call")
	}
	return m.getSubscriptionFn(ctx, subscriptionID)
}

func (m *mockProvider) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*providers.Subscription, error) {
	m.record("CancelAtPeriodEnd")
	if m.cancelFn == nil {
		return nil, fmt.Errorf("unexpected CancelAtPeriodEnd call")
	}
	return m.cancelFn(ctx, subscriptionID)
}

func (m *mockProvider) Reactivate(ctx context.Context, subscriptionID string) (*providers.Subscription, error) {
	m.record("Reactivate")
	if m.reactivateFn == nil {
		return nil, fmt.Errorf("unexpected Reactivate call")
	}
	return m.reactivateFn(ctx, subscriptionID)
}

func (m *mockProvider) CreateDowngradeSchedule(ctx context.Context, subscriptionID, currentPriceID, newPriceID string) (string, error) {
	m.record("CreateDowngradeSchedule")
	if m.downgradeScheduleFn == nil {
		return "", fmt.Errorf("unexpected CreateDowngradeSchedule call")
	}
	return m.downgradeScheduleFn(ctx, subscriptionID, currentPriceID, newPriceID)
}

func (m *mockProvider) FindScheduleForSubscription(ctx context.Context, subscriptionID string) (string, error) {
	m.record("FindScheduleForSubscription")
	if m.findScheduleFn == nil {
		return "", fmt.Errorf("unexpected FindScheduleForSubscription call")
	}
	return m.findScheduleFn(ctx, subscriptionID)
}

func (m *mockProvider) ReleaseSchedule(ctx context.Context, scheduleID string) error {
	m.record("ReleaseSchedule")
	if m.releaseScheduleFn == nil {
		return fmt.Errorf("unexpected ReleaseSchedule call")
	}
	return m.releaseScheduleFn(ctx, scheduleID)
}

func (m *mockProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	m.record("CreatePortalSession")
	if m.portalFn == nil {
		return "", fmt.Errorf("unexpected CreatePortalSession call")
	}
	return m.portalFn(ctx, customerID, returnURL)
}

func (m *mockProvider) VerifyWebhook(payload []byte, signature string) (*providers.WebhookEvent, error) {
	m.record("VerifyWebhook")
	if m.verifyWebhookFn == nil {
		return nil, fmt.Errorf("unexpected VerifyWebhook call")
	}
	return m.verifyWebhookFn(payload, signature)
}

// mockSubscriptionRepo keeps rows in memory and honors the version check the
// real repository enforces.
type mockSubscriptionRepo struct {
	rows []*db_models.Subscription

	patches      []map[string]interface{}
	conflictOnce bool // fail the first UpdateVersioned with a version conflict
	createErr    error
}

func (m *mockSubscriptionRepo) GetLatestByOrganization(ctx context.Context, orgID uuid.UUID) (*db_models.Subscription, error) {
	var latest *db_models.Subscription
	for _, row := range m.rows {
		if row.OrganizationID != orgID {
			continue
		}
		if latest == nil || row.CreatedAt > latest.CreatedAt {
			latest = row
		}
	}
	return latest, nil
}

func (m *mockSubscriptionRepo) GetByProviderSubID(ctx context.Context, providerSubID string) (*db_models.Subscription, error) {
	for _, row := range m.rows {
		if row.ProviderSubID == providerSubID {
			return row, nil
		}
	}
	return nil, nil
}

func (m *mockSubscriptionRepo) Create(ctx context.Context, sub *db_models.Subscription) error {
	if m.createErr != nil {
		return m.createErr
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	m.rows = append(m.rows, sub)
	return nil
}

func (m *mockSubscriptionRepo) UpdateVersioned(ctx context.Context, orgID uuid.UUID, providerSubID string, version int64, patch map[string]interface{}) error {
	if m.conflictOnce {
		m.conflictOnce = false
		return utils.ErrVersionConflict
	}
	for _, row := range m.rows {
		if row.OrganizationID != orgID || row.ProviderSubID != providerSubID {
			continue
		}
		if row.Version != version {
			return utils.ErrVersionConflict
		}
		m.patches = append(m.patches, patch)
		row.Version++
		applyPatch(row, patch)
		return nil
	}
	return utils.ErrVersionConflict
}

func (m *mockSubscriptionRepo) ListStale(ctx context.Context, updatedBefore time.Time, limit int) ([]db_models.Subscription, error) {
	var out []db_models.Subscription
	for _, row := range m.rows {
		if row.ProviderSubID == "" {
			continue
		}
		if row.UpdatedAt < updatedBefore.Unix() {
			out = append(out, *row)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockSubscriptionRepo) DeleteByOrganization(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) error {
	return nil
}

func (m *mockSubscriptionRepo) lastPatch() map[string]interface{} {
	if len(m.patches) == 0 {
		return nil
	}
	return m.patches[len(m.patches)-1]
}

// applyPatch mirrors the column writes the tests care about back onto the
// in-memory row.
func applyPatch(row *db_models.Subscription, patch map[string]interface{}) {
	if v, ok := patch["tier"].(string); ok {
		row.Tier = v
	}
	if v, ok := patch["status"].(string); ok {
		row.Status = v
	}
	if v, ok := patch["cancel_at_period_end"].(string); ok {
		row.CancelAtPeriodEnd = v
	}
	if v, ok := patch["provider_customer_id"].(string); ok {
		row.ProviderCustomerID = v
	}
}

type mockOrgRepo struct {
	memberships map[string]*db_models.Membership // key: orgID|accountID
	orgs        []db_models.Organization
}

func membershipKey(orgID, accountID uuid.UUID) string {
	return orgID.String() + "|" + accountID.String()
}

func (m *mockOrgRepo) withMember(orgID, accountID uuid.UUID, role string) *mockOrgRepo {
	if m.memberships == nil {
		m.memberships = make(map[string]*db_models.Membership)
	}
	m.memberships[membershipKey(orgID, accountID)] = &db_models.Membership{
		OrganizationID: orgID,
		AccountID:      accountID,
		Role:           role,
	}
	return m
}

func (m *mockOrgRepo) Create(ctx context.Context, org *db_models.Organization, ownerMembership *db_models.Membership, freeSub *db_models.Subscription) error {
	m.orgs = append(m.orgs, *org)
	return nil
}

func (m *mockOrgRepo) FindById(ctx context.Context, id uuid.UUID) (*db_models.Organization, error) {
	for i := range m.orgs {
		if m.orgs[i].ID == id {
			return &m.orgs[i], nil
		}
	}
	return nil, nil
}

func (m *mockOrgRepo) FindByIdWithMembers(ctx context.Context, id uuid.UUID) (*db_models.Organization, error) {
	return m.FindById(ctx, id)
}

func (m *mockOrgRepo) ListAll(ctx context.Context, page, pageSize int) ([]db_models.Organization, error) {
	return m.orgs, nil
}

func (m *mockOrgRepo) GetMembership(ctx context.Context, orgID, accountID uuid.UUID) (*db_models.Membership, error) {
	return m.memberships[membershipKey(orgID, accountID)], nil
}

func (m *mockOrgRepo) AddMembership(ctx context.Context, membership *db_models.Membership) error {
	if m.memberships == nil {
		m.memberships = make(map[string]*db_models.Membership)
	}
	m.memberships[membershipKey(membership.OrganizationID, membership.AccountID)] = membership
	return nil
}

func (m *mockOrgRepo) RemoveMembership(ctx context.Context, orgID, accountID uuid.UUID) error {
	delete(m.memberships, membershipKey(orgID, accountID))
	return nil
}

func (m *mockOrgRepo) DeleteCascade(ctx context.Context, orgID uuid.UUID) error {
	return nil
}

type mockAccountRepo struct {
	accounts map[string]*db_models.Account // key: id
}

func (m *mockAccountRepo) withAccount(account *db_models.Account) *mockAccountRepo {
	if m.accounts == nil {
		m.accounts = make(map[string]*db_models.Account)
	}
	m.accounts[account.ID.String()] = account
	return m
}

func (m *mockAccountRepo) Insert(ctx context.Context, account *db_models.Account) error {
	m.withAccount(account)
	return nil
}

func (m *mockAccountRepo) FindById(ctx context.Context, id string) (*db_models.Account, error) {
	return m.accounts[id], nil
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAccountRepo) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	for _, a := range m.accounts {
		if a.Email == email {
			a.PasswordHash = passwordHash
		}
	}
	return nil
}

type mockEventRepo struct {
	seen map[string]bool
}

func (m *mockEventRepo) RecordIfNew(ctx context.Context, event *db_models.WebhookEvent) (bool, error) {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[event.ProviderEventID] {
		return false, nil
	}
	m.seen[event.ProviderEventID] = true
	return true, nil
}
