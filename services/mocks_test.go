package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AOladipo/thriftcircle_backend/models"
	"github.com/AOladipo/thriftcircle_backend/repositories"
	"github.com/AOladipo/thriftcircle_backend/websocket"
)

var ErrMockStorage = errors.New("mock storage error")

// The mocks store values and hand out copies, so a service mutation only
// sticks once it goes through Update. That keeps the settle-then-credit
// ordering and the reload-under-lock behavior observable in tests.

// MockUserRepository is a map-backed UserRepository.
type MockUserRepository struct {
	mu           sync.Mutex
	Users        map[primitive.ObjectID]models.User
	UpdateCount  int
	FailOnUpdate bool
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[primitive.ObjectID]models.User)}
}

// Put seeds a user directly, bypassing Insert bookkeeping.
func (m *MockUserRepository) Put(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.ID] = user
}

// Get returns the stored state of a user for assertions.
func (m *MockUserRepository) Get(id primitive.ObjectID) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Users[id]
}

func (m *MockUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *MockUserRepository) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Users {
		if user.ReferralCode == code {
			u := user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *MockUserRepository) FindByReferredBy(ctx context.Context, code string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []models.User{}
	for _, user := range m.Users {
		if user.ReferredBy == code {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *MockUserRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Users {
		if user.Email == email || user.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Users {
		if user.ReferralCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) Insert(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.Users[user.ID] = *user
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCount++
	if m.FailOnUpdate {
		return ErrMockStorage
	}
	if _, ok := m.Users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.Users[user.ID] = *user
	return nil
}

func (m *MockUserRepository) UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.FCMToken = token
	m.Users[id] = user
	return nil
}

func (m *MockUserRepository) SetVerified(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.IsVerified = true
	m.Users[id] = user
	return nil
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []models.User{}
	for _, user := range m.Users {
		users = append(users, user)
	}
	return users, nil
}

func (m *MockUserRepository) FindAdmins(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []models.User{}
	for _, user := range m.Users {
		if user.IsAdmin {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *MockUserRepository) FindMembers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := []models.User{}
	for _, user := range m.Users {
		if !user.IsAdmin {
			users = append(users, user)
		}
	}
	return users, nil
}

// MockTransactionRepository is a map-backed TransactionRepository.
type MockTransactionRepository struct {
	mu           sync.Mutex
	Transactions map[primitive.ObjectID]models.Transaction
	FailOnUpdate bool
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{Transactions: make(map[primitive.ObjectID]models.Transaction)}
}

func (m *MockTransactionRepository) Put(txn models.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transactions[txn.ID] = txn
}

func (m *MockTransactionRepository) Get(id primitive.ObjectID) models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Transactions[id]
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.Transactions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &txn, nil
}

func (m *MockTransactionRepository) Insert(ctx context.Context, txn *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn.ID.IsZero() {
		txn.ID = primitive.NewObjectID()
	}
	m.Transactions[txn.ID] = *txn
	return nil
}

func (m *MockTransactionRepository) Update(ctx context.Context, txn *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOnUpdate {
		return ErrMockStorage
	}
	if _, ok := m.Transactions[txn.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.Transactions[txn.ID] = *txn
	return nil
}

func (m *MockTransactionRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txns := []models.Transaction{}
	for _, txn := range m.Transactions {
		if txn.UserID == userID && !txn.Archived {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

func (m *MockTransactionRepository) FindPending(ctx context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txns := []models.Transaction{}
	for _, txn := range m.Transactions {
		if txn.Status == models.TransactionPending {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

func (m *MockTransactionRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txns := []models.Transaction{}
	for _, txn := range m.Transactions {
		txns = append(txns, txn)
	}
	return txns, nil
}

func (m *MockTransactionRepository) FindCompletedByUserIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[primitive.ObjectID]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	txns := []models.Transaction{}
	for _, txn := range m.Transactions {
		if wanted[txn.UserID] && txn.Status == models.TransactionCompleted {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

func (m *MockTransactionRepository) ArchiveCompletedForUser(ctx context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, txn := range m.Transactions {
		if txn.UserID == userID && txn.Status == models.TransactionCompleted && !txn.Archived {
			txn.Archived = true
			m.Transactions[id] = txn
		}
	}
	return nil
}

// MockWithdrawalRepository is a map-backed WithdrawalRepository.
type MockWithdrawalRepository struct {
	mu           sync.Mutex
	Withdrawals  map[primitive.ObjectID]models.Withdrawal
	FailOnUpdate bool
}

func NewMockWithdrawalRepository() *MockWithdrawalRepository {
	return &MockWithdrawalRepository{Withdrawals: make(map[primitive.ObjectID]models.Withdrawal)}
}

func (m *MockWithdrawalRepository) Put(w models.Withdrawal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Withdrawals[w.ID] = w
}

func (m *MockWithdrawalRepository) Get(id primitive.ObjectID) models.Withdrawal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Withdrawals[id]
}

func (m *MockWithdrawalRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.Withdrawals[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &w, nil
}

func (m *MockWithdrawalRepository) Insert(ctx context.Context, w *models.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	m.Withdrawals[w.ID] = *w
	return nil
}

func (m *MockWithdrawalRepository) Update(ctx context.Context, w *models.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailOnUpdate {
		return ErrMockStorage
	}
	if _, ok := m.Withdrawals[w.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.Withdrawals[w.ID] = *w
	return nil
}

func (m *MockWithdrawalRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	withdrawals := []models.Withdrawal{}
	for _, w := range m.Withdrawals {
		if w.UserID == userID {
			withdrawals = append(withdrawals, w)
		}
	}
	return withdrawals, nil
}

func (m *MockWithdrawalRepository) FindPendingByUser(ctx context.Context, userID primitive.ObjectID) (*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.Withdrawals {
		if w.UserID == userID && w.Status == models.WithdrawalPending {
			found := w
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *MockWithdrawalRepository) FindAll(ctx context.Context) ([]models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	withdrawals := []models.Withdrawal{}
	for _, w := range m.Withdrawals {
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, nil
}

// MockNotificationRepository records inserted notifications in order.
type MockNotificationRepository struct {
	mu       sync.Mutex
	Inserted []models.Notification
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	m.Inserted = append(m.Inserted, *n)
	return nil
}

func (m *MockNotificationRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notifications := []models.Notification{}
	for _, n := range m.Inserted {
		if n.UserID == userID || n.UserID == primitive.NilObjectID {
			notifications = append(notifications, n)
		}
	}
	return notifications, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.Inserted {
		if n.ID == id && n.UserID == userID {
			m.Inserted[i].IsRead = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.Inserted {
		if n.UserID == userID {
			m.Inserted[i].IsRead = true
		}
	}
	return nil
}

// CountForUser tallies stored notifications of one type for one user.
func (m *MockNotificationRepository) CountForUser(userID primitive.ObjectID, notifType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.Inserted {
		if n.UserID == userID && n.Type == notifType {
			count++
		}
	}
	return count
}

// MockConfigRepository serves a single in-memory settings document.
type MockConfigRepository struct {
	mu     sync.Mutex
	Config *models.Config
}

func NewMockConfigRepository() *MockConfigRepository {
	return &MockConfigRepository{Config: models.DefaultConfig()}
}

func (m *MockConfigRepository) Get(ctx context.Context) (*models.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := *m.Config
	return &cfg, nil
}

func (m *MockConfigRepository) Update(ctx context.Context, cfg *models.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *cfg
	m.Config = &c
	return nil
}

// testEnv wires the services over one set of in-memory stores, the same
// shape main assembles over Mongo.
type testEnv struct {
	users         *MockUserRepository
	transactions  *MockTransactionRepository
	withdrawals   *MockWithdrawalRepository
	notifications *MockNotificationRepository
	configs       *MockConfigRepository

	payments  *PaymentService
	payouts   *WithdrawalService
	reminders *ReminderService
}

func newTestEnv() *testEnv {
	users := NewMockUserRepository()
	transactions := NewMockTransactionRepository()
	withdrawals := NewMockWithdrawalRepository()
	notifications := NewMockNotificationRepository()
	configs := NewMockConfigRepository()

	locker := NewUserLocker()
	notifier := NewNotificationService(users, transactions, withdrawals, notifications, websocket.NewHub())

	return &testEnv{
		users:         users,
		transactions:  transactions,
		withdrawals:   withdrawals,
		notifications: notifications,
		configs:       configs,
		payments:      NewPaymentService(users, transactions, configs, notifier, locker),
		payouts:       NewWithdrawalService(users, transactions, withdrawals, configs, notifier, locker),
		reminders:     NewReminderService(users, configs, notifier, locker),
	}
}

// seedMember stores a first-cycle member and returns it.
func (env *testEnv) seedMember(fullName, email string) models.User {
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		Email:        email,
		Phone:        "+2348012345678",
		ReferralCode: "TEST-ABC234",
		IsVerified:   true,
		CycleNumber:  1,
		CreatedAt:    time.Now(),
	}
	env.users.Put(user)
	return user
}
