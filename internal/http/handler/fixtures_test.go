package handler

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/brightclass/backoffice/internal/config"
	"github.com/brightclass/backoffice/internal/domain"
	"github.com/brightclass/backoffice/internal/repository"
	"github.com/brightclass/backoffice/internal/security"
	"github.com/brightclass/backoffice/internal/service"
)

var handlerEpoch = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, byID: make(map[uint]*domain.User)}
}

func (m *memUserRepo) FindByID(id uint) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memUserRepo) FindByUsername(username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) Create(user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = m.nextID
	m.nextID++
	copied := *user
	m.byID[user.ID] = &copied
	return nil
}

func (m *memUserRepo) Update(user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.byID[user.ID] = &copied
	return nil
}

func (m *memUserRepo) UpdateLockoutState(user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.FailedLoginAttempts = user.FailedLoginAttempts
	stored.LastFailedLoginAt = user.LastFailedLoginAt
	stored.LastFailedLoginIP = user.LastFailedLoginIP
	return nil
}

func (m *memUserRepo) TouchLastLogin(userID uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stamp := at
	stored.LastLoginAt = &stamp
	return nil
}

func (m *memUserRepo) List() ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUserRepo) ListBySchool(schoolID uint) ([]domain.User, error) {
	all, _ := m.List()
	out := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.SchoolID == schoolID {
			out = append(out, u)
		}
	}
	return out, nil
}

type memMfaSettingsRepo struct {
	mu       sync.Mutex
	byUserID map[uint]*domain.MfaSettings
}

func newMemMfaSettingsRepo() *memMfaSettingsRepo {
	return &memMfaSettingsRepo{byUserID: make(map[uint]*domain.MfaSettings)}
}

func (m *memMfaSettingsRepo) FindByUserID(userID uint) (*domain.MfaSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byUserID[userID]
	if !ok {
		return &domain.MfaSettings{UserID: userID, State: domain.MfaDisabled}, nil
	}
	copied := *s
	return &copied, nil
}

func (m *memMfaSettingsRepo) Save(settings *domain.MfaSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *settings
	m.byUserID[settings.UserID] = &copied
	return nil
}

type memNonceRepo struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*domain.MfaLoginNonce
}

func newMemNonceRepo() *memNonceRepo {
	return &memNonceRepo{nextID: 1, byID: make(map[uint]*domain.MfaLoginNonce)}
}

func (m *memNonceRepo) Create(nonce *domain.MfaLoginNonce) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	nonce.ID = m.nextID
	m.nextID++
	copied := *nonce
	m.byID[nonce.ID] = &copied
	return nil
}

func (m *memNonceRepo) FindByNonce(nonce string) (*domain.MfaLoginNonce, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.byID {
		if n.Nonce == nonce {
			copied := *n
			return &copied, nil
		}
	}
	return nil, repository.ErrNonceNotFound
}

func (m *memNonceRepo) Consume(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNonceNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memNonceRepo) DeleteByUserID(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, n := range m.byID {
		if n.UserID == userID {
			delete(m.byID, id)
		}
	}
	return nil
}

func (m *memNonceRepo) DeleteExpired(before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, n := range m.byID {
		if n.ExpiresAt.Before(before) {
			delete(m.byID, id)
			deleted++
		}
	}
	return deleted, nil
}

type handlerFixture struct {
	cfg    *config.Config
	clock  *fakeClock
	users  *memUserRepo
	totp   *security.TOTP
	hasher *security.PasswordHasher
	codec  *security.TokenCodec

	mfaSvc  *service.MfaService
	authSvc *service.AuthService

	auth *AuthHandler
	user *UserHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	cfg := &config.Config{
		TokenIssuer:          "test-issuer",
		TokenSigningKey:      strings.Repeat("s", 48),
		TokenEncryptionKey:   strings.Repeat("e", 32),
		TokenSigningAlg:      config.SigningAlgHS256,
		TokenEncryptionAlg:   config.EncryptionAlgA256GCM,
		AccessTokenTTL:       30 * time.Minute,
		RefreshTokenTTL:      168 * time.Hour,
		OTPNonceTTL:          5 * time.Minute,
		LockoutThreshold:     5,
		LockoutDuration:      15 * time.Minute,
		LoginNotifyThreshold: 3,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &fakeClock{now: handlerEpoch}
	users := newMemUserRepo()
	settings := newMemMfaSettingsRepo()
	nonces := newMemNonceRepo()
	hasher := security.NewPasswordHasher()
	totp := security.NewTOTP("BrightClass")
	codec, err := security.NewTokenCodec(cfg)
	if err != nil {
		t.Fatalf("new token codec: %v", err)
	}
	notifier := service.NewDevNotifier(logger)
	lockout := service.NewLockoutPolicy(users, notifier, logger, cfg.LockoutThreshold, cfg.LockoutDuration, cfg.LoginNotifyThreshold)
	mfaSvc := service.NewMfaService(settings, nonces, users, totp, notifier, clock, logger, cfg.OTPNonceTTL)
	authSvc := service.NewAuthService(users, hasher, lockout, mfaSvc, codec, clock, logger, cfg)

	return &handlerFixture{
		cfg:     cfg,
		clock:   clock,
		users:   users,
		totp:    totp,
		hasher:  hasher,
		codec:   codec,
		mfaSvc:  mfaSvc,
		authSvc: authSvc,
		auth:    NewAuthHandler(authSvc, mfaSvc, users),
		user:    NewUserHandler(users, mfaSvc, service.NewPermissionEvaluator(logger)),
	}
}

func (fx *handlerFixture) seedUser(t *testing.T, username, password string) *domain.User {
	t.Helper()
	hash, err := fx.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		SchoolID:     1,
		Username:     username,
		Name:         "Test User",
		Role:         service.RoleStaff,
		PasswordHash: hash,
	}
	if err := fx.users.Create(u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (fx *handlerFixture) enableMfa(t *testing.T, user *domain.User) (secret, recovery string) {
	t.Helper()
	start, err := fx.mfaSvc.BeginEnrollment(context.Background(), user)
	if err != nil {
		t.Fatalf("begin enrollment: %v", err)
	}
	code, err := fx.totp.CodeAt(start.SecretBase32, fx.clock.Now())
	if err != nil {
		t.Fatalf("code at: %v", err)
	}
	if err := fx.mfaSvc.ConfirmEnrollment(context.Background(), user.ID, code); err != nil {
		t.Fatalf("confirm enrollment: %v", err)
	}
	return start.SecretBase32, start.RecoveryCode
}
