package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/brightclass/backoffice/internal/config"
	"github.com/brightclass/backoffice/internal/domain"
	"github.com/brightclass/backoffice/internal/repository"
	"github.com/brightclass/backoffice/internal/repository/mocks"
	"github.com/brightclass/backoffice/internal/security"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

// fixtureEpoch is the frozen wall clock all service tests start from.
var fixtureEpoch = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func newFakeClock(at time.Time) *fakeClock { return &fakeClock{now: at} }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type tNop struct{}

func (tNop) Errorf(string, ...any) {}
func (tNop) Fatalf(string, ...any) {}
func (tNop) Helper()               {}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type userRepoState struct {
	nextID uint
	byID   map[uint]*domain.User
	byName map[string]uint

	updateLockoutErr error
	touchErr         error
}

func newUserRepoState() *userRepoState {
	return &userRepoState{nextID: 1, byID: map[uint]*domain.User{}, byName: map[string]uint{}}
}

func (r *userRepoState) FindByID(id uint) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *u
	return &copy, nil
}

func (r *userRepoState) FindByUsername(username string) (*domain.User, error) {
	id, ok := r.byName[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(id)
}

func (r *userRepoState) Create(u *domain.User) error {
	u.ID = r.nextID
	r.nextID++
	stored := *u
	r.byID[u.ID] = &stored
	r.byName[u.Username] = u.ID
	return nil
}

func (r *userRepoState) Update(u *domain.User) error {
	stored := *u
	r.byID[u.ID] = &stored
	return nil
}

func (r *userRepoState) UpdateLockoutState(u *domain.User) error {
	if r.updateLockoutErr != nil {
		return r.updateLockoutErr
	}
	stored, ok := r.byID[u.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.FailedLoginAttempts = u.FailedLoginAttempts
	stored.LastFailedLoginAt = u.LastFailedLoginAt
	stored.LastFailedLoginIP = u.LastFailedLoginIP
	return nil
}

func (r *userRepoState) TouchLastLogin(userID uint, at time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	stored, ok := r.byID[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stamp := at
	stored.LastLoginAt = &stamp
	return nil
}

func (r *userRepoState) List() ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (r *userRepoState) ListBySchool(schoolID uint) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.byID {
		if u.SchoolID == schoolID {
			out = append(out, *u)
		}
	}
	return out, nil
}

type mfaSettingsState struct {
	nextID   uint
	byUserID map[uint]*domain.MfaSettings

	saveErr error
}

func newMfaSettingsState() *mfaSettingsState {
	return &mfaSettingsState{nextID: 1, byUserID: map[uint]*domain.MfaSettings{}}
}

func (r *mfaSettingsState) FindByUserID(userID uint) (*domain.MfaSettings, error) {
	s, ok := r.byUserID[userID]
	if !ok {
		return &domain.MfaSettings{UserID: userID, State: domain.MfaDisabled}, nil
	}
	copy := *s
	return &copy, nil
}

func (r *mfaSettingsState) Save(s *domain.MfaSettings) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	if s.ID == 0 {
		s.ID = r.nextID
		r.nextID++
	}
	stored := *s
	r.byUserID[s.UserID] = &stored
	return nil
}

type nonceRepoState struct {
	nextID uint
	byID   map[uint]*domain.MfaLoginNonce
}

func newNonceRepoState() *nonceRepoState {
	return &nonceRepoState{nextID: 1, byID: map[uint]*domain.MfaLoginNonce{}}
}

func (r *nonceRepoState) Create(n *domain.MfaLoginNonce) error {
	n.ID = r.nextID
	r.nextID++
	stored := *n
	r.byID[n.ID] = &stored
	return nil
}

func (r *nonceRepoState) FindByNonce(nonce string) (*domain.MfaLoginNonce, error) {
	for _, n := range r.byID {
		if n.Nonce == nonce {
			copy := *n
			return &copy, nil
		}
	}
	return nil, repository.ErrNonceNotFound
}

func (r *nonceRepoState) Consume(id uint) error {
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNonceNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *nonceRepoState) DeleteByUserID(userID uint) error {
	for id, n := range r.byID {
		if n.UserID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *nonceRepoState) DeleteExpired(before time.Time) (int64, error) {
	var removed int64
	for id, n := range r.byID {
		if !n.ExpiresAt.After(before) {
			delete(r.byID, id)
			removed++
		}
	}
	return removed, nil
}

func (r *nonceRepoState) count() int { return len(r.byID) }

type sentNotification struct {
	userID  uint
	kind    string
	details map[string]string
}

type notifierState struct {
	sent []sentNotification
	err  error
}

func (n *notifierState) Notify(_ context.Context, userID uint, kind string, details map[string]string) error {
	n.sent = append(n.sent, sentNotification{userID: userID, kind: kind, details: details})
	return n.err
}

func (n *notifierState) kinds() []string {
	out := make([]string, len(n.sent))
	for i, s := range n.sent {
		out[i] = s.kind
	}
	return out
}

func (n *notifierState) has(kind string) bool {
	for _, s := range n.sent {
		if s.kind == kind {
			return true
		}
	}
	return false
}

type authServiceFixture struct {
	cfg      *config.Config
	clock    *fakeClock
	userRepo *userRepoState
	settings *mfaSettingsState
	nonces   *nonceRepoState
	notifier *notifierState
	hasher   *security.PasswordHasher
	totp     *security.TOTP
	codec    *security.TokenCodec
	lockout  *LockoutPolicy
	mfa      *MfaService
	auth     *AuthService
	verifier *SessionVerifier
}

func newAuthServiceFixture() *authServiceFixture {
	cfg := &config.Config{
		TokenIssuer:          "brightclass-backoffice",
		TokenSigningKey:      strings.Repeat("s", 48),
		TokenEncryptionKey:   strings.Repeat("e", 32),
		TokenSigningAlg:      config.SigningAlgHS256,
		TokenEncryptionAlg:   config.EncryptionAlgA256GCM,
		AccessTokenTTL:       30 * time.Minute,
		RefreshTokenTTL:      168 * time.Hour,
		OTPIssuer:            "BrightClass",
		OTPNonceTTL:          5 * time.Minute,
		LockoutThreshold:     5,
		LockoutDuration:      15 * time.Minute,
		LoginNotifyThreshold: 3,
	}

	userRepo := newUserRepoState()
	settings := newMfaSettingsState()
	nonces := newNonceRepoState()
	notifier := &notifierState{}
	logger := testLogger()

	ctrl := gomock.NewController(tNop{})
	userRepoMock := mocks.NewMockUserRepository(ctrl)
	userRepoMock.EXPECT().FindByID(gomock.Any()).AnyTimes().DoAndReturn(userRepo.FindByID)
	userRepoMock.EXPECT().FindByUsername(gomock.Any()).AnyTimes().DoAndReturn(userRepo.FindByUsername)
	userRepoMock.EXPECT().Create(gomock.Any()).AnyTimes().DoAndReturn(userRepo.Create)
	userRepoMock.EXPECT().Update(gomock.Any()).AnyTimes().DoAndReturn(userRepo.Update)
	userRepoMock.EXPECT().UpdateLockoutState(gomock.Any()).AnyTimes().DoAndReturn(userRepo.UpdateLockoutState)
	userRepoMock.EXPECT().TouchLastLogin(gomock.Any(), gomock.Any()).AnyTimes().DoAndReturn(userRepo.TouchLastLogin)
	userRepoMock.EXPECT().List().AnyTimes().DoAndReturn(userRepo.List)
	userRepoMock.EXPECT().ListBySchool(gomock.Any()).AnyTimes().DoAndReturn(userRepo.ListBySchool)

	settingsMock := mocks.NewMockMfaSettingsRepository(ctrl)
	settingsMock.EXPECT().FindByUserID(gomock.Any()).AnyTimes().DoAndReturn(settings.FindByUserID)
	settingsMock.EXPECT().Save(gomock.Any()).AnyTimes().DoAndReturn(settings.Save)

	nonceMock := mocks.NewMockMfaLoginNonceRepository(ctrl)
	nonceMock.EXPECT().Create(gomock.Any()).AnyTimes().DoAndReturn(nonces.Create)
	nonceMock.EXPECT().FindByNonce(gomock.Any()).AnyTimes().DoAndReturn(nonces.FindByNonce)
	nonceMock.EXPECT().Consume(gomock.Any()).AnyTimes().DoAndReturn(nonces.Consume)
	nonceMock.EXPECT().DeleteByUserID(gomock.Any()).AnyTimes().DoAndReturn(nonces.DeleteByUserID)
	nonceMock.EXPECT().DeleteExpired(gomock.Any()).AnyTimes().DoAndReturn(nonces.DeleteExpired)

	clock := newFakeClock(fixtureEpoch)
	hasher := security.NewPasswordHasher()
	totp := security.NewTOTP(cfg.OTPIssuer)
	codec, err := security.NewTokenCodec(cfg)
	if err != nil {
		panic(err)
	}

	lockout := NewLockoutPolicy(userRepoMock, notifier, logger, cfg.LockoutThreshold, cfg.LockoutDuration, cfg.LoginNotifyThreshold)
	mfa := NewMfaService(settingsMock, nonceMock, userRepoMock, totp, notifier, clock, logger, cfg.OTPNonceTTL)
	auth := NewAuthService(userRepoMock, hasher, lockout, mfa, codec, clock, logger, cfg)

	return &authServiceFixture{
		cfg:      cfg,
		clock:    clock,
		userRepo: userRepo,
		settings: settings,
		nonces:   nonces,
		notifier: notifier,
		hasher:   hasher,
		totp:     totp,
		codec:    codec,
		lockout:  lockout,
		mfa:      mfa,
		auth:     auth,
		verifier: NewSessionVerifier(codec),
	}
}

func (fx *authServiceFixture) seedUser(username, password string) *domain.User {
	hash, err := fx.hasher.Hash(password)
	if err != nil {
		panic(err)
	}
	u := &domain.User{
		SchoolID:     1,
		Username:     username,
		Email:        username + "@example.edu",
		Name:         "Test User",
		Role:         RoleStaff,
		PasswordHash: hash,
	}
	if err := fx.userRepo.Create(u); err != nil {
		panic(err)
	}
	return u
}

// enableMfa runs the full enrollment flow for a seeded user and returns the
// secret and recovery code.
func (fx *authServiceFixture) enableMfa(user *domain.User) (secret, recovery string) {
	ctx := context.Background()
	start, err := fx.mfa.BeginEnrollment(ctx, user)
	if err != nil {
		panic(err)
	}
	code, err := fx.totp.CodeAt(start.SecretBase32, fx.clock.Now())
	if err != nil {
		panic(err)
	}
	if err := fx.mfa.ConfirmEnrollment(ctx, user.ID, code); err != nil {
		panic(err)
	}
	return start.SecretBase32, start.RecoveryCode
}
