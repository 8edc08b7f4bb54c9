package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"employee-directory/backend/internal/platform/rbac"
	refreshdomain "employee-directory/backend/internal/refreshtoken/domain"
	"employee-directory/backend/internal/security"
	userdomain "employee-directory/backend/internal/user/domain"
)

// memUserRepo is an in-memory UserRepo.
type memUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*userdomain.User
	createErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: make(map[string]*userdomain.User)}
}

func clone(u *userdomain.User) *userdomain.User {
	c := *u
	c.Roles = append([]rbac.Role(nil), u.Roles...)
	return &c
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		return clone(u), nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByUserName(_ context.Context, userName string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userName = userdomain.NormalizeUserName(userName)
	for _, u := range r.byID {
		if u.UserName == userName {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(_ context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[u.ID] = clone(u)
	return nil
}

func (r *memUserRepo) Update(_ context.Context, u *userdomain.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.ID]
	if !ok {
		return false, nil
	}
	next := clone(u)
	next.Roles = cur.Roles
	next.PasswordHash = cur.PasswordHash
	next.AccessFailedCount = cur.AccessFailedCount
	r.byID[u.ID] = next
	return true, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *memUserRepo) SetRoles(_ context.Context, userID string, roles []rbac.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[userID]; ok {
		u.Roles = append([]rbac.Role(nil), roles...)
	}
	return nil
}

func (r *memUserRepo) SetPasswordHash(_ context.Context, userID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[userID]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (r *memUserRepo) IncrementAccessFailed(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return 0, nil
	}
	u.AccessFailedCount++
	return u.AccessFailedCount, nil
}

func (r *memUserRepo) ResetAccessFailed(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[userID]; ok {
		u.AccessFailedCount = 0
	}
	return nil
}

func (r *memUserRepo) List(_ context.Context) ([]userdomain.UserWithManager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []userdomain.UserWithManager
	for _, u := range r.byID {
		row := userdomain.UserWithManager{User: *clone(u)}
		if u.ManagerID != nil {
			if m, ok := r.byID[*u.ManagerID]; ok {
				row.ManagerName = m.FirstName
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, nil
}

// memRefreshRepo is an in-memory RefreshTokenRepo keyed by user id.
type memRefreshRepo struct {
	mu        sync.Mutex
	byUser    map[string]*refreshdomain.RefreshToken
	deleteErr error
	// beforeConsume runs inside Consume before the compare, to simulate a concurrent swap.
	beforeConsume func()
}

func newMemRefreshRepo() *memRefreshRepo {
	return &memRefreshRepo{byUser: make(map[string]*refreshdomain.RefreshToken)}
}

func (r *memRefreshRepo) GetByUserID(_ context.Context, userID string) (*refreshdomain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byUser[userID]; ok {
		c := *t
		return &c, nil
	}
	return nil, nil
}

func (r *memRefreshRepo) Replace(_ context.Context, t *refreshdomain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *t
	r.byUser[t.UserID] = &c
	return nil
}

func (r *memRefreshRepo) Consume(_ context.Context, userID, tokenHash string) (bool, error) {
	if r.beforeConsume != nil {
		r.beforeConsume()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byUser[userID]
	if !ok || t.TokenHash != tokenHash {
		return false, nil
	}
	delete(r.byUser, userID)
	return true, nil
}

func (r *memRefreshRepo) DeleteByUserID(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return false, r.deleteErr
	}
	if _, ok := r.byUser[userID]; !ok {
		return false, nil
	}
	delete(r.byUser, userID)
	return true, nil
}

func (r *memRefreshRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

// fakeSession records delivered and cleared values.
type fakeSession struct {
	mu        sync.Mutex
	principal string
	delivered map[string]string
	ttls      map[string]time.Duration
	cleared   []string
	clearErr  error
}

func newFakeSession(principal string) *fakeSession {
	return &fakeSession{principal: principal, delivered: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *fakeSession) CurrentPrincipalID(context.Context) string { return s.principal }

func (s *fakeSession) Deliver(_ context.Context, name, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered[name] = value
	s.ttls[name] = ttl
	return nil
}

func (s *fakeSession) Clear(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	s.cleared = append(s.cleared, name)
	return nil
}

type auditEvent struct {
	actorID, targetID, action, metadata string
}

type fakeAudit struct {
	mu     sync.Mutex
	events []auditEvent
}

func (a *fakeAudit) LogEvent(_ context.Context, actorID, targetID, action, metadata string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, auditEvent{actorID, targetID, action, metadata})
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.events))
	for i, e := range a.events {
		out[i] = e.action
	}
	return out
}

type testEnv struct {
	users   *memUserRepo
	refresh *memRefreshRepo
	session *fakeSession
	audit   *fakeAudit
	cipher  *security.Cipher
	hasher  *security.Hasher
	tokens  *security.TokenProvider
	resets  *security.ResetTokens
	auth    *AuthService
	svc     *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	cipher, err := security.NewTestCipher()
	if err != nil {
		t.Fatalf("NewTestCipher: %v", err)
	}
	resets, err := security.NewResetTokens([]byte("reset-secret"), time.Hour)
	if err != nil {
		t.Fatalf("NewResetTokens: %v", err)
	}
	env := &testEnv{
		users:   newMemUserRepo(),
		refresh: newMemRefreshRepo(),
		session: newFakeSession(""),
		audit:   &fakeAudit{},
		cipher:  cipher,
		hasher:  security.NewHasher(bcrypt.MinCost),
		tokens:  tokens,
		resets:  resets,
	}
	env.auth = NewAuthService(env.users, env.refresh, tokens, nil)
	env.svc = NewUserService(UserServiceDeps{
		Users:       env.users,
		Auth:        env.auth,
		Cipher:      cipher,
		Hasher:      env.hasher,
		ResetTokens: resets,
		Session:     env.session,
		Audit:       env.audit,
	})
	return env
}

// seedUser stores a user with the given role and password and returns it.
func (e *testEnv) seedUser(t *testing.T, id, userName, firstName string, role rbac.Role, password string) *userdomain.User {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	u := &userdomain.User{
		ID: id, UserName: userName, Email: userName, PasswordHash: hash,
		FirstName: firstName, LastName: "Test", DocNumber: "doc-" + id,
		Roles: []rbac.Role{role}, EmailConfirmed: true,
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return u
}

func (e *testEnv) encrypt(t *testing.T, plain string) string {
	t.Helper()
	enc, err := e.cipher.Encrypt(plain)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	return enc
}

func wantSentinel(t *testing.T, err, sentinel error) {
	t.Helper()
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want %v", err, sentinel)
	}
	var be *BusinessError
	if !errors.As(err, &be) {
		t.Fatalf("error %v is not a *BusinessError", err)
	}
}
