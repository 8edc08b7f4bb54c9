package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"employee-directory/backend/internal/logging"
	"employee-directory/backend/internal/platform/rbac"
	"employee-directory/backend/internal/security"
	userdomain "employee-directory/backend/internal/user/domain"
)

// Audit actions recorded by UserService.
const (
	ActionSignIn       = "sign_in"
	ActionSignInFailed = "sign_in_failed"
	ActionSignUp       = "sign_up"
	ActionUpdateUser   = "update_user"
	ActionDeleteUser   = "delete_user"
	ActionSignOut      = "sign_out"
)

// UserRepo is the user repository needed by the user service.
type UserRepo interface {
	UserLookup
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	Update(ctx context.Context, u *userdomain.User) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	SetRoles(ctx context.Context, userID string, roles []rbac.Role) error
	SetPasswordHash(ctx context.Context, userID, hash string) error
	IncrementAccessFailed(ctx context.Context, userID string) (int, error)
	ResetAccessFailed(ctx context.Context, userID string) error
	List(ctx context.Context) ([]userdomain.UserWithManager, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// Decrypter turns an "<ivHex>:<base64>" payload into plaintext.
type Decrypter interface {
	Decrypt(payload string) (string, error)
}

// AuditLogger records account events. Implementations must not fail the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, actorID, targetID, action, metadata string)
}

// Credentials carries the user name and the password as received from the client.
// The password may be in the encrypted wire format.
type Credentials struct {
	UserName string
	Password string
}

// CreateUser is the profile of a new account.
type CreateUser struct {
	FirstName   string
	LastName    string
	Email       string
	DocNumber   string
	PhoneNumber string
	ManagerID   string
	Role        string
}

// UpdateUser is the replacement profile of an existing account. An empty Password keeps the current one.
type UpdateUser struct {
	FirstName   string
	LastName    string
	Email       string
	DocNumber   string
	PhoneNumber string
	ManagerID   string
	Role        string
	Password    string
}

// UserServiceDeps groups the collaborators of UserService.
type UserServiceDeps struct {
	Users       UserRepo
	Auth        *AuthService
	Cipher      Decrypter
	Hasher      PasswordHasher
	ResetTokens *security.ResetTokens
	Session     Session
	Audit       AuditLogger
	Log         logrus.FieldLogger
	// DeliveryTTL is the lifetime of delivered session values; DefaultDeliveryTTL when zero.
	DeliveryTTL time.Duration
}

// UserService orchestrates sign-in, sign-up, account changes and sign-out.
type UserService struct {
	users       UserRepo
	auth        *AuthService
	cipher      Decrypter
	hasher      PasswordHasher
	resets      *security.ResetTokens
	session     Session
	audit       AuditLogger
	log         logrus.FieldLogger
	deliveryTTL time.Duration
	signins     metric.Int64Counter
	now         func() time.Time
}

// NewUserService returns a UserService with the given dependencies.
func NewUserService(d UserServiceDeps) *UserService {
	if d.Log == nil {
		d.Log = logging.Discard()
	}
	if d.DeliveryTTL <= 0 {
		d.DeliveryTTL = DefaultDeliveryTTL
	}
	signins, _ := otel.Meter(meterName).Int64Counter("auth.signin.attempts",
		metric.WithDescription("Sign-in attempts by outcome"))
	return &UserService{
		users:       d.Users,
		auth:        d.Auth,
		cipher:      d.Cipher,
		hasher:      d.Hasher,
		resets:      d.ResetTokens,
		session:     d.Session,
		audit:       d.Audit,
		log:         d.Log,
		deliveryTTL: d.DeliveryTTL,
		signins:     signins,
		now:         time.Now,
	}
}

// SignIn verifies the encrypted password of userName, issues tokens and delivers them to the session.
func (s *UserService) SignIn(ctx context.Context, userName, encryptedPassword string) (*Token, error) {
	log := logging.FromContext(ctx, s.log)
	u, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.countSignIn(ctx, "user_not_found")
		return nil, businessError(ctx, "user not found", ErrNotFound)
	}
	if u.LockoutEnabled {
		s.countSignIn(ctx, "locked")
		s.logAudit(ctx, u.ID, u.ID, ActionSignInFailed, "locked")
		return nil, businessError(ctx, "user is blocked", ErrUserLocked)
	}
	password, err := s.cipher.Decrypt(encryptedPassword)
	if err != nil {
		s.countSignIn(ctx, "decrypt_failed")
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		if _, err := s.users.IncrementAccessFailed(ctx, u.ID); err != nil {
			log.WithError(err).WithField("user_id", u.ID).Error("failed to record failed access")
		}
		s.countSignIn(ctx, "invalid_password")
		s.logAudit(ctx, u.ID, u.ID, ActionSignInFailed, "invalid_password")
		return nil, businessError(ctx, "invalid password", ErrInvalidPassword)
	}
	if u.AccessFailedCount > 0 {
		if err := s.users.ResetAccessFailed(ctx, u.ID); err != nil {
			return nil, err
		}
	}

	tok, err := s.auth.GenerateToken(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := s.deliver(ctx, tok); err != nil {
		return nil, err
	}
	s.countSignIn(ctx, "success")
	s.logAudit(ctx, u.ID, u.ID, ActionSignIn, "")
	log.WithFields(logrus.Fields{"user_id": u.ID, "role": tok.Role}).Info("user signed in")
	return tok, nil
}

// Refresh swaps refreshToken for a new pair and delivers it to the session.
func (s *UserService) Refresh(ctx context.Context, userName, refreshToken string) (*Token, error) {
	tok, err := s.auth.RefreshSwap(ctx, userName, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.deliver(ctx, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

// SignUp creates an account with the single role in.Role and returns a URL-safe
// e-mail confirmation token. Callers check CanCreateUser first.
func (s *UserService) SignUp(ctx context.Context, creds Credentials, in CreateUser) (string, error) {
	log := logging.FromContext(ctx, s.log)
	role, ok := rbac.ParseRole(in.Role)
	if !ok {
		return "", businessError(ctx, "invalid role: "+in.Role, ErrInvalidRole)
	}
	userName := userdomain.NormalizeUserName(creds.UserName)
	if userName == "" {
		userName = userdomain.NormalizeUserName(in.Email)
	}
	existing, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", businessError(ctx, "user already exists", ErrUserExists)
	}
	password, err := s.plainPassword(creds.Password)
	if err != nil {
		return "", businessError(ctx, "couldn't create a new user", err, fieldErrorsFrom("Password", err)...)
	}
	if err := security.ValidatePasswordPolicy(password); err != nil {
		return "", businessError(ctx, "couldn't create a new user", ErrWeakPassword, FieldError{Code: "Password", Message: err.Error()})
	}

	now := s.now().UTC()
	u := &userdomain.User{
		ID:             uuid.New().String(),
		UserName:       userName,
		Email:          userdomain.NormalizeUserName(in.Email),
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		DocNumber:      strings.TrimSpace(in.DocNumber),
		PhoneNumber:    strings.TrimSpace(in.PhoneNumber),
		ManagerID:      optional(in.ManagerID),
		Roles:          []rbac.Role{role},
		EmailConfirmed: true,
		LockoutEnabled: false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if u.Email == "" {
		u.Email = userName
	}
	if err := u.Validate(); err != nil {
		return "", businessError(ctx, "couldn't create a new user", err, FieldError{Code: "User", Message: err.Error()})
	}
	if u.PasswordHash, err = s.hasher.Hash(password); err != nil {
		return "", err
	}
	if err := s.users.Create(ctx, u); err != nil {
		log.WithError(err).Error("failed to create user")
		return "", businessError(ctx, "couldn't create a new user", err, fieldErrorsFrom("Persistence", err)...)
	}
	if _, err := s.auth.GenerateToken(ctx, u); err != nil {
		return "", businessError(ctx, "couldn't create a new user", err, fieldErrorsFrom("Token", err)...)
	}

	confirm := s.resets.Issue(u.ID, "email-confirmation:"+u.Email)
	actorID := ""
	if s.session != nil {
		actorID = s.session.CurrentPrincipalID(ctx)
	}
	s.logAudit(ctx, actorID, u.ID, ActionSignUp, string(role))
	log.WithFields(logrus.Fields{"user_id": u.ID, "role": role}).Info("user created")
	return confirm, nil
}

// CanCreateUser reports whether current may provision an account with requestedRole.
// The decision uses current's effective role resolved from its grants.
func (s *UserService) CanCreateUser(current *userdomain.User, requestedRole string) bool {
	if current == nil {
		return false
	}
	actorRole, ok := current.EffectiveRole()
	if !ok {
		return false
	}
	requested, ok := rbac.ParseRole(requestedRole)
	if !ok {
		return false
	}
	return rbac.CanProvision(actorRole, requested)
}

// UpdateUser applies in to targetID on behalf of actorID. The actor's effective role must
// dominate both the requested role and the target's current role.
func (s *UserService) UpdateUser(ctx context.Context, actorID, targetID string, in UpdateUser) error {
	log := logging.FromContext(ctx, s.log)
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return businessError(ctx, "user not found", ErrNotFound)
	}
	actorRole, err := s.actorRole(ctx, actorID)
	if err != nil {
		return err
	}
	requested, ok := rbac.ParseRole(in.Role)
	if !ok {
		return businessError(ctx, "invalid role: "+in.Role, ErrInvalidRole)
	}
	if !rbac.CanProvision(actorRole, requested) {
		return businessError(ctx, fmt.Sprintf("not allowed to assign role %s", requested), ErrPermissionDenied)
	}
	if current, ok := target.EffectiveRole(); ok && !rbac.CanProvision(actorRole, current) {
		return businessError(ctx, fmt.Sprintf("not allowed to modify a %s", current), ErrPermissionDenied)
	}

	var password string
	if in.Password != "" {
		if password, err = s.plainPassword(in.Password); err != nil {
			return businessError(ctx, "couldn't update user", err, fieldErrorsFrom("Password", err)...)
		}
		if err := security.ValidatePasswordPolicy(password); err != nil {
			return businessError(ctx, "couldn't update user", ErrWeakPassword, FieldError{Code: "Password", Message: err.Error()})
		}
	}

	email := userdomain.NormalizeUserName(in.Email)
	if email != "" && email != target.UserName {
		other, err := s.users.GetByUserName(ctx, email)
		if err != nil {
			return err
		}
		if other != nil && other.ID != target.ID {
			return businessError(ctx, "user already exists", ErrUserExists)
		}
		target.UserName, target.Email = email, email
	}
	target.FirstName = strings.TrimSpace(in.FirstName)
	target.LastName = strings.TrimSpace(in.LastName)
	target.DocNumber = strings.TrimSpace(in.DocNumber)
	target.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	target.ManagerID = optional(in.ManagerID)
	target.UpdatedAt = s.now().UTC()
	if err := target.Validate(); err != nil {
		return businessError(ctx, "couldn't update user", err, FieldError{Code: "User", Message: err.Error()})
	}
	updated, err := s.users.Update(ctx, target)
	if err != nil {
		return businessError(ctx, "couldn't update user", err, fieldErrorsFrom("Persistence", err)...)
	}
	if !updated {
		return businessError(ctx, "user not found", ErrNotFound)
	}
	if !sameRoles(target.Roles, requested) {
		if err := s.users.SetRoles(ctx, target.ID, []rbac.Role{requested}); err != nil {
			return businessError(ctx, "couldn't update user", err, fieldErrorsFrom("Roles", err)...)
		}
	}
	if password != "" {
		token, err := s.IssuePasswordResetToken(ctx, target.ID)
		if err != nil {
			return err
		}
		if err := s.RedeemPasswordResetToken(ctx, target.ID, token, password); err != nil {
			return err
		}
	}
	s.logAudit(ctx, actorID, target.ID, ActionUpdateUser, string(requested))
	log.WithFields(logrus.Fields{"user_id": target.ID, "actor_id": actorID}).Info("user updated")
	return nil
}

// DeleteUser removes targetID and its refresh token on behalf of actorID.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID string) error {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return businessError(ctx, "user not found", ErrNotFound)
	}
	actorRole, err := s.actorRole(ctx, actorID)
	if err != nil {
		return err
	}
	if current, ok := target.EffectiveRole(); ok && !rbac.CanProvision(actorRole, current) {
		return businessError(ctx, fmt.Sprintf("not allowed to delete a %s", current), ErrPermissionDenied)
	}
	if _, err := s.auth.RemoveRefreshToken(ctx, target.ID); err != nil {
		return businessError(ctx, "couldn't delete user", err, fieldErrorsFrom("RefreshToken", err)...)
	}
	deleted, err := s.users.Delete(ctx, target.ID)
	if err != nil {
		return businessError(ctx, "couldn't delete user", err, fieldErrorsFrom("Persistence", err)...)
	}
	if !deleted {
		return businessError(ctx, "user not found", ErrNotFound)
	}
	s.logAudit(ctx, actorID, target.ID, ActionDeleteUser, "")
	logging.FromContext(ctx, s.log).WithFields(logrus.Fields{"user_id": target.ID, "actor_id": actorID}).Info("user deleted")
	return nil
}

// SignOut revokes the current principal's refresh token and clears the session values.
// It never fails; any error is logged and reported as false.
func (s *UserService) SignOut(ctx context.Context) bool {
	log := logging.FromContext(ctx, s.log)
	if s.session == nil {
		log.Warn("sign out failed: no session")
		return false
	}
	userID := s.session.CurrentPrincipalID(ctx)
	if userID == "" {
		log.WithError(businessError(ctx, "user id not found", ErrUnauthenticated)).Warn("sign out failed")
		return false
	}
	removed, err := s.auth.RemoveRefreshToken(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("sign out failed")
		return false
	}
	for _, name := range []string{AccessTokenName, RefreshTokenName, UserIDName} {
		if err := s.session.Clear(ctx, name); err != nil {
			log.WithError(err).WithField("user_id", userID).Error("sign out failed")
			return false
		}
	}
	s.logAudit(ctx, userID, userID, ActionSignOut, "")
	log.WithFields(logrus.Fields{"user_id": userID, "refresh_revoked": removed}).Info("user signed out")
	return true
}

// GetCurrentUser returns the signed-in user.
func (s *UserService) GetCurrentUser(ctx context.Context) (*userdomain.User, error) {
	userID := ""
	if s.session != nil {
		userID = s.session.CurrentPrincipalID(ctx)
	}
	if userID == "" {
		return nil, businessError(ctx, "user is not authenticated", ErrUnauthenticated)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, businessError(ctx, "user not found", ErrNotFound)
	}
	return u, nil
}

// ListUsers returns every user with its manager's first name.
func (s *UserService) ListUsers(ctx context.Context) ([]userdomain.UserWithManager, error) {
	return s.users.List(ctx)
}

// IssuePasswordResetToken returns a token that RedeemPasswordResetToken accepts until the
// user's password changes or the token expires.
func (s *UserService) IssuePasswordResetToken(ctx context.Context, userID string) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", businessError(ctx, "user not found", ErrNotFound)
	}
	return s.resets.Issue(u.ID, u.PasswordHash), nil
}

// RedeemPasswordResetToken sets newPassword for userID when token is valid and the password meets policy.
func (s *UserService) RedeemPasswordResetToken(ctx context.Context, userID, token, newPassword string) error {
	if err := security.ValidatePasswordPolicy(newPassword); err != nil {
		return businessError(ctx, "couldn't reset password", ErrWeakPassword, FieldError{Code: "Password", Message: err.Error()})
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return businessError(ctx, "user not found", ErrNotFound)
	}
	if err := s.resets.Verify(u.ID, u.PasswordHash, token); err != nil {
		return businessError(ctx, "couldn't reset password", err, FieldError{Code: "InvalidToken", Message: err.Error()})
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.SetPasswordHash(ctx, u.ID, hash)
}

// actorRole resolves the acting principal's effective role from the store.
func (s *UserService) actorRole(ctx context.Context, actorID string) (rbac.Role, error) {
	if actorID == "" {
		return "", businessError(ctx, "user is not authenticated", ErrUnauthenticated)
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return "", err
	}
	if actor == nil {
		return "", businessError(ctx, "user is not authenticated", ErrUnauthenticated)
	}
	role, ok := actor.EffectiveRole()
	if !ok {
		return "", businessError(ctx, "user has no role", ErrPermissionDenied)
	}
	return role, nil
}

// plainPassword decrypts password when it is in the encrypted wire format.
func (s *UserService) plainPassword(password string) (string, error) {
	if !security.LooksEncrypted(password) {
		return password, nil
	}
	plain, err := s.cipher.Decrypt(password)
	if err != nil {
		return "", &ValidationError{Field: "Password", Reason: err.Error()}
	}
	return plain, nil
}

func (s *UserService) deliver(ctx context.Context, tok *Token) error {
	if s.session == nil {
		return nil
	}
	for _, kv := range [][2]string{
		{AccessTokenName, tok.AccessToken},
		{RefreshTokenName, tok.RefreshToken},
		{UserIDName, tok.UserID},
	} {
		if err := s.session.Deliver(ctx, kv[0], kv[1], s.deliveryTTL); err != nil {
			return fmt.Errorf("deliver %s: %w", kv[0], err)
		}
	}
	return nil
}

func (s *UserService) logAudit(ctx context.Context, actorID, targetID, action, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, actorID, targetID, action, metadata)
	}
}

func (s *UserService) countSignIn(ctx context.Context, outcome string) {
	if s.signins != nil {
		s.signins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func sameRoles(roles []rbac.Role, r rbac.Role) bool {
	return len(roles) == 1 && roles[0] == r
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
