package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"task-dashboard/internal/model"
	"task-dashboard/internal/repository"
)

const (
	minPasswordLen = 6
	resetTTL       = time.Hour
)

// Result is a successful sign-in: the identity and its session token.
type Result struct {
	Identity model.Identity
	Token    string
}

// Provider is the email/password authentication service.
type Provider struct {
	identities *repository.IdentityRepository
	tokens     *Tokens
	mailer     Mailer
	log        *zap.Logger
	now        func() time.Time
}

func NewProvider(identities *repository.IdentityRepository, tokens *Tokens, mailer Mailer, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	if mailer == nil {
		mailer = NewLogMailer(log)
	}
	return &Provider{identities: identities, tokens: tokens, mailer: mailer, log: log, now: time.Now}
}

// SignIn checks the password and issues a token.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Result, error) {
	identity, err := p.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Result{}, ErrInvalidCredentials
		}
		return Result{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return Result{}, ErrInvalidCredentials
	}
	return p.issue(*identity)
}

// SignUp creates an identity with its display name and signs it in.
func (p *Provider) SignUp(ctx context.Context, name, email, password string) (Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, ErrEmptyName
	}
	addr, err := validateEmail(email)
	if err != nil {
		return Result{}, err
	}
	if len(password) < minPasswordLen {
		return Result{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	identity := model.Identity{DisplayName: name, Email: addr, PasswordHash: string(hash)}
	if err := p.identities.Create(ctx, &identity); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return Result{}, ErrEmailTaken
		}
		return Result{}, err
	}

	p.log.Info("identity created", zap.String("user", identity.ID))
	return p.issue(identity)
}

// SignOut revokes every token of the identity that owns token.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	identity, err := p.Verify(ctx, token)
	if err != nil {
		return err
	}
	return p.identities.BumpTokenVersion(ctx, identity.ID)
}

// Verify resolves token to its identity. Revoked tokens are rejected.
func (p *Provider) Verify(ctx context.Context, token string) (model.Identity, error) {
	userID, version, err := p.tokens.Parse(token)
	if err != nil {
		return model.Identity{}, err
	}
	identity, err := p.identities.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Identity{}, ErrInvalidToken
		}
		return model.Identity{}, err
	}
	if identity.TokenVersion != version {
		return model.Identity{}, ErrInvalidToken
	}
	return *identity, nil
}

// SendPasswordReset mails a one-hour reset code. Unknown addresses succeed
// silently so callers cannot probe for accounts.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	addr, err := validateEmail(email)
	if err != nil {
		return err
	}
	identity, err := p.identities.FindByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			p.log.Info("password reset for unknown email", zap.String("email", addr))
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := p.identities.SetResetToken(ctx, identity.ID, token, p.now().Add(resetTTL)); err != nil {
		return err
	}
	return p.mailer.SendPasswordReset(ctx, identity.Email, identity.DisplayName, token)
}

// ConfirmPasswordReset sets a new password for the holder of resetToken.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, resetToken, password string) error {
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}
	identity, err := p.identities.FindByResetToken(ctx, strings.TrimSpace(resetToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if identity.ResetExpiresAt == nil || p.now().After(*identity.ResetExpiresAt) {
		return ErrInvalidToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return p.identities.UpdatePassword(ctx, identity.ID, string(hash))
}

func (p *Provider) issue(identity model.Identity) (Result, error) {
	token, err := p.tokens.Issue(identity.ID, identity.TokenVersion)
	if err != nil {
		return Result{}, err
	}
	return Result{Identity: identity, Token: token}, nil
}

func validateEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
