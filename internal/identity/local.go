package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/model"
	"github.com/pageza/recipeshare/backend/internal/storage"
	"github.com/pageza/recipeshare/backend/internal/validation"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	ResetTokenTTL   = time.Hour

	passwordProvider = "password"
)

// Options configure a LocalProvider. Secret is required.
type Options struct {
	Secret    string
	TokenTTL  time.Duration
	ResetURL  string
	Revoker   TokenRevoker
	Mailer    Mailer
	Verifiers map[string]ProviderVerifier
	Clock     clock.Clock
	Logger    *zap.Logger
}

// LocalProvider issues HS256 tokens for accounts kept in the application store.
type LocalProvider struct {
	accounts  storage.AccountStore
	profiles  storage.ProfileStore
	secret    []byte
	ttl       time.Duration
	resetURL  string
	revoker   TokenRevoker
	mailer    Mailer
	verifiers map[string]ProviderVerifier
	clock     clock.Clock
	validate  *validation.Validator
	log       *zap.Logger
}

var _ Provider = (*LocalProvider)(nil)

func NewLocalProvider(accounts storage.AccountStore, profiles storage.ProfileStore, opts Options) *LocalProvider {
	p := &LocalProvider{
		accounts:  accounts,
		profiles:  profiles,
		secret:    []byte(opts.Secret),
		ttl:       opts.TokenTTL,
		resetURL:  opts.ResetURL,
		revoker:   opts.Revoker,
		mailer:    opts.Mailer,
		verifiers: opts.Verifiers,
		clock:     opts.Clock,
		validate:  validation.New(),
		log:       opts.Logger,
	}
	if p.ttl <= 0 {
		p.ttl = DefaultTokenTTL
	}
	if p.clock == nil {
		p.clock = clock.Real{}
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.revoker == nil {
		p.revoker = NewMemoryRevoker(p.clock)
	}
	if p.mailer == nil {
		p.mailer = NewLogMailer(p.log)
	}
	if p.verifiers == nil {
		p.verifiers = map[string]ProviderVerifier{}
	}
	return p
}

type signUpInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"displayName" validate:"notblank,max=100"`
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password, displayName string) (*AuthResult, error) {
	in := signUpInput{
		Email:       strings.ToLower(strings.TrimSpace(email)),
		Password:    password,
		DisplayName: strings.TrimSpace(displayName),
	}
	if err := p.validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}
	now := p.clock.Now()
	account := &model.Account{
		Email:        in.Email,
		PasswordHash: string(hash),
		DisplayName:  in.DisplayName,
		Provider:     passwordProvider,
		CreatedAt:    now,
	}
	profile := &model.Profile{
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		CreatedAt:    now,
		SavedRecipes: []string{},
	}
	if err := p.accounts.CreateAccount(ctx, account, profile); err != nil {
		return nil, err
	}
	p.log.Info("account created", zap.String("user_id", account.ID))
	return p.issue(account)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := p.accounts.AccountByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if account.PasswordHash == "" {
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	return p.issue(account)
}

func (p *LocalProvider) SignInWithProvider(ctx context.Context, providerName, credential string) (*AuthResult, error) {
	verifier, ok := p.verifiers[providerName]
	if !ok {
		return nil, apperror.InvalidArgument("unsupported identity provider %q", providerName)
	}
	ext, err := verifier.VerifyCredential(ctx, credential)
	if err != nil {
		return nil, err
	}

	account, err := p.accounts.AccountByEmail(ctx, ext.Email)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		now := p.clock.Now()
		account = &model.Account{
			Email:       ext.Email,
			DisplayName: model.UserRef{Name: ext.Name}.DisplayName(),
			PhotoURL:    ext.PhotoURL,
			Provider:    providerName,
			CreatedAt:   now,
		}
		profile := &model.Profile{
			DisplayName:  account.DisplayName,
			Email:        account.Email,
			PhotoURL:     account.PhotoURL,
			CreatedAt:    now,
			SavedRecipes: []string{},
		}
		if err := p.accounts.CreateAccount(ctx, account, profile); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if ext.Name != "" {
			account.DisplayName = ext.Name
		}
		if ext.PhotoURL != "" {
			account.PhotoURL = ext.PhotoURL
		}
		err := p.profiles.UpsertProfile(ctx, &model.Profile{
			UserID:      account.ID,
			DisplayName: account.DisplayName,
			Email:       account.Email,
			PhotoURL:    account.PhotoURL,
		})
		if err != nil {
			return nil, err
		}
	}
	return p.issue(account)
}

func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return err
	}
	return p.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperror.Validation(map[string]string{"email": "is required"})
	}
	account, err := p.accounts.AccountByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		p.log.Debug("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, _, err := p.sign(account, purposeReset, ResetTokenTTL)
	if err != nil {
		return err
	}
	link := token
	if p.resetURL != "" {
		link = fmt.Sprintf("%s?token=%s", p.resetURL, token)
	}
	msg := Message{
		To:      account.Email,
		Subject: "Reset your RecipeShare password",
		Body: fmt.Sprintf("Hello %s,\n\nUse the link below to choose a new password. It expires in one hour.\n\n%s\n\n"+
			"If you did not ask for a password reset you can ignore this email.\n", account.DisplayName, link),
	}
	if err := p.mailer.Send(ctx, msg); err != nil {
		return apperror.Unavailable("send password reset email", err)
	}
	return nil
}

type resetInput struct {
	Password string `json:"password" validate:"required,min=6,max=72"`
}

func (p *LocalProvider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := p.parse(token)
	if err != nil {
		return err
	}
	if claims.Purpose != purposeReset {
		return apperror.Unauthenticated("not a password reset token")
	}
	if err := p.validate.Struct(resetInput{Password: newPassword}); err != nil {
		return err
	}
	// Spend the token before the password changes.
	claimed, err := p.revoker.Claim(ctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		return err
	}
	if !claimed {
		return apperror.Unauthenticated("reset link has already been used")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Internal("hash password", err)
	}
	return p.accounts.SetPasswordHash(ctx, claims.Subject, string(hash))
}

func (p *LocalProvider) Verify(ctx context.Context, token string) (*UserIdentity, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != "" {
		return nil, apperror.Unauthenticated("invalid token")
	}
	revoked, err := p.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperror.Unauthenticated("token has been revoked")
	}
	return claims.identity(), nil
}

func (p *LocalProvider) issue(account *model.Account) (*AuthResult, error) {
	token, expires, err := p.sign(account, "", p.ttl)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: expires,
		User: UserIdentity{
			UserID:      account.ID,
			Email:       account.Email,
			DisplayName: account.DisplayName,
			PhotoURL:    account.PhotoURL,
		},
	}, nil
}

func (p *LocalProvider) sign(account *model.Account, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := p.clock.Now()
	expires := now.Add(ttl)
	claims := Claims{
		Email:   account.Email,
		Name:    account.DisplayName,
		Picture: account.PhotoURL,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", time.Time{}, apperror.Internal("sign token", err)
	}
	return token, expires, nil
}

func (p *LocalProvider) parse(token string) (*Claims, error) {
	if token == "" {
		return nil, apperror.Unauthenticated("missing token")
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.clock.Now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperror.Unauthenticated("token has expired")
	}
	if err != nil || claims.Subject == "" || claims.ID == "" {
		return nil, apperror.Unauthenticated("invalid token")
	}
	return claims, nil
}
