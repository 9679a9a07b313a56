package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/qstina/relove-website/internal/domain/model"
	"github.com/qstina/relove-website/internal/logging"
	repo "github.com/qstina/relove-website/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// 匿名セッションのsubjectの接頭辞
const anonymousPrefix = "anon-"

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// アクセストークンを発行する約束。有効秒数も返す
type TokenIssuer interface {
	Issue(subject, email string, anonymous bool, tokenVersion int) (string, int, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptPasswordHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type AuthResult struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type AuthRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthUsecase struct {
	users     repo.UserRepository
	validator AuthValidator
	hasher    PasswordHasher
	tokens    TokenIssuer
	ids       IDGenerator
	clock     Clock
	observers []IdentityObserver
}

func NewAuthUsecase(
	users repo.UserRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	tokens TokenIssuer,
	ids IDGenerator,
	clock Clock,
) *AuthUsecase {
	if hasher == nil {
		hasher = BcryptPasswordHasher{}
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &AuthUsecase{
		users:     users,
		validator: validator,
		hasher:    hasher,
		tokens:    tokens,
		ids:       ids,
		clock:     clock,
	}
}

// Subscribe はサインアウトの通知先を登録する
func (u *AuthUsecase) Subscribe(o IdentityObserver) {
	u.observers = append(u.observers, o)
}

// validatorのエラーを種別に合わせてHTTPErrorへ
func validationError(ctx context.Context, err error) error {
	for _, kind := range []error{ErrMissingRequiredField, ErrInvalidInput, ErrEmailTaken} {
		if errors.Is(err, kind) {
			return failWith(kind, err.Error())
		}
	}
	return dbError(ctx, "auth.validate", err)
}

// Register は買い手として登録し、そのままログイン状態にする
func (u *AuthUsecase) Register(ctx context.Context, req AuthRegisterRequest) (*AuthResult, error) {
	if err := u.validator.ValidateRegister(ctx, req.Email, req.Password); err != nil {
		return nil, validationError(ctx, err)
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, failWith(ErrInternal, "internal error")
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           u.ids.NewID(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: pwHash,
		Role:         model.RoleBuyer,
		Name:         strings.TrimSpace(req.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	//同時登録はDBの一意制約で弾く
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, failWith(ErrEmailTaken, "email already registered")
		}
		return nil, dbError(ctx, "auth.register", err)
	}

	return u.issue(user)
}

func (u *AuthUsecase) Login(ctx context.Context, req AuthLoginRequest) (*AuthResult, error) {
	if err := u.validator.ValidateLogin(ctx, req.Email, req.Password); err != nil {
		return nil, validationError(ctx, err)
	}

	user, err := u.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, failWith(ErrUnauthenticated, "invalid credentials")
	}
	if err != nil {
		return nil, dbError(ctx, "auth.login", err)
	}

	if err := u.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, failWith(ErrUnauthenticated, "invalid credentials")
	}

	return u.issue(user)
}

// Anonymous はDBに行を持たないゲストのトークンを発行する
func (u *AuthUsecase) Anonymous(ctx context.Context) (*AuthResult, error) {
	subject := anonymousPrefix + u.ids.NewID()
	tok, expiresIn, err := u.tokens.Issue(subject, "", true, 0)
	if err != nil {
		return nil, failWith(ErrInternal, "internal error")
	}
	return &AuthResult{
		User:  UserDTO{ID: subject, Anonymous: true},
		Token: JwtAccessTokenDTO{AccessToken: tok, ExpiresIn: expiresIn},
	}, nil
}

// Logout はtoken_versionを上げて発行済みトークンを無効にし、通知先へ知らせる
func (u *AuthUsecase) Logout(ctx context.Context, id *model.Identity) error {
	if id == nil {
		return failWith(ErrUnauthenticated, "unauthorized")
	}
	if id.Anonymous {
		return nil
	}

	log := logging.FromContext(ctx)
	for _, o := range u.observers {
		if err := o.OnSignedOut(ctx, id); err != nil {
			log.Warn("sign-out observer failed", "user_id", id.UserID, "err", err)
		}
	}

	if err := u.users.IncrementTokenVersion(ctx, id.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return failWith(ErrUnauthenticated, "unauthorized")
		}
		return dbError(ctx, "auth.logout", err)
	}
	return nil
}

// jwt発行
func (u *AuthUsecase) issue(user *model.User) (*AuthResult, error) {
	tok, expiresIn, err := u.tokens.Issue(user.ID, user.Email, false, user.TokenVersion)
	if err != nil {
		return nil, failWith(ErrInternal, "internal error")
	}
	return &AuthResult{
		User: UserDTO{
			ID:    user.ID,
			Email: user.Email,
			Role:  string(user.Role),
		},
		Token: JwtAccessTokenDTO{
			AccessToken:  tok,
			ExpiresIn:    expiresIn,
			TokenVersion: user.TokenVersion,
		},
	}, nil
}
