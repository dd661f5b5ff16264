package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// ハッシュと平文の照合。
type PasswordVerifier interface {
	Verify(hashed string, plain string) error
}

// サインイン成功時にアクセストークンを発行する約束
type TokenIssuer interface {
	Issue(userID int64, email string, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力検証の約束（実装はvalidatorパッケージ）
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, email string, password string) error
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	return &BcryptPasswordHasher{cost: cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

func (v *BcryptPasswordVerifier) Verify(hashed string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// AuthUsecase はサインアップ・サインインの処理。
type AuthUsecase struct {
	users     repo.UserRepository
	validator AuthValidator
	hasher    PasswordHasher
	verifier  PasswordVerifier
	issuer    TokenIssuer
	clock     Clock
}

// DI
func NewAuthUsecase(
	users repo.UserRepository,
	validator AuthValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	clock Clock,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		validator: validator,
		hasher:    hasher,
		verifier:  verifier,
		issuer:    issuer,
		clock:     clock,
	}
}

type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

type RegisterOutput struct {
	UserID int64 `json:"userId"`
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	UserID    int64  `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Token     string `json:"token"`
}

// Register はサインアップ。emailはユニーク、パスワードはハッシュだけ保存。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (RegisterOutput, error) {
	//入力検証（重複チェック込み）
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return RegisterOutput{}, err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return RegisterOutput{}, NewHTTPErrorFrom(http.StatusInternalServerError, "Error hashing password", err)
	}

	now := u.clock.Now()
	user := &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		return RegisterOutput{}, NewHTTPErrorFrom(http.StatusInternalServerError, "Error saving user", err)
	}

	return RegisterOutput{UserID: user.ID}, nil
}

// Login はサインイン。認証失敗の理由は区別せず同じ400を返す。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	if err := u.validator.ValidateLogin(ctx, in.Email, in.Password); err != nil {
		return LoginOutput{}, err
	}

	user, err := u.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrUserNotFound) {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "Invalid email or password")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPErrorFrom(http.StatusInternalServerError, "Database error", err)
	}

	if err := u.verifier.Verify(user.PasswordHash, in.Password); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "Invalid email or password")
	}

	token, _, err := u.issuer.Issue(user.ID, user.Email, u.clock.Now())
	if err != nil {
		return LoginOutput{}, NewHTTPErrorFrom(http.StatusInternalServerError, "Error issuing token", err)
	}

	return LoginOutput{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Token:     token,
	}, nil
}

// Me はトークンから取り出したIDで本人情報を返す。
func (u *AuthUsecase) Me(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return nil, NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return nil, NewHTTPErrorFrom(http.StatusInternalServerError, "Database error", err)
	}
	return user, nil
}
