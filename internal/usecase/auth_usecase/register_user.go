package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"clickgo/internal/domain/model"
	"clickgo/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// 会員登録の入力
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User `json:"user"`
}

var (
	// 入力が不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	idGen    IDGenerator
	clock    Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	idGen IDGenerator,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		idGen:    idGen,
		clock:    clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	// emailの形式チェック
	if !isValidEmailFormat(in.Email) {
		return out, ErrInvalidEmailFormat
	}

	// passwordの長さチェック（最小8文字）
	if len(in.Password) < 8 {
		return out, ErrPasswordTooShort
	}

	// email重複チェック
	existing, err := u.userRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return out, ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return out, err
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	now := u.clock.Now()

	user := &model.User{
		ID:           u.idGen.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hashed,          // ハッシュを保存（平文は保存しない）
		Role:         model.RoleUser,  // 初期はuser
		IsActive:     true,
		LastLoginAt:  nil,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// DBへ保存
	if err := u.userRepo.Create(ctx, user); err != nil {
		return out, err
	}

	// 返すときはハッシュを空にして漏洩防止
	safeUser := *user
	safeUser.PasswordHash = ""

	out.User = safeUser
	return out, nil
}

// メールチェック
func isValidEmailFormat(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false
	}
	_, err := mail.ParseAddress(trimmed)
	return err == nil
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

// DI
func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost}
}

func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}

	return string(hashedBytes), nil
}

// bcryptハッシュと平文を比較
type BcryptPasswordVerifier struct{}

// DI
func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// 平文(plain)をbcryptで比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
