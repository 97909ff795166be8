package auth

import (
	"context"
	"errors"
	"time"

	"clickgo/internal/domain/model"
	"clickgo/internal/repository"
)

// refresh tokenが無効（期限切れ・使用済み・失効）
var ErrInvalidRefresh = errors.New("invalid refresh token")

type RefreshInput struct {
	PlainRefreshToken string
	UserAgent         string
}

type RefreshOutput struct {
	Token JwtAccessToken `json:"token"`
}

type RefreshSideEffect struct {
	PlainRefreshToken string
}

// RefreshUsecaseはアクセストークンの更新。古いrefresh tokenは使い捨てる。
type RefreshUsecase struct {
	userRepo   repository.UserRepository
	rtRepo     repository.RefreshTokenRepository
	issuer     AccessTokenIssuer
	idGen      IDGenerator
	clock      Clock
	refreshTTL time.Duration
}

func NewRefreshUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	issuer AccessTokenIssuer,
	idGen IDGenerator,
	clock Clock,
	refreshTTL time.Duration,
) *RefreshUsecase {
	return &RefreshUsecase{
		userRepo:   userRepo,
		rtRepo:     rtRepo,
		issuer:     issuer,
		idGen:      idGen,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

func (u *RefreshUsecase) Execute(ctx context.Context, in RefreshInput) (RefreshOutput, RefreshSideEffect, error) {
	var out RefreshOutput
	var side RefreshSideEffect

	if in.PlainRefreshToken == "" {
		return out, side, ErrInvalidRefresh
	}

	stored, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(in.PlainRefreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return out, side, ErrInvalidRefresh
		}
		return out, side, err
	}

	now := u.clock.Now()

	//期限切れ・使用済み・失効は拒否
	if now.After(stored.ExpiresAt) || stored.UsedAt != nil || stored.RevokedAt != nil {
		return out, side, ErrInvalidRefresh
	}

	user, err := u.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, side, ErrInvalidRefresh
		}
		return out, side, err
	}
	if !user.IsActive {
		return out, side, ErrUserInactive
	}

	//古いtokenを使用済みにする（ローテーション）
	if err := u.rtRepo.MarkUsed(ctx, stored.ID, now); err != nil {
		return out, side, err
	}

	accessToken, accessExp, err := u.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return out, side, err
	}

	plainRefresh, err := generateSecureToken(32)
	if err != nil {
		return out, side, err
	}

	next := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    stored.UserID,
		TokenHash: hashRefreshToken(plainRefresh),
		UserAgent: in.UserAgent,
		ExpiresAt: now.Add(u.refreshTTL),
	}
	if err := u.rtRepo.Create(ctx, next); err != nil {
		return out, side, err
	}

	out.Token = JwtAccessToken{
		AccessToken: accessToken,
		ExpiresIn:   int(accessExp.Sub(now).Seconds()),
	}
	side.PlainRefreshToken = plainRefresh
	return out, side, nil
}
