package usecase

import (
	"context"
	"errors"

	"clickgo/internal/domain/model"
	repo "clickgo/internal/repository"
)

// RoleUsecase は「呼び出し元がadminか」を判定し、ロール変更を行う。
type RoleUsecase struct {
	users repo.UserRepository
}

func NewRoleUsecase(users repo.UserRepository) *RoleUsecase {
	return &RoleUsecase{users: users}
}

// プロフィールのrol以外は信用しない。adminでなければ全部user扱い。
func resolveRole(ctx context.Context, users repo.UserRepository, userID string) (model.Role, error) {
	u, err := users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return model.RoleUser, nil
	}
	if err != nil {
		return model.RoleUser, err
	}
	if u.Role == model.RoleAdmin {
		return model.RoleAdmin, nil
	}
	return model.RoleUser, nil
}

func (u *RoleUsecase) ResolveRole(ctx context.Context, userID string) (model.Role, error) {
	role, err := resolveRole(ctx, u.users, userID)
	if err != nil {
		return model.RoleUser, NewError(CodeInternal, "db error")
	}
	return role, nil
}

type SetUserRoleInput struct {
	UserID string
	Role   string
}

type SetUserRoleOutput struct {
	Success bool `json:"success"`
}

// SetUserRole は対象ユーザーのロールを上書きする。
// 呼び出し元が既にadminであることが条件。自分で自分を昇格はできない。
func (u *RoleUsecase) SetUserRole(ctx context.Context, callerID string, in SetUserRoleInput) (SetUserRoleOutput, error) {
	if callerID == "" {
		return SetUserRoleOutput{}, NewError(CodeUnauthenticated, "not authenticated")
	}

	role, err := resolveRole(ctx, u.users, callerID)
	if err != nil {
		return SetUserRoleOutput{}, NewError(CodeInternal, "db error")
	}
	if role != model.RoleAdmin {
		return SetUserRoleOutput{}, NewError(CodePermissionDenied, "not admin")
	}

	if in.UserID == "" || in.Role == "" {
		return SetUserRoleOutput{}, NewError(CodeInvalidArgument, "missing parameters")
	}

	if err := u.users.UpdateRole(ctx, in.UserID, model.Role(in.Role)); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return SetUserRoleOutput{}, NewError(CodeNotFound, "user not found")
		}
		return SetUserRoleOutput{}, NewError(CodeInternal, "db error")
	}

	return SetUserRoleOutput{Success: true}, nil
}
