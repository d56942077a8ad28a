package user

import (
	"context"
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Service 用户领域服务
type Service interface {
	// Register 创建用户，密码 bcrypt 加密，默认角色 USER
	Register(ctx context.Context, username, password, email, phone string) (*User, error)

	// Authenticate 用户名不存在与密码错误都返回 ErrInvalidPassword，不暴露账号是否存在
	Authenticate(ctx context.Context, username, password string) (*User, error)

	GetUser(ctx context.Context, id uint) (*User, error)

	ListUsers(ctx context.Context) ([]*User, error)

	// UpdateProfile 空字段不修改；password 非空时重新加密
	UpdateProfile(ctx context.Context, id uint, password, email, phone string) (*User, error)

	GrantAdmin(ctx context.Context, id uint) (*User, error)

	RevokeAdmin(ctx context.Context, id uint) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, username, password, email, phone string) (*User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if email != "" && !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	u := NewUser(username, hashed, email, phone)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}
	return u, nil
}

func (s *service) GetUser(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateProfile(ctx context.Context, id uint, password, email, phone string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if password != "" {
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		hashed, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		u.Password = hashed
	}
	if email != "" {
		if !isValidEmail(email) {
			return nil, ErrInvalidEmail
		}
		u.Email = email
	}
	if phone != "" {
		u.Phone = phone
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) GrantAdmin(ctx context.Context, id uint) (*User, error) {
	return s.changeRole(ctx, id, func(u *User) { u.GrantRole(RoleAdmin) })
}

func (s *service) RevokeAdmin(ctx context.Context, id uint) (*User, error) {
	return s.changeRole(ctx, id, func(u *User) { u.RevokeRole(RoleAdmin) })
}

func (s *service) changeRole(ctx context.Context, id uint, change func(*User)) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	change(u)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Wrap(err, "密码加密失败")
	}
	return string(hashed), nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
