package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/repository"
	"gorm.io/gorm"
)

var ErrAlreadyRegistered = errors.New("already_registered")

type AccountService interface {
	// Signup is one-time: the role chosen here is never changed by
	// this service. Seller signups also open the trial window.
	Signup(ctx context.Context, uid string, role model.AccountRole, displayName, email string) (*model.Account, error)
	Get(ctx context.Context, uid string) (*model.Account, error)
}

type accountService struct {
	repo repository.AccountRepository
	subs SubscriptionService
}

func NewAccountService(repo repository.AccountRepository, subs SubscriptionService) AccountService {
	return &accountService{repo: repo, subs: subs}
}

func (s *accountService) Signup(ctx context.Context, uid string, role model.AccountRole, displayName, email string) (*model.Account, error) {
	if uid == "" {
		return nil, fmt.Errorf("%w: uid is required", ErrValidation)
	}
	if role != model.AccountRoleBuyer && role != model.AccountRoleSeller {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len(displayName) > 120 {
		return nil, fmt.Errorf("%w: invalid display name", ErrValidation)
	}

	if _, err := s.repo.FindByUID(ctx, uid); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	a := &model.Account{
		UID:         uid,
		Role:        role,
		DisplayName: displayName,
		Email:       strings.TrimSpace(email),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	if role == model.AccountRoleSeller {
		if _, err := s.subs.InitializeTrial(ctx, uid); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (s *accountService) Get(ctx context.Context, uid string) (*model.Account, error) {
	a, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}
