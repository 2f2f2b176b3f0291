package repository

import (
	"context"
	"errors"

	"github.com/rusample/sample-market/internal/model"
	"gorm.io/gorm"
)

var ErrDBNotReady = errors.New("database not initialized")

type AccountRepository interface {
	Create(ctx context.Context, a *model.Account) error
	FindByUID(ctx context.Context, uid string) (*model.Account, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *model.Account) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *accountRepository) FindByUID(ctx context.Context, uid string) (*model.Account, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var a model.Account
	if err := r.db.WithContext(ctx).First(&a, "uid = ?", uid).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
