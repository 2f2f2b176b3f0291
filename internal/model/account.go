package model

import "time"

type AccountRole string

const (
	AccountRoleBuyer  AccountRole = "buyer"
	AccountRoleSeller AccountRole = "seller"
)

// Account binds a firebase uid to a role. The role is assigned once at
// signup and never changed through this service.
type Account struct {
	UID         string      `gorm:"primaryKey;size:128"`
	Role        AccountRole `gorm:"column:role;size:16;not null"`
	DisplayName string      `gorm:"column:display_name;size:120;not null"`
	Email       string      `gorm:"column:email;size:255"`
	CreatedAt   time.Time   `gorm:"autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}
