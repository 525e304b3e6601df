package model

import (
	"time"
)

// AppUser 下单用户。此处只消费邮箱与姓名，账号管理在核心之外。
type AppUser struct {
	ID        int64     `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName string `gorm:"size:255" json:"full_name"`
}

func (AppUser) TableName() string { return "app_users" }

// EnterpriseProfile 企业客户档案，折扣百分比 0 <= x < 100。
// 核心只读取，不修改。
type EnterpriseProfile struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID          int64   `gorm:"uniqueIndex;not null" json:"user_id"`
	CompanyName     string  `gorm:"size:255" json:"company_name"`
	DiscountPercent float64 `gorm:"not null;default:0" json:"discount_percent"`
}

func (EnterpriseProfile) TableName() string { return "enterprise_profiles" }
