package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AdminRole string

const (
	AdminRoleSuperAdmin AdminRole = "Super Admin"
	AdminRoleAdmin      AdminRole = "Admin"
	AdminRoleSupport    AdminRole = "Support"
)

type AdminStatus string

const (
	AdminStatusActive   AdminStatus = "Active"
	AdminStatusInactive AdminStatus = "Inactive"
)

type Admin struct {
	gorm.Model
	AdminID   string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"adminId"`
	Name      string      `gorm:"type:varchar(100);not null" json:"name"`
	Email     string      `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password  string      `gorm:"not null" json:"-"`
	Role      AdminRole   `gorm:"type:varchar(20);not null;default:'Admin'" json:"role"`
	Status    AdminStatus `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	LastLogin *time.Time  `json:"lastLogin"`
	IPAddress string      `gorm:"type:varchar(50)" json:"ipAddress"`
}

func (Admin) TableName() string {
	return "admins"
}

// AdminActivityLog records every admin mutation.
type AdminActivityLog struct {
	gorm.Model
	AdminID    string         `gorm:"type:varchar(50);not null;index" json:"adminId"`
	Action     string         `gorm:"type:varchar(255);not null" json:"action"`
	Details    datatypes.JSON `json:"details"`
	IPAddress  string         `gorm:"type:varchar(50)" json:"ipAddress"`
	DeviceInfo string         `gorm:"type:text" json:"deviceInfo"`
	Timestamp  time.Time      `gorm:"index" json:"timestamp"`
}

func (AdminActivityLog) TableName() string {
	return "admin_activity_logs"
}
