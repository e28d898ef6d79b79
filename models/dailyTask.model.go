package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
)

// DailyTask tracks one user's clicks for one calendar day.
type DailyTask struct {
	gorm.Model
	UserID            string          `gorm:"type:varchar(36);not null;uniqueIndex:idx_daily_tasks_user_date" json:"userId"`
	TaskDate          datatypes.Date  `gorm:"not null;uniqueIndex:idx_daily_tasks_user_date" json:"taskDate"`
	ClicksCompleted   int             `gorm:"not null;default:0" json:"clicksCompleted"`
	TotalClicksNeeded int             `gorm:"not null;default:15" json:"totalClicksNeeded"`
	TodayIncome       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"todayIncome"`
	IncomeCredited    bool            `gorm:"default:false" json:"incomeCredited"`
	LastClickTime     *time.Time      `json:"lastClickTime"`
	Status            TaskStatus      `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
}

func (DailyTask) TableName() string {
	return "daily_tasks"
}

// TaskIncomeHistory records the credit of a single click.
type TaskIncomeHistory struct {
	gorm.Model
	UserID      string          `gorm:"type:varchar(36);not null;index:idx_task_income_user_date" json:"userId"`
	TaskDate    datatypes.Date  `gorm:"not null;index:idx_task_income_user_date" json:"taskDate"`
	ClickNumber int             `gorm:"not null" json:"clickNumber"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PackageName string          `gorm:"type:varchar(50)" json:"packageName"`
	FundAmount  decimal.Decimal `gorm:"type:decimal(15,2)" json:"fundAmount"`
	ClickTime   time.Time       `json:"clickTime"`
}

func (TaskIncomeHistory) TableName() string {
	return "task_income_history"
}
