// Package model holds the gorm column mappings for the sqlite ledger.
package model

import (
	"database/sql"
	"time"
)

type AccountModel struct {
	UserID    int64           `gorm:"column:user_id;primaryKey"`
	Balance   sql.NullFloat64 `gorm:"column:balance"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (AccountModel) TableName() string { return "accounts" }

type TradeModel struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	TradeID       string          `gorm:"column:trade_id;uniqueIndex"`
	UserID        int64           `gorm:"column:user_id;index:idx_trades_user"`
	Symbol        string          `gorm:"column:symbol"`
	Direction     string          `gorm:"column:direction"`
	Emotion       string          `gorm:"column:emotion"`
	Size          float64         `gorm:"column:size"`
	Status        string          `gorm:"column:status;index:idx_trades_status"`
	EntryTime     time.Time       `gorm:"column:entry_time"`
	ExitTime      sql.NullTime    `gorm:"column:exit_time"`
	BalanceBefore float64         `gorm:"column:balance_before"`
	BalanceAfter  sql.NullFloat64 `gorm:"column:balance_after"`
	Profit        sql.NullFloat64 `gorm:"column:profit"`
	Result        string          `gorm:"column:result"`
}

func (TradeModel) TableName() string { return "trades" }
