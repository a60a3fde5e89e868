// Package gormstore implements the ledger.Store contract on sqlite via gorm.
// One row per account, one row per trade; every mutation runs in a
// transaction so a reader never observes a half-written account.
package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"tradecoach/internal/ledger"
	"tradecoach/internal/ledger/model"
)

type Store struct {
	db *gorm.DB
}

// Open initializes the sqlite ledger at path, creating directories and
// migrating the schema as needed.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gormstore: ledger path cannot be empty")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&model.AccountModel{}, &model.TradeModel{}); err != nil {
		return nil, fmt.Errorf("gormstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) Load(ctx context.Context, userID int64) (ledger.Account, error) {
	acc := ledger.Account{UserID: userID}
	var row model.AccountModel
	err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// unknown user: empty account
	case err != nil:
		return ledger.Account{}, fmt.Errorf("gormstore: load account %d: %w", userID, err)
	default:
		if row.Balance.Valid {
			b := row.Balance.Float64
			acc.Balance = &b
		}
	}
	var rows []model.TradeModel
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return ledger.Account{}, fmt.Errorf("gormstore: load trades %d: %w", userID, err)
	}
	acc.Trades = make([]ledger.Trade, 0, len(rows))
	for _, r := range rows {
		acc.Trades = append(acc.Trades, fromModel(r))
	}
	return acc, nil
}

func (s *Store) SetBalance(ctx context.Context, userID int64, balance float64) error {
	row := model.AccountModel{
		UserID:    userID,
		Balance:   sql.NullFloat64{Float64: balance, Valid: true},
		UpdatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("gormstore: set balance %d: %w", userID, err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, userID int64, trade ledger.Trade) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if trade.Status == ledger.StatusOpen {
			var open int64
			if err := tx.Model(&model.TradeModel{}).
				Where("user_id = ? AND status = ?", userID, string(ledger.StatusOpen)).
				Count(&open).Error; err != nil {
				return fmt.Errorf("gormstore: count open trades: %w", err)
			}
			if open > 0 {
				return ledger.ErrOpenTradeExists
			}
		}
		row := toModel(userID, trade)
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("gormstore: append trade: %w", err)
		}
		return nil
	})
}

func (s *Store) CloseOpenTrade(ctx context.Context, userID int64, close ledger.TradeClose) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.TradeModel
		err := tx.Where("user_id = ? AND status = ?", userID, string(ledger.StatusOpen)).
			Order("id DESC").
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.ErrNoOpenTrade
		}
		if err != nil {
			return fmt.Errorf("gormstore: find open trade: %w", err)
		}
		updates := map[string]any{
			"status":        string(ledger.StatusClosed),
			"profit":        close.Profit,
			"balance_after": close.BalanceAfter,
			"exit_time":     close.ExitTime,
			"result":        string(close.Result),
		}
		if err := tx.Model(&model.TradeModel{}).Where("id = ?", row.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("gormstore: close trade: %w", err)
		}
		account := map[string]any{
			"balance":    close.BalanceAfter,
			"updated_at": time.Now(),
		}
		if err := tx.Model(&model.AccountModel{}).Where("user_id = ?", userID).Updates(account).Error; err != nil {
			return fmt.Errorf("gormstore: update balance: %w", err)
		}
		return nil
	})
}

func toModel(userID int64, t ledger.Trade) model.TradeModel {
	row := model.TradeModel{
		TradeID:       t.TradeID,
		UserID:        userID,
		Symbol:        t.Symbol,
		Direction:     string(t.Direction),
		Emotion:       string(t.Emotion),
		Size:          t.Size,
		Status:        string(t.Status),
		EntryTime:     t.EntryTime,
		BalanceBefore: t.BalanceBefore,
		Result:        string(t.Result),
	}
	if t.ExitTime != nil {
		row.ExitTime = sql.NullTime{Time: *t.ExitTime, Valid: true}
	}
	if t.BalanceAfter != nil {
		row.BalanceAfter = sql.NullFloat64{Float64: *t.BalanceAfter, Valid: true}
	}
	if t.Profit != nil {
		row.Profit = sql.NullFloat64{Float64: *t.Profit, Valid: true}
	}
	return row
}

func fromModel(r model.TradeModel) ledger.Trade {
	t := ledger.Trade{
		TradeID:       r.TradeID,
		Symbol:        r.Symbol,
		Direction:     ledger.Direction(r.Direction),
		Emotion:       ledger.Emotion(r.Emotion),
		Size:          r.Size,
		Status:        ledger.Status(r.Status),
		EntryTime:     r.EntryTime,
		BalanceBefore: r.BalanceBefore,
		Result:        ledger.Result(r.Result),
	}
	if r.ExitTime.Valid {
		exit := r.ExitTime.Time
		t.ExitTime = &exit
	}
	if r.BalanceAfter.Valid {
		after := r.BalanceAfter.Float64
		t.BalanceAfter = &after
	}
	if r.Profit.Valid {
		p := r.Profit.Float64
		t.Profit = &p
	}
	return t
}
