// Package report keeps a per-move record of battles in a sqlite database.
package report

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Outcomes recorded for a move row.
const (
	OutcomeResolved = "resolved"
	OutcomeFailed   = "failed"
)

// MoveRecord is one move invocation. Failed rows carry the failure reason.
type MoveRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BattleID  string    `json:"battleId" gorm:"index"`
	Turn      int       `json:"turn"`
	User      string    `json:"user"`
	Move      string    `json:"move"`
	Outcome   string    `json:"outcome"`
	Success   bool      `json:"success"`
	Damage    int       `json:"damage"`
	Hits      int       `json:"hits"`
	Critical  int       `json:"critical"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BattleRecord is written once a battle concludes.
type BattleRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BattleID  string    `json:"battleId" gorm:"uniqueIndex"`
	Turns     int       `json:"turns"`
	Winner    int       `json:"winner"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary aggregates the move rows of one battle.
type Summary struct {
	BattleID string         `json:"battleId"`
	Moves    int            `json:"moves"`
	Failed   int            `json:"failed"`
	Damage   int            `json:"damage"`
	ByUser   map[string]int `json:"damageByUser"`
	Result   *BattleRecord  `json:"result,omitempty"`
}

var ErrNotFound = errors.New("report: battle not found")

// Open connects to the database at dsn and migrates the report tables.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MoveRecord{}, &BattleRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}

// Store reads and writes report rows.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateMove(ctx context.Context, record *MoveRecord) error {
	return s.db.WithContext(ctx).Create(record).Error
}

// SaveBattle inserts the result of a battle or replaces an earlier one.
func (s *Store) SaveBattle(ctx context.Context, record *BattleRecord) error {
	db := s.db.WithContext(ctx)
	var existing BattleRecord
	err := db.Where("battle_id = ?", record.BattleID).First(&existing).Error
	switch {
	case err == nil:
		record.ID = existing.ID
		return db.Save(record).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Create(record).Error
	default:
		return err
	}
}

// Recent returns the newest move rows first.
func (s *Store) Recent(ctx context.Context, limit int) ([]MoveRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []MoveRecord
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&records).Error
	return records, err
}

// Battles returns the concluded battles, newest first.
func (s *Store) Battles(ctx context.Context) ([]BattleRecord, error) {
	var records []BattleRecord
	err := s.db.WithContext(ctx).Order("id desc").Find(&records).Error
	return records, err
}

// Summary totals the rows recorded for battleID.
func (s *Store) Summary(ctx context.Context, battleID string) (Summary, error) {
	db := s.db.WithContext(ctx)
	var records []MoveRecord
	if err := db.Where("battle_id = ?", battleID).Order("id").Find(&records).Error; err != nil {
		return Summary{}, err
	}
	summary := Summary{BattleID: battleID, ByUser: make(map[string]int)}
	for _, record := range records {
		summary.Moves++
		if record.Outcome == OutcomeFailed {
			summary.Failed++
		}
		summary.Damage += record.Damage
		summary.ByUser[record.User] += record.Damage
	}

	var result BattleRecord
	err := db.Where("battle_id = ?", battleID).First(&result).Error
	switch {
	case err == nil:
		summary.Result = &result
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return Summary{}, err
	case len(records) == 0:
		return Summary{}, ErrNotFound
	}
	return summary, nil
}
