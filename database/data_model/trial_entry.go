package data_model

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrialEntry is result of evaluating one model setting on one remix of a
// dataset.
type TrialEntry struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	Dataset    string `gorm:"primaryKey"`
	Model      string `gorm:"primaryKey"`
	KwargsHash string `gorm:"primaryKey"`
	Trial      int    `gorm:"primaryKey;autoIncrement:false"`

	// training split statistics
	Entities  int
	Relations int
	Triples   int

	// keyword arguments, empty when not applicable to model
	EntityMargin   string
	RelationMargin string
	Threshold      string

	Time float64 // evaluation time in seconds

	MRR     float64
	IAMR    float64
	IGMR    float64
	Hits1   float64 `gorm:"column:hits_at_1"`
	Hits5   float64 `gorm:"column:hits_at_5"`
	Hits10  float64 `gorm:"column:hits_at_10"`
	Hits50  float64 `gorm:"column:hits_at_50"`
	Hits100 float64 `gorm:"column:hits_at_100"`
	AAMR    float64
	AAMRI   float64
}

func (entry *TrialEntry) Upsert(db *gorm.DB) error {
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(entry).Error
}

// UpsertTrials writes all entries in one transaction, existing trials are
// overwritten.
func UpsertTrials(db *gorm.DB, entries []TrialEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(entries, 100).Error
	})
}
