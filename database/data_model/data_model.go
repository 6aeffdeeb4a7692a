package data_model

import "gorm.io/gorm"

// DataModel is a table row type that can be written with insert-or-update.
type DataModel interface {
	Upsert(db *gorm.DB) error
}
