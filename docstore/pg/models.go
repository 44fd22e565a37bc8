package pg

import "time"

// DocumentModel is one synchronized document: the full logical value of a
// (scope, key) pair stored as a single JSONB blob. There are no
// partial-field updates; every write replaces Value wholesale, which is
// exactly the last-writer-wins contract of the document store.
type DocumentModel struct {
	Path  string `gorm:"primaryKey;size:512"`
	Value []byte `gorm:"type:jsonb;not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for DocumentModel.
func (DocumentModel) TableName() string {
	return "documents"
}
