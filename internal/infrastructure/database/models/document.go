package models

import (
	"time"

	"github.com/lib/pq"
)

// Document is the primary row of a collection. Data holds the full
// locale-keyed field map as jsonb; Locales records which locale codes
// the row carries.
type Document struct {
	ID         string         `json:"id" gorm:"primaryKey;type:text"`
	Collection string         `json:"collection" gorm:"type:text;index"`
	Status     string         `json:"status" gorm:"type:text"`
	Data       string         `json:"data" gorm:"type:jsonb"`
	Locales    pq.StringArray `json:"locales" gorm:"type:text[]"`
	CDate      time.Time      `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate      time.Time      `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// DocumentVersion is one draft/publish snapshot of a document row.
type DocumentVersion struct {
	ID         string    `json:"id" gorm:"primaryKey;type:text"`
	DocumentID string    `json:"documentID" gorm:"type:text;index"`
	Document   Document  `json:"-" gorm:"foreignKey:DocumentID;references:ID;constraint:OnDelete:CASCADE;"`
	Collection string    `json:"collection" gorm:"type:text;index"`
	Status     string    `json:"status" gorm:"type:text"`
	Snapshot   string    `json:"snapshot" gorm:"type:jsonb"`
	Digest     string    `json:"digest" gorm:"type:text"`
	CDate      time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
