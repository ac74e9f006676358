package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SchemaVersion is stored in ShimInfo and bumped on incompatible changes.
const SchemaVersion = 1

// DatabaseModels lists every table in the schema.
var DatabaseModels = []any{
	&ShimInfo{},
	&ItemStack{},
}

// ShimInfo is a single row describing the instance that owns the database.
type ShimInfo struct {
	gorm.Model
	SchemaVersion int    `json:"schemaVersion"`
	Namespace     string `json:"namespace" gorm:"size:64"`
}

func (*ShimInfo) TableName() string {
	return "shim_infos"
}

// ItemStack is the persisted form of an item stack. NBT holds the
// little-endian tag tree and is authoritative; Tag mirrors it as JSON for
// ad-hoc queries and Color mirrors display.color.
type ItemStack struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	StackID   string    `json:"stackId" gorm:"size:36;uniqueIndex"`
	ItemType  string    `json:"itemType" gorm:"size:64;index"`
	Count     int       `json:"count"`
	NBT       []byte    `json:"-"`
	Tag       datatypes.JSON
	Color     sql.NullInt32 `json:"color"`
}

func (*ItemStack) TableName() string {
	return "item_stacks"
}
