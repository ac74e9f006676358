// Package convert translates between in-memory item stacks and their GORM rows.
package convert

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/itsmeow/SpongeCommon/internal/color"
	"github.com/itsmeow/SpongeCommon/internal/item"
	"github.com/itsmeow/SpongeCommon/internal/model"
	"github.com/itsmeow/SpongeCommon/internal/tag"
)

// StackToModel converts a stack into its row form. The row ID is left zero;
// storage matches rows by StackID.
func StackToModel(s *item.Stack) (model.ItemStack, error) {
	if s == nil || s.Type == nil {
		return model.ItemStack{}, fmt.Errorf("convert stack: %w", item.ErrNilType)
	}

	row := model.ItemStack{
		StackID:  s.ID.String(),
		ItemType: s.Type.Name,
		Count:    s.Count,
		Tag:      datatypes.JSON("null"),
	}

	if s.Tag != nil {
		data, err := tag.Encode(s.Tag, tag.LittleEndian)
		if err != nil {
			return model.ItemStack{}, fmt.Errorf("convert stack %s: %w", s.ID, err)
		}
		row.NBT = data

		js, err := json.Marshal(s.Tag)
		if err != nil {
			return model.ItemStack{}, fmt.Errorf("convert stack %s: %w", s.ID, err)
		}
		row.Tag = datatypes.JSON(js)

		if display, ok := s.Tag.Compound(color.DisplayKey); ok {
			if v, ok := display.IntOK(color.ColorKey); ok {
				row.Color = sql.NullInt32{Int32: v, Valid: true}
			}
		}
	}
	return row, nil
}

// ModelToStack rebuilds a stack from its row. The item type must be known to
// the registry.
func ModelToStack(row model.ItemStack, types *item.Registry) (*item.Stack, error) {
	id, err := uuid.Parse(row.StackID)
	if err != nil {
		return nil, fmt.Errorf("row %d: invalid stack id: %w", row.ID, err)
	}
	typ, ok := types.ByName(row.ItemType)
	if !ok {
		return nil, fmt.Errorf("row %d: unknown item type %q", row.ID, row.ItemType)
	}

	s := &item.Stack{ID: id, Type: typ, Count: row.Count}
	if len(row.NBT) > 0 {
		s.Tag, err = tag.Decode(row.NBT, tag.LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.ID, err)
		}
	}
	return s, nil
}
