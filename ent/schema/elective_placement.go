package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// ElectivePlacement puts an elective from the catalogue on a board column.
type ElectivePlacement struct {
	ent.Schema
}

func (ElectivePlacement) Fields() []ent.Field {
	return []ent.Field{
		field.String("code").NotEmpty().Unique(),
		field.Int("col_index").NonNegative(),
	}
}
