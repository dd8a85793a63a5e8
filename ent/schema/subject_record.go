package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// SubjectRecord is the saved state of one started subject.
type SubjectRecord struct {
	ent.Schema
}

func (SubjectRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("code").NotEmpty().Unique(),
		field.JSON("attempts", map[string]string{}).
			Comment("Attempt values keyed by field id (parcial1_1 .. final4)"),
		field.String("status").NotEmpty(),
		field.String("override_status").Optional().Nillable(),
		field.Time("saved_at"),
		field.Int64("revision").
			Comment("saved_at in unix nanoseconds, compared on conditional writes"),
	}
}
