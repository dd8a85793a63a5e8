package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// StatusEvent records a subject status transition for the history view.
type StatusEvent struct {
	ent.Schema
}

func (StatusEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (StatusEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("subject_code").NotEmpty(),
		field.String("from_status").Optional().
			Comment("Empty when the subject was not started"),
		field.String("to_status").Optional().
			Comment("Empty when the subject was withdrawn"),
		field.String("trigger").NotEmpty(),
		field.String("unlocked").Optional().
			Comment("Comma-separated codes that became available"),
	}
}

func (StatusEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("subject_code"),
	}
}
