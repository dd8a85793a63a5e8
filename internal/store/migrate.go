package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/abhisek/utntracker/ent/schema"
)

const (
	tableRecords    = "subject_records"
	tableEvents     = "status_events"
	tableSnapshots  = "snapshots"
	tablePlacements = "elective_placements"
)

// entities maps each table to the ent schema declaring it.
var entities = []struct {
	table  string
	schema ent.Interface
}{
	{tableRecords, schema.SubjectRecord{}},
	{tableEvents, schema.StatusEvent{}},
	{tableSnapshots, schema.Snapshot{}},
	{tablePlacements, schema.ElectivePlacement{}},
}

// Tables builds the migration tables from the ent schema descriptors.
func Tables() ([]*entschema.Table, error) {
	tables := make([]*entschema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := tableFor(e.table, e.schema)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// tableFor converts an ent schema (mixins included) into a table with an
// auto-increment id primary key.
func tableFor(name string, s ent.Interface) (*entschema.Table, error) {
	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	id := &entschema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	t := &entschema.Table{
		Name:       name,
		Columns:    []*entschema.Column{id},
		PrimaryKey: []*entschema.Column{id},
	}
	byName := map[string]*entschema.Column{"id": id}

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("table %s field %s: %w", name, d.Name, d.Err)
		}
		c := &entschema.Column{
			Name:     d.Name,
			Type:     d.Info.Type,
			Unique:   d.Unique,
			Nullable: d.Optional || d.Nillable,
			Size:     int64(d.Size),
		}
		t.Columns = append(t.Columns, c)
		byName[d.Name] = c
	}

	for _, ix := range indexes {
		d := ix.Descriptor()
		cols := make([]*entschema.Column, 0, len(d.Fields))
		for _, f := range d.Fields {
			c, ok := byName[f]
			if !ok {
				return nil, fmt.Errorf("table %s: index on unknown column %q", name, f)
			}
			cols = append(cols, c)
		}
		t.Indexes = append(t.Indexes, &entschema.Index{
			Name:    name + "_" + strings.Join(d.Fields, "_"),
			Unique:  d.Unique,
			Columns: cols,
		})
	}
	return t, nil
}

// migrate creates or updates every table.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	tables, err := Tables()
	if err != nil {
		return err
	}
	m, err := entschema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, tables...)
}
