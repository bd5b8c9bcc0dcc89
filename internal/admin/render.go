package admin

import "library-admin/internal/models"

// Render maps a page of records to a table using the descriptor's columns.
// actions, when non-nil, supplies the buttons bound to each row's id.
func Render(records []models.Record, d *Descriptor, actions func(id int64) []Action) *Table {
	t := &Table{
		Headers: make([]string, 0, len(d.Columns)),
		Rows:    make([]Row, 0, len(records)),
	}
	for _, col := range d.Columns {
		t.Headers = append(t.Headers, col.Label)
	}

	for _, rec := range records {
		row := Row{
			ID:    rec.ID(),
			Cells: make([]string, 0, len(d.Columns)),
		}
		for _, col := range d.Columns {
			row.Cells = append(row.Cells, col.Accessor(rec))
		}
		if actions != nil {
			row.Actions = actions(row.ID)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
