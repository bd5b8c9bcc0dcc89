package admin

import (
	"context"
	"net/http"
	"strconv"

	"library-admin/internal/models"
)

// PageSize is the fixed number of records requested per page
const PageSize = 10

// Kind is the input kind of a form field
type Kind string

const (
	KindText     Kind = "text"
	KindNumber   Kind = "number"
	KindTextarea Kind = "textarea"
	KindIDList   Kind = "id-list"
	KindPassword Kind = "password"
)

// Accessor reads a display value out of a record
type Accessor func(models.Record) string

// Column is one list column
type Column struct {
	Label    string
	Accessor Accessor
}

// Field is one form input.
// Source, when set, reads the field's edit value from a fetched record;
// otherwise the top-level key Name is used.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	Source   Accessor
}

// Filter is a descriptor-specific list filter sent as a query parameter
type Filter struct {
	Key   string
	Label string
}

// FormSpec describes a form that submits to a fixed endpoint
// (loan checkout/return, login, register).
type FormSpec struct {
	Name        string
	Title       string
	Method      string
	Path        string
	Fields      []Field
	SuccessText string
	FailureText string
}

// Capabilities lists the per-row and toolbar actions an entity supports
type Capabilities struct {
	Create bool
	Edit   bool
	Delete bool
	Detail bool
}

// Descriptor is the static metadata of one entity type
type Descriptor struct {
	Name          string // "books"
	Noun          string // "book"
	Title         string // "Books"
	Path          string // "/books"
	Columns       []Column
	DetailColumns []Column
	Fields        []Field
	Searchable    bool
	SearchHint    string
	Filters       []Filter
	Can           Capabilities
	Forms         []FormSpec
	EmptyText     string
}

// ItemPath is the API path of a single entity
func (d *Descriptor) ItemPath(id int64) string {
	return d.Path + "/" + strconv.FormatInt(id, 10)
}

// HasFilter reports whether key is one of the descriptor's filters
func (d *Descriptor) HasFilter(key string) bool {
	for _, f := range d.Filters {
		if f.Key == key {
			return true
		}
	}
	return false
}

// Form looks up an extra action form by name
func (d *Descriptor) Form(name string) (FormSpec, bool) {
	for _, f := range d.Forms {
		if f.Name == name {
			return f, true
		}
	}
	return FormSpec{}, false
}

func (d *Descriptor) detailColumns() []Column {
	if len(d.DetailColumns) > 0 {
		return d.DetailColumns
	}
	return d.Columns
}

func (d *Descriptor) emptyText() string {
	if d.EmptyText != "" {
		return d.EmptyText
	}
	return "No data."
}

// createSpec and editSpec derive the create/edit forms from the descriptor fields
func (d *Descriptor) createSpec() FormSpec {
	return FormSpec{
		Name:        "create",
		Title:       "New " + d.Noun,
		Method:      http.MethodPost,
		Path:        d.Path,
		Fields:      d.Fields,
		SuccessText: "Created " + d.Noun,
		FailureText: "Failed to create " + d.Noun,
	}
}

func (d *Descriptor) editSpec(id int64) FormSpec {
	return FormSpec{
		Name:        "edit",
		Title:       "Edit " + d.Noun + " #" + strconv.FormatInt(id, 10),
		Method:      http.MethodPut,
		Path:        d.ItemPath(id),
		Fields:      d.Fields,
		SuccessText: "Saved " + d.Noun,
		FailureText: "Failed to save " + d.Noun,
	}
}

// Backend is the slice of the API transport the console needs
type Backend interface {
	List(ctx context.Context, path, query string) (*models.Page, error)
	Get(ctx context.Context, path string) (models.Record, error)
	Send(ctx context.Context, method, path string, payload interface{}) (models.Record, error)
}
