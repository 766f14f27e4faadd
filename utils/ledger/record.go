package ledger

import "github.com/vovansuong/bao-cao-doanh-thu/dto"

// Kind selects how a matched value is sanitized.
type Kind int

const (
	// KindText values only lose the unit marker. Dates use it so that
	// separators are kept whole.
	KindText Kind = iota
	// KindAmount values are cut to their first digit/separator run.
	KindAmount
)

// Field binds a Record member to the label that precedes it on the sheet and
// to the column header used on export. Header and Label can differ:
// the ShopeeFood column is labelled "NOW" on paper.
type Field struct {
	Name   string
	Header string
	Label  string
	Kind   Kind
	set    func(*dto.Record, string)
	get    func(dto.Record) string
}

// Schema is the fixed field list in column order.
var Schema = []Field{
	{Name: "Ngay", Header: "Ngày", Label: "Ngày", Kind: KindText,
		set: func(r *dto.Record, v string) { r.Ngay = v }, get: func(r dto.Record) string { return r.Ngay }},
	{Name: "NOW", Header: "Shopeefood", Label: "NOW", Kind: KindAmount,
		set: func(r *dto.Record, v string) { r.NOW = v }, get: func(r dto.Record) string { return r.NOW }},
	{Name: "Be", Header: "Be", Label: "Be", Kind: KindAmount,
		set: func(r *dto.Record, v string) { r.Be = v }, get: func(r dto.Record) string { return r.Be }},
	{Name: "GRAB", Header: "GRAB", Label: "GRAB", Kind: KindAmount,
		set: func(r *dto.Record, v string) { r.GRAB = v }, get: func(r dto.Record) string { return r.GRAB }},
	{Name: "MOMO", Header: "MOMO", Label: "MOMO", Kind: KindAmount,
		set: func(r *dto.Record, v string) { r.MOMO = v }, get: func(r dto.Record) string { return r.MOMO }},
	{Name: "Ca", Header: "CA", Label: "Ca", Kind: KindAmount,
		set: func(r *dto.Record, v string) { r.Ca = v }, get: func(r dto.Record) string { return r.Ca }},
}

// Headers returns the export header row in schema order.
func Headers() []string {
	headers := make([]string, len(Schema))
	for i, f := range Schema {
		headers[i] = f.Header
	}
	return headers
}

// Row returns the record values in schema order.
func Row(r dto.Record) []string {
	row := make([]string, len(Schema))
	for i, f := range Schema {
		row[i] = f.get(r)
	}
	return row
}

// MissingFields names the schema fields r has no value for.
func MissingFields(r dto.Record) []string {
	var missing []string
	for _, f := range Schema {
		if f.get(r) == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Sanitize reduces a raw match according to the field kind.
func (f Field) Sanitize(raw string) string {
	if f.Kind == KindAmount {
		return CleanCurrency(ExtractAmount(raw))
	}
	return CleanCurrency(raw)
}

type compiledField struct {
	Field
	matcher *Matcher
}

// Builder turns raw OCR text into a Record. It holds the label patterns
// compiled once and is safe for concurrent use.
type Builder struct {
	fields []compiledField
}

// NewBuilder compiles the matchers for fields.
func NewBuilder(fields []Field) *Builder {
	b := &Builder{fields: make([]compiledField, 0, len(fields))}
	for _, f := range fields {
		b.fields = append(b.fields, compiledField{Field: f, matcher: NewMatcher(f.Label)})
	}
	return b
}

var defaultBuilder = NewBuilder(Schema)

// DefaultBuilder returns the builder for the ledger schema.
func DefaultBuilder() *Builder {
	return defaultBuilder
}

// Build extracts every field from rawText. Missing labels leave their field
// empty; Build never fails.
func (b *Builder) Build(rawText string) dto.Record {
	text := Normalize(rawText)

	var record dto.Record
	for _, f := range b.fields {
		f.set(&record, f.Sanitize(f.matcher.Find(text)))
	}
	return record
}

// Build runs the default builder.
func Build(rawText string) dto.Record {
	return defaultBuilder.Build(rawText)
}
