package cartarev

// AppendMode controls how custom content is joined to a block's base text.
type AppendMode string

// Append modes for block custom content.
const (
	AppendNewline  AppendMode = "newline"
	AppendInline   AppendMode = "inline"
	AppendLabelled AppendMode = "labelled"
)

// Valid reports whether m is a known append mode.
func (m AppendMode) Valid() bool {
	switch m {
	case AppendNewline, AppendInline, AppendLabelled:
		return true
	}
	return false
}

// CustomFieldType describes what an employee may type into a block's custom
// field.
type CustomFieldType string

// Custom field types.
const (
	CustomText     CustomFieldType = "text"
	CustomRichText CustomFieldType = "richtext_limited"
)

// Defaults applied to block definitions during schema load.
const (
	DefaultMaxCustomLength = 2000
	DefaultBlockLabel      = "Nota"
)

// BlockDefinition describes a delimited region of a document template whose
// base text the system renders and to which the employee may append custom
// content. Definitions are loaded once per document type and are immutable
// afterwards.
type BlockDefinition struct {
	Key           string          `yaml:"key" json:"key"`
	InnerTemplate string          `yaml:"inner_template" json:"innerTemplate"`
	CustomField   string          `yaml:"custom_field" json:"customField"`
	AppendMode    AppendMode      `yaml:"append_mode" json:"appendMode"`
	Label         string          `yaml:"label" json:"label"`
	CustomType    CustomFieldType `yaml:"custom_type" json:"customType"`
	MaxLength     int             `yaml:"max_length" json:"maxLength"`
	Required      bool            `yaml:"required" json:"required"`
	Description   string          `yaml:"description" json:"description"`
}

// Validate returns an error if the block definition contains invalid fields.
func (b *BlockDefinition) Validate() error {
	if b.Key == "" {
		return Errorf(EINVALID, "block key required")
	}
	if !b.AppendMode.Valid() {
		return Errorf(EINVALID, "block %q: unknown append mode %q", b.Key, b.AppendMode)
	}
	if b.CustomType != CustomText && b.CustomType != CustomRichText {
		return Errorf(EINVALID, "block %q: unknown custom type %q", b.Key, b.CustomType)
	}
	if b.MaxLength < 0 {
		return Errorf(EINVALID, "block %q: negative max length", b.Key)
	}
	return nil
}

// FieldType describes the value type of a schema field.
type FieldType string

// Field types.
const (
	FieldString  FieldType = "string"
	FieldBoolean FieldType = "boolean"
	FieldDate    FieldType = "date"
	FieldEnum    FieldType = "enum"
	FieldList    FieldType = "list"
	FieldNumber  FieldType = "number"
)

// FieldValidation holds the optional validation rules of a field.
type FieldValidation struct {
	Pattern   string   `yaml:"pattern" json:"pattern"`
	MinLength int      `yaml:"min_length" json:"minLength"`
	MaxLength int      `yaml:"max_length" json:"maxLength"`
	Min       *float64 `yaml:"min" json:"min"`
	Max       *float64 `yaml:"max" json:"max"`
}

// FieldSpec describes a single form field of a document type.
type FieldSpec struct {
	Type       FieldType       `yaml:"type" json:"type"`
	Label      string          `yaml:"label" json:"label"`
	Section    string          `yaml:"section" json:"section"`
	Editable   bool            `yaml:"editable" json:"editable"`
	Required   bool            `yaml:"required" json:"required"`
	EnumValues []string        `yaml:"enum_values" json:"enumValues"`
	Validation FieldValidation `yaml:"validation" json:"validation"`
}

// Formats configures how bound values are converted to display strings.
type Formats struct {
	// DatePattern is either the "es-long" style ("2 de enero de 2026") or a
	// Go reference time layout.
	DatePattern    string `yaml:"date_pattern" json:"datePattern"`
	TrueLabel      string `yaml:"true_label" json:"trueLabel"`
	FalseLabel     string `yaml:"false_label" json:"falseLabel"`
	ListSeparator  string `yaml:"list_separator" json:"listSeparator"`
	CurrencySuffix string `yaml:"currency_suffix" json:"currencySuffix"`
}

// DateStyleSpanishLong renders dates as "2 de enero de 2026".
const DateStyleSpanishLong = "es-long"

// WithDefaults returns a copy of f with zero values replaced by defaults.
func (f Formats) WithDefaults() Formats {
	if f.DatePattern == "" {
		f.DatePattern = DateStyleSpanishLong
	}
	if f.TrueLabel == "" {
		f.TrueLabel = "Sí"
	}
	if f.FalseLabel == "" {
		f.FalseLabel = "No"
	}
	if f.ListSeparator == "" {
		f.ListSeparator = ", "
	}
	if f.CurrencySuffix == "" {
		f.CurrencySuffix = "EUR"
	}
	return f
}

// DocumentSchema is the full, immutable configuration of one document type:
// its form fields, block definitions, conditional expressions and display
// formats. Schemas are resolved once at startup; there is no runtime code
// loading.
type DocumentSchema struct {
	DocType  string               `yaml:"doc_type" json:"docType"`
	Title    string               `yaml:"title" json:"title"`
	Sections []string             `yaml:"sections" json:"sections"`
	Fields   map[string]FieldSpec `yaml:"fields" json:"fields"`
	Blocks   []BlockDefinition    `yaml:"blocks" json:"blocks"`

	// Conditionals maps derived variable names to expressions over the form
	// data, evaluated with the expr package at render time.
	Conditionals map[string]string `yaml:"conditionals" json:"conditionals"`

	Formats Formats `yaml:"formats" json:"formats"`

	// Template file names, resolved relative to the templates directory.
	DocxTemplate string `yaml:"docx_template" json:"docxTemplate"`
	HTMLTemplate string `yaml:"html_template" json:"htmlTemplate"`
}

// Validate returns an error if the schema contains invalid fields.
func (s *DocumentSchema) Validate() error {
	if s.DocType == "" {
		return Errorf(EINVALID, "schema doc type required")
	}
	seen := make(map[string]bool, len(s.Blocks))
	for i := range s.Blocks {
		b := &s.Blocks[i]
		if err := b.Validate(); err != nil {
			return err
		}
		if seen[b.Key] {
			return Errorf(EINVALID, "schema %q: duplicate block key %q", s.DocType, b.Key)
		}
		seen[b.Key] = true
	}
	for name, spec := range s.Fields {
		switch spec.Type {
		case FieldString, FieldBoolean, FieldDate, FieldEnum, FieldList, FieldNumber:
		default:
			return Errorf(EINVALID, "schema %q: field %q has unknown type %q", s.DocType, name, spec.Type)
		}
	}
	return nil
}

// Block returns the block definition for key, if present.
func (s *DocumentSchema) Block(key string) (*BlockDefinition, bool) {
	for i := range s.Blocks {
		if s.Blocks[i].Key == key {
			return &s.Blocks[i], true
		}
	}
	return nil, false
}

// BlockCustomFields returns the custom field name of every block, in block
// order.
func (s *DocumentSchema) BlockCustomFields() []string {
	fields := make([]string, 0, len(s.Blocks))
	for i := range s.Blocks {
		fields = append(fields, s.Blocks[i].CustomField)
	}
	return fields
}

// EditableFields returns the names of all fields an employee may update:
// schema fields marked editable plus every block custom field.
func (s *DocumentSchema) EditableFields() []string {
	var fields []string
	for name, spec := range s.Fields {
		if spec.Editable {
			fields = append(fields, name)
		}
	}
	return append(fields, s.BlockCustomFields()...)
}

// BlockByCustomField returns the block definition owning the given custom
// field name, if any.
func (s *DocumentSchema) BlockByCustomField(field string) (*BlockDefinition, bool) {
	for i := range s.Blocks {
		if s.Blocks[i].CustomField == field {
			return &s.Blocks[i], true
		}
	}
	return nil, false
}

// SchemaRegistry resolves document type identifiers to their configuration.
type SchemaRegistry interface {
	// Schema returns the schema for a document type.
	// Returns ENOTFOUND if the document type is unknown.
	Schema(docType string) (*DocumentSchema, error)

	// DocTypes returns the identifiers of all registered document types.
	DocTypes() []string
}
