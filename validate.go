package cartarev

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// Validation issue codes.
const (
	ValidationRequired    = "required"
	ValidationTypeError   = "type_error"
	ValidationRuleError   = "validation_error"
	ValidationNotEditable = "not_editable"
)

// ValidationIssue describes a single rejected field value.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult is the outcome of validating an update or a complete
// data set. Filtered contains only the fields that passed validation, with
// sanitized values; Unauthorized lists fields rejected by the whitelist.
type ValidationResult struct {
	Valid        bool
	Issues       []ValidationIssue
	Filtered     map[string]any
	Unauthorized []string
}

// Validator enforces schema-driven whitelist validation. Only fields marked
// editable (plus block custom fields) are accepted for updates; all values
// are type-checked and block custom content is sanitized.
type Validator struct {
	Sanitizer Sanitizer
}

// NewValidator creates a Validator that sanitizes block custom content with
// the given sanitizer.
func NewValidator(sanitizer Sanitizer) *Validator {
	return &Validator{Sanitizer: sanitizer}
}

// ValidateUpdate validates an employee update against the schema whitelist.
// Non-editable fields are collected in Unauthorized and excluded from
// Filtered; they are reported, not errors, so the caller can audit them.
func (v *Validator) ValidateUpdate(schema *DocumentSchema, update map[string]any) ValidationResult {
	result := ValidationResult{Filtered: make(map[string]any)}

	editable := make(map[string]bool)
	for _, name := range schema.EditableFields() {
		editable[name] = true
	}

	for name, value := range update {
		if !editable[name] {
			result.Unauthorized = append(result.Unauthorized, name)
			continue
		}

		sanitized, issue := v.validateField(schema, name, value)
		if issue != nil {
			result.Issues = append(result.Issues, *issue)
			continue
		}
		result.Filtered[name] = sanitized
	}

	result.Valid = len(result.Issues) == 0
	return result
}

// ValidateComplete validates a full data set for review creation. All
// schema fields are checked, not just editable ones.
func (v *Validator) ValidateComplete(schema *DocumentSchema, data map[string]any) ValidationResult {
	result := ValidationResult{Filtered: data}

	for name, spec := range schema.Fields {
		value, ok := data[name]
		if spec.Required && (!ok || isEmpty(value)) {
			result.Issues = append(result.Issues, ValidationIssue{
				Field:   name,
				Message: fmt.Sprintf("field %q is required", name),
				Code:    ValidationRequired,
			})
			continue
		}
		if !ok || isEmpty(value) {
			continue
		}
		if _, issue := v.validateField(schema, name, value); issue != nil {
			result.Issues = append(result.Issues, *issue)
		}
	}

	for i := range schema.Blocks {
		b := &schema.Blocks[i]
		value, ok := data[b.CustomField]
		if b.Required && (!ok || isEmpty(value)) {
			result.Issues = append(result.Issues, ValidationIssue{
				Field:   b.CustomField,
				Message: fmt.Sprintf("field %q is required", b.CustomField),
				Code:    ValidationRequired,
			})
		}
	}

	result.Valid = len(result.Issues) == 0
	return result
}

// validateField checks one field value and returns the sanitized value, or
// an issue if the value is invalid. Block custom fields are sanitized
// according to their custom type.
func (v *Validator) validateField(schema *DocumentSchema, name string, value any) (any, *ValidationIssue) {
	if block, ok := schema.BlockByCustomField(name); ok {
		return v.validateBlockCustom(block, name, value)
	}

	spec, ok := schema.Fields[name]
	if !ok {
		return value, &ValidationIssue{
			Field:   name,
			Message: fmt.Sprintf("unknown field %q", name),
			Code:    ValidationTypeError,
		}
	}

	if isEmpty(value) {
		if spec.Required {
			return value, &ValidationIssue{
				Field:   name,
				Message: fmt.Sprintf("field %q is required", name),
				Code:    ValidationRequired,
			}
		}
		return value, nil
	}

	if issue := checkType(name, value, spec); issue != nil {
		return value, issue
	}
	if issue := checkRules(name, value, spec.Validation); issue != nil {
		return value, issue
	}
	return value, nil
}

// validateBlockCustom sanitizes and length-checks a block custom value.
// Richtext is reduced to the allowed markup subset; plain text has all
// markup stripped. Over-length content is rejected here; truncation with a
// warning happens only at render time for already-stored values.
func (v *Validator) validateBlockCustom(block *BlockDefinition, name string, value any) (any, *ValidationIssue) {
	if isEmpty(value) {
		if block.Required {
			return value, &ValidationIssue{
				Field:   name,
				Message: fmt.Sprintf("field %q is required", name),
				Code:    ValidationRequired,
			}
		}
		return "", nil
	}

	s, ok := value.(string)
	if !ok {
		return value, &ValidationIssue{
			Field:   name,
			Message: fmt.Sprintf("field %q must be a string", name),
			Code:    ValidationTypeError,
		}
	}

	var sanitized string
	if block.CustomType == CustomRichText {
		sanitized = v.Sanitizer.Sanitize(s)
	} else {
		sanitized = v.Sanitizer.StripTags(s)
	}

	max := block.MaxLength
	if max <= 0 {
		max = DefaultMaxCustomLength
	}
	if utf8.RuneCountInString(sanitized) > max {
		return sanitized, &ValidationIssue{
			Field:   name,
			Message: fmt.Sprintf("field %q must be at most %d characters", name, max),
			Code:    ValidationRuleError,
		}
	}

	return sanitized, nil
}

func checkType(name string, value any, spec FieldSpec) *ValidationIssue {
	fail := func(format string, args ...any) *ValidationIssue {
		return &ValidationIssue{
			Field:   name,
			Message: fmt.Sprintf(format, args...),
			Code:    ValidationTypeError,
		}
	}

	switch spec.Type {
	case FieldString:
		if _, ok := value.(string); !ok {
			return fail("field %q must be a string", name)
		}
	case FieldBoolean:
		if _, ok := value.(bool); !ok {
			return fail("field %q must be a boolean", name)
		}
	case FieldNumber:
		switch value.(type) {
		case int, int64, float64:
		default:
			return fail("field %q must be a number", name)
		}
	case FieldDate:
		s, ok := value.(string)
		if !ok {
			return fail("field %q must be a date string", name)
		}
		if _, ok := parseDate(s); !ok {
			return fail("field %q must be a valid date (YYYY-MM-DD or DD/MM/YYYY)", name)
		}
	case FieldEnum:
		s, ok := value.(string)
		if !ok {
			return fail("field %q must be a string", name)
		}
		for _, allowed := range spec.EnumValues {
			if s == allowed {
				return nil
			}
		}
		return fail("field %q must be one of %v", name, spec.EnumValues)
	case FieldList:
		if _, ok := value.([]any); ok {
			return nil
		}
		if _, ok := value.([]string); ok {
			return nil
		}
		return fail("field %q must be a list", name)
	}
	return nil
}

func checkRules(name string, value any, rules FieldValidation) *ValidationIssue {
	fail := func(format string, args ...any) *ValidationIssue {
		return &ValidationIssue{
			Field:   name,
			Message: fmt.Sprintf(format, args...),
			Code:    ValidationRuleError,
		}
	}

	if s, ok := value.(string); ok {
		if rules.Pattern != "" {
			re, err := regexp.Compile(rules.Pattern)
			if err != nil || !re.MatchString(s) {
				return fail("field %q does not match required pattern", name)
			}
		}
		n := utf8.RuneCountInString(s)
		if rules.MinLength > 0 && n < rules.MinLength {
			return fail("field %q must be at least %d characters", name, rules.MinLength)
		}
		if rules.MaxLength > 0 && n > rules.MaxLength {
			return fail("field %q must be at most %d characters", name, rules.MaxLength)
		}
	}

	if rules.Min != nil || rules.Max != nil {
		if n, ok := toFloat(value); ok {
			if rules.Min != nil && n < *rules.Min {
				return fail("field %q must be at least %v", name, *rules.Min)
			}
			if rules.Max != nil && n > *rules.Max {
				return fail("field %q must be at most %v", name, *rules.Max)
			}
		}
	}

	return nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	}
	return 0, false
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}
