package cartarev

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PlaceholderPattern matches {{ name }} placeholders in template text.
var PlaceholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// RenderContext maps variable names to scalar or list values. A context is
// assembled per request, owned by a single render operation and discarded
// afterwards.
type RenderContext map[string]any

// Warning codes recorded during rendering. Warnings never abort a render.
const (
	WarnUnresolved = "unresolved_placeholder"
	WarnTruncated  = "custom_truncated"
)

// Warning is a non-fatal condition recorded while rendering.
type Warning struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ReplacePlaceholders substitutes every {{ name }} in text with the matching
// value from vars. Unresolvable placeholders become the empty string and are
// recorded as warnings; substitution always completes.
func ReplacePlaceholders(text string, vars map[string]string) (string, []Warning) {
	var warnings []Warning
	out := PlaceholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := PlaceholderPattern.FindStringSubmatch(match)[1]
		v, ok := vars[name]
		if !ok {
			warnings = append(warnings, Warning{
				Code:    WarnUnresolved,
				Field:   name,
				Message: fmt.Sprintf("placeholder %q has no value", name),
			})
			return ""
		}
		return v
	})
	return out, warnings
}

// Placeholders returns the distinct placeholder names in text, in order of
// first appearance.
func Placeholders(text string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range PlaceholderPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Binder converts context values to display strings and substitutes them
// into template text according to the schema's display formats. The field
// specs decide which string values are dates; strings in fields not declared
// as dates pass through verbatim.
type Binder struct {
	Formats Formats
	Fields  map[string]FieldSpec
}

// NewBinder creates a Binder with the given formats and field specs,
// applying format defaults.
func NewBinder(formats Formats, fields map[string]FieldSpec) *Binder {
	return &Binder{Formats: formats.WithDefaults(), Fields: fields}
}

// Bind substitutes every placeholder in text with the display string of the
// matching context value. Absent names resolve to the empty string and are
// recorded as warnings.
func (b *Binder) Bind(text string, ctx RenderContext) (string, []Warning) {
	return ReplacePlaceholders(text, b.DisplayVars(ctx))
}

// DisplayVars converts every context value to its display string.
func (b *Binder) DisplayVars(ctx RenderContext) map[string]string {
	vars := make(map[string]string, len(ctx))
	for name, value := range ctx {
		vars[name] = b.FormatField(name, value)
	}
	return vars
}

// FormatField converts one named context value to its display string. String
// values are parsed as dates only when the schema declares the field as a
// date.
func (b *Binder) FormatField(name string, value any) string {
	if s, ok := value.(string); ok && b.Fields[name].Type == FieldDate {
		if t, parsed := parseDate(s); parsed {
			return b.formatDate(t)
		}
	}
	return b.FormatValue(value)
}

// FormatValue converts a single context value to its display string: dates
// per the configured pattern, booleans per the configured labels, lists
// joined by the configured separator.
func (b *Binder) FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return b.Formats.TrueLabel
		}
		return b.Formats.FalseLabel
	case time.Time:
		return b.formatDate(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatNumber(v)
	case []string:
		return strings.Join(v, b.Formats.ListSeparator)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, b.FormatValue(item))
		}
		return strings.Join(parts, b.Formats.ListSeparator)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+b.FormatValue(v[k]))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(v)
	}
}

// FormatMoney renders an amount in the Spanish convention with the
// configured currency suffix, e.g. "1.234,56 EUR".
func (b *Binder) FormatMoney(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}

	out := sb.String() + "," + fracPart + " " + b.Formats.CurrencySuffix
	if neg {
		out = "-" + out
	}
	return out
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

func (b *Binder) formatDate(t time.Time) string {
	if b.Formats.DatePattern == DateStyleSpanishLong {
		return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
	}
	return t.Format(b.Formats.DatePattern)
}

// Accepted wire formats for date strings.
var dateLayouts = []string{"2006-01-02", "02/01/2006"}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// formatNumber trims insignificant trailing zeros from whole floats so JSON
// numbers round-trip as "3" rather than "3.000000".
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
