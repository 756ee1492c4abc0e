package cartarev

import (
	"regexp"
	"strings"
)

// Block delimiters use the [[BLOCK:key]] ... [[/BLOCK]] anchor syntax inside
// document templates. Keys are word characters and matching is case
// sensitive.
var blockPattern = regexp.MustCompile(`(?s)\[\[BLOCK:(\w+)\]\](.*?)\[\[/BLOCK\]\]`)

// ExtractedBlock is a delimited region found in a template. It is derived at
// render time and never persisted.
type ExtractedBlock struct {
	Key      string
	BaseText string

	// Start and End delimit the full match, including the anchors.
	Start int
	End   int
}

// ParseBlocks returns every anchor block in the template, in order of
// appearance. Base text is trimmed of leading and trailing whitespace.
func ParseBlocks(template string) []ExtractedBlock {
	var blocks []ExtractedBlock
	for _, m := range blockPattern.FindAllStringSubmatchIndex(template, -1) {
		blocks = append(blocks, ExtractedBlock{
			Key:      template[m[2]:m[3]],
			BaseText: strings.TrimSpace(template[m[4]:m[5]]),
			Start:    m[0],
			End:      m[1],
		})
	}
	return blocks
}

// ExtractBlock returns the trimmed text between the first matching anchor
// pair for key. A missing pair indicates a template/schema mismatch and
// returns EINVALID; it is never silently defaulted.
func ExtractBlock(template, key string) (string, error) {
	for _, b := range ParseBlocks(template) {
		if b.Key == key {
			return b.BaseText, nil
		}
	}
	return "", Errorf(EINVALID, "block %q not found in template", key)
}

// BlockVar returns the precomputed variable name under which a block's final
// content is injected into the render context.
func BlockVar(key string) string {
	return "__block_" + key + "__"
}

// PrepareTemplate replaces every anchor block with the placeholder of its
// precomputed block variable, so ordinary placeholder substitution handles
// block content. Returns the rewritten template and the parsed blocks.
func PrepareTemplate(template string) (string, []ExtractedBlock) {
	blocks := ParseBlocks(template)

	var sb strings.Builder
	last := 0
	for _, b := range blocks {
		sb.WriteString(template[last:b.Start])
		sb.WriteString("{{ " + BlockVar(b.Key) + " }}")
		last = b.End
	}
	sb.WriteString(template[last:])

	return sb.String(), blocks
}

// Combine joins base text with custom content according to the append mode.
// Empty or whitespace-only custom content yields the base text exactly, with
// no separator. In labelled mode an empty label falls back to the generic
// prefix.
func Combine(base, custom string, mode AppendMode, label string) string {
	custom = strings.TrimSpace(custom)
	if custom == "" {
		return base
	}

	switch mode {
	case AppendInline:
		return base + " " + custom
	case AppendLabelled:
		if label == "" {
			label = DefaultBlockLabel
		}
		return base + "\n" + label + ": " + custom
	default: // AppendNewline
		return base + "\n" + custom
	}
}

// TruncateCustom limits custom content to max runes. Reports whether the
// content was truncated. A max of zero or less means unlimited.
func TruncateCustom(custom string, max int) (string, bool) {
	if max <= 0 {
		return custom, false
	}
	runes := []rune(custom)
	if len(runes) <= max {
		return custom, false
	}
	return string(runes[:max]), true
}
