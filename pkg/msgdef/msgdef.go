// Package msgdef parses per-slot message field-definition files
// (slotN.json on the flash filesystem): a JSON array of field
// descriptions, with "//" comment lines stripped and a trailing comma on
// the last array element tolerated.
package msgdef

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field describes one field of a slot's custom message.
type Field struct {
	Name      string  `json:"name" validate:"required"`
	Unit      string  `json:"unit"`
	LowValue  float64 `json:"lowValue" validate:"ltefield=HighValue"`
	HighValue float64 `json:"highValue"`
	StepSize  float64 `json:"stepSize" validate:"gt=0"`
}

// Definition is the full field list for one slot.
type Definition []Field

var trailingCommaPattern = regexp.MustCompile(`,(\s*[\]}])`)

var validate = validator.New()

// Parse decodes a slotN.json field-definition document. Lines beginning
// with "//" (after leading whitespace) are treated as comments and
// stripped before parsing; a trailing comma before a closing bracket or
// brace is tolerated.
func Parse(raw []byte) (Definition, error) {
	cleaned := stripCommentLines(string(raw))
	cleaned = trailingCommaPattern.ReplaceAllString(cleaned, "$1")

	var def Definition
	if err := json.Unmarshal([]byte(cleaned), &def); err != nil {
		return nil, fmt.Errorf("msgdef: parse: %w", err)
	}

	for i, f := range def {
		if err := validate.Struct(f); err != nil {
			return nil, fmt.Errorf("msgdef: field %d (%s) invalid: %w", i, f.Name, err)
		}
	}

	return def, nil
}

func stripCommentLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// slotFileName is the on-disk name of a slot's field-definition file.
func slotFileName(slot int) string {
	return fmt.Sprintf("slot%d.json", slot)
}

// Load reads and parses a slot's field-definition file from fsys. It
// returns fs.ErrNotExist (wrapped) if the slot has no definition file,
// which callers treat as "no message definition" per the slot behavior
// planner, not a fatal error.
func Load(fsys fs.FS, slot int) (Definition, error) {
	raw, err := fs.ReadFile(fsys, slotFileName(slot))
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Exists reports whether a slot's field-definition file is present and
// parses successfully, the hasMsgDef input to the slot behavior planner.
func Exists(fsys fs.FS, slot int) bool {
	_, err := Load(fsys, slot)
	return err == nil
}
