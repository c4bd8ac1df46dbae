// Package content packs ordered code/explanation blocks into the two flat text columns
// stored by the content backend and reads them back.
//
// The legacy layout joins block codes with CodeSeparator and explanations with
// ExplanationSeparator. Blocks are paired back by position only; nothing but the index
// survives the round trip. Newer data may use a structured envelope instead (see Format).
package content

import "strings"

const (
	CodeSeparator        = "\n\n// Next Code Block\n\n"
	ExplanationSeparator = "\n\n<hr />\n\n"
)

// Block is one code snippet and its explanation.
// ID is the block position within its explanation, it is not persisted.
type Block struct {
	ID          int    `json:"id"`
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
	Language    string `json:"language"`
}

// Columns holds the two persisted strings of a multi-block explanation.
type Columns struct {
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
}

func (c Columns) IsEmpty() bool { return c.Code == "" && c.Explanation == "" }

// Encode flattens blocks into the code and explanation columns.
// Block languages are dropped; they are inferred again on Decode.
// Values holding a separator literal are not escaped and will split on Decode.
func Encode(blocks []Block) (code, explanation string) {
	if len(blocks) == 0 {
		return "", ""
	}
	codes := make([]string, 0, len(blocks))
	expls := make([]string, 0, len(blocks))
	for _, b := range blocks {
		codes = append(codes, b.Code)
		expls = append(expls, b.Explanation)
	}
	return strings.Join(codes, CodeSeparator), strings.Join(expls, ExplanationSeparator)
}

// EncodeColumns is Encode returning Columns.
func EncodeColumns(blocks []Block) Columns {
	code, expl := Encode(blocks)
	return Columns{Code: code, Explanation: expl}
}

// Decode rebuilds the blocks stored in the code and explanation columns.
//
// An empty column on either side yields no blocks. Whitespace-only segments are dropped
// before pairing. When one column holds fewer segments than the other, the missing side
// is left empty. Decode never fails: separator collisions only produce extra blocks.
func Decode(code, explanation string) []Block {
	blocks := make([]Block, 0)
	if code == "" || explanation == "" {
		return blocks
	}

	codes := splitSegments(code, CodeSeparator)
	expls := splitSegments(explanation, ExplanationSeparator)

	n := len(codes)
	if len(expls) > n {
		n = len(expls)
	}
	for i := 0; i < n; i++ {
		b := Block{ID: i}
		if i < len(codes) {
			b.Code = codes[i]
		}
		if i < len(expls) {
			b.Explanation = expls[i]
		}
		b.Language = InferLanguage(strings.TrimSpace(b.Code))
		blocks = append(blocks, b)
	}
	return blocks
}

// DecodePtr is Decode for nullable columns; nil counts as empty.
func DecodePtr(code, explanation *string) []Block {
	var c, e string
	if code != nil {
		c = *code
	}
	if explanation != nil {
		e = *explanation
	}
	return Decode(c, e)
}

// DecodeColumns is Decode taking Columns.
func DecodeColumns(cols Columns) []Block {
	return Decode(cols.Code, cols.Explanation)
}

func splitSegments(s, sep string) []string {
	parts := strings.Split(s, sep)
	segments := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			segments = append(segments, p)
		}
	}
	return segments
}
