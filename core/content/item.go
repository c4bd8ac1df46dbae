package content

import (
	"bytes"
	"encoding/json"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

// Kind discriminates explanation items.
type Kind string

const (
	KindMath Kind = "math"
	KindCode Kind = "code"
)

var ErrMalformedRecord = errors.New("malformed explanation record")

// Item is either a MathItem or a CodeItem.
type Item interface {
	Kind() Kind
}

type MathItem struct {
	Title       string `json:"title"`
	Equation    string `json:"equation"`
	Explanation string `json:"explanation"`
}

type CodeItem struct {
	Title  string  `json:"title"`
	Blocks []Block `json:"blocks"`
}

var (
	_ Item = MathItem{}
	_ Item = CodeItem{}
)

func (MathItem) Kind() Kind { return KindMath }
func (CodeItem) Kind() Kind { return KindCode }

func (it MathItem) MarshalJSON() ([]byte, error) {
	type mathItem MathItem
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		mathItem
	}{KindMath, mathItem(it)})
}

func (it CodeItem) MarshalJSON() ([]byte, error) {
	type codeItem CodeItem
	if it.Blocks == nil {
		it.Blocks = []Block{}
	}
	return json.Marshal(struct {
		Kind Kind `json:"kind"`
		codeItem
	}{KindCode, codeItem(it)})
}

// Record is a raw explanation row as handed over by the content backend.
// Math and code rows share the table; only math rows carry an equation.
type Record struct {
	Title       string  `json:"title"`
	Equation    *string `json:"equation"`
	Code        *string `json:"code"`
	Explanation *string `json:"explanation"`
}

// Resolve turns `rec` into its concrete Item once, so callers switch on Kind instead of field presence.
func Resolve(rec Record, opts ...Option) (Item, error) {
	if rec.Equation != nil {
		it := MathItem{Title: rec.Title, Equation: *rec.Equation}
		if rec.Explanation != nil {
			it.Explanation = *rec.Explanation
		}
		return it, nil
	}

	var cols Columns
	if rec.Code != nil {
		cols.Code = *rec.Code
	}
	if rec.Explanation != nil {
		cols.Explanation = *rec.Explanation
	}
	blocks, err := Read(cols, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "reading code blocks")
	}
	return CodeItem{Title: rec.Title, Blocks: blocks}, nil
}

// ResolveJSON is Resolve for a raw JSON row.
// A non-null "equation" key makes a math item, whatever its value.
func ResolveJSON(data []byte, opts ...Option) (Item, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, errors.Wrap(ErrMalformedRecord, "not a JSON object")
	}

	var rec Record
	var err error
	if rec.Title, _, err = getString(data, "title"); err != nil {
		return nil, err
	}
	if rec.Equation, err = getNullString(data, "equation"); err != nil {
		return nil, err
	}
	if rec.Code, err = getNullString(data, "code"); err != nil {
		return nil, err
	}
	if rec.Explanation, err = getNullString(data, "explanation"); err != nil {
		return nil, err
	}
	return Resolve(rec, opts...)
}

func getNullString(data []byte, key string) (*string, error) {
	s, ok, err := getString(data, key)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

// getString returns ok=false when `key` is missing or null.
func getString(data []byte, key string) (string, bool, error) {
	val, typ, _, err := jsonparser.Get(data, key)
	if err == jsonparser.KeyPathNotFoundError {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(ErrMalformedRecord, "%s: %v", key, err)
	}
	switch typ {
	case jsonparser.Null:
		return "", false, nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(val)
		if err != nil {
			return "", false, errors.Wrapf(ErrMalformedRecord, "%s: %v", key, err)
		}
		return s, true, nil
	default:
		return "", false, errors.Wrapf(ErrMalformedRecord, "%s: expected string, got %s", key, typ)
	}
}
