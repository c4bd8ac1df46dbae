package content

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Format is the layout blocks are stored with.
type Format string

const (
	FormatLegacy   Format = "legacy" // separator-joined columns
	FormatJSON     Format = "json"
	FormatMsgpack  Format = "msgpack"
	FormatCBOR     Format = "cbor"
	FormatProtobuf Format = "protobuf"

	// structured envelopes live in the code column: envelopePrefix + <format> + ":" + base64url(payload)
	envelopePrefix  = "masomo:blocks:v1:"
	documentVersion = 1

	DefaultMaxPayload = 4 << 20
)

var (
	Formats = []Format{FormatLegacy, FormatJSON, FormatMsgpack, FormatCBOR, FormatProtobuf}

	// errors
	ErrUnknownFormat      = errors.New("unknown block format")
	ErrPayloadTooLarge    = errors.New("block payload too large")
	ErrUnsupportedVersion = errors.New("unsupported block document version")
)

// ParseFormat maps `s` to a known Format; "" is FormatLegacy.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatLegacy, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

func (f Format) IsStructured() bool { return f != FormatLegacy }

// Codec encodes blocks to Columns with a given Format.
// Decode reads any Format though, so stored legacy rows keep working after switching codecs.
type Codec interface {
	Format() Format
	Encode(blocks []Block) (Columns, error)
	Decode(cols Columns) ([]Block, error)
}

type Option func(*options)

type options struct {
	maxPayload int
}

// WithMaxPayload limits the decoded size of structured payloads. n <= 0 disables the limit.
func WithMaxPayload(n int) Option {
	return func(o *options) { o.maxPayload = n }
}

func newOptions(opts []Option) options {
	o := options{maxPayload: DefaultMaxPayload}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewCodec returns the Codec writing `f`.
func NewCodec(f Format, opts ...Option) (Codec, error) {
	o := newOptions(opts)
	if f == FormatLegacy {
		return Legacy{opts: o}, nil
	}
	pl, err := newPayload(f)
	if err != nil {
		return nil, err
	}
	return &structured{format: f, payload: pl, opts: o}, nil
}

// Legacy is the separator-joined Codec; it never fails to encode.
type Legacy struct {
	opts options
}

var _ Codec = Legacy{}

func (Legacy) Format() Format { return FormatLegacy }

func (Legacy) Encode(blocks []Block) (Columns, error) {
	return EncodeColumns(blocks), nil
}

func (c Legacy) Decode(cols Columns) ([]Block, error) {
	return read(cols, c.opts)
}

type structured struct {
	format  Format
	payload payload
	opts    options
}

var _ Codec = (*structured)(nil)

func (c *structured) Format() Format { return c.format }

// Encode stores blocks (languages included) in the code column; the explanation column stays empty.
func (c *structured) Encode(blocks []Block) (Columns, error) {
	if len(blocks) == 0 {
		return Columns{}, nil
	}
	doc := document{Version: documentVersion, Blocks: make([]storedBlock, 0, len(blocks))}
	for _, b := range blocks {
		doc.Blocks = append(doc.Blocks, storedBlock{Code: b.Code, Explanation: b.Explanation, Language: b.Language})
	}
	data, err := c.payload.marshal(doc)
	if err != nil {
		return Columns{}, errors.Wrapf(err, "marshaling %s blocks", c.format)
	}
	return Columns{Code: envelopePrefix + string(c.format) + ":" + base64.RawURLEncoding.EncodeToString(data)}, nil
}

func (c *structured) Decode(cols Columns) ([]Block, error) {
	return read(cols, c.opts)
}

// Detect reports the Format `cols` were stored with.
func Detect(cols Columns) Format {
	f, _, ok := splitEnvelope(cols)
	if !ok {
		return FormatLegacy
	}
	return f
}

// Read decodes `cols` whatever their Format.
// Anything that is not a well-formed envelope is read as legacy columns, which never fail.
// Envelopes fail only with ErrPayloadTooLarge or ErrUnsupportedVersion.
// Blocks stored without a language get one inferred, and IDs are always the block positions.
func Read(cols Columns, opts ...Option) ([]Block, error) {
	return read(cols, newOptions(opts))
}

func read(cols Columns, o options) ([]Block, error) {
	f, encoded, ok := splitEnvelope(cols)
	if !ok {
		return DecodeColumns(cols), nil
	}
	if o.maxPayload > 0 && base64.RawURLEncoding.DecodedLen(len(encoded)) > o.maxPayload {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "%d > %d", base64.RawURLEncoding.DecodedLen(len(encoded)), o.maxPayload)
	}
	doc, ok := parseDocument(f, encoded)
	if !ok {
		return DecodeColumns(cols), nil
	}
	if doc.Version != documentVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "v%d", doc.Version)
	}

	blocks := make([]Block, 0, len(doc.Blocks))
	for i, sb := range doc.Blocks {
		lang := sb.Language
		if lang == "" {
			lang = InferLanguage(sb.Code)
		}
		blocks = append(blocks, Block{ID: i, Code: sb.Code, Explanation: sb.Explanation, Language: lang})
	}
	return blocks, nil
}

func parseDocument(f Format, encoded string) (document, bool) {
	pl, _ := newPayload(f)
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return document{}, false
	}
	doc, err := pl.unmarshal(data)
	if err != nil {
		return document{}, false
	}
	return doc, true
}

// splitEnvelope recognizes what a structured Encode writes: an envelope of a known structured
// Format in the code column and nothing in the explanation column.
func splitEnvelope(cols Columns) (Format, string, bool) {
	if cols.Explanation != "" || !strings.HasPrefix(cols.Code, envelopePrefix) {
		return "", "", false
	}
	rest := cols.Code[len(envelopePrefix):]
	idx := strings.IndexByte(rest, ':')
	if idx <= 0 {
		return "", "", false
	}
	f := Format(rest[:idx])
	if _, err := newPayload(f); err != nil {
		return "", "", false
	}
	return f, rest[idx+1:], true
}

// Structured payloads

type (
	storedBlock struct {
		Code        string `json:"c" msgpack:"c" cbor:"1,keyasint"`
		Explanation string `json:"e" msgpack:"e" cbor:"2,keyasint"`
		Language    string `json:"l,omitempty" msgpack:"l,omitempty" cbor:"3,keyasint,omitempty"`
	}

	document struct {
		Version int           `json:"v" msgpack:"v" cbor:"1,keyasint"`
		Blocks  []storedBlock `json:"b" msgpack:"b" cbor:"2,keyasint"`
	}

	payload interface {
		marshal(doc document) ([]byte, error)
		unmarshal(data []byte) (document, error)
	}
)

func newPayload(f Format) (payload, error) {
	switch f {
	case FormatJSON:
		return jsonPayload{}, nil
	case FormatMsgpack:
		return msgpackPayload{}, nil
	case FormatCBOR:
		return cborPl, cborErr
	case FormatProtobuf:
		return protobufPayload{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", f)
	}
}

type jsonPayload struct{}

func (jsonPayload) marshal(doc document) ([]byte, error) { return json.Marshal(doc) }
func (jsonPayload) unmarshal(data []byte) (document, error) {
	var doc document
	err := json.Unmarshal(data, &doc)
	return doc, err
}

type msgpackPayload struct{}

func (msgpackPayload) marshal(doc document) ([]byte, error) { return msgpack.Marshal(doc) }
func (msgpackPayload) unmarshal(data []byte) (document, error) {
	var doc document
	err := msgpack.Unmarshal(data, &doc)
	return doc, err
}

// canonical CBOR, so equal blocks always produce equal columns
var cborPl, cborErr = newCBORPayload()

type cborPayload struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func newCBORPayload() (payload, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return nil, err
	}
	return cborPayload{enc: em, dec: dm}, nil
}

func (p cborPayload) marshal(doc document) ([]byte, error) { return p.enc.Marshal(doc) }
func (p cborPayload) unmarshal(data []byte) (document, error) {
	var doc document
	err := p.dec.Unmarshal(data, &doc)
	return doc, err
}

// protobufPayload uses the well-known Struct types, no generated messages needed.
type protobufPayload struct{}

func (protobufPayload) marshal(doc document) ([]byte, error) {
	blocks := make([]interface{}, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		blocks = append(blocks, map[string]interface{}{
			"code":        b.Code,
			"explanation": b.Explanation,
			"language":    b.Language,
		})
	}
	st, err := structpb.NewStruct(map[string]interface{}{
		"version": doc.Version,
		"blocks":  blocks,
	})
	if err != nil {
		return nil, err
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(st)
}

func (protobufPayload) unmarshal(data []byte) (document, error) {
	st := new(structpb.Struct)
	if err := proto.Unmarshal(data, st); err != nil {
		return document{}, err
	}
	fields := st.GetFields()
	doc := document{Version: int(fields["version"].GetNumberValue())}
	for _, v := range fields["blocks"].GetListValue().GetValues() {
		bf := v.GetStructValue().GetFields()
		doc.Blocks = append(doc.Blocks, storedBlock{
			Code:        bf["code"].GetStringValue(),
			Explanation: bf["explanation"].GetStringValue(),
			Language:    bf["language"].GetStringValue(),
		})
	}
	return doc, nil
}
