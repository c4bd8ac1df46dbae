package explanation

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-studio/core"
	"github.com/trezcool/masomo-studio/core/content"
	"github.com/trezcool/masomo-studio/core/draft"
)

var (
	// errors
	ErrDraftNotFound = errors.New("draft not found")
)

type (
	// BlockCache keeps decoded blocks by a hash of their columns.
	// Hashes may collide, so entries carry the columns they were decoded from.
	BlockCache interface {
		Get(key uint64) (CachedBlocks, bool)
		Set(key uint64, entry CachedBlocks)
	}

	CachedBlocks struct {
		Columns content.Columns
		Blocks  []content.Block
	}

	Deps struct {
		Conf     *core.Config
		Logger   core.Logger
		Validate *validator.Validate
		Drafts   draft.Backend
		Cache    BlockCache // optional
	}

	Service struct {
		log      core.Logger
		validate *validator.Validate
		codec    content.Codec
		readOpts []content.Option
		cache    BlockCache
		drafts   *draft.Store[draft.Form]
	}
)

// NopCache never caches anything.
type NopCache struct{}

var _ BlockCache = NopCache{}

func (NopCache) Get(uint64) (CachedBlocks, bool) { return CachedBlocks{}, false }
func (NopCache) Set(uint64, CachedBlocks)        {}

var nowFunc = time.Now

func NewService(deps Deps) (*Service, error) {
	if deps.Conf == nil {
		return nil, errors.New("explanation service: config is required")
	}
	if deps.Validate == nil {
		return nil, errors.New("explanation service: validator is required")
	}
	if deps.Drafts == nil {
		return nil, errors.New("explanation service: drafts backend is required")
	}
	if deps.Logger == nil {
		deps.Logger = core.NopLogger{}
	}
	if deps.Cache == nil {
		deps.Cache = NopCache{}
	}

	format, err := content.ParseFormat(deps.Conf.Codec.DefaultFormat)
	if err != nil {
		return nil, errors.Wrap(err, "parsing default codec format")
	}
	readOpts := []content.Option{content.WithMaxPayload(deps.Conf.Codec.MaxPayload)}
	codec, err := content.NewCodec(format, readOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating default codec")
	}

	return &Service{
		log:      deps.Logger,
		validate: deps.Validate,
		codec:    codec,
		readOpts: readOpts,
		cache:    deps.Cache,
		drafts:   draft.NewStore[draft.Form](deps.Drafts, deps.Conf.Drafts.Namespace, deps.Conf.Drafts.TTL),
	}, nil
}

// DefaultFormat is the format Encode uses when the request names none.
func (svc *Service) DefaultFormat() content.Format { return svc.codec.Format() }

func (svc *Service) codecFor(format string) (content.Codec, error) {
	if format == "" {
		return svc.codec, nil
	}
	f, err := content.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if f == svc.codec.Format() {
		return svc.codec, nil
	}
	return content.NewCodec(f, svc.readOpts...)
}

// Encode joins the request blocks into storage columns.
func (svc *Service) Encode(_ context.Context, req EncodeRequest) (content.Columns, content.Format, error) {
	if err := req.Validate(svc.validate); err != nil {
		return content.Columns{}, "", err
	}
	codec, err := svc.codecFor(req.Format)
	if err != nil {
		return content.Columns{}, "", err
	}
	cols, err := codec.Encode(toBlocks(req.Blocks))
	if err != nil {
		return content.Columns{}, "", errors.Wrap(err, "encoding blocks")
	}
	return cols, codec.Format(), nil
}

// Decode splits stored columns back into blocks, in any stored format.
// Structured envelopes that cannot be read are reported as validation errors on the code column.
func (svc *Service) Decode(_ context.Context, req DecodeRequest) ([]content.Block, error) {
	cols := req.columns()
	key := hashColumns(cols)
	if e, ok := svc.cache.Get(key); ok && e.Columns == cols {
		return e.Blocks, nil
	}

	blocks, err := content.Read(cols, svc.readOpts...)
	if err != nil {
		return nil, codeColumnError(err)
	}
	svc.cache.Set(key, CachedBlocks{Columns: cols, Blocks: blocks})
	return blocks, nil
}

// Convert re-encodes stored columns with another format.
func (svc *Service) Convert(ctx context.Context, req ConvertRequest) (content.Columns, error) {
	if err := req.Validate(svc.validate); err != nil {
		return content.Columns{}, err
	}
	blocks, err := svc.Decode(ctx, DecodeRequest{Code: req.Code, Explanation: req.Explanation})
	if err != nil {
		return content.Columns{}, err
	}
	codec, err := svc.codecFor(req.Format)
	if err != nil {
		return content.Columns{}, err
	}
	cols, err := codec.Encode(blocks)
	if err != nil {
		return content.Columns{}, errors.Wrap(err, "encoding blocks")
	}
	svc.log.Debug("converted blocks", "from", content.Detect(req.columns()), "to", codec.Format(), "blocks", len(blocks))
	return cols, nil
}

// Resolve turns a raw explanation record into a math or code item.
func (svc *Service) Resolve(_ context.Context, raw []byte) (content.Item, error) {
	item, err := content.ResolveJSON(raw, svc.readOpts...)
	if err != nil {
		if errors.Cause(err) == content.ErrMalformedRecord {
			return nil, core.NewValidationError(err)
		}
		return nil, codeColumnError(err)
	}
	return item, nil
}

func (svc *Service) InferLanguage(code string) string {
	return content.InferLanguage(code)
}

// NewDraft saves an empty code draft under a fresh key.
func (svc *Service) NewDraft(ctx context.Context) (string, draft.Form, error) {
	key := draft.NewKey()
	form := DraftInput{}.form(nowFunc())
	if err := svc.drafts.Save(ctx, key, form); err != nil {
		return "", draft.Form{}, err
	}
	return key, form, nil
}

func (svc *Service) SaveDraft(ctx context.Context, key string, in DraftInput) (draft.Form, error) {
	if err := svc.validateKey(key); err != nil {
		return draft.Form{}, err
	}
	if err := in.Validate(svc.validate); err != nil {
		return draft.Form{}, err
	}
	form := in.form(nowFunc())
	if err := svc.drafts.Save(ctx, key, form); err != nil {
		return draft.Form{}, err
	}
	return form, nil
}

// LoadDraft returns ErrDraftNotFound for unknown or expired keys.
func (svc *Service) LoadDraft(ctx context.Context, key string) (draft.Form, error) {
	if err := svc.validateKey(key); err != nil {
		return draft.Form{}, err
	}
	form, ok, err := svc.drafts.Get(ctx, key)
	if err != nil {
		return draft.Form{}, err
	}
	if !ok {
		return draft.Form{}, ErrDraftNotFound
	}
	return form, nil
}

func (svc *Service) DeleteDraft(ctx context.Context, key string) error {
	if err := svc.validateKey(key); err != nil {
		return err
	}
	return svc.drafts.Delete(ctx, key)
}

func (svc *Service) validateKey(key string) error {
	k := DraftKey{Key: key}
	return k.Validate(svc.validate)
}

func codeColumnError(err error) error {
	switch errors.Cause(err) {
	case content.ErrPayloadTooLarge, content.ErrUnsupportedVersion:
		return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
	}
	return err
}

// hashColumns keys the block cache; the zero byte keeps ("ab", "c") apart from ("a", "bc").
func hashColumns(cols content.Columns) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(cols.Code))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(cols.Explanation))
	return h.Sum64()
}
