// Package workflow owns the product draft edited between a scan and a save.
package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"

	"lager/internal/barcode"
	"lager/internal/domain"
	"lager/internal/lookup"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNoActiveDraft   = errors.New("no active draft")
	ErrNameRequired    = errors.New("name is required")
	ErrBarcodeRequired = errors.New("barcode is required")
)

// Mode tells whether a draft creates a new product or edits an existing one
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Backend persists drafts
type Backend interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, in domain.NewProduct) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
}

// Lookuper resolves a barcode to advisory product details
type Lookuper interface {
	Lookup(ctx context.Context, code string) (lookup.Result, bool)
}

// Draft is the unsaved state of the product form
type Draft struct {
	ID         int64   `json:"id,omitempty"`
	Name       string  `json:"name"`
	Barcode    string  `json:"barcode"`
	Image      *string `json:"image"`
	Quantity   int     `json:"quantity"`
	CategoryID *int64  `json:"categoryId"`
}

// LookupHook is told about every lookup that was applied or came back empty
type LookupHook func(code string, result lookup.Result, found bool)

// Option configures an Editor
type Option func(*Editor)

// WithLookupHook registers a callback for finished lookups
func WithLookupHook(hook LookupHook) Option {
	return func(e *Editor) {
		e.hook = hook
	}
}

// Editor holds at most one draft. Barcode changes in create mode trigger
// an asynchronous lookup whose result is applied only while the draft that
// issued it is still active and its barcode unchanged.
type Editor struct {
	backend Backend
	lookup  Lookuper
	logger  *zap.Logger
	hook    LookupHook

	mu       sync.Mutex
	mode     Mode
	token    uuid.UUID
	draft    Draft
	original domain.Product
	nameRev  uint64
	imageRev uint64

	pending sync.WaitGroup
}

// NewEditor creates an editor. l may be nil to disable lookups.
func NewEditor(backend Backend, l Lookuper, logger *zap.Logger, opts ...Option) *Editor {
	e := &Editor{
		backend: backend,
		lookup:  l,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BeginCreate starts an empty draft for a new product
func (e *Editor) BeginCreate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset(ModeCreate)
	e.draft = Draft{Quantity: domain.DefaultQuantity}
	e.logger.Debug("Draft started", zap.String("mode", "create"), zap.String("token", e.token.String()))
}

// BeginEdit loads an existing product into a new draft
func (e *Editor) BeginEdit(ctx context.Context, id int64) error {
	product, err := e.backend.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset(ModeEdit)
	e.original = *product
	e.draft = Draft{
		ID:         product.ID,
		Name:       product.Name,
		Barcode:    product.Barcode,
		Image:      product.Image,
		Quantity:   product.Quantity,
		CategoryID: product.CategoryID,
	}
	e.logger.Debug("Draft started", zap.String("mode", "edit"), zap.Int64("product_id", id))
	return nil
}

func (e *Editor) reset(mode Mode) {
	e.mode = mode
	e.token = uuid.New()
	e.original = domain.Product{}
	e.nameRev = 0
	e.imageRev = 0
}

// Active reports whether a draft is open
func (e *Editor) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token != uuid.Nil
}

// Mode returns the mode of the open draft
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Draft returns a copy of the current draft
func (e *Editor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// SetBarcode updates the draft barcode immediately. In create mode a
// non-empty barcode also starts a lookup in the background.
func (e *Editor) SetBarcode(ctx context.Context, code string) error {
	code = barcode.Normalize(code)

	e.mu.Lock()
	if e.token == uuid.Nil {
		e.mu.Unlock()
		return ErrNoActiveDraft
	}
	e.draft.Barcode = code

	if e.mode != ModeCreate || e.lookup == nil || code == "" {
		e.mu.Unlock()
		return nil
	}

	req := lookupRequest{token: e.token, code: code, nameRev: e.nameRev, imageRev: e.imageRev}
	e.pending.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.pending.Done()
		result, found := e.lookup.Lookup(ctx, code)
		e.applyLookup(req, result, found)
	}()
	return nil
}

type lookupRequest struct {
	token    uuid.UUID
	code     string
	nameRev  uint64
	imageRev uint64
}

func (e *Editor) applyLookup(req lookupRequest, result lookup.Result, found bool) {
	e.mu.Lock()

	if e.token != req.token || e.draft.Barcode != req.code {
		e.mu.Unlock()
		e.logger.Debug("Discarding stale lookup", zap.String("barcode", req.code))
		return
	}

	if found {
		if result.Name != "" && e.nameRev == req.nameRev {
			e.draft.Name = result.Name
		}
		if result.Image != "" && e.imageRev == req.imageRev {
			image := result.Image
			e.draft.Image = &image
		}
	}
	hook := e.hook
	e.mu.Unlock()

	if hook != nil {
		hook(req.code, result, found)
	}
}

// Wait blocks until every lookup started so far has finished
func (e *Editor) Wait() {
	e.pending.Wait()
}

// SetName replaces the draft name
func (e *Editor) SetName(name string) error {
	return e.edit(func(d *Draft) {
		d.Name = name
		e.nameRev++
	})
}

// SetImage replaces or clears the draft image
func (e *Editor) SetImage(image *string) error {
	return e.edit(func(d *Draft) {
		d.Image = image
		e.imageRev++
	})
}

// SetCategory replaces or clears the draft category
func (e *Editor) SetCategory(id *int64) error {
	return e.edit(func(d *Draft) {
		d.CategoryID = id
	})
}

// SetQuantity sets the draft quantity, clamped at zero
func (e *Editor) SetQuantity(q int) error {
	return e.edit(func(d *Draft) {
		d.Quantity = max(q, 0)
	})
}

// Increment raises the draft quantity by one
func (e *Editor) Increment() error {
	return e.edit(func(d *Draft) {
		d.Quantity++
	})
}

// Decrement lowers the draft quantity by one, never below zero
func (e *Editor) Decrement() error {
	return e.edit(func(d *Draft) {
		d.Quantity = max(d.Quantity-1, 0)
	})
}

func (e *Editor) edit(fn func(d *Draft)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.token == uuid.Nil {
		return ErrNoActiveDraft
	}
	fn(&e.draft)
	return nil
}

// Submit validates the draft and saves it. On success the draft is
// discarded; on failure it stays open for correction.
func (e *Editor) Submit(ctx context.Context) (*domain.Product, error) {
	e.mu.Lock()
	if e.token == uuid.Nil {
		e.mu.Unlock()
		return nil, ErrNoActiveDraft
	}
	token := e.token
	mode := e.mode
	draft := e.draft
	original := e.original
	e.mu.Unlock()

	var errs []error
	if strings.TrimSpace(draft.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if draft.Barcode == "" {
		errs = append(errs, ErrBarcodeRequired)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	var (
		product *domain.Product
		err     error
	)
	if mode == ModeCreate {
		quantity := draft.Quantity
		product, err = e.backend.CreateProduct(ctx, domain.NewProduct{
			Name:       draft.Name,
			Barcode:    draft.Barcode,
			Image:      draft.Image,
			Quantity:   &quantity,
			CategoryID: draft.CategoryID,
		})
	} else {
		product, err = e.backend.UpdateProduct(ctx, draft.ID, diff(original, draft))
	}
	if err != nil {
		e.logger.Debug("Draft submission failed", zap.Error(err))
		return nil, err
	}

	e.mu.Lock()
	if e.token == token {
		e.token = uuid.Nil
		e.draft = Draft{}
	}
	e.mu.Unlock()

	e.logger.Info("Draft saved", zap.Int64("product_id", product.ID), zap.String("barcode", product.Barcode))
	return product, nil
}

// Cancel discards the draft. Lookups still in flight are dropped.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.token = uuid.Nil
	e.draft = Draft{}
}

// diff builds a patch holding only the fields the draft changed
func diff(original domain.Product, d Draft) domain.ProductPatch {
	var patch domain.ProductPatch
	if d.Name != original.Name {
		patch.Name = &d.Name
	}
	if d.Barcode != original.Barcode {
		patch.Barcode = &d.Barcode
	}
	if !equalPtr(d.Image, original.Image) {
		patch.Image = nullable(d.Image)
	}
	if d.Quantity != original.Quantity {
		patch.Quantity = &d.Quantity
	}
	if !equalPtr(d.CategoryID, original.CategoryID) {
		patch.CategoryID = nullable(d.CategoryID)
	}
	return patch
}

func nullable[T any](v *T) domain.Nullable[T] {
	if v == nil {
		return domain.Null[T]()
	}
	return domain.Some(*v)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
