package main

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"lager/internal/apiclient"
	"lager/internal/capture"
	"lager/internal/domain"
	"lager/internal/lookup"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memAPI struct {
	products map[string]domain.Product
	catalog  map[string]lookup.Result
	nextID   int64
}

func newMemAPI() *memAPI {
	return &memAPI{products: map[string]domain.Product{}, catalog: map[string]lookup.Result{}, nextID: 1}
}

func (m *memAPI) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, &apiclient.APIError{Status: http.StatusNotFound}
}

func (m *memAPI) GetProductByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	p, ok := m.products[code]
	if !ok {
		return nil, &apiclient.APIError{Status: http.StatusNotFound}
	}
	return &p, nil
}

func (m *memAPI) CreateProduct(ctx context.Context, in domain.NewProduct) (*domain.Product, error) {
	p := in.Product()
	p.ID = m.nextID
	m.nextID++
	m.products[p.Barcode] = p
	return &p, nil
}

func (m *memAPI) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	existing, err := m.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	updated := patch.Apply(*existing)
	m.products[updated.Barcode] = updated
	return &updated, nil
}

func (m *memAPI) Lookup(ctx context.Context, code string) (lookup.Result, bool) {
	r, ok := m.catalog[code]
	return r, ok
}

func qrFile(t *testing.T, text string) string {
	t.Helper()
	img, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, 200, 200, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func newScanSession(paths ...string) *capture.Session {
	return capture.NewSession(capture.NewFileCamera(paths...), capture.NewZXingDecoder(), zap.NewNop())
}

func TestRunScan_CreatesFromCatalog(t *testing.T) {
	api := newMemAPI()
	api.catalog["4002"] = lookup.Result{Name: "Milch 1L"}

	var out bytes.Buffer
	err := runScan(context.Background(), newScanSession(qrFile(t, "4002")), api, scanOptions{quantity: 2}, &out, zap.NewNop())

	require.NoError(t, err)
	saved := api.products["4002"]
	assert.Equal(t, "Milch 1L", saved.Name)
	assert.Equal(t, 2, saved.Quantity)
	assert.Contains(t, out.String(), "Saved product 1")
}

func TestRunScan_IncrementsKnownProduct(t *testing.T) {
	api := newMemAPI()
	api.products["4001"] = domain.Product{ID: 9, Name: "Cola", Barcode: "4001", Quantity: 3}
	api.nextID = 10

	err := runScan(context.Background(), newScanSession(qrFile(t, "4001")), api, scanOptions{quantity: 1}, &bytes.Buffer{}, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 4, api.products["4001"].Quantity)
}

func TestRunScan_DryRunSavesNothing(t *testing.T) {
	api := newMemAPI()

	var out bytes.Buffer
	err := runScan(context.Background(), newScanSession(qrFile(t, "4003")), api, scanOptions{dryRun: true, name: "Brot", quantity: 1}, &out, zap.NewNop())

	require.NoError(t, err)
	assert.Empty(t, api.products)
	assert.Contains(t, out.String(), `"name": "Brot"`)
	assert.Contains(t, out.String(), "No product information found")
}

func TestRunScan_UnnamedProductIsRejected(t *testing.T) {
	api := newMemAPI()

	err := runScan(context.Background(), newScanSession(qrFile(t, "4004")), api, scanOptions{quantity: 1}, &bytes.Buffer{}, zap.NewNop())

	assert.Error(t, err)
	assert.Empty(t, api.products)
}

func TestRunScan_NoBarcode(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.png")

	err := runScan(context.Background(), newScanSession(missing), newMemAPI(), scanOptions{}, &bytes.Buffer{}, zap.NewNop())

	assert.ErrorIs(t, err, errNoBarcode)
}
