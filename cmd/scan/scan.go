package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"lager/internal/apiclient"
	"lager/internal/capture"
	"lager/internal/domain"
	"lager/internal/lookup"
	"lager/internal/workflow"

	"go.uber.org/zap"
)

// scanBackend is what a scan needs from the inventory API
type scanBackend interface {
	workflow.Backend
	workflow.Lookuper
	GetProductByBarcode(ctx context.Context, code string) (*domain.Product, error)
}

// runScan captures one barcode, resolves it into a draft and saves it
func runScan(ctx context.Context, session *capture.Session, backend scanBackend, opts scanOptions, out io.Writer, log *zap.Logger) error {
	code, err := captureOnce(ctx, session)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Barcode: %s\n", code)

	editor := workflow.NewEditor(backend, backend, log, workflow.WithLookupHook(func(code string, r lookup.Result, found bool) {
		if !found {
			fmt.Fprintln(out, "No product information found in the catalog")
		}
	}))

	existing, err := backend.GetProductByBarcode(ctx, code)
	switch {
	case err == nil:
		if err := editor.BeginEdit(ctx, existing.ID); err != nil {
			return err
		}
		if err := editor.Increment(); err != nil {
			return err
		}
	case errors.Is(err, apiclient.ErrNotFound):
		editor.BeginCreate()
		if err := fillNewDraft(ctx, editor, code, opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("failed to check barcode: %w", err)
	}

	if err := printJSON(out, editor.Draft()); err != nil {
		return err
	}
	if opts.dryRun {
		editor.Cancel()
		return nil
	}

	product, err := editor.Submit(ctx)
	if err != nil {
		editor.Cancel()
		return fmt.Errorf("failed to save product: %w", err)
	}

	fmt.Fprintf(out, "Saved product %d (%s), quantity %d\n", product.ID, product.Name, product.Quantity)
	return nil
}

// captureOnce runs a capture session to its first barcode and always
// releases the camera
func captureOnce(ctx context.Context, session *capture.Session) (string, error) {
	ch, err := session.Start(ctx)
	if err != nil {
		return "", err
	}
	defer session.Stop()

	select {
	case code, ok := <-ch:
		if !ok {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", errNoBarcode
		}
		return code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func fillNewDraft(ctx context.Context, editor *workflow.Editor, code string, opts scanOptions) error {
	if err := editor.SetQuantity(opts.quantity); err != nil {
		return err
	}
	if opts.categoryID > 0 {
		id := opts.categoryID
		if err := editor.SetCategory(&id); err != nil {
			return err
		}
	}

	if err := editor.SetBarcode(ctx, code); err != nil {
		return err
	}
	editor.Wait()

	if editor.Draft().Name == "" && opts.name != "" {
		return editor.SetName(opts.name)
	}
	return nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
