// media.go - Upload and clean-up of attached images

package handlers

import (
	"context"
	"log"
	"mime/multipart"

	"go-inventory-backend/storage"
)

// upload saves fh under prefix and returns the new storage key.
func (h *Handler) upload(ctx context.Context, prefix string, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := storage.NewKey(prefix, fh.Filename)
	if err := h.media.Save(ctx, key, fh.Header.Get("Content-Type"), f); err != nil {
		return "", err
	}
	return key, nil
}

// discardMedia deletes a stored object that no row references any more.
// Absolute URLs were never ours to delete. Failures are only logged.
func (h *Handler) discardMedia(ctx context.Context, key string) {
	if key == "" || storage.IsAbsolute(key) {
		return
	}
	if err := h.media.Delete(context.WithoutCancel(ctx), key); err != nil {
		log.Printf("media: could not delete %s: %v", key, err)
	}
}
