package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"expressbuy/internal/domain"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

// MaxImageBytes bounds a single product image upload.
const MaxImageBytes = 5 << 20

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Disk keeps uploaded images under Dir and serves them from BaseURL.
type Disk struct {
	Dir     string
	BaseURL string
}

func NewDisk(dir, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Disk{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save sniffs the content type, stores the file under a random key and returns
// its public URL plus the key needed to delete it later.
func (d *Disk) Save(fh *multipart.FileHeader) (domain.Image, error) {
	if fh.Size > MaxImageBytes {
		return domain.Image{}, fmt.Errorf("%w: larger than %d bytes", ErrUnsupportedImage, MaxImageBytes)
	}
	src, err := fh.Open()
	if err != nil {
		return domain.Image{}, err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return domain.Image{}, err
	}
	ext, ok := imageExt[http.DetectContentType(head[:n])]
	if !ok {
		return domain.Image{}, ErrUnsupportedImage
	}

	key := "products/" + uuid.NewString() + ext
	full := filepath.Join(d.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return domain.Image{}, err
	}
	dst, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return domain.Image{}, err
	}
	if _, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head[:n]), src)); err != nil {
		_ = dst.Close()
		_ = os.Remove(full)
		return domain.Image{}, err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(full)
		return domain.Image{}, err
	}
	return domain.Image{URL: d.BaseURL + "/" + key, Key: key}, nil
}

// Delete removes a stored image; a missing file is not an error.
func (d *Disk) Delete(key string) error {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("invalid image key %q", key)
	}
	if err := os.Remove(filepath.Join(d.Dir, clean)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
