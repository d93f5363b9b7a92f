// Package util - Filesystem helpers for benchmark and demo input.
package util

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ImageFile represents a decoded image from a benchmark corpus directory.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Image is the decoded image.
	Image image.Image
	// Frame is the frame number parsed from a "frame-N" filename, or the
	// load order when the name carries no number.
	Frame int
}

// LoadDirectoryImageFiles reads and decodes all image files from a
// directory, sorted by frame number.
//
// Arguments:
//   - dir: Directory path containing image files.
//
// Returns:
//   - []ImageFile: The decoded images.
//   - error: Error if reading or decoding fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "util: reading corpus directory %s", dir)
	}

	var images []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := filepath.Ext(file.Name())
		switch strings.ToLower(ext) {
		case ".jpg", ".jpeg", ".png":
			imgPath := filepath.Join(dir, file.Name())
			data, readErr := os.ReadFile(imgPath)
			if readErr != nil {
				return nil, errors.Wrapf(readErr, "util: reading %s", imgPath)
			}
			img, _, decodeErr := image.Decode(bytes.NewReader(data))
			if decodeErr != nil {
				return nil, errors.Wrapf(decodeErr, "util: decoding %s", imgPath)
			}
			images = append(images, ImageFile{
				Path:  imgPath,
				Image: img,
				Frame: frameNumber(file.Name(), ext, len(images)),
			})
		}
	}

	sort.Slice(images, func(i, j int) bool {
		return images[i].Frame < images[j].Frame
	})

	return images, nil
}

func frameNumber(name, ext string, fallback int) int {
	base := strings.TrimSuffix(strings.TrimPrefix(name, "frame-"), ext)
	if n, err := strconv.Atoi(base); err == nil {
		return n
	}
	return fallback
}
