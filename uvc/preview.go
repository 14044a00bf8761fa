package uvc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

// writePreview saves a downscaled copy of a capture next to it, with a
// _preview suffix. Width is fixed; height keeps the aspect ratio.
func writePreview(capturePath string, encoded []byte, width int) error {
	img, err := imaging.Decode(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("fail to decode capture: %w", err)
	}

	preview := imaging.Resize(img, width, 0, imaging.Lanczos)
	name := strings.TrimSuffix(capturePath, ".jpg") + "_preview.jpg"
	if err := imaging.Save(preview, name); err != nil {
		return fmt.Errorf("fail to save preview: %w", err)
	}
	return nil
}
