package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var derivatives = []struct {
	name string
	edge int
}{
	{"small", 150},
	{"medium", 480},
	{"large", 1080},
}

// thumbnails derives JPEG copies bounded by each derivative edge. Any failure
// leaves the image with its original only.
func (i *Intake) thumbnails(ctx context.Context, ownerID string, id uuid.UUID, data []byte) map[string]string {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		i.logger.Warn(fmt.Sprintf("failed to decode image %s: %v", id, err))
		return nil
	}

	out := make(map[string]string, len(derivatives))
	for _, d := range derivatives {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, scale(src, d.edge), &jpeg.Options{Quality: 85}); err != nil {
			i.logger.Warn(fmt.Sprintf("failed to encode %s thumbnail of %s: %v", d.name, id, err))
			return nil
		}
		key := fmt.Sprintf("%s/%s_%s.jpg", ownerID, id, d.name)
		url, err := i.objects.Put(ctx, key, "image/jpeg", &buf)
		if err != nil {
			i.logger.Warn(fmt.Sprintf("failed to store %s thumbnail of %s: %v", d.name, id, err))
			return nil
		}
		out[d.name] = url
	}
	return out
}

// scale fits src into an edge x edge box keeping the aspect ratio. Images
// already inside the box keep their size.
func scale(src image.Image, edge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > edge || h > edge {
		if w >= h {
			h = max(1, h*edge/w)
			w = edge
		} else {
			w = max(1, w*edge/h)
			h = edge
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
