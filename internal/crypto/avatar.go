package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	avatarGrid = 5
	avatarSize = 120
)

// Avatar renders a deterministic, horizontally mirrored 5x5 identicon for seed
// and returns it as a PNG data URI. The same seed always yields the same image.
func Avatar(seed string) (string, error) {
	sum := sha256.Sum256([]byte(seed))

	fg := color.NRGBA{R: sum[0], G: sum[1], B: sum[2], A: 0xff}
	bg := color.NRGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}

	grid := imaging.New(avatarGrid, avatarGrid, bg)
	half := (avatarGrid + 1) / 2
	for y := 0; y < avatarGrid; y++ {
		for x := 0; x < half; x++ {
			// One bit per cell, starting after the color bytes.
			if sum[3+y*half+x]&1 == 0 {
				continue
			}
			grid.Set(x, y, fg)
			grid.Set(avatarGrid-1-x, y, fg)
		}
	}

	img := imaging.Resize(grid, avatarSize, avatarSize, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encoding avatar: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
