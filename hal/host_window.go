//go:build !tinygo && cgo

package hal

import (
	"image"
	"image/color"

	"multitool/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

const windowScale = 5

// RunWindow starts a desktop window that shows the OLED framebuffer scaled up
// and maps arrow keys, Enter and Escape onto the joystick.
// It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error, cfg HostConfig) error {
	h := newHost(cfg)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("multitool (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*windowScale, h.fb.height*windowScale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	step    func() error
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.t.step()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)
	for i := 0; i+1 < len(g.scratch); i += 2 {
		r, gg, b := rgb888From565(uint16(g.scratch[i]) | uint16(g.scratch[i+1])<<8)
		px := i / 2
		g.img.SetRGBA(px%fb.width, px/fb.width, color.RGBA{R: r, G: gg, B: b, A: 0xff})
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
