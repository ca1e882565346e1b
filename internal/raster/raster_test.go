package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/transformer/internal/engine"
)

func redSquare(size float64) engine.DrawCommand {
	return engine.DrawCommand{
		Op:        "path",
		ObjectID:  "sq",
		Transform: engine.Identity().ToSlice(),
		Path:      engine.RectPath(engine.Rect{Width: size, Height: size}),
		Fill:      "#ff0000",
		Opacity:   1,
	}
}

func isRed(t *testing.T, dc *gg.Context, x, y int) bool {
	t.Helper()
	r, g, b, a := dc.Image().At(x, y).RGBA()
	return r > 0xc000 && g < 0x4000 && b < 0x4000 && a > 0xc000
}

func TestRenderFill(t *testing.T) {
	r := New(Options{Width: 40, Height: 40, Background: "#000000"})

	dc, err := r.Render([]engine.DrawCommand{redSquare(20)})
	require.NoError(t, err)
	defer dc.Close()

	assert.True(t, isRed(t, dc, 10, 10))
	assert.False(t, isRed(t, dc, 30, 30))
}

func TestRenderScale(t *testing.T) {
	r := New(Options{Width: 40, Height: 40, Scale: 2, Background: "#000000"})

	dc, err := r.Render([]engine.DrawCommand{redSquare(20)})
	require.NoError(t, err)
	defer dc.Close()

	assert.Equal(t, 80, dc.Width())
	assert.True(t, isRed(t, dc, 30, 30))
	assert.False(t, isRed(t, dc, 60, 60))
}

func TestRenderClip(t *testing.T) {
	r := New(Options{Width: 40, Height: 40, Background: "#000000"})

	cmds := []engine.DrawCommand{
		{Op: "save"},
		{
			Op:        "clip",
			Transform: engine.Translate(5, 5).ToSlice(),
			Path:      engine.RectPath(engine.Rect{Width: 10, Height: 10}),
		},
		redSquare(30),
		{Op: "restore"},
	}

	dc, err := r.Render(cmds)
	require.NoError(t, err)
	defer dc.Close()

	assert.True(t, isRed(t, dc, 10, 10))
	assert.False(t, isRed(t, dc, 2, 2))
	assert.False(t, isRed(t, dc, 25, 25))
}

func TestRenderRejectsUnbalancedRestore(t *testing.T) {
	r := New(Options{Width: 10, Height: 10})
	_, err := r.Render([]engine.DrawCommand{{Op: "restore"}})
	assert.Error(t, err)

	_, err = New(Options{}).Render(nil)
	assert.Error(t, err)
}

func TestEncodePNG(t *testing.T) {
	r := New(Options{Width: 16, Height: 8})

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf, []engine.DrawCommand{redSquare(4)}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}
