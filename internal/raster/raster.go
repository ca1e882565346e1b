// Package raster paints compiled draw commands into an image with gg. It is
// the server-side preview of what a canvas client draws, including the crop
// masks the gizmo assigns to its targets.
package raster

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/inamate/transformer/internal/engine"
)

const placeholderColor = "#888888"

// Options configures a Renderer.
type Options struct {
	Width      int
	Height     int
	Scale      float64 // device pixels per scene unit, default 1
	Background string  // hex color, empty for transparent
	Logger     *slog.Logger
}

// Renderer paints draw command lists. A Renderer holds no per-frame state
// and may be shared.
type Renderer struct {
	opts Options
	log  *slog.Logger
}

// New creates a renderer.
func New(opts Options) *Renderer {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Renderer{opts: opts, log: opts.Logger}
}

// layer is an open save/restore pair. A clip inside it redirects drawing to
// an offscreen context that is composited through the clip mask on restore.
type layer struct {
	parent    *gg.Context
	offscreen *gg.Context
	mask      *gg.Mask
}

// Render paints cmds in order and returns the finished context.
func (r *Renderer) Render(cmds []engine.DrawCommand) (*gg.Context, error) {
	w := int(float64(r.opts.Width) * r.opts.Scale)
	h := int(float64(r.opts.Height) * r.opts.Scale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}

	root := gg.NewContext(w, h)
	if r.opts.Background != "" {
		root.ClearWithColor(gg.Hex(r.opts.Background))
	}

	dc := root
	var stack []*layer

	for i, cmd := range cmds {
		switch cmd.Op {
		case "save":
			dc.Push()
			stack = append(stack, &layer{parent: dc})

		case "restore":
			if len(stack) == 0 {
				return nil, fmt.Errorf("command %d: restore without save", i)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.offscreen != nil {
				composite(top.parent, top.offscreen, top.mask)
				top.offscreen.Close()
			}
			dc = top.parent
			dc.Pop()

		case "clip":
			if len(stack) == 0 {
				return nil, fmt.Errorf("command %d: clip outside save", i)
			}
			r.setTransform(dc, cmd.Transform)
			tracePath(dc, cmd.Path)
			mask := dc.AsMask()
			dc.Clip()

			top := stack[len(stack)-1]
			if top.mask != nil {
				mask = intersect(top.mask, mask)
			}
			top.mask = mask
			if top.offscreen == nil {
				top.offscreen = gg.NewContext(w, h)
			}
			dc = top.offscreen

		case "path":
			r.setTransform(dc, cmd.Transform)
			if err := r.paintPath(dc, cmd); err != nil {
				return nil, fmt.Errorf("command %d (%s): %w", i, cmd.ObjectID, err)
			}

		case "image":
			r.setTransform(dc, cmd.Transform)
			dc.DrawRectangle(0, 0, cmd.ImageWidth, cmd.ImageHeight)
			setColor(dc, placeholderColor, cmd.Opacity)
			if err := dc.Fill(); err != nil {
				return nil, fmt.Errorf("command %d (%s): %w", i, cmd.ObjectID, err)
			}

		default:
			r.log.Warn("raster: unknown draw op", "op", cmd.Op, "index", i)
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.offscreen != nil {
			composite(top.parent, top.offscreen, top.mask)
			top.offscreen.Close()
		}
		top.parent.Pop()
	}

	r.log.Debug("raster frame", "commands", len(cmds), "width", w, "height", h)
	return root, nil
}

// EncodePNG renders cmds and writes the result as PNG.
func (r *Renderer) EncodePNG(out io.Writer, cmds []engine.DrawCommand) error {
	dc, err := r.Render(cmds)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(out)
}

func (r *Renderer) setTransform(dc *gg.Context, t []float64) {
	m := gg.Scale(r.opts.Scale, r.opts.Scale)
	if len(t) == 6 {
		m = m.Multiply(toMatrix(t))
	}
	dc.SetTransform(m)
}

func (r *Renderer) paintPath(dc *gg.Context, cmd engine.DrawCommand) error {
	tracePath(dc, cmd.Path)

	stroke := cmd.Stroke != "" && cmd.StrokeWidth > 0
	if cmd.Fill != "" {
		setColor(dc, cmd.Fill, cmd.Opacity)
		var err error
		if stroke {
			err = dc.FillPreserve()
		} else {
			err = dc.Fill()
		}
		if err != nil {
			return err
		}
	}
	if stroke {
		setColor(dc, cmd.Stroke, cmd.Opacity)
		dc.SetLineWidth(cmd.StrokeWidth)
		return dc.Stroke()
	}
	dc.ClearPath()
	return nil
}

// toMatrix converts [a b c d e f] (x' = a*x + c*y + e) to gg's row-major form.
func toMatrix(t []float64) gg.Matrix {
	return gg.Matrix{
		A: t[0], B: t[2], C: t[4],
		D: t[1], E: t[3], F: t[5],
	}
}

func tracePath(dc *gg.Context, path []engine.PathCommand) {
	for _, c := range path {
		args := c.Args()
		switch c.Op() {
		case "M":
			if len(args) >= 2 {
				dc.MoveTo(args[0], args[1])
			}
		case "L":
			if len(args) >= 2 {
				dc.LineTo(args[0], args[1])
			}
		case "Q":
			if len(args) >= 4 {
				dc.QuadraticTo(args[0], args[1], args[2], args[3])
			}
		case "C":
			if len(args) >= 6 {
				dc.CubicTo(args[0], args[1], args[2], args[3], args[4], args[5])
			}
		case "Z":
			dc.ClosePath()
		}
	}
}

func setColor(dc *gg.Context, hex string, opacity float64) {
	c := gg.Hex(hex)
	dc.SetRGBA(c.R, c.G, c.B, c.A*opacity)
}

// composite draws src onto dst with each pixel's alpha scaled by mask.
func composite(dst, src *gg.Context, mask *gg.Mask) {
	img, ok := src.Image().(*image.RGBA)
	if !ok {
		return
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cov := uint32(mask.At(x-b.Min.X, y-b.Min.Y))
			if cov == 255 {
				continue
			}
			i := img.PixOffset(x, y)
			for k := 0; k < 4; k++ {
				img.Pix[i+k] = uint8(uint32(img.Pix[i+k]) * cov / 255)
			}
		}
	}

	dst.Push()
	dst.Identity()
	dst.DrawImage(gg.ImageBufFromImage(img), 0, 0)
	dst.Pop()
}

func intersect(a, b *gg.Mask) *gg.Mask {
	out := a.Clone()
	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			out.Set(x, y, uint8(uint32(a.At(x, y))*uint32(b.At(x, y))/255))
		}
	}
	return out
}
