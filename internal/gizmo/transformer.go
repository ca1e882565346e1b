// Package gizmo implements an on-canvas transform manipulator for a group of
// scene targets: whole-group translation, corner scaling, edge cropping and
// rotation about a shared pivot.
//
// The transformer tracks two rectangles in its own local space. The
// unclipped rectangle is the full extent reachable by the group's current
// scale, and the clipped rectangle is the visible crop, always contained in
// the unclipped one. Every drag update is recomputed from the snapshot taken
// when the drag began, never from the targets' live state, so a gesture with
// many move events lands on exactly the same result as one with a single
// event.
package gizmo

import (
	"log/slog"
	"math"

	"github.com/inamate/transformer/internal/engine"
	"github.com/inamate/transformer/internal/pointer"
)

const cursorDefault = "default"

// Transformer is the gizmo. It is a coordinate space of its own, positioned
// at the group pivot and rotated by the committed angle, and it owns the
// handles, the wireframe and the crop mask assigned to every target.
//
// A Transformer is driven from a single event loop and is not safe for
// concurrent use.
type Transformer struct {
	opts  Options
	group []Target
	log   *slog.Logger

	parent   engine.Space
	position engine.Point // in parent space
	rotation float64      // displayed rotation, radians

	wireframe *Wireframe
	handles   map[HandleKind]*Handle
	mask      *engine.Mask
	region    *pointer.Region

	state        State
	activeHandle HandleKind
	lastPointer  engine.Point
	cursor       string
	session      *dragSession

	initialized    bool
	destroyed      bool
	pivotWorld     engine.Point
	angle          float64
	unclippedLocal engine.Rect
	clippedLocal   engine.Rect
	minClipW       float64
	minClipH       float64
}

// dragSession is the immutable basis of one pointer gesture.
type dragSession struct {
	start         map[Target]engine.Matrix2D
	opBounds      engine.Rect
	unclippedAtOp engine.Rect
	startAngle    float64
	scalePivot    engine.Point
}

// New creates a transformer over opts.Group. Its geometry is initialized on
// the scheduler's next pass, once the targets have settled; until then it
// ignores input.
func New(opts Options, sched Scheduler) *Transformer {
	opts = opts.withDefaults()

	t := &Transformer{
		opts:      opts,
		group:     opts.Group,
		log:       opts.Logger,
		wireframe: &Wireframe{},
		handles:   make(map[HandleKind]*Handle, len(HandleKinds)),
		cursor:    cursorDefault,
		minClipW:  opts.MinClipW,
		minClipH:  opts.MinClipH,
	}
	t.mask = &engine.Mask{Owner: t}

	rot := rotateCallbacks{t}
	for _, k := range HandleKinds {
		var cb Callbacks = t
		if k == Rotate {
			cb = rot
		}
		t.handles[k] = NewHandle(k, k.Cursor(), cb)
	}
	t.bindRegions()

	if sched != nil {
		sched.AddOnce(t.initBounds)
	}
	return t
}

func (t *Transformer) bindRegions() {
	t.region = pointer.NewRegion("transformer", nil)

	frame := pointer.NewRegion("wireframe", func(g engine.Point) bool {
		return t.initialized && t.wireframe.HitArea().ContainsPoint(t.ToLocal(g))
	})
	t.region.AddChild(frame)

	for _, k := range HandleKinds {
		h := t.handles[k]
		r := pointer.NewRegion(string(k), func(g engine.Point) bool {
			return t.initialized && h.Contains(t.ToLocal(g))
		})
		h.Bind(r)
		t.region.AddChild(r)
	}

	t.region.On(pointer.Down, t.onDown)
	t.region.On(pointer.Up, t.onUp)
	t.region.On(pointer.UpOutside, t.onUp)
	t.region.On(pointer.GlobalMove, t.onMove)
}

// Attach places the transformer in parent's coordinate space and, when host
// is non-nil, adds its hit regions on top of host's children.
func (t *Transformer) Attach(parent engine.Space, host *pointer.Region) {
	if t.destroyed {
		return
	}
	t.parent = parent
	if host != nil {
		host.AddChild(t.region)
	}
	if t.initialized {
		t.refresh(t.angle)
	}
}

// Destroy detaches the transformer from its parent and input tree and clears
// the crop mask from every target. A pending initialization becomes a no-op.
func (t *Transformer) Destroy() {
	t.destroyed = true
	if p := t.region.Parent(); p != nil {
		p.RemoveChild(t.region)
	}
	for _, o := range t.group {
		o.SetMask(nil)
	}
	t.parent = nil
	t.state = Idle
	t.activeHandle = ""
	t.session = nil
}

func (t *Transformer) initBounds() {
	if t.initialized || t.destroyed {
		return
	}

	ob := t.computeWorldAABB()
	t.pivotWorld = ob.Center()

	w := math.Max(t.minClipW, ob.Width)
	h := math.Max(t.minClipH, ob.Height)
	local := engine.Rect{X: -w / 2, Y: -h / 2, Width: w, Height: h}
	t.unclippedLocal = local
	t.clippedLocal = local

	t.initialized = true
	t.refresh(t.angle)

	t.log.Debug("gizmo initialized", "targets", len(t.group), "pivot", t.pivotWorld, "width", w, "height", h)
}

// --- whole-group move ---

func (t *Transformer) onDown(e *pointer.Event) {
	if !t.initialized || t.state != Idle {
		return
	}
	t.state = GroupMoving
	t.lastPointer = e.Global
	t.cursor = cursorGrabbing
}

func (t *Transformer) onUp(e *pointer.Event) {
	if t.state != GroupMoving {
		return
	}
	t.state = Idle
	t.cursor = cursorDefault
	t.notifyDragEnded("")
}

// onMove translates the group by the pointer delta measured in the parent's
// space. The transformer's own rotation plays no part here, unlike handle
// drags which read the pointer through the transformer's local space.
// Targets living under another parent get the same motion expressed in
// their own parent's space.
func (t *Transformer) onMove(e *pointer.Event) {
	if t.state != GroupMoving || t.parent == nil {
		return
	}

	d := parentDelta(t.parent, t.lastPointer, e.Global)
	for _, o := range t.group {
		p := o.Parent()
		if p == nil {
			continue
		}
		od := d
		if p != t.parent {
			od = parentDelta(p, t.lastPointer, e.Global)
		}
		o.SetPosition(o.Position().Add(od))
	}

	pivot := t.parent.ToLocal(t.pivotWorld).Add(d)
	t.pivotWorld = t.parent.WorldTransform().Apply(pivot)

	t.lastPointer = e.Global
	t.refresh(t.angle)
}

func parentDelta(s engine.Space, from, to engine.Point) engine.Point {
	return s.ToLocal(to).Sub(s.ToLocal(from))
}

// --- handle drags ---

// BeginDrag starts a scale or crop drag. It is the Callbacks entry point for
// the eight resize handles; Rotate is forwarded to BeginRotateDrag.
func (t *Transformer) BeginDrag(kind HandleKind, start engine.Point) {
	if !t.initialized || !kind.Valid() || t.state == HandleDragging {
		return
	}
	if kind == Rotate {
		t.BeginRotateDrag(start)
		return
	}

	t.state = HandleDragging
	t.activeHandle = kind
	t.session = t.snapshot()
	t.rotation = t.angle

	if !kind.IsSide() {
		t.session.scalePivot = t.scalePivot(kind, t.session.opBounds)
	}

	t.log.Debug("drag begin", "handle", kind, "bounds", t.session.opBounds)
}

// UpdateDrag applies the pointer position of the active handle.
func (t *Transformer) UpdateDrag(kind HandleKind, p engine.Point) {
	if t.state != HandleDragging || kind != t.activeHandle {
		return
	}
	switch {
	case kind == Rotate:
		t.rotate(p)
	case kind.IsSide():
		t.clipEdge(kind, p)
	default:
		t.scale(kind, p)
	}
}

// EndDrag commits the live rotation and returns to Idle.
func (t *Transformer) EndDrag() {
	if t.state != HandleDragging {
		return
	}
	kind := t.activeHandle

	t.angle = t.rotation
	t.activeHandle = ""
	t.state = Idle
	t.session = nil
	t.refresh(t.angle)

	t.log.Debug("drag end", "handle", kind, "angle", t.angle)
	t.notifyDragEnded(kind)
}

// BeginRotateDrag starts a rotation gesture from start (global).
func (t *Transformer) BeginRotateDrag(start engine.Point) {
	if !t.initialized || t.state == HandleDragging {
		return
	}

	t.state = HandleDragging
	t.activeHandle = Rotate
	t.session = t.snapshot()
	t.rotation = t.angle
	t.session.startAngle = math.Atan2(start.Y-t.pivotWorld.Y, start.X-t.pivotWorld.X)

	t.log.Debug("drag begin", "handle", Rotate, "startAngle", t.session.startAngle)
}

// rotateCallbacks routes the rotate handle to the rotation gesture.
type rotateCallbacks struct{ t *Transformer }

func (r rotateCallbacks) BeginDrag(_ HandleKind, start engine.Point) { r.t.BeginRotateDrag(start) }
func (r rotateCallbacks) UpdateDrag(_ HandleKind, p engine.Point)    { r.t.UpdateDrag(Rotate, p) }
func (r rotateCallbacks) EndDrag()                                   { r.t.EndDrag() }

func (t *Transformer) snapshot() *dragSession {
	s := &dragSession{
		start:         make(map[Target]engine.Matrix2D, len(t.group)),
		opBounds:      t.clippedLocal,
		unclippedAtOp: t.unclippedLocal,
	}
	for _, o := range t.group {
		s.start[o] = o.LocalTransform()
	}
	return s
}

func (t *Transformer) scale(kind HandleKind, global engine.Point) {
	s := t.session
	pivot := s.scalePivot
	proposed := t.proposeScaledRect(kind, t.ToLocal(global), pivot)

	sx := proposed.Width / s.opBounds.Width
	sy := proposed.Height / s.opBounds.Height

	t.applyWorldDelta(deltaScale(t.ToGlobal(pivot), t.angle, sx, sy))

	t.unclippedLocal = t.scaleRectAbout(s.unclippedAtOp, pivot, sx, sy)
	t.setCrop(proposed)
}

// clipEdge moves one edge of the crop rectangle. Targets are not touched.
func (t *Transformer) clipEdge(side HandleKind, global engine.Point) {
	p := t.ToLocal(global)
	s := t.clippedLocal

	switch side {
	case MiddleLeft:
		right := s.Right()
		left := math.Min(p.X, right-t.minClipW)
		s.Width = right - left
		s.X = left
	case MiddleRight:
		s.Width = math.Max(t.minClipW, p.X-s.X)
	case MiddleTop:
		bottom := s.Bottom()
		top := math.Min(p.Y, bottom-t.minClipH)
		s.Height = bottom - top
		s.Y = top
	case MiddleBottom:
		s.Height = math.Max(t.minClipH, p.Y-s.Y)
	}

	t.clippedLocal = t.clampRectToMax(s, t.unclippedLocal)
	t.refresh(t.angle)
}

func (t *Transformer) rotate(global engine.Point) {
	now := math.Atan2(global.Y-t.pivotWorld.Y, global.X-t.pivotWorld.X)
	da := now - t.session.startAngle
	live := t.angle + da

	t.applyWorldDelta(deltaRotate(t.pivotWorld, da))
	t.rotation = live
	t.refresh(live)
}

// applyWorldDelta re-derives every target from its drag-start transform:
// start world = parent world * start local, new world = delta * start world,
// new local = inverse(parent world) * new world. Targets without a snapshot
// or a parent are skipped.
func (t *Transformer) applyWorldDelta(delta engine.Matrix2D) {
	if t.session == nil {
		return
	}
	for _, o := range t.group {
		start, ok := t.session.start[o]
		parent := o.Parent()
		if !ok || parent == nil {
			continue
		}
		parentWorld := parent.WorldTransform()
		startWorld := parentWorld.Multiply(start)
		newWorld := delta.Multiply(startWorld)
		o.SetLocalTransform(parentWorld.Invert().Multiply(newWorld))
	}
}

func (t *Transformer) setCrop(r engine.Rect) {
	t.clippedLocal = t.clampRectToMax(r, t.unclippedLocal)
	t.refresh(t.angle)
}

// refresh places the transformer at the pivot with the given rotation and
// redraws the frame, the handles and the mask.
func (t *Transformer) refresh(angle float64) {
	if t.destroyed {
		return
	}
	if t.parent != nil {
		t.position = t.parent.ToLocal(t.pivotWorld)
	}
	t.rotation = angle

	r := t.clippedLocal
	t.wireframe.Draw(r)

	cx := r.X + r.Width/2
	cy := r.Y + r.Height/2

	t.handles[TopLeft].SetPosition(engine.Pt(r.X, r.Y))
	t.handles[TopRight].SetPosition(engine.Pt(r.Right(), r.Y))
	t.handles[BottomLeft].SetPosition(engine.Pt(r.X, r.Bottom()))
	t.handles[BottomRight].SetPosition(engine.Pt(r.Right(), r.Bottom()))

	t.handles[MiddleLeft].SetPosition(engine.Pt(r.X, cy))
	t.handles[MiddleRight].SetPosition(engine.Pt(r.Right(), cy))
	t.handles[MiddleTop].SetPosition(engine.Pt(cx, r.Y))
	t.handles[MiddleBottom].SetPosition(engine.Pt(cx, r.Bottom()))
	t.handles[Rotate].SetPosition(engine.Pt(cx, r.Y-t.opts.RotateHandleOffset))

	t.mask.Rect = r
	for _, o := range t.group {
		o.SetMask(t.mask)
	}
}

func (t *Transformer) notifyDragEnded(kind HandleKind) {
	if t.opts.Observer != nil {
		t.opts.Observer.DragEnded(kind)
	}
}

// --- coordinate space ---

// WorldTransform returns parent world * translate(position) * rotate(rotation).
func (t *Transformer) WorldTransform() engine.Matrix2D {
	local := engine.TranslateBy(t.position).Multiply(engine.Rotate(t.rotation))
	if t.parent == nil {
		return local
	}
	return t.parent.WorldTransform().Multiply(local)
}

// ToLocal converts a global point into the transformer's local space.
func (t *Transformer) ToLocal(p engine.Point) engine.Point {
	return t.WorldTransform().Invert().Apply(p)
}

// ToGlobal converts a local point into world space.
func (t *Transformer) ToGlobal(p engine.Point) engine.Point {
	return t.WorldTransform().Apply(p)
}

func (t *Transformer) computeWorldAABB() engine.Rect {
	if len(t.group) == 0 {
		return engine.Rect{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, o := range t.group {
		b := o.Bounds()
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.Right())
		maxY = math.Max(maxY, b.Bottom())
	}
	return engine.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
