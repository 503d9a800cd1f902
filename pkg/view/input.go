package view

// InputKind names a pointer, gesture or viewport event.
type InputKind string

const (
	MouseDown  InputKind = "mousedown"
	MouseMove  InputKind = "mousemove"
	MouseUp    InputKind = "mouseup"
	MouseLeave InputKind = "mouseleave"
	WheelInput InputKind = "wheel"
	TouchStart InputKind = "touchstart"
	TouchMove  InputKind = "touchmove"
	TouchEnd   InputKind = "touchend"
	Click      InputKind = "click"
	ResizeView InputKind = "resize"
)

// Input is a single event in logical pixel coordinates relative to the
// drawing surface.
type Input struct {
	Kind    InputKind `json:"type"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	DeltaY  float64   `json:"delta_y,omitempty"`
	Touches int       `json:"touches,omitempty"`
	Width   float64   `json:"width,omitempty"`
	Height  float64   `json:"height,omitempty"`
	DPR     float64   `json:"dpr,omitempty"`
}

// Effect reports what the caller must do after an input was applied.
type Effect struct {
	// Redraw is set when the view changed and a new frame is needed.
	Redraw bool
	// HitTest is set for clicks; X and Y are the point to test against the
	// most recent frame.
	HitTest bool
	X, Y    float64
}

// Controller turns raw input into view mutations. It tracks drag state for
// mouse and single-finger touch; multi-touch gestures are ignored.
type Controller struct {
	dragging bool
	lastX    float64
}

// Dragging reports whether a drag is in progress.
func (c *Controller) Dragging() bool { return c.dragging }

// Handle applies in to v.
func (c *Controller) Handle(v *View, in Input) Effect {
	switch in.Kind {
	case MouseDown:
		c.dragging, c.lastX = true, in.X
	case TouchStart:
		if in.Touches == 1 {
			c.dragging, c.lastX = true, in.X
		}
	case MouseMove:
		return c.drag(v, in.X)
	case TouchMove:
		if in.Touches == 1 {
			return c.drag(v, in.X)
		}
	case MouseUp, MouseLeave, TouchEnd:
		c.dragging = false
	case WheelInput:
		v.Wheel(in.DeltaY, in.X)
		return Effect{Redraw: true}
	case ResizeView:
		w, h, dpr := in.Width, in.Height, in.DPR
		if w <= 0 {
			w = v.Width
		}
		if h <= 0 {
			h = v.Height
		}
		if dpr <= 0 {
			dpr = v.DPR
		}
		v.Resize(w, h, dpr)
		return Effect{Redraw: true}
	case Click:
		return Effect{HitTest: true, X: in.X, Y: in.Y}
	}
	return Effect{}
}

func (c *Controller) drag(v *View, x float64) Effect {
	if !c.dragging {
		return Effect{}
	}
	v.PanBy(x - c.lastX)
	c.lastX = x
	return Effect{Redraw: true}
}
