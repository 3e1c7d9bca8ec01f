package document

import (
	"github.com/google/uuid"

	"github.com/promptboard/promptboard/internal/geometry"
)

// Classification describes how an image object entered the document and how
// generation treats it.
type Classification string

const (
	ClassOriginal   Classification = "original"
	ClassResult     Classification = "result"
	ClassCharacter  Classification = "character"
	ClassBackground Classification = "background"
	ClassModelSheet Classification = "modelSheet"
	ClassVideo      Classification = "video"
)

// MaxPoses is the number of pose slots a character image can carry.
const MaxPoses = 4

// ImageObject is a placed raster on the canvas. Src and the other *_Src
// fields hold data URLs; NaturalWidth/NaturalHeight are the intrinsic pixel
// dimensions and never change after creation.
type ImageObject struct {
	ID             string         `json:"id"`
	Src            string         `json:"src"`
	X              float64        `json:"x"`
	Y              float64        `json:"y"`
	Width          float64        `json:"width"`
	Height         float64        `json:"height"`
	NaturalWidth   int            `json:"naturalWidth"`
	NaturalHeight  int            `json:"naturalHeight"`
	Classification Classification `json:"classification"`

	// Name keys prompt-driven character/background matching. Uniqueness is
	// not enforced; duplicate names make entity resolution ambiguous.
	Name string `json:"name,omitempty"`

	// Prompt is the text that produced this image, kept for paste-prompt reuse.
	Prompt            string `json:"prompt,omitempty"`
	TargetAspectRatio string `json:"targetAspectRatio,omitempty"`

	// MaskSrc is a same-size paint mask for inpainting. Ephemeral: cleared
	// after each generation attempt and on deselection.
	MaskSrc string `json:"maskSrc,omitempty"`

	// Character-workspace and video extensions.
	ModelSheetSrc string   `json:"modelSheetSrc,omitempty"`
	Poses         []string `json:"poses,omitempty"`
	VideoSrc      string   `json:"videoSrc,omitempty"`
}

// Rect returns the object's canvas-space bounding box.
func (o ImageObject) Rect() geometry.Rect {
	return geometry.Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// clone returns a copy whose Poses slice does not alias the receiver's,
// so callers handed a copy cannot reach back into stored state.
func (o ImageObject) clone() ImageObject {
	if o.Poses != nil {
		o.Poses = append([]string(nil), o.Poses...)
	}
	return o
}

// TextObject is a text block on the canvas. Height is derived from rendered
// content by the view layer and is not authoritative input.
type TextObject struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	Color      string  `json:"color"`
}

// Rect returns the object's canvas-space bounding box.
func (o TextObject) Rect() geometry.Rect {
	return geometry.Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// DrawingObject is a raster surface the user paints into with the pen and
// eraser tools. DrawingSrc is re-serialized after every completed stroke.
type DrawingObject struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	DrawingSrc string  `json:"drawingSrc"`
}

// Rect returns the object's canvas-space bounding box.
func (o DrawingObject) Rect() geometry.Rect {
	return geometry.Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}

// NewID returns a fresh object identifier.
func NewID() string {
	return uuid.NewString()
}

// ImagePatch is a partial update for an ImageObject. Nil fields are left
// untouched; non-nil fields overwrite, so pointing at an empty string clears
// an optional field.
type ImagePatch struct {
	Src               *string         `json:"src,omitempty"`
	X                 *float64        `json:"x,omitempty"`
	Y                 *float64        `json:"y,omitempty"`
	Width             *float64        `json:"width,omitempty"`
	Height            *float64        `json:"height,omitempty"`
	Classification    *Classification `json:"classification,omitempty"`
	Name              *string         `json:"name,omitempty"`
	Prompt            *string         `json:"prompt,omitempty"`
	TargetAspectRatio *string         `json:"targetAspectRatio,omitempty"`
	MaskSrc           *string         `json:"maskSrc,omitempty"`
	ModelSheetSrc     *string         `json:"modelSheetSrc,omitempty"`
	Poses             *[]string       `json:"poses,omitempty"`
	VideoSrc          *string         `json:"videoSrc,omitempty"`
}

func (p ImagePatch) apply(o *ImageObject) {
	if p.Src != nil {
		o.Src = *p.Src
	}
	if p.X != nil {
		o.X = *p.X
	}
	if p.Y != nil {
		o.Y = *p.Y
	}
	if p.Width != nil {
		o.Width = *p.Width
	}
	if p.Height != nil {
		o.Height = *p.Height
	}
	if p.Classification != nil {
		o.Classification = *p.Classification
	}
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Prompt != nil {
		o.Prompt = *p.Prompt
	}
	if p.TargetAspectRatio != nil {
		o.TargetAspectRatio = *p.TargetAspectRatio
	}
	if p.MaskSrc != nil {
		o.MaskSrc = *p.MaskSrc
	}
	if p.ModelSheetSrc != nil {
		o.ModelSheetSrc = *p.ModelSheetSrc
	}
	if p.Poses != nil {
		poses := *p.Poses
		if len(poses) > MaxPoses {
			poses = poses[:MaxPoses]
		}
		o.Poses = append([]string(nil), poses...)
	}
	if p.VideoSrc != nil {
		o.VideoSrc = *p.VideoSrc
	}
}

// TextPatch is a partial update for a TextObject.
type TextPatch struct {
	Content    *string  `json:"content,omitempty"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	Width      *float64 `json:"width,omitempty"`
	Height     *float64 `json:"height,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`
	Color      *string  `json:"color,omitempty"`
}

func (p TextPatch) apply(o *TextObject) {
	if p.Content != nil {
		o.Content = *p.Content
	}
	if p.X != nil {
		o.X = *p.X
	}
	if p.Y != nil {
		o.Y = *p.Y
	}
	if p.Width != nil {
		o.Width = *p.Width
	}
	if p.Height != nil {
		o.Height = *p.Height
	}
	if p.FontSize != nil {
		o.FontSize = *p.FontSize
	}
	if p.FontFamily != nil {
		o.FontFamily = *p.FontFamily
	}
	if p.Color != nil {
		o.Color = *p.Color
	}
}

// DrawingPatch is a partial update for a DrawingObject.
type DrawingPatch struct {
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	Width      *float64 `json:"width,omitempty"`
	Height     *float64 `json:"height,omitempty"`
	DrawingSrc *string  `json:"drawingSrc,omitempty"`
}

func (p DrawingPatch) apply(o *DrawingObject) {
	if p.X != nil {
		o.X = *p.X
	}
	if p.Y != nil {
		o.Y = *p.Y
	}
	if p.Width != nil {
		o.Width = *p.Width
	}
	if p.Height != nil {
		o.Height = *p.Height
	}
	if p.DrawingSrc != nil {
		o.DrawingSrc = *p.DrawingSrc
	}
}
