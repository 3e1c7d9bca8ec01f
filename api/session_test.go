package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptboard/promptboard/internal/session"
)

func TestSessionHandler_Lifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/sessions", CreateSessionRequest{Name: "sketchbook"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeJSON[session.State](t, w)
	assert.Equal(t, "sketchbook", created.Name)
	assert.Equal(t, session.ToolSelect, created.Tool)

	w = env.do(t, http.MethodGet, "/api/sessions/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeJSON[session.State](t, w)
	assert.Equal(t, created.ID, got.ID)

	w = env.do(t, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.ID)

	w = env.do(t, http.MethodDelete, "/api/sessions/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_View(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t)

	t.Run("pan shifts offset", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/view", ViewRequest{
			Action: "pan", DX: 30, DY: -10,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "transform")
	})

	t.Run("zoom requires positive factor", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/view", ViewRequest{
			Action: "zoom", Factor: 0,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown action rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/view", ViewRequest{Action: "tilt"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionHandler_Tool(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/tool", ToolRequest{Tool: "pen"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pen"`)

	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/tool", ToolRequest{Tool: "chisel"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/tool", ToolRequest{Key: "v"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"select"`)

	// Held-space pan is transient over the steady tool.
	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/tool", ToolRequest{Action: "holdPan"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pan"`)

	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/tool", ToolRequest{Action: "releasePan"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"select"`)
}

func TestSessionHandler_ImportAndDrag(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/images", ImportImageRequest{
		Src: testDataURL(t, 200, 100),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeJSON[map[string]string](t, w)
	objID := created["id"]
	require.NotEmpty(t, objID)

	w = env.do(t, http.MethodGet, "/api/sessions/"+id+"/document", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := decodeJSON[session.DocumentState](t, w)
	require.Len(t, doc.Images, 1)
	img := doc.Images[0]
	// Longer side shows at 400 display units, centered in the default
	// 1280x800 viewport.
	assert.InDelta(t, 400.0, img.Width, 0.01)
	assert.InDelta(t, 200.0, img.Height, 0.01)
	assert.InDelta(t, 440.0, img.X, 0.01)
	assert.InDelta(t, 300.0, img.Y, 0.01)
	require.Len(t, doc.Selection, 1)

	// Drag the image 25 right, 15 down through the pointer protocol.
	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/pointer", PointerRequest{
		Phase: "down", X: 500, Y: 350,
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/pointer", PointerRequest{
		Phase: "move", X: 525, Y: 365,
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/pointer", PointerRequest{
		Phase: "up", X: 525, Y: 365,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+id+"/document", nil)
	doc = decodeJSON[session.DocumentState](t, w)
	require.Len(t, doc.Images, 1)
	assert.InDelta(t, 465.0, doc.Images[0].X, 0.01)
	assert.InDelta(t, 315.0, doc.Images[0].Y, 0.01)
}

func TestSessionHandler_ImportAtExplicitPosition(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t)

	x, y := 50.0, 60.0
	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/images", ImportImageRequest{
		Src:            testDataURL(t, 100, 100),
		Classification: "video",
		X:              &x,
		Y:              &y,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+id+"/document", nil)
	doc := decodeJSON[session.DocumentState](t, w)
	require.Len(t, doc.Images, 1)
	assert.InDelta(t, 50.0, doc.Images[0].X, 0.01)
	assert.InDelta(t, 60.0, doc.Images[0].Y, 0.01)
	assert.Equal(t, "video", string(doc.Images[0].Classification))
}

func TestSessionHandler_ImportRejectsBadPayload(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/images", ImportImageRequest{
		Src: "data:image/png;base64,not-base64!!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/images", ImportImageRequest{Src: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_PatchObject(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/images", ImportImageRequest{
		Src: testDataURL(t, 64, 64),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	objID := decodeJSON[map[string]string](t, w)["id"]

	w = env.do(t, http.MethodPatch, "/api/sessions/"+id+"/objects/"+objID, map[string]any{
		"x": 12.5, "name": "hero",
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+id+"/document", nil)
	doc := decodeJSON[session.DocumentState](t, w)
	require.Len(t, doc.Images, 1)
	assert.InDelta(t, 12.5, doc.Images[0].X, 0.01)
	assert.Equal(t, "hero", doc.Images[0].Name)

	w = env.do(t, http.MethodPatch, "/api/sessions/"+id+"/objects/ghost", map[string]any{"x": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_Selection(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/images", ImportImageRequest{
		Src: testDataURL(t, 32, 32),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	objID := decodeJSON[map[string]string](t, w)["id"]

	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/selection", SelectionRequest{Action: "clear"})
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeJSON[session.State](t, w)
	assert.Empty(t, state.Selection)

	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/selection", SelectionRequest{
		Action: "selectOnly", ID: objID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeJSON[session.State](t, w)
	require.Len(t, state.Selection, 1)

	// Delete removes the selected object.
	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/selection", SelectionRequest{Action: "delete"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), objID)

	w = env.do(t, http.MethodGet, "/api/sessions/"+id+"/document", nil)
	doc := decodeJSON[session.DocumentState](t, w)
	assert.Empty(t, doc.Images)
}

func TestSessionHandler_DragToTrash(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/view", ViewRequest{
		Action: "trash", X: 1200, Y: 700, Width: 80, Height: 80,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/images", ImportImageRequest{
		Src: testDataURL(t, 100, 100),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Centered 400x400 image spans (440,200)..(840,600); drag its center
	// into the trash target.
	for _, req := range []PointerRequest{
		{Phase: "down", X: 640, Y: 400},
		{Phase: "move", X: 1240, Y: 740},
		{Phase: "up", X: 1240, Y: 740},
	} {
		w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/pointer", req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/sessions/"+id+"/document", nil)
	doc := decodeJSON[session.DocumentState](t, w)
	assert.Empty(t, doc.Images)
}

func TestSessionHandler_AspectAndBrush(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/aspect", AspectRequest{AspectRatio: "16:9"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/aspect", AspectRequest{AspectRatio: "2:1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/sessions/"+id+"/brush", BrushRequest{Position: 0.5})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON[map[string]float64](t, w)
	assert.Greater(t, resp["brush"], 0.0)
}

func TestSessionHandler_PlaceDrawing(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := env.createSession(t)

	w := env.do(t, http.MethodPost, "/api/sessions/"+id+"/drawings", PlaceDrawingRequest{
		Width: 300, Height: 200,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/sessions/"+id+"/document", nil)
	doc := decodeJSON[session.DocumentState](t, w)
	require.Len(t, doc.Drawings, 1)
	assert.InDelta(t, 300.0, doc.Drawings[0].Width, 0.01)
}
