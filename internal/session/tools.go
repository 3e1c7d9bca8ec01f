package session

// Tool is the active canvas tool.
type Tool string

const (
	ToolPan    Tool = "pan"
	ToolSelect Tool = "select"
	ToolPen    Tool = "pen"
	ToolEraser Tool = "eraser"
	ToolText   Tool = "text"
)

// ValidTool reports whether name is a known tool.
func ValidTool(name string) bool {
	switch Tool(name) {
	case ToolPan, ToolSelect, ToolPen, ToolEraser, ToolText:
		return true
	}
	return false
}

// toolKeys maps keyboard shortcuts to tools.
var toolKeys = map[string]Tool{
	"h": ToolPan,
	"v": ToolSelect,
	"p": ToolPen,
	"e": ToolEraser,
	"t": ToolText,
}

// toolState models the steady tool plus the transient space-bar pan
// override. The steady tool survives the hold and is restored on release,
// so save/restore is a single well-defined transition instead of a bare
// "previous tool" variable.
type toolState struct {
	steady    Tool
	transient bool // pan held via modifier key
}

func (t toolState) active() Tool {
	if t.transient {
		return ToolPan
	}
	return t.steady
}

// ActiveTool returns the tool pointer events are currently routed to.
func (s *Session) ActiveTool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tools.active()
}

// SetTool switches the steady tool, canceling any in-progress pointer
// interaction. Returns false for an unknown tool name.
func (s *Session) SetTool(tool Tool) bool {
	if !ValidTool(string(tool)) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools.steady = tool
	s.pointer = pointerState{}
	return true
}

// HandleToolKey applies a keyboard tool shortcut. Shortcuts are ignored
// while focus is inside a text input so typing never steals the tool.
func (s *Session) HandleToolKey(key string, inTextInput bool) bool {
	if inTextInput {
		return false
	}
	tool, ok := toolKeys[key]
	if !ok {
		return false
	}
	return s.SetTool(tool)
}

// HoldPan enters the transient pan override while a modifier key is held.
func (s *Session) HoldPan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools.transient = true
}

// ReleasePan leaves the transient pan override, restoring the steady tool.
func (s *Session) ReleasePan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools.transient = false
}

// DeleteKey removes every selected object across all kinds. It is a no-op
// while focus is inside a text input. Returns the removed ids.
func (s *Session) DeleteKey(inTextInput bool) []string {
	if inTextInput {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return nil
	}
	s.pointer = pointerState{}
	return s.doc.DeleteSelected()
}

// resetToSelect is the post-placement and post-generation tool reset.
// Caller holds s.mu.
func (s *Session) resetToSelect() {
	s.tools = toolState{steady: ToolSelect}
}
