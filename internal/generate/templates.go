package generate

import (
	"regexp"
	"strings"
)

// Template is a predefined asset prompt a user can invoke with the
// "[name] free text" syntax. The free text, if any, is concatenated after
// the template prompt; a negative prompt is appended last.
type Template struct {
	Name           string
	Prompt         string
	NegativePrompt string

	// ForcePro activates the higher-quality edit model as a side effect of
	// choosing this template, overriding the user's model toggle.
	ForcePro bool
}

var templates = map[string]Template{
	"model sheet": {
		Name: "model sheet",
		Prompt: "Create a character model sheet: the subject in a neutral standing pose, " +
			"shown from the front, side, and back, on a plain light background with consistent proportions.",
		NegativePrompt: "no scenery, no text labels, no dramatic lighting",
		ForcePro:       true,
	},
	"sticker": {
		Name: "sticker",
		Prompt: "Turn the subject into a die-cut sticker with a thick white border, " +
			"bold flat colors, and a clean silhouette.",
		NegativePrompt: "no background scenery, no drop shadow",
	},
	"figurine": {
		Name: "figurine",
		Prompt: "Render the subject as a collectible vinyl figurine on a small round display base, " +
			"studio-lit product photo, shallow depth of field.",
	},
	"pixel art": {
		Name:           "pixel art",
		Prompt:         "Redraw the subject as crisp 32-bit era pixel art with a limited palette.",
		NegativePrompt: "no anti-aliasing, no photorealism",
	},
}

var templatePattern = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*)$`)

// ExpandPrompt resolves the "[asset] rest" syntax against the predefined
// templates. Prompts that do not match the pattern, or name an unknown
// asset, pass through unchanged.
func ExpandPrompt(raw string) (prompt string, forcePro bool) {
	m := templatePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return raw, false
	}

	tpl, ok := templates[strings.ToLower(strings.TrimSpace(m[1]))]
	if !ok {
		return raw, false
	}

	prompt = tpl.Prompt
	if rest := strings.TrimSpace(m[2]); rest != "" {
		prompt += " " + rest
	}
	if tpl.NegativePrompt != "" {
		prompt += " (" + tpl.NegativePrompt + ")"
	}
	return prompt, tpl.ForcePro
}

// TemplateNames lists the available asset templates.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	return names
}
