package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// EntityMatch is the result of resolving named character/background
// references out of a free-text prompt. Empty strings mean "not found".
type EntityMatch struct {
	CharacterName  string `json:"characterName"`
	BackgroundName string `json:"backgroundName"`
}

// entitySchema constrains the parse response to the two nullable name fields.
var entitySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"characterName": {
			Type:     genai.TypeString,
			Nullable: genai.Ptr(true),
		},
		"backgroundName": {
			Type:     genai.TypeString,
			Nullable: genai.Ptr(true),
		},
	},
}

// ParseEntities asks the text model which named character and background the
// prompt refers to, constrained to the supplied candidate lists. A returned
// name that is not in its candidate list is treated as not found.
func (c *Client) ParseEntities(ctx context.Context, prompt string, characterNames, backgroundNames []string) (EntityMatch, error) {
	instruction := fmt.Sprintf(
		"A user wrote this image generation prompt:\n%q\n\n"+
			"Known characters: %s\nKnown backgrounds: %s\n\n"+
			"Identify which known character and which known background the prompt refers to. "+
			"Use null for any that is not clearly referenced. Only use names from the lists above.",
		prompt,
		strings.Join(characterNames, ", "),
		strings.Join(backgroundNames, ", "),
	)

	resp, err := c.gc.Models.GenerateContent(ctx, c.models.EntityParse,
		genai.Text(instruction),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   entitySchema,
		})
	if err != nil {
		return EntityMatch{}, fmt.Errorf("parse entities: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return EntityMatch{}, ErrEmptyResponse
	}

	var match EntityMatch
	if err := json.Unmarshal([]byte(text), &match); err != nil {
		return EntityMatch{}, fmt.Errorf("parse entities: decoding %q: %w", text, err)
	}

	// Constrain to the candidate lists; anything else is "not found".
	if !containsName(characterNames, match.CharacterName) {
		match.CharacterName = ""
	}
	if !containsName(backgroundNames, match.BackgroundName) {
		match.BackgroundName = ""
	}
	return match, nil
}

func containsName(names []string, name string) bool {
	if name == "" {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
