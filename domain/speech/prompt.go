package speech

import (
	"fmt"
	"strings"
)

// Placeholder marks where the transcript is inserted into a prompt template
const Placeholder = "{text}"

// DefaultPrompt translates English (with occasional Arabic) into natural Spanish
const DefaultPrompt = `Traduce el siguiente texto del inglés al español.
Eventualmente puede haber texto en árabe también. Asegúrate de traducirlo correctamente.
Mantén el formato original y asegúrate de que la traducción sea natural y fluida.
Devuelve únicamente el contenido de la traducción.

Texto a traducir:
{text}

Traducción al español:
`

// PromptTemplate is a validated translation prompt with exactly one {text} placeholder
type PromptTemplate struct {
	raw string
}

// ParsePromptTemplate validates a prompt template
func ParsePromptTemplate(raw string) (PromptTemplate, error) {
	switch n := strings.Count(raw, Placeholder); {
	case n == 0:
		return PromptTemplate{}, NewConfigurationError("prompt", fmt.Errorf("prompt template must contain the %s placeholder", Placeholder))
	case n > 1:
		return PromptTemplate{}, NewConfigurationError("prompt", fmt.Errorf("prompt template must contain %s exactly once, found %d", Placeholder, n))
	}
	return PromptTemplate{raw: raw}, nil
}

// MustParsePromptTemplate is like ParsePromptTemplate but panics on an invalid template
func MustParsePromptTemplate(raw string) PromptTemplate {
	p, err := ParsePromptTemplate(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultPromptTemplate returns the built-in English to Spanish template
func DefaultPromptTemplate() PromptTemplate {
	return PromptTemplate{raw: DefaultPrompt}
}

// Render substitutes text into the placeholder
func (p PromptTemplate) Render(text string) string {
	return strings.Replace(p.raw, Placeholder, text, 1)
}

// String returns the template as written
func (p PromptTemplate) String() string {
	return p.raw
}

// IsZero reports whether the template was never parsed
func (p PromptTemplate) IsZero() bool {
	return p.raw == ""
}
