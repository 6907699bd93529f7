package prompt

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"boltdesk/internal/models"
)

const designSchemeTemplate = "prompts/design_scheme.txt"

type roleColor struct {
	Key         string
	Color       string
	Description string
}

// DesignScheme renders a design scheme into the system messages handed to
// the generation pipeline.
type DesignScheme struct {
	tmpl *template.Template
}

func NewDesignScheme() (*DesignScheme, error) {
	body, err := embeddedPrompts.ReadFile(designSchemeTemplate)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", designSchemeTemplate, err)
	}
	tmpl, err := template.New("design-scheme").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", designSchemeTemplate, err)
	}
	return &DesignScheme{tmpl: tmpl}, nil
}

// Text renders the scheme as prompt text. Roles appear in catalog order.
func (d *DesignScheme) Text(scheme models.DesignScheme) (string, error) {
	roles := make([]roleColor, 0, len(models.PaletteRoles))
	for _, role := range models.PaletteRoles {
		roles = append(roles, roleColor{
			Key:         role.Key,
			Color:       scheme.Palette[role.Key],
			Description: role.Description,
		})
	}

	var b strings.Builder
	err := d.tmpl.Execute(&b, map[string]any{
		"Roles":    roles,
		"Features": scheme.Features,
		"Fonts":    scheme.Font,
	})
	if err != nil {
		return "", fmt.Errorf("render design scheme: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

// Messages returns the scheme as a single system message followed by history.
func (d *DesignScheme) Messages(ctx context.Context, scheme models.DesignScheme, history ...*schema.Message) ([]*schema.Message, error) {
	text, err := d.Text(scheme)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(schema.FString,
		schema.SystemMessage("{design}"),
		schema.MessagesPlaceholder("history", true),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"design":  text,
		"history": history,
	})
	if err != nil {
		return nil, fmt.Errorf("format design scheme messages: %w", err)
	}
	return msgs, nil
}
