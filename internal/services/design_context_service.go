package services

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"boltdesk/internal/llm/prompt"
	"boltdesk/internal/preferences"
)

// DesignContextService hands the stored design scheme to the generation
// pipeline. The webview reaches it through GET /api/design-context.
type DesignContextService struct {
	store   *preferences.Store
	builder *prompt.DesignScheme
}

func NewDesignContextService(store *preferences.Store) (*DesignContextService, error) {
	builder, err := prompt.NewDesignScheme()
	if err != nil {
		return nil, err
	}
	return &DesignContextService{store: store, builder: builder}, nil
}

// SystemMessages returns the current design scheme as system messages,
// followed by history.
func (s *DesignContextService) SystemMessages(ctx context.Context, history ...*schema.Message) ([]*schema.Message, error) {
	return s.builder.Messages(ctx, s.store.DesignScheme(ctx), history...)
}

// SystemPrompt renders the current design scheme as system prompt text.
func (s *DesignContextService) SystemPrompt(ctx context.Context) (string, error) {
	return s.builder.Text(s.store.DesignScheme(ctx))
}
