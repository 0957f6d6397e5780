package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestChat_FullDialog(t *testing.T) {
	in := strings.NewReader("Hola\nAna López\nCarlos\nmi padre\ngrande\n")
	var out bytes.Buffer

	err := Chat(context.Background(), in, &out, ChatOptions{Phone: "+15551234567"})
	assert.NoError(t, err)

	catalog := domain.DefaultCatalog()
	transcript := out.String()
	for _, key := range []domain.MessageKey{
		domain.MessageNew,
		domain.MessageAwaitingName,
		domain.MessageAwaitingHonoree,
		domain.MessageAwaitingRelationship,
		domain.MessageCompleted,
	} {
		assert.Contains(t, transcript, catalog.Text(key), key)
	}
	assert.Contains(t, transcript, "name=Ana López")
	assert.Contains(t, transcript, "size=GRANDE")
}

func TestChat_MediaAndCustomCatalog(t *testing.T) {
	in := strings.NewReader("https://cdn.example.com/me.jpg hola")
	var out bytes.Buffer

	catalog := domain.DefaultCatalog().With(map[string]string{"new": "Welcome!"})
	err := Chat(context.Background(), in, &out, ChatOptions{Catalog: catalog})
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Welcome!")
}

func TestChat_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := Chat(ctx, strings.NewReader("Hola\n"), &out, ChatOptions{})
	assert.NoError(t, err)
	assert.Empty(t, out.String())
}
