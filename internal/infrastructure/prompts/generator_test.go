package prompts

import (
	"testing"

	"fare-rules-worker/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_FareRulesPrompt(t *testing.T) {
	g, err := NewDefaultGenerator()
	require.NoError(t, err)

	prompt, err := g.FareRulesPrompt(entity.FareRequest{
		BookingID:   "DEMO-abc12345",
		TicketClass: "Business",
		Context:     entity.DefaultFareContext(),
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Booking ID: DEMO-abc12345")
	assert.Contains(t, prompt, "Ticket Class: Business")
	assert.Contains(t, prompt, "Purchase Date: 2025-01-15")
	assert.Contains(t, prompt, "Flight Date: 2025-03-20")
	assert.Contains(t, prompt, "Days until flight: 54")
	assert.Contains(t, prompt, "Airline: Standard International Carrier")
	assert.True(t, len(prompt) > 0 && prompt[len(prompt)-1] != '\n')
	assert.Contains(t, prompt, "Respond with ONLY ONE WORD: ALLOWED, WITH_PENALTY, or MANUAL")
}

func TestGenerator_Messages(t *testing.T) {
	g, err := NewDefaultGenerator()
	require.NoError(t, err)

	msgs, err := g.Messages(entity.FareRequest{BookingID: "BK-1", TicketClass: "Economy"})
	require.NoError(t, err)

	require.Len(t, msgs, 2)
	assert.Equal(t, entity.RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are an airline policy expert. Respond with only one word.", msgs[0].Content)
	assert.Equal(t, entity.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "BK-1")
}

func TestNewGenerator_InvalidTemplate(t *testing.T) {
	_, err := NewGenerator("system", "{{.BookingID")
	assert.Error(t, err)
}

func TestGenerator_UnknownField(t *testing.T) {
	g, err := NewGenerator("system", "{{.Nope}}")
	require.NoError(t, err)

	_, err = g.FareRulesPrompt(entity.FareRequest{})
	assert.Error(t, err)
}
