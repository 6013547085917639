package discord

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWireShape(t *testing.T) {
	raw, err := json.Marshal(NewPong())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":1}`, string(raw))

	raw, err = json.Marshal(NewDeferredMessage(true))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":5,"data":{"flags":64}}`, string(raw))

	raw, err = json.Marshal(NewDeferredUpdate())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":6}`, string(raw))
}

func TestNewMessageEphemeralFlag(t *testing.T) {
	resp := NewMessage("API key cannot be empty.", true)
	require.NotNil(t, resp.Data)
	assert.Equal(t, ResponseTypeMessage, resp.Type)
	assert.Equal(t, MessageFlagEphemeral, resp.Data.Flags)

	resp = NewMessage("API key cannot be empty.", false)
	assert.Zero(t, resp.Data.Flags)
}

func TestCredentialTypePrompt(t *testing.T) {
	resp := CredentialTypePrompt("credential_type:limited", "credential_type:full", true)
	assert.Equal(t, ResponseTypeMessage, resp.Type)
	assert.Equal(t, "Select the API key type to continue:", resp.Data.Content)
	assert.Equal(t, MessageFlagEphemeral, resp.Data.Flags)

	require.Len(t, resp.Data.Components, 1)
	row := resp.Data.Components[0]
	assert.Equal(t, ComponentTypeActionRow, row.Type)
	require.Len(t, row.Components, 2)

	limited, full := row.Components[0], row.Components[1]
	assert.Equal(t, ComponentTypeButton, limited.Type)
	assert.Equal(t, "Limited API Key", limited.Label)
	assert.Equal(t, ButtonStylePrimary, limited.Style)
	assert.Equal(t, "credential_type:limited", limited.CustomID)
	assert.Equal(t, "Full API Key", full.Label)
	assert.Equal(t, ButtonStyleSuccess, full.Style)
	assert.Equal(t, "credential_type:full", full.CustomID)
}

func TestCredentialModal(t *testing.T) {
	resp := CredentialModal("credential_modal:limited", "Limited")
	assert.Equal(t, ResponseTypeModal, resp.Type)
	assert.Equal(t, "Enter Torn API Key", resp.Data.Title)
	assert.Equal(t, "credential_modal:limited", resp.Data.CustomID)

	require.Len(t, resp.Data.Components, 1)
	require.Len(t, resp.Data.Components[0].Components, 1)
	input := resp.Data.Components[0].Components[0]
	assert.Equal(t, ComponentTypeTextInput, input.Type)
	assert.Equal(t, InputAPIKey, input.CustomID)
	assert.Equal(t, "Limited API Key", input.Label)
	assert.Equal(t, "Paste your API key here", input.Placeholder)
	assert.Equal(t, TextInputStyleShort, input.Style)
	assert.True(t, input.Required)
	assert.Equal(t, 10, input.MinLength)
	assert.Equal(t, 120, input.MaxLength)
}

func TestTargetTypePrompt(t *testing.T) {
	resp := TargetTypePrompt("target_type:payload-a", "target_type:payload-b", false)
	assert.Equal(t, "Choose a target type:", resp.Data.Content)
	assert.Zero(t, resp.Data.Flags)

	require.Len(t, resp.Data.Components, 1)
	row := resp.Data.Components[0]
	require.Len(t, row.Components, 2)
	assert.Equal(t, "Faction ID", row.Components[0].Label)
	assert.Equal(t, ButtonStylePrimary, row.Components[0].Style)
	assert.Equal(t, "Opponent IDs", row.Components[1].Label)
	assert.Equal(t, ButtonStyleSecondary, row.Components[1].Style)
}

func TestTargetModals(t *testing.T) {
	resp := FactionModal("target_modal:payload")
	assert.Equal(t, "Enter Faction ID", resp.Data.Title)
	input := resp.Data.Components[0].Components[0]
	assert.Equal(t, InputTargetIDs, input.CustomID)
	assert.Equal(t, "Faction ID", input.Label)
	assert.Equal(t, "123456", input.Placeholder)
	assert.Equal(t, TextInputStyleShort, input.Style)

	resp = OpponentsModal("target_modal:payload")
	assert.Equal(t, "Enter Opponent IDs", resp.Data.Title)
	input = resp.Data.Components[0].Components[0]
	assert.Equal(t, InputTargetIDs, input.CustomID)
	assert.Equal(t, "Opponent IDs (comma-separated)", input.Label)
	assert.Equal(t, "123, 456, 789", input.Placeholder)
	assert.Equal(t, TextInputStyleParagraph, input.Style)
	assert.Equal(t, 2000, input.MaxLength)
}

func TestStatusRow(t *testing.T) {
	row := StatusRow("job_status:job-1")
	assert.Equal(t, ComponentTypeActionRow, row.Type)
	require.Len(t, row.Components, 1)
	button := row.Components[0]
	assert.Equal(t, "Check Status", button.Label)
	assert.Equal(t, ButtonStyleSecondary, button.Style)
	assert.Equal(t, "job_status:job-1", button.CustomID)
}

func TestInteractionHelpers(t *testing.T) {
	guild := Interaction{
		GuildID: "2000000002",
		Member:  &Member{User: &User{ID: "42"}},
	}
	assert.True(t, guild.InGuild())
	assert.Equal(t, "42", guild.UserID())

	dm := Interaction{User: &User{ID: "43"}}
	assert.False(t, dm.InGuild())
	assert.Equal(t, "43", dm.UserID())

	var anonymous Interaction
	assert.Empty(t, anonymous.UserID())
}

func TestInteractionInputValue(t *testing.T) {
	i := Interaction{
		Data: InteractionData{
			CustomID: "credential_modal:limited",
			Components: []SubmittedRow{
				{
					Type: ComponentTypeActionRow,
					Components: []SubmittedComponent{
						{Type: ComponentTypeTextInput, CustomID: InputAPIKey, Value: "abc1234567"},
					},
				},
			},
		},
	}
	assert.Equal(t, "abc1234567", i.InputValue(InputAPIKey))
	assert.Empty(t, i.InputValue(InputTargetIDs))
}
