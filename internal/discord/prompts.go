package discord

// Text input identifiers inside modals.
const (
	InputAPIKey    = "api_key"
	InputTargetIDs = "target_ids"
)

// NewPong acknowledges a ping handshake.
func NewPong() *InteractionResponse {
	return &InteractionResponse{Type: ResponseTypePong}
}

// NewMessage builds an immediate channel message response.
func NewMessage(content string, ephemeral bool, rows ...Component) *InteractionResponse {
	data := &ResponseData{Content: content, Components: rows}
	if ephemeral {
		data.Flags = MessageFlagEphemeral
	}
	return &InteractionResponse{Type: ResponseTypeMessage, Data: data}
}

// NewDeferredMessage acknowledges now and promises a visible follow-up
// message delivered through the webhook surface.
func NewDeferredMessage(ephemeral bool) *InteractionResponse {
	data := &ResponseData{}
	if ephemeral {
		data.Flags = MessageFlagEphemeral
	}
	return &InteractionResponse{Type: ResponseTypeDeferredMessage, Data: data}
}

// NewDeferredUpdate acknowledges a component click without changing the
// message; the original is edited out-of-band.
func NewDeferredUpdate() *InteractionResponse {
	return &InteractionResponse{Type: ResponseTypeDeferredUpdate}
}

// NewModal builds a modal response, one action row per input.
func NewModal(customID, title string, inputs ...Component) *InteractionResponse {
	rows := make([]Component, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, NewActionRow(in))
	}
	return &InteractionResponse{
		Type: ResponseTypeModal,
		Data: &ResponseData{CustomID: customID, Title: title, Components: rows},
	}
}

// NewActionRow groups components into one row.
func NewActionRow(children ...Component) Component {
	return Component{Type: ComponentTypeActionRow, Components: children}
}

// NewButton builds a clickable button bound to an encoded token.
func NewButton(style int, label, customID string) Component {
	return Component{Type: ComponentTypeButton, Style: style, Label: label, CustomID: customID}
}

// NewTextInput builds a required modal input.
func NewTextInput(customID, label, placeholder string, style, minLen, maxLen int) Component {
	return Component{
		Type:        ComponentTypeTextInput,
		Style:       style,
		CustomID:    customID,
		Label:       label,
		Placeholder: placeholder,
		Required:    true,
		MinLength:   minLen,
		MaxLength:   maxLen,
	}
}

// CredentialTypePrompt offers the key-type choice that starts the
// analysis flow. The button ids carry the chosen type forward.
func CredentialTypePrompt(limitedID, fullID string, ephemeral bool) *InteractionResponse {
	return NewMessage("Select the API key type to continue:", ephemeral,
		NewActionRow(
			NewButton(ButtonStylePrimary, "Limited API Key", limitedID),
			NewButton(ButtonStyleSuccess, "Full API Key", fullID),
		),
	)
}

// CredentialModal asks for the API key itself. keyTypeLabel is the human
// form of the chosen key type, "Limited" or "Full".
func CredentialModal(modalID, keyTypeLabel string) *InteractionResponse {
	return NewModal(modalID, "Enter Torn API Key",
		NewTextInput(InputAPIKey, keyTypeLabel+" API Key", "Paste your API key here",
			TextInputStyleShort, 10, 120),
	)
}

// TargetTypePrompt offers the faction-versus-explicit-ids choice. The
// button ids carry the key type and credential forward.
func TargetTypePrompt(factionID, opponentsID string, ephemeral bool) *InteractionResponse {
	return NewMessage("Choose a target type:", ephemeral,
		NewActionRow(
			NewButton(ButtonStylePrimary, "Faction ID", factionID),
			NewButton(ButtonStyleSecondary, "Opponent IDs", opponentsID),
		),
	)
}

// FactionModal asks for a single faction id.
func FactionModal(modalID string) *InteractionResponse {
	return NewModal(modalID, "Enter Faction ID",
		NewTextInput(InputTargetIDs, "Faction ID", "123456",
			TextInputStyleShort, 1, 2000),
	)
}

// OpponentsModal asks for a free-form member id list.
func OpponentsModal(modalID string) *InteractionResponse {
	return NewModal(modalID, "Enter Opponent IDs",
		NewTextInput(InputTargetIDs, "Opponent IDs (comma-separated)", "123, 456, 789",
			TextInputStyleParagraph, 1, 2000),
	)
}

// StatusRow builds the "Check Status" action bound to a job.
func StatusRow(statusID string) Component {
	return NewActionRow(NewButton(ButtonStyleSecondary, "Check Status", statusID))
}
