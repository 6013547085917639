// Package discord implements the slice of the Discord interactions
// protocol the bot speaks: inbound webhook payloads, request signature
// verification, component state tokens, and outbound follow-up calls.
package discord

// Interaction types delivered to the webhook endpoint.
const (
	InteractionTypePing        = 1
	InteractionTypeCommand     = 2
	InteractionTypeComponent   = 3
	InteractionTypeModalSubmit = 5
)

// Response types returned from the webhook endpoint.
const (
	ResponseTypePong            = 1
	ResponseTypeMessage         = 4
	ResponseTypeDeferredMessage = 5
	ResponseTypeDeferredUpdate  = 6
	ResponseTypeModal           = 9
)

// Component types.
const (
	ComponentTypeActionRow = 1
	ComponentTypeButton    = 2
	ComponentTypeTextInput = 4
)

// Button styles.
const (
	ButtonStylePrimary   = 1
	ButtonStyleSecondary = 2
	ButtonStyleSuccess   = 3
)

// Text input styles.
const (
	TextInputStyleShort     = 1
	TextInputStyleParagraph = 2
)

// MessageFlagEphemeral makes a message visible only to the invoking user.
const MessageFlagEphemeral = 1 << 6

// Interaction is an inbound webhook payload.
type Interaction struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"application_id"`
	Type          int             `json:"type"`
	Data          InteractionData `json:"data"`
	GuildID       string          `json:"guild_id,omitempty"`
	ChannelID     string          `json:"channel_id,omitempty"`
	Member        *Member         `json:"member,omitempty"`
	User          *User           `json:"user,omitempty"`
	Token         string          `json:"token"`
}

// InteractionData carries the kind-specific portion of an interaction:
// the command name for commands, the component token for clicks, and the
// submitted inputs for modals.
type InteractionData struct {
	ID            string         `json:"id,omitempty"`
	Name          string         `json:"name,omitempty"`
	CustomID      string         `json:"custom_id,omitempty"`
	ComponentType int            `json:"component_type,omitempty"`
	Components    []SubmittedRow `json:"components,omitempty"`
}

// SubmittedRow is one action row in a modal submission.
type SubmittedRow struct {
	Type       int                  `json:"type"`
	Components []SubmittedComponent `json:"components"`
}

// SubmittedComponent is one filled-in input in a modal submission.
type SubmittedComponent struct {
	Type     int    `json:"type"`
	CustomID string `json:"custom_id"`
	Value    string `json:"value"`
}

// Member identifies the invoking guild member.
type Member struct {
	User *User `json:"user,omitempty"`
}

// User identifies the invoking user.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

// UserID returns the invoking user's id from either the guild member or
// the direct-message user object.
func (i *Interaction) UserID() string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// InGuild reports whether the interaction arrived from a guild channel.
// Guild replies are sent ephemeral so API keys never reach the channel.
func (i *Interaction) InGuild() bool {
	return i.GuildID != ""
}

// InputValue returns the submitted value of the named text input, or ""
// when the submission carries no such input.
func (i *Interaction) InputValue(customID string) string {
	for _, row := range i.Data.Components {
		for _, c := range row.Components {
			if c.CustomID == customID {
				return c.Value
			}
		}
	}
	return ""
}

// InteractionResponse is the JSON body written back to the webhook call.
type InteractionResponse struct {
	Type int           `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

// ResponseData is the message or modal payload of a response. The same
// shape doubles as the body of outbound follow-up calls.
type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Flags      int         `json:"flags,omitempty"`
	Components []Component `json:"components,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Title      string      `json:"title,omitempty"`
}

// Component is a message or modal building block. The platform
// distinguishes the variants by Type; unused fields stay zero and are
// omitted on the wire.
type Component struct {
	Type        int         `json:"type"`
	Style       int         `json:"style,omitempty"`
	Label       string      `json:"label,omitempty"`
	CustomID    string      `json:"custom_id,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Required    bool        `json:"required,omitempty"`
	MinLength   int         `json:"min_length,omitempty"`
	MaxLength   int         `json:"max_length,omitempty"`
	Value       string      `json:"value,omitempty"`
	Components  []Component `json:"components,omitempty"`
}
