// Package services contains the business logic of the bot: the
// interaction router that drives the conversational flow and the batch
// processor that advances analysis jobs.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thc-edge/vetbot/config"
	"github.com/thc-edge/vetbot/internal/db/models"
	"github.com/thc-edge/vetbot/internal/db/repos"
	"github.com/thc-edge/vetbot/internal/discord"
	"github.com/thc-edge/vetbot/internal/events"
	"github.com/thc-edge/vetbot/internal/logger"
	"github.com/thc-edge/vetbot/internal/retry"
	"github.com/thc-edge/vetbot/internal/targets"
	"github.com/thc-edge/vetbot/internal/torn"
)

// groupExpansionTimeout bounds the out-of-band faction expansion that
// runs after the deferred acknowledgement has been sent.
const groupExpansionTimeout = 30 * time.Second

// Reply text for the conversational branches.
const (
	msgKeyCleared     = "API key cleared."
	msgEmptyKey       = "API key cannot be empty."
	msgKeyTooLong     = "API key is too long to continue."
	msgFactionNumeric = "Faction ID must be numeric."
	msgNoMembersFound = "No members found or insufficient API permissions."
	msgStorageDown    = "Storage unavailable, try again later."
	msgAnalyzing      = "Analyzing %d member(s). This may take a while."
)

// Router drives the conversational state machine over inbound
// interactions. Each branch produces its acknowledgement within the
// platform deadline; anything slower continues out of band, anchored in
// the job store.
type Router struct {
	jobs            *repos.AnalysisJobRepository
	game            *torn.Client
	parser          *targets.Parser
	webhook         *discord.WebhookClient
	appID           string
	maxGroupTargets int
	publish         func(events.Event)
	storage         retry.Policy
}

// NewRouter creates the interaction router. appID is the fallback
// application id for follow-up calls when the interaction payload does
// not carry one.
func NewRouter(jobs *repos.AnalysisJobRepository, game *torn.Client, parser *targets.Parser, webhook *discord.WebhookClient, appID string, maxGroupTargets int) *Router {
	if maxGroupTargets <= 0 {
		maxGroupTargets = config.DefaultMaxGroupTargets
	}
	return &Router{
		jobs:            jobs,
		game:            game,
		parser:          parser,
		webhook:         webhook,
		appID:           appID,
		maxGroupTargets: maxGroupTargets,
		publish:         events.Publish,
		storage:         storagePolicy(),
	}
}

// Route dispatches one inbound interaction and returns the response to
// write back. A non-nil error means the payload was not routable (unknown
// type, malformed token) and should be rejected at the boundary; every
// expected branch answers with user-visible content instead.
func (s *Router) Route(ctx context.Context, in *discord.Interaction) (*discord.InteractionResponse, error) {
	switch in.Type {
	case discord.InteractionTypePing:
		return discord.NewPong(), nil
	case discord.InteractionTypeCommand:
		return s.routeCommand(in)
	case discord.InteractionTypeComponent:
		return s.routeComponent(in)
	case discord.InteractionTypeModalSubmit:
		return s.routeModalSubmit(ctx, in)
	default:
		return nil, fmt.Errorf("unsupported interaction type %d", in.Type)
	}
}

func (s *Router) routeCommand(in *discord.Interaction) (*discord.InteractionResponse, error) {
	switch in.Data.Name {
	case discord.CommandMemberAnalysis:
		limitedID, err := discord.Token{Step: discord.StepCredentialType, KeyType: string(models.KeyTypeLimited)}.Encode()
		if err != nil {
			return nil, err
		}
		fullID, err := discord.Token{Step: discord.StepCredentialType, KeyType: string(models.KeyTypeFull)}.Encode()
		if err != nil {
			return nil, err
		}
		return discord.CredentialTypePrompt(limitedID, fullID, in.InGuild()), nil
	case discord.CommandForgetKey:
		// No key is cached server side; the flow carries the credential
		// in component tokens, which die with the original message.
		return discord.NewMessage(msgKeyCleared, in.InGuild()), nil
	default:
		return nil, fmt.Errorf("unknown command %q", in.Data.Name)
	}
}

func (s *Router) routeComponent(in *discord.Interaction) (*discord.InteractionResponse, error) {
	tok, err := discord.DecodeToken(in.Data.CustomID)
	if err != nil {
		return nil, err
	}

	switch tok.Step {
	case discord.StepCredentialType:
		keyType, err := models.ParseKeyType(tok.KeyType)
		if err != nil {
			return nil, err
		}
		modalID, err := discord.Token{Step: discord.StepCredentialModal, KeyType: string(keyType)}.Encode()
		if err != nil {
			return nil, err
		}
		return discord.CredentialModal(modalID, keyTypeLabel(keyType)), nil

	case discord.StepTargetType:
		targetType, err := models.ParseTargetType(tok.TargetType)
		if err != nil {
			return nil, err
		}
		modalID, err := discord.Token{
			Step:       discord.StepTargetModal,
			KeyType:    tok.KeyType,
			Credential: tok.Credential,
			TargetType: tok.TargetType,
		}.Encode()
		if err != nil {
			return nil, err
		}
		if targetType == models.TargetTypeGroupID {
			return discord.FactionModal(modalID), nil
		}
		return discord.OpponentsModal(modalID), nil

	case discord.StepJobStatus:
		// Acknowledge without touching the message; the processor edits
		// it once the poll has run.
		s.publish(events.Event{Type: events.EventJobPoll, JobID: tok.JobID})
		return discord.NewDeferredUpdate(), nil

	default:
		return nil, fmt.Errorf("unexpected component token step %q", tok.Step)
	}
}

func (s *Router) routeModalSubmit(ctx context.Context, in *discord.Interaction) (*discord.InteractionResponse, error) {
	tok, err := discord.DecodeToken(in.Data.CustomID)
	if err != nil {
		return nil, err
	}
	ephemeral := in.InGuild()

	switch tok.Step {
	case discord.StepCredentialModal:
		credential := strings.TrimSpace(in.InputValue(discord.InputAPIKey))
		if credential == "" {
			return discord.NewMessage(msgEmptyKey, ephemeral), nil
		}
		factionID, err := discord.Token{
			Step:       discord.StepTargetType,
			KeyType:    tok.KeyType,
			Credential: credential,
			TargetType: string(models.TargetTypeGroupID),
		}.Encode()
		if err != nil {
			logger.Warnf("credential does not fit in a component token: %v", err)
			return discord.NewMessage(msgKeyTooLong, ephemeral), nil
		}
		opponentsID, err := discord.Token{
			Step:       discord.StepTargetType,
			KeyType:    tok.KeyType,
			Credential: credential,
			TargetType: string(models.TargetTypeDirectIDs),
		}.Encode()
		if err != nil {
			logger.Warnf("credential does not fit in a component token: %v", err)
			return discord.NewMessage(msgKeyTooLong, ephemeral), nil
		}
		return discord.TargetTypePrompt(factionID, opponentsID, ephemeral), nil

	case discord.StepTargetModal:
		if tok.Credential == "" {
			return nil, fmt.Errorf("token carries no credential")
		}
		keyType, err := models.ParseKeyType(tok.KeyType)
		if err != nil {
			return nil, err
		}
		targetType, err := models.ParseTargetType(tok.TargetType)
		if err != nil {
			return nil, err
		}
		raw := strings.TrimSpace(in.InputValue(discord.InputTargetIDs))
		if targetType == models.TargetTypeGroupID {
			return s.startGroupJob(in, keyType, tok.Credential, raw), nil
		}
		return s.startDirectJob(ctx, in, keyType, tok.Credential, raw), nil

	default:
		return nil, fmt.Errorf("unexpected modal token step %q", tok.Step)
	}
}

// startDirectJob parses the pasted id list, creates the job, and
// acknowledges with a status button. Parse failures surface in the
// acknowledgement; no job is created.
func (s *Router) startDirectJob(ctx context.Context, in *discord.Interaction, keyType models.KeyType, credential, raw string) *discord.InteractionResponse {
	ephemeral := in.InGuild()

	ids, err := s.parser.Parse(raw)
	if err != nil {
		return discord.NewMessage(err.Error(), ephemeral)
	}

	job := s.newJob(in, keyType, credential, models.TargetTypeDirectIDs, "", ids)
	statusID, err := discord.Token{Step: discord.StepJobStatus, JobID: job.ID}.Encode()
	if err != nil {
		logger.Errorf("failed to encode status token for job %s: %v", job.ID, err)
		return discord.NewMessage(msgStorageDown, ephemeral)
	}

	if err := s.createJob(ctx, job); err != nil {
		logger.Errorf("failed to create job for user %s: %v", job.OwnerID, err)
		return discord.NewMessage(msgStorageDown, ephemeral)
	}

	s.publish(events.Event{Type: events.EventJobKickoff, JobID: job.ID})
	content := fmt.Sprintf(msgAnalyzing, len(ids))
	return discord.NewMessage(content, ephemeral, discord.StatusRow(statusID))
}

// startGroupJob validates the faction id and defers the reply; the
// expansion and job creation continue out of band because the member
// list lookup cannot finish within the acknowledgement deadline.
func (s *Router) startGroupJob(in *discord.Interaction, keyType models.KeyType, credential, raw string) *discord.InteractionResponse {
	ephemeral := in.InGuild()
	if !isNumeric(raw) {
		return discord.NewMessage(msgFactionNumeric, ephemeral)
	}

	go s.expandGroup(in, keyType, credential, raw)
	return discord.NewDeferredMessage(ephemeral)
}

// expandGroup resolves a faction id to its member list, creates the job,
// and edits the deferred acknowledgement with the outcome. It runs on
// its own deadline; the request context died with the acknowledgement.
func (s *Router) expandGroup(in *discord.Interaction, keyType models.KeyType, credential, groupID string) {
	ctx, cancel := context.WithTimeout(context.Background(), groupExpansionTimeout)
	defer cancel()

	memberIDs, err := s.game.FactionMembers(ctx, credential, groupID)
	if err != nil {
		logger.Errorf("failed to expand faction %s: %v", groupID, err)
		s.editOriginal(ctx, in, msgNoMembersFound)
		return
	}
	if len(memberIDs) == 0 {
		s.editOriginal(ctx, in, msgNoMembersFound)
		return
	}
	if len(memberIDs) > s.maxGroupTargets {
		logger.Infof("faction %s has %d members, capping at %d", groupID, len(memberIDs), s.maxGroupTargets)
		memberIDs = memberIDs[:s.maxGroupTargets]
	}

	job := s.newJob(in, keyType, credential, models.TargetTypeGroupID, groupID, memberIDs)
	statusID, err := discord.Token{Step: discord.StepJobStatus, JobID: job.ID}.Encode()
	if err != nil {
		logger.Errorf("failed to encode status token for job %s: %v", job.ID, err)
		s.editOriginal(ctx, in, msgStorageDown)
		return
	}

	if err := s.createJob(ctx, job); err != nil {
		logger.Errorf("failed to create job for user %s: %v", job.OwnerID, err)
		s.editOriginal(ctx, in, msgStorageDown)
		return
	}

	s.publish(events.Event{Type: events.EventJobKickoff, JobID: job.ID})
	content := fmt.Sprintf(msgAnalyzing, len(memberIDs))
	s.editOriginal(ctx, in, content, discord.StatusRow(statusID))
}

// newJob builds the durable record for one analysis request.
func (s *Router) newJob(in *discord.Interaction, keyType models.KeyType, credential string, targetType models.TargetType, groupID string, ids []string) *models.AnalysisJob {
	appID := in.ApplicationID
	if appID == "" {
		appID = s.appID
	}
	return &models.AnalysisJob{
		ID:               uuid.New().String(),
		OwnerID:          in.UserID(),
		Status:           models.JobStatusQueued,
		TargetType:       targetType,
		KeyType:          keyType,
		Credential:       credential,
		GroupID:          groupID,
		Targets:          models.TargetList(ids),
		InteractionToken: in.Token,
		ApplicationID:    appID,
		Ephemeral:        in.InGuild(),
	}
}

func (s *Router) createJob(ctx context.Context, job *models.AnalysisJob) error {
	return retry.Do(ctx, s.storage, func() error {
		return s.jobs.Create(ctx, job)
	})
}

// editOriginal replaces the deferred acknowledgement's content. Failures
// are logged, never retried.
func (s *Router) editOriginal(ctx context.Context, in *discord.Interaction, content string, rows ...discord.Component) {
	appID := in.ApplicationID
	if appID == "" {
		appID = s.appID
	}
	data := &discord.ResponseData{Content: content, Components: rows}
	if err := s.webhook.EditOriginal(ctx, appID, in.Token, data); err != nil {
		logger.Errorf("failed to edit original message: %v", err)
	}
}

func keyTypeLabel(keyType models.KeyType) string {
	if keyType == models.KeyTypeFull {
		return "Full"
	}
	return "Limited"
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
