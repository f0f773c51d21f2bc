// internal/service/template_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/waveleap/broadcast-backend/internal/config"
	appErrors "github.com/waveleap/broadcast-backend/internal/errors"
	"github.com/waveleap/broadcast-backend/internal/gateway"
	"github.com/waveleap/broadcast-backend/internal/model"
	"github.com/waveleap/broadcast-backend/internal/repository"
)

// namePlaceholder is substituted with the recipient's display name at send time.
const namePlaceholder = "{{name}}"

type TemplateService struct {
	Gateway      gateway.Gateway
	TemplateRepo repository.TemplateRepositoryInterface
	QueueRepo    repository.ApprovalQueueRepositoryInterface
	CampaignRepo repository.CampaignRepositoryInterface
	Cfg          config.Config
}

// Provision builds the campaign's message template, submits it to the gateway
// for moderation, and queues the approval poll. On gateway failure the
// campaign is terminal; template submission is deterministic per content, so a
// retry needs a different message.
func (s *TemplateService) Provision(c *model.Campaign) error {
	localName := newTemplateName(c.ID)
	body := BuildTemplateBody(c.MessageBody)

	templateID, err := s.Gateway.CreateTemplate(context.Background(), localName, body, c.MediaRef)
	if err != nil {
		if _, ferr := s.CampaignRepo.MarkFailed(c.ID, model.CampaignCreatingTemplate, model.ReasonTemplateCreateError); ferr != nil {
			return appErrors.NewPersistence("mark campaign failed", ferr)
		}
		c.Status = model.CampaignFailed
		c.FailReason = model.ReasonTemplateCreateError
		return appErrors.NewTemplateCreate(err)
	}

	template := &model.Template{
		ID:         templateID,
		CampaignID: c.ID,
		LocalName:  localName,
		BodyText:   body,
		MediaRef:   c.MediaRef,
		Status:     model.TemplatePending,
	}
	if err := s.TemplateRepo.Create(template); err != nil {
		return appErrors.NewPersistence("create template", err)
	}
	if err := s.CampaignRepo.SetTemplate(c.ID, templateID); err != nil {
		return appErrors.NewPersistence("link template", err)
	}

	entry := &model.ApprovalEntry{
		TemplateID:      templateID,
		CampaignID:      c.ID,
		NextCheckAt:     time.Now(),
		CheckIntervalMs: s.Cfg.InitialIntervalMs,
		CheckCount:      0,
	}
	if err := s.QueueRepo.Enqueue(entry); err != nil {
		return appErrors.NewPersistence("enqueue approval poll", err)
	}

	if _, err := s.CampaignRepo.Transition(c.ID, model.CampaignCreatingTemplate, model.CampaignWaitingApproval); err != nil {
		return appErrors.NewPersistence("advance campaign", err)
	}
	c.Status = model.CampaignWaitingApproval
	c.TemplateID = templateID
	return nil
}

// BuildTemplateBody embeds the display-name placeholder the gateway
// substitutes per recipient.
func BuildTemplateBody(message string) string {
	if strings.Contains(message, namePlaceholder) {
		return message
	}
	return "Hi " + namePlaceholder + ", " + message
}

// newTemplateName is locally unique so resubmitting similar content never
// collides with an earlier template at the gateway.
func newTemplateName(campaignID int) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("camp_%d_%d_%s", campaignID, time.Now().Unix(), suffix)
}

// RenderTemplate fills placeholders of the form {{key}} with values.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}
	return result
}
