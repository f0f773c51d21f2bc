package model_test

import (
	"testing"

	"github.com/waveleap/broadcast-backend/internal/model"
)

func TestCampaignTransitions(t *testing.T) {
	allowed := []struct {
		from, to model.CampaignStatus
	}{
		{model.CampaignCreatingTemplate, model.CampaignWaitingApproval},
		{model.CampaignCreatingTemplate, model.CampaignFailed},
		{model.CampaignCreatingTemplate, model.CampaignCancelled},
		{model.CampaignWaitingApproval, model.CampaignSending},
		{model.CampaignWaitingApproval, model.CampaignFailed},
		{model.CampaignWaitingApproval, model.CampaignCancelled},
		{model.CampaignSending, model.CampaignCompleted},
		{model.CampaignSending, model.CampaignPartiallyCompleted},
		{model.CampaignSending, model.CampaignFailed},
		{model.CampaignSending, model.CampaignCancelled},
	}

	for _, tr := range allowed {
		if !tr.from.CanTransition(tr.to) {
			t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	denied := []struct {
		from, to model.CampaignStatus
	}{
		{model.CampaignCreatingTemplate, model.CampaignSending},
		{model.CampaignCreatingTemplate, model.CampaignCompleted},
		{model.CampaignWaitingApproval, model.CampaignCompleted},
		{model.CampaignWaitingApproval, model.CampaignCreatingTemplate},
		{model.CampaignSending, model.CampaignWaitingApproval},
		{model.CampaignCompleted, model.CampaignSending},
		{model.CampaignFailed, model.CampaignSending},
		{model.CampaignCancelled, model.CampaignSending},
		{model.CampaignPartiallyCompleted, model.CampaignFailed},
	}

	for _, tr := range denied {
		if tr.from.CanTransition(tr.to) {
			t.Errorf("expected %s -> %s to be denied", tr.from, tr.to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	terminal := []model.CampaignStatus{
		model.CampaignCompleted,
		model.CampaignPartiallyCompleted,
		model.CampaignFailed,
		model.CampaignCancelled,
	}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}

	live := []model.CampaignStatus{
		model.CampaignCreatingTemplate,
		model.CampaignWaitingApproval,
		model.CampaignSending,
	}
	for _, s := range live {
		if s.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", s)
		}
	}
}

func TestTemplateStatusDecided(t *testing.T) {
	if model.TemplatePending.IsDecided() {
		t.Error("pending must not count as decided")
	}
	for _, s := range []model.TemplateStatus{model.TemplateApproved, model.TemplateRejected, model.TemplateAbandoned} {
		if !s.IsDecided() {
			t.Errorf("expected %s to be decided", s)
		}
	}
}
