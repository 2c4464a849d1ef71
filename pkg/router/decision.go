package router

import (
	"fmt"

	"github.com/zen-systems/orbit/pkg/profile"
	"github.com/zen-systems/orbit/pkg/query"
)

// Decision captures routing decision details.
type Decision struct {
	ID              string                `json:"id"`
	RequestedModel  string                `json:"requested_model"`
	SelectedProfile string                `json:"selected_profile,omitempty"`
	FinalProfile    string                `json:"final_profile,omitempty"`
	CostTier        string                `json:"cost_tier,omitempty"`
	CeilingApplied  bool                  `json:"ceiling_applied"`
	DomainOverride  *Override             `json:"domain_override,omitempty"`
	Classification  *query.Classification `json:"classification,omitempty"`
	Assessment      *query.Assessment     `json:"assessment,omitempty"`
	UsedRemote      bool                  `json:"used_remote"`
	ClassifierError string                `json:"classifier_error,omitempty"`
	// ClassifierTransient marks a remote failure the provider may not repeat.
	ClassifierTransient bool                  `json:"classifier_transient,omitempty"`
	Reasons             []string              `json:"reasons,omitempty"`
	Plan                profile.ExecutionPlan `json:"plan"`
}

func (d *Decision) addReason(format string, args ...any) {
	d.Reasons = append(d.Reasons, fmt.Sprintf(format, args...))
}
