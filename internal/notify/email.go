package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	awsclient "valyntra-workers/internal/common/aws"
	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const EmailSinkName = "email"

// SummaryMailer emails the readiness summary to the company contact, or to
// the configured fallback address. With neither set it sends nothing.
type SummaryMailer struct {
	client   awsclient.SESAPI
	from     string
	fallback string
}

func NewSummaryMailer(client awsclient.SESAPI, from, fallback string) *SummaryMailer {
	return &SummaryMailer{client: client, from: from, fallback: fallback}
}

func (m *SummaryMailer) Name() string { return EmailSinkName }

func (m *SummaryMailer) Deliver(ctx context.Context, company models.Company, result models.PipelineResult) error {
	to := company.ContactEmail
	if to == "" {
		to = m.fallback
	}
	if to == "" {
		return nil
	}

	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(Subject(company, result))},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(SummaryText(company, result))},
			},
		},
		Source: aws.String(m.from),
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("ses", err)
	}
	return nil
}

func Subject(company models.Company, result models.PipelineResult) string {
	name := company.Name
	if name == "" {
		name = company.ID
	}
	return fmt.Sprintf("AI readiness for %s: %s (%.1f)", name, result.Score.Tier, result.Score.Overall)
}

// SummaryText renders the plain-text body: score, categories, then the
// opportunities in rank order with their matched providers.
func SummaryText(company models.Company, result models.PipelineResult) string {
	var b strings.Builder

	c := result.Score.Categories
	fmt.Fprintf(&b, "Overall readiness: %.1f (%s)\n\n", result.Score.Overall, result.Score.Tier)
	fmt.Fprintf(&b, "  Data maturity:            %.1f\n", c.DataMaturity)
	fmt.Fprintf(&b, "  Process automation:       %.1f\n", c.ProcessAutomation)
	fmt.Fprintf(&b, "  Leadership alignment:     %.1f\n", c.LeadershipAlignment)
	fmt.Fprintf(&b, "  Technical infrastructure: %.1f\n", c.TechnicalInfrastructure)

	opportunities := append([]models.Opportunity(nil), result.Opportunities...)
	sort.SliceStable(opportunities, func(i, j int) bool { return opportunities[i].Rank < opportunities[j].Rank })

	providers := make(map[string][]string)
	for _, m := range result.Matches {
		providers[m.OpportunityID] = append(providers[m.OpportunityID], m.ProviderName)
	}

	if len(opportunities) > 0 {
		fmt.Fprintf(&b, "\nRecommended opportunities for %s:\n", company.Industry)
	}
	for _, o := range opportunities {
		fmt.Fprintf(&b, "  %d. %s (%s impact, %s effort, %s)\n", o.Rank, o.Name, o.Impact, o.Effort, o.ROI)
		if names := providers[o.ID]; len(names) > 0 {
			fmt.Fprintf(&b, "     Providers: %s\n", strings.Join(names, ", "))
		}
	}

	fmt.Fprintf(&b, "\nEstimated pilot pipeline: %.0f\n", result.TotalPipelineValue())
	return b.String()
}
