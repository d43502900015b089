package services

import (
	"strings"

	"chatbot-admin-console/models"
)

// MergeReport summarizes what a merge changed, for the operator toast.
type MergeReport struct {
	FilledFields  []string `json:"filled_fields"`
	AddedServices int      `json:"added_services"`
	AddedFAQs     int      `json:"added_faqs"`
	AddedPolicies int      `json:"added_policies"`
	AddedSocial   int      `json:"added_social_links"`
	SkippedDupes  int      `json:"skipped_duplicates"`
}

func (r MergeReport) Changed() bool {
	return len(r.FilledFields) > 0 || r.AddedServices > 0 || r.AddedFAQs > 0 ||
		r.AddedPolicies > 0 || r.AddedSocial > 0
}

// normalizeKey is the dedup key: lowercased, trimmed.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func keySet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[normalizeKey(v)] = true
	}
	return set
}

// SafeMerge applies the automatic merge policy after a scan completes:
// scalar fields are filled only when currently empty (never overwritten),
// list fields are always appended with normalized-key dedup. Only
// suggestions that survived the confidence filter (Selected) participate.
func SafeMerge(bot *models.Bot, data *models.WebsiteImportData) MergeReport {
	var report MergeReport
	if data == nil {
		return report
	}

	fill := func(target *string, field models.SuggestedField, name string) {
		if *target != "" {
			return
		}
		if !field.Selected || strings.TrimSpace(field.Value) == "" {
			return
		}
		*target = strings.TrimSpace(field.Value)
		report.FilledFields = append(report.FilledFields, name)
	}

	fill(&bot.Profile.BusinessName, data.BusinessName, "business_name")
	fill(&bot.Profile.Phone, data.Phone, "phone")
	fill(&bot.Profile.Email, data.Email, "email")
	fill(&bot.Profile.BookingURL, data.BookingURL, "booking_url")

	report.AddedServices, report.SkippedDupes = appendValues(&bot.Profile.Services, data.Services, report.SkippedDupes)
	report.AddedPolicies, report.SkippedDupes = appendValues(&bot.Policies, data.Policies, report.SkippedDupes)
	report.AddedSocial, report.SkippedDupes = appendValues(&bot.Profile.SocialLinks, data.SocialLinks, report.SkippedDupes)
	report.AddedFAQs, report.SkippedDupes = appendFAQs(&bot.FAQs, data.FAQs, report.SkippedDupes)

	return report
}

// ApplySelected applies the manual merge policy: the operator's selected
// items are copied into the config. Selected scalars overwrite (an explicit
// operator choice); list items still dedup against existing entries.
func ApplySelected(bot *models.Bot, data *models.WebsiteImportData) MergeReport {
	var report MergeReport
	if data == nil {
		return report
	}

	set := func(target *string, field models.SuggestedField, name string) {
		if !field.Selected || strings.TrimSpace(field.Value) == "" {
			return
		}
		value := strings.TrimSpace(field.Value)
		if *target == value {
			return
		}
		*target = value
		report.FilledFields = append(report.FilledFields, name)
	}

	set(&bot.Profile.BusinessName, data.BusinessName, "business_name")
	set(&bot.Profile.Phone, data.Phone, "phone")
	set(&bot.Profile.Email, data.Email, "email")
	set(&bot.Profile.BookingURL, data.BookingURL, "booking_url")

	report.AddedServices, report.SkippedDupes = appendValues(&bot.Profile.Services, data.Services, report.SkippedDupes)
	report.AddedPolicies, report.SkippedDupes = appendValues(&bot.Policies, data.Policies, report.SkippedDupes)
	report.AddedSocial, report.SkippedDupes = appendValues(&bot.Profile.SocialLinks, data.SocialLinks, report.SkippedDupes)
	report.AddedFAQs, report.SkippedDupes = appendFAQs(&bot.FAQs, data.FAQs, report.SkippedDupes)

	return report
}

func appendValues(target *[]string, suggestions []models.Suggestion, skipped int) (int, int) {
	existing := keySet(*target)
	added := 0

	for _, s := range suggestions {
		if !s.Selected {
			continue
		}
		value := strings.TrimSpace(s.Value)
		if value == "" {
			continue
		}
		key := normalizeKey(value)
		if existing[key] {
			skipped++
			continue
		}
		*target = append(*target, value)
		existing[key] = true
		added++
	}

	return added, skipped
}

// FAQs dedup on the normalized question; a reworded answer to the same
// question is still a duplicate.
func appendFAQs(target *[]models.FAQ, suggestions []models.FAQSuggestion, skipped int) (int, int) {
	existing := make(map[string]bool, len(*target))
	for _, f := range *target {
		existing[normalizeKey(f.Question)] = true
	}

	added := 0
	for _, s := range suggestions {
		if !s.Selected {
			continue
		}
		question := strings.TrimSpace(s.Question)
		if question == "" {
			continue
		}
		key := normalizeKey(question)
		if existing[key] {
			skipped++
			continue
		}
		*target = append(*target, models.FAQ{Question: question, Answer: strings.TrimSpace(s.Answer)})
		existing[key] = true
		added++
	}

	return added, skipped
}

// FilterSuggestions marks each suggestion's Selected flag by the confidence
// threshold. Items below threshold stay visible but arrive deselected, so
// the operator has to opt in explicitly.
func FilterSuggestions(data *models.WebsiteImportData, minConfidence float64) {
	if data == nil {
		return
	}

	data.BusinessName.Selected = data.BusinessName.Value != "" && data.BusinessName.Confidence >= minConfidence
	data.Phone.Selected = data.Phone.Value != "" && data.Phone.Confidence >= minConfidence
	data.Email.Selected = data.Email.Value != "" && data.Email.Confidence >= minConfidence
	data.BookingURL.Selected = data.BookingURL.Value != "" && data.BookingURL.Confidence >= minConfidence

	for i := range data.Services {
		data.Services[i].Selected = data.Services[i].Confidence >= minConfidence
	}
	for i := range data.FAQs {
		data.FAQs[i].Selected = data.FAQs[i].Confidence >= minConfidence
	}
	for i := range data.Policies {
		data.Policies[i].Selected = data.Policies[i].Confidence >= minConfidence
	}
	for i := range data.SocialLinks {
		data.SocialLinks[i].Selected = data.SocialLinks[i].Confidence >= minConfidence
	}
}
