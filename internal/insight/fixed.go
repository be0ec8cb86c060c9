package insight

// Fixed IDs for the static insight sets, so clients can recognise them
const (
	OnboardingStartID = "onboarding-start-tracking"
	OnboardingSetupID = "onboarding-setup-clients"
	FallbackID        = "fallback-unavailable"
)

// OnboardingInsights is returned when a user has no tracked time yet
func OnboardingInsights() []Insight {
	return []Insight{
		{
			ID:          OnboardingStartID,
			Type:        TypeRecommendation,
			Category:    CategoryProductivity,
			Priority:    PriorityHigh,
			Title:       "Start tracking your time",
			Description: "No time entries were found for this workspace. Log a few days of work to unlock predictions, anomaly detection and revenue analysis.",
			Impact:      "Insights become available once there is activity to analyse",
			Actions: []string{
				"Start a timer for the task you are working on now",
				"Add entries for work you did earlier this week",
			},
			Confidence: 1.0,
			Source:     "onboarding",
		},
		{
			ID:          OnboardingSetupID,
			Type:        TypeRecommendation,
			Category:    CategoryRevenue,
			Priority:    PriorityMedium,
			Title:       "Set up clients and rates",
			Description: "Adding clients with hourly rates or retainers lets revenue, efficiency and retainer usage be measured.",
			Impact:      "Enables revenue and profitability insights",
			Actions: []string{
				"Create your active clients",
				"Set an hourly rate or retainer for each client",
				"Mark entries as billable where they apply",
			},
			Confidence: 1.0,
			Source:     "onboarding",
		},
	}
}

// FallbackInsights is returned when the data needed for analysis cannot be read
func FallbackInsights() []Insight {
	return []Insight{
		{
			ID:          FallbackID,
			Type:        TypeAnalysis,
			Category:    CategoryProductivity,
			Priority:    PriorityLow,
			Title:       "Insights temporarily unavailable",
			Description: "Your data could not be analysed right now. Please try again in a few minutes.",
			Actions:     []string{"Refresh insights later"},
			Confidence:  1.0,
			Source:      "fallback",
		},
	}
}
