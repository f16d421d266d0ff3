package repository

import (
	"time"

	"github.com/spec-kit/ticket-desk/internal/domain"
)

// SeedTickets returns the six starter tickets with timestamps relative to now.
func SeedTickets(now time.Time) []domain.Ticket {
	hoursAgo := func(h int) time.Time { return now.Add(-time.Duration(h) * time.Hour) }
	daysAgo := func(d int) time.Time { return now.AddDate(0, 0, -d) }

	return []domain.Ticket{
		{
			ID:          "TK-001",
			Title:       "Login page not loading",
			Description: "Users are unable to access the login page due to a server error",
			Priority:    domain.TicketPriorityHigh,
			Status:      domain.TicketStatusOpen,
			Category:    "Bug",
			Assignee:    "Sarah Johnson",
			Created:     hoursAgo(2),
			Updated:     hoursAgo(1),
			Tags:        []string{"authentication", "frontend", "critical"},
			Comments: []domain.Comment{{
				ID:        "1",
				Author:    "Sarah Johnson",
				Content:   "I'm investigating this issue. It seems to be related to the server configuration.",
				Timestamp: hoursAgo(1),
			}},
		},
		{
			ID:          "TK-002",
			Title:       "Dashboard performance issue",
			Description: "Dashboard takes too long to load with large datasets",
			Priority:    domain.TicketPriorityMedium,
			Status:      domain.TicketStatusInProgress,
			Category:    "Performance",
			Assignee:    "Mike Chen",
			Created:     hoursAgo(5),
			Updated:     hoursAgo(3),
			Tags:        []string{"performance", "database"},
			Comments: []domain.Comment{{
				ID:        "2",
				Author:    "Mike Chen",
				Content:   "Working on optimizing the database queries. Should have a fix by tomorrow.",
				Timestamp: hoursAgo(3),
			}},
		},
		{
			ID:          "TK-003",
			Title:       "Export feature request",
			Description: "Users need ability to export data to CSV format",
			Priority:    domain.TicketPriorityLow,
			Status:      domain.TicketStatusOpen,
			Category:    "Feature",
			Assignee:    "Alex Smith",
			Created:     daysAgo(1),
			Updated:     daysAgo(1),
			Tags:        []string{"export", "csv"},
			Comments:    []domain.Comment{},
		},
		{
			ID:          "TK-004",
			Title:       "Mobile app crashing",
			Description: "App crashes when opening notifications on iOS devices",
			Priority:    domain.TicketPriorityHigh,
			Status:      domain.TicketStatusResolved,
			Category:    "Bug",
			Assignee:    "Emma Wilson",
			Created:     daysAgo(2),
			Updated:     hoursAgo(6),
			Tags:        []string{"mobile", "ios", "crash"},
			Comments: []domain.Comment{{
				ID:        "3",
				Author:    "Emma Wilson",
				Content:   "Fixed the iOS notification crash. Deployed to production.",
				Timestamp: hoursAgo(6),
			}},
		},
		{
			ID:          "TK-005",
			Title:       "Dark mode implementation",
			Description: "Add dark mode support across all pages",
			Priority:    domain.TicketPriorityMedium,
			Status:      domain.TicketStatusInProgress,
			Category:    "Feature",
			Assignee:    "David Brown",
			Created:     daysAgo(3),
			Updated:     daysAgo(1),
			Tags:        []string{"ui", "dark-mode"},
			Comments:    []domain.Comment{},
		},
		{
			ID:          "TK-006",
			Title:       "Database optimization",
			Description: "Optimize database queries for better performance",
			Priority:    domain.TicketPriorityLow,
			Status:      domain.TicketStatusOpen,
			Category:    "Performance",
			Assignee:    "Lisa Garcia",
			Created:     daysAgo(4),
			Updated:     daysAgo(2),
			Tags:        []string{"database", "optimization"},
			Comments:    []domain.Comment{},
		},
	}
}
