package domain

// TicketDraft is the unsaved create-ticket form.
type TicketDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Assignee    string `json:"assignee"`
}

// ProfileDraft is the unsaved profile form.
type ProfileDraft struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Bio        string `json:"bio"`
	Role       string `json:"role"`
	Department string `json:"department"`
	JoinDate   string `json:"joinDate"`
}
