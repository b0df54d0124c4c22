package model

// Epic groups related work derived from an approved BRD.
type Epic struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	BlockedBy   []string `json:"blocked_by,omitempty"`
}

// Story is a single unit of implementable work derived from an Epic.
type Story struct {
	ID              string   `json:"id"`
	EpicID          string   `json:"epic_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	EstimatedPoints int      `json:"estimated_points,omitempty"`
	BlockedBy       []string `json:"blocked_by,omitempty"`
}

type EpicsOutput struct {
	BRDTitle            string   `json:"brd_title"`
	Epics               []Epic   `json:"epics"`
	ImplementationOrder []string `json:"implementation_order"`
	Degraded            bool     `json:"degraded,omitempty"`
}

type BacklogOutput struct {
	Epics               []Epic   `json:"epics"`
	Stories             []Story  `json:"stories"`
	ImplementationOrder []string `json:"implementation_order"`
	TotalPoints         int      `json:"total_points"`
	Degraded            bool     `json:"degraded,omitempty"`
}
