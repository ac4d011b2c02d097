package http

import (
	eventUC "github.com/linkforge/profile-hub/internal/application/usecase/event"
	milestoneUC "github.com/linkforge/profile-hub/internal/application/usecase/milestone"
	testimonialUC "github.com/linkforge/profile-hub/internal/application/usecase/testimonial"
)

// Dates travel as strings so callers can send either a calendar date or a
// full timestamp; the services parse and validate them.

type DateRangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type EventRequest struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	URL         string           `json:"url"`
	Date        DateRangeRequest `json:"date"`
	IsVirtual   bool             `json:"isVirtual"`
	Price       string           `json:"price"`
	Order       int              `json:"order"`
}

func (r *EventRequest) ToInput() eventUC.Input {
	return eventUC.Input{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		URL:         r.URL,
		DateStart:   r.Date.Start,
		DateEnd:     r.Date.End,
		IsVirtual:   r.IsVirtual,
		Price:       r.Price,
		Order:       r.Order,
	}
}

type MilestoneRequest struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Icon        string `json:"icon"`
	Date        string `json:"date"`
	IsGoal      bool   `json:"isGoal"`
	Order       int    `json:"order"`
}

func (r *MilestoneRequest) ToInput() milestoneUC.Input {
	return milestoneUC.Input{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		Icon:        r.Icon,
		Date:        r.Date,
		IsGoal:      r.IsGoal,
		Order:       r.Order,
	}
}

type TestimonialRequest struct {
	About       string `json:"about"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Order       int    `json:"order"`
}

func (r *TestimonialRequest) ToInput() testimonialUC.Input {
	return testimonialUC.Input{
		About:       r.About,
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Order:       r.Order,
	}
}
