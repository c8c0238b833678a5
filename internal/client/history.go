package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// HistoryService reads the authenticated user's action log
type HistoryService service

// HistoryFilter narrows the action log. Zero fields are not sent.
type HistoryFilter struct {
	TypeAction string
	From       time.Time
	To         time.Time
	Search     string
	Ordering   string // e.g. -date_action
	Page       int
	PageSize   int
}

func (f HistoryFilter) params() Params {
	p := Params{}
	if f.TypeAction != "" {
		p["type_action"] = f.TypeAction
	}
	if !f.From.IsZero() {
		p["date_action__gte"] = f.From
	}
	if !f.To.IsZero() {
		p["date_action__lte"] = f.To
	}
	if f.Search != "" {
		p["search"] = f.Search
	}
	if f.Ordering != "" {
		p["ordering"] = f.Ordering
	}
	if f.Page > 0 {
		p["page"] = f.Page
	}
	if f.PageSize > 0 {
		p["page_size"] = f.PageSize
	}
	return p
}

func (s *HistoryService) List(ctx context.Context, filter HistoryFilter) (json.RawMessage, error) {
	return s.client.get(ctx, "/historique/", filter.params())
}

// Recent lists the actions of the last 7 days
func (s *HistoryService) Recent(ctx context.Context) (json.RawMessage, error) {
	return s.List(ctx, HistoryFilter{From: time.Now().AddDate(0, 0, -7)})
}

func (s *HistoryService) Get(ctx context.Context, id int) (json.RawMessage, error) {
	return s.client.get(ctx, fmt.Sprintf("/historique/%d/", id), nil)
}

func (s *HistoryService) Statistics(ctx context.Context) (json.RawMessage, error) {
	return s.client.get(ctx, "/historique/statistiques/", nil)
}

// Record logs an action performed by the user
func (s *HistoryService) Record(ctx context.Context, action any) (json.RawMessage, error) {
	return s.client.post(ctx, "/historique/", action)
}
