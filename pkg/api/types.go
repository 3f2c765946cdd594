package api

import (
	"time"

	"github.com/mfreeman451/zserve/pkg/docsite"
	"github.com/mfreeman451/zserve/pkg/models"
)

type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

type StatsResponse struct {
	Started      time.Time           `json:"started"`
	Uptime       string              `json:"uptime"`
	Classes      []models.ClassStats `json:"classes"`
	EventClients int                 `json:"event_clients"`
}

// SiteResponse is the site config plus its links flattened in rendering order.
type SiteResponse struct {
	*docsite.Site
	Links []docsite.Link `json:"links"`
}

type errorResponse struct {
	Error string `json:"error"`
}
