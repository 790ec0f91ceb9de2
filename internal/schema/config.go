package schema

import (
	"github.com/pricetracker/web/internal/models"
)

type configWire struct {
	ID           *identifier `json:"_id" validate:"required"`
	UserAgents   []string    `json:"userAgents"`
	ProxyServers []string    `json:"proxyServers"`
}

// Config validates the /api/config/* payloads.
var Config = newSchema("config", func(w *configWire) (models.Config, error) {
	return models.Config{
		ID:           string(*w.ID),
		UserAgents:   w.UserAgents,
		ProxyServers: w.ProxyServers,
	}, nil
})
