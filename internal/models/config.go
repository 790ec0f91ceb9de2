package models

// Config represents the scraper configuration document
type Config struct {
	ID           string   `json:"id"`
	UserAgents   []string `json:"userAgents"`
	ProxyServers []string `json:"proxyServers"`
}
