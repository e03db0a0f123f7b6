package model

import "encoding/json"

// Monitor is owned by the upstream service. Only the fields the dashboard
// consumes are modelled.
type Monitor struct {
	ID         string                    `json:"id,omitempty"`
	Name       string                    `json:"name"`
	Config     MonitorConfig             `json:"config"`
	Services   map[string]ServiceSetting `json:"services,omitempty"`
	ChannelIDs []string                  `json:"channel_ids"`
	Status     string                    `json:"status,omitempty"`
}

type MonitorConfig struct {
	Meta MonitorMeta `json:"meta"`
}

type MonitorMeta struct {
	URL string `json:"url"`
}

// ServiceSetting configures one check service of a monitor.
type ServiceSetting struct {
	Enabled  bool   `json:"enabled"`
	Interval int    `json:"interval,omitempty"`
	Strategy string `json:"strategy,omitempty"`
}

// BulkAction applies one action to several monitors at once.
type BulkAction struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
}

// HistogramPoint is one bucket of a monitor's uptime histogram.
type HistogramPoint struct {
	Timestamp int64   `json:"timestamp"`
	Up        int     `json:"up"`
	Down      int     `json:"down"`
	Uptime    float64 `json:"uptime"`
}

// NotificationChannel is an alert destination owned by the upstream service.
type NotificationChannel struct {
	ID          string        `json:"id,omitempty"`
	ChannelType string        `json:"channel_type"`
	Name        string        `json:"name,omitempty"`
	Config      ChannelConfig `json:"config"`
}

type ChannelConfig struct {
	Recipients Recipients `json:"recipients"`
}

type Recipients struct {
	To []string `json:"to"`
}

// StatusPage is a public status page owned by the upstream service.
type StatusPage struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name"`
	IsPublished bool     `json:"is_published"`
	ShareableID string   `json:"shareable_id,omitempty"`
	MonitorIDs  []string `json:"monitor_ids"`
}

type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Option is a dropdown entry rendered by the dashboard.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Envelope is the shape of every management endpoint response upstream.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}
