package tui

import (
	"modelcfg/config/models"
)

// OpenMsg asks a closed editor to open and fetch the configuration
type OpenMsg struct{}

// configLoadedMsg carries the fetched document and the stored preferences
type configLoadedMsg struct {
	doc    models.Document
	stored map[string]string
}

type configFailedMsg struct {
	err error
}

// savedMsg ends a save. err is informational only; the editor reloads either way.
type savedMsg struct {
	err error
}

// summaryMsg carries the stored preferences shown on the closed screen
type summaryMsg struct {
	stored map[string]string
}
