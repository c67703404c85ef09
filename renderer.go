package mermaidinit

import (
	"github.com/PuerkitoBio/goquery"
)

// RendererConfig is the option set handed to the renderer's initialize call.
type RendererConfig struct {
	StartOnLoad   bool   `json:"startOnLoad" yaml:"startOnLoad" koanf:"startOnLoad"`
	Theme         string `json:"theme" yaml:"theme" koanf:"theme"`
	SecurityLevel string `json:"securityLevel" yaml:"securityLevel" koanf:"securityLevel"`
	FontFamily    string `json:"fontFamily" yaml:"fontFamily" koanf:"fontFamily"`
	LogLevel      string `json:"logLevel" yaml:"logLevel" koanf:"logLevel"`
}

// DefaultRendererConfig defers rendering to the explicit run call.
var DefaultRendererConfig = RendererConfig{
	StartOnLoad:   false,
	Theme:         "default",
	SecurityLevel: "loose",
	FontFamily:    "arial, sans-serif",
	LogLevel:      "debug",
}

// Renderer is the external diagram library. It owns parsing and layout.
type Renderer interface {
	// Version may be empty.
	Version() string
	Initialize(cfg RendererConfig) error
	// Run renders nodes in place. Completion is reported through the returned
	// Pending, possibly long after Run returns, possibly never.
	Run(nodes *goquery.Selection) Pending
}

// Pending is the deferred outcome of a render batch.
// At most one of the two callbacks is invoked, at most once.
type Pending interface {
	Then(onSuccess func(), onFailure func(error))
}

// Environment is where the renderer is looked up.
type Environment interface {
	Lookup(name string) (Renderer, bool)
	// Globals lists the names visible in the environment. Only used for
	// troubleshooting output.
	Globals() []string
}

// Resolved is a Pending that has already succeeded.
type Resolved struct{}

func (Resolved) Then(onSuccess func(), _ func(error)) {
	if onSuccess != nil {
		onSuccess()
	}
}

// Rejected is a Pending that has already failed with Err.
type Rejected struct {
	Err error
}

func (r Rejected) Then(_ func(), onFailure func(error)) {
	if onFailure != nil {
		onFailure(r.Err)
	}
}
