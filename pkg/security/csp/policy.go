// Package csp builds Content-Security-Policy header values.
package csp

import (
	"strings"
)

// directiveOrder fixes the rendering order so headers are stable.
var directiveOrder = []string{
	"default-src",
	"connect-src",
	"frame-ancestors",
	"form-action",
	"base-uri",
	"sandbox",
	"report-uri",
}

// Policy is a fluent Content-Security-Policy builder. It is not safe for
// concurrent mutation; build once and share the resulting string.
//
//	csp.New().DefaultSrc("'none'").FrameAncestors("'none'").Build()
//	// "default-src 'none'; frame-ancestors 'none'"
type Policy struct {
	directives map[string][]string
	reportOnly bool
}

func New() *Policy {
	return &Policy{directives: make(map[string][]string)}
}

func (p *Policy) set(directive string, sources []string) *Policy {
	p.directives[directive] = sources
	return p
}

// DefaultSrc is the fallback for every fetch directive.
func (p *Policy) DefaultSrc(sources ...string) *Policy { return p.set("default-src", sources) }

func (p *Policy) ConnectSrc(sources ...string) *Policy { return p.set("connect-src", sources) }

// FrameAncestors controls who may embed responses; 'none' blocks framing.
func (p *Policy) FrameAncestors(sources ...string) *Policy {
	return p.set("frame-ancestors", sources)
}

func (p *Policy) FormAction(sources ...string) *Policy { return p.set("form-action", sources) }

func (p *Policy) BaseURI(sources ...string) *Policy { return p.set("base-uri", sources) }

// Sandbox applies the sandbox directive. With no flags every restriction applies.
func (p *Policy) Sandbox(flags ...string) *Policy {
	if len(flags) == 0 {
		flags = []string{""}
	}
	return p.set("sandbox", flags)
}

func (p *Policy) ReportURI(uri string) *Policy { return p.set("report-uri", []string{uri}) }

// ReportOnly switches the header to Content-Security-Policy-Report-Only.
func (p *Policy) ReportOnly(enabled bool) *Policy {
	p.reportOnly = enabled
	return p
}

// Build renders the policy. An empty policy renders as "".
func (p *Policy) Build() string {
	parts := make([]string, 0, len(p.directives))
	for _, d := range directiveOrder {
		sources, ok := p.directives[d]
		if !ok || len(sources) == 0 {
			continue
		}
		parts = append(parts, strings.TrimSpace(d+" "+strings.Join(sources, " ")))
	}
	return strings.Join(parts, "; ")
}

func (p *Policy) HeaderName() string {
	if p.reportOnly {
		return "Content-Security-Policy-Report-Only"
	}
	return "Content-Security-Policy"
}

// APIPolicy is the policy for JSON-only responses: nothing may load,
// nothing may frame the response and a browser rendering it gets a sandbox.
func APIPolicy() *Policy {
	return New().
		DefaultSrc("'none'").
		FrameAncestors("'none'").
		FormAction("'none'").
		BaseURI("'none'").
		Sandbox()
}
