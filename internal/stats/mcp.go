package stats

import (
	"fmt"
	"strings"

	"github.com/klauern/hookguard/internal/constants"
)

// Category groups MCP tools by what they are used for.
type Category int

const (
	Other Category = iota
	Documentation
	UIGeneration
	BrowserAutomation
	Analysis
	Deployment
)

func (c Category) String() string {
	switch c {
	case Documentation:
		return "Documentation"
	case UIGeneration:
		return "UIGeneration"
	case BrowserAutomation:
		return "BrowserAutomation"
	case Analysis:
		return "Analysis"
	case Deployment:
		return "Deployment"
	default:
		return "Other"
	}
}

// Progress is the line printed while a tool of this category runs.
func (c Category) Progress() string {
	switch c {
	case Documentation:
		return "📚 Gathering information..."
	case UIGeneration:
		return "✨ Generating UI component..."
	case BrowserAutomation:
		return "🎭 Browser automation in progress..."
	case Analysis:
		return "🧠 Complex analysis running..."
	case Deployment:
		return "🚀 Deployment operation..."
	default:
		return ""
	}
}

// Keyword tables, checked in category order. A server or tool name
// containing any keyword selects the category.
var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{Deployment, []string{"deploy", "vercel", "netlify", "heroku", "cloudflare"}},
	{BrowserAutomation, []string{"playwright", "puppeteer", "browser", "selenium"}},
	{Documentation, []string{"context7", "deepwiki", "docs", "documentation", "resolve-library", "get-library"}},
	{UIGeneration, []string{"magic", "v0", "component", "21st"}},
	{Analysis, []string{"sequential", "thinking", "analy", "reason"}},
}

var heavyBrowserOps = []string{"screenshot", "pdf", "navigate", "crawl", "snapshot"}

// MCPTool is a parsed mcp__<server>__<tool> name.
type MCPTool struct {
	Server string
	Tool   string
}

// ParseMCPTool splits an MCP tool name. ok is false for non-MCP tools.
// Tool names may themselves contain "__"; only the first separator after
// the server is significant.
func ParseMCPTool(name string) (MCPTool, bool) {
	rest, found := strings.CutPrefix(name, constants.MCPToolPrefix)
	if !found {
		return MCPTool{}, false
	}
	server, tool, found := strings.Cut(rest, "__")
	if !found || server == "" || tool == "" {
		return MCPTool{}, false
	}
	return MCPTool{Server: server, Tool: tool}, true
}

// FullName returns the mcp__server__tool form.
func (t MCPTool) FullName() string {
	return constants.MCPToolPrefix + t.Server + "__" + t.Tool
}

// Category classifies the tool from its server and tool names.
func (t MCPTool) Category() Category {
	server := strings.ToLower(t.Server)
	tool := strings.ToLower(t.Tool)
	for _, entry := range categoryKeywords {
		for _, w := range entry.words {
			if strings.Contains(server, w) {
				return entry.category
			}
		}
	}
	for _, entry := range categoryKeywords {
		for _, w := range entry.words {
			if strings.Contains(tool, w) {
				return entry.category
			}
		}
	}
	return Other
}

// IsResourceIntensive reports browser operations that tend to be slow.
func (t MCPTool) IsResourceIntensive() bool {
	if t.Category() != BrowserAutomation {
		return false
	}
	tool := strings.ToLower(t.Tool)
	for _, op := range heavyBrowserOps {
		if strings.Contains(tool, op) {
			return true
		}
	}
	return false
}

// Describe is the one-line summary printed and logged for a call.
func (t MCPTool) Describe() string {
	return fmt.Sprintf("%s → %s (%s)", t.Server, t.Tool, t.Category())
}
