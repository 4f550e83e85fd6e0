// Package automation runs per-language formatters and linters on edited files
// and whole projects.
package automation

import "fmt"

// Status is the outcome of one tool invocation.
type Status int

const (
	Success Status = iota
	Warning
	Error
	NotAvailable
	Skipped
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case NotAvailable:
		return "not-available"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Symbol returns the marker printed before a result line.
func (s Status) Symbol() string {
	switch s {
	case Success:
		return "✅"
	case Warning:
		return "⚠️"
	case Error:
		return "❌"
	case NotAvailable:
		return "🚫"
	default:
		return "ℹ️"
	}
}

// Result reports what one tool did.
type Result struct {
	Tool    string `json:"tool"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

func (r Result) String() string {
	if r.Tool == "" {
		return fmt.Sprintf("%s %s", r.Status.Symbol(), r.Message)
	}
	return fmt.Sprintf("%s %s: %s", r.Status.Symbol(), r.Tool, r.Message)
}

func successResult(tool, msg string) Result { return Result{Tool: tool, Status: Success, Message: msg} }

func notAvailableResult(tool string) Result {
	return Result{Tool: tool, Status: NotAvailable, Message: fmt.Sprintf("%s is not available", tool)}
}

func skippedResult(msg string) Result { return Result{Status: Skipped, Message: msg} }

// HasErrors reports whether any result failed outright.
func HasErrors(results []Result) bool {
	for _, r := range results {
		if r.Status == Error {
			return true
		}
	}
	return false
}

// AnyApplied reports whether any result has one of the given statuses.
func AnyApplied(results []Result, statuses ...Status) bool {
	for _, r := range results {
		for _, s := range statuses {
			if r.Status == s {
				return true
			}
		}
	}
	return false
}
