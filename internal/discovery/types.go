package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Source identifies the originally queried resource.
type Source struct {
	ResourceType string `json:"resourceType"`
	ResourceID   string `json:"resourceId"`
	Display      string `json:"display"`
}

// RawNode is one discovered resource, pre-validation.
type RawNode struct {
	ID           string    `json:"id"` // "<ResourceType>/<resourceId>"
	ResourceType string    `json:"resourceType"`
	Display      string    `json:"display"`
	Depth        int       `json:"depth"`
	LastUpdated  time.Time `json:"lastUpdated,omitempty"`
}

// RawLink is one discovered relationship, pre-validation.
// Kind distinguishes direct references, reverse references, and
// one-to-many expansions; the backend contract only uses it for
// dashed-vs-solid rendering.
type RawLink struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Field    string  `json:"field"`
	Kind     string  `json:"type"`
	Strength float64 `json:"strength,omitempty"`
}

// Response is the payload of a relationship discovery call.
type Response struct {
	Source Source    `json:"source"`
	Nodes  []RawNode `json:"nodes"`
	Links  []RawLink `json:"links"`
}

// Options tunes a discovery call.
type Options struct {
	Depth         int  `json:"depth"`
	IncludeCounts bool `json:"includeCounts"`
}

// PathStep is one hop of a relationship path.
type PathStep struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Field string `json:"field"`
}

// Path is an ordered sequence of steps with no repeated nodes.
type Path struct {
	Steps []PathStep `json:"steps"`
}

// PathsResponse is the payload of a backend path discovery call.
type PathsResponse struct {
	Source    Source `json:"source"`
	Target    Source `json:"target"`
	PathCount int    `json:"pathCount"`
	Paths     []Path `json:"paths"`
}

// ConnectedResource is one entry of the most-connected ranking.
type ConnectedResource struct {
	ID            string `json:"id"`
	ResourceType  string `json:"resourceType"`
	Display       string `json:"display"`
	RelationCount int    `json:"relationCount"`
}

// Statistics is display-only summary data about the relationship store.
type Statistics struct {
	TotalResources     int                 `json:"totalResources"`
	TotalRelationships int                 `json:"totalRelationships"`
	MostConnected      []ConnectedResource `json:"mostConnectedResources"`
}

// Client is the external relationship-discovery collaborator.
type Client interface {
	DiscoverRelationships(ctx context.Context, resourceType, resourceID string, opts Options) (*Response, error)
	FindRelationshipPaths(ctx context.Context, sourceType, sourceID, targetType, targetID string, maxDepth int) (*PathsResponse, error)
	GetStatistics(ctx context.Context) (*Statistics, error)
}

// ValidationError marks a response or input as malformed. Validation
// errors are terminal: they are never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
