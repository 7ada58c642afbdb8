package registration

// Metadata describes a single contribution. The three implementations are
// ToolMetadata, PromptMetadata and RestAPIMetadata; the interface is sealed.
type Metadata interface {
	// Kind reports which contribution variant this is.
	Kind() Kind
	// ContributionID is the identifier of the contributed symbol.
	ContributionID() string
	// ContributionName is the declared display name. The manager checks
	// this value against the manifest allowlist.
	ContributionName() string
	// Origin is the fully qualified symbol, e.g. "example.com/ext/tools.query".
	Origin() string

	sealed()
}

// ToolMetadata is attached to functions decorated as tools.
type ToolMetadata struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags" yaml:"tags"`
	Protect     bool     `json:"protect" yaml:"protect"`
	Module      string   `json:"module" yaml:"module"`
}

func (m *ToolMetadata) Kind() Kind               { return KindTool }
func (m *ToolMetadata) ContributionID() string   { return m.ID }
func (m *ToolMetadata) ContributionName() string { return m.Name }
func (m *ToolMetadata) Origin() string           { return m.Module }
func (m *ToolMetadata) sealed()                  {}

// PromptMetadata is attached to functions decorated as prompts. Tags is a
// set and is kept sorted.
type PromptMetadata struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags" yaml:"tags"`
	Protect     bool     `json:"protect" yaml:"protect"`
	Module      string   `json:"module" yaml:"module"`
}

func (m *PromptMetadata) Kind() Kind               { return KindPrompt }
func (m *PromptMetadata) ContributionID() string   { return m.ID }
func (m *PromptMetadata) ContributionName() string { return m.Name }
func (m *PromptMetadata) Origin() string           { return m.Module }
func (m *PromptMetadata) sealed()                  {}

// RestAPIMetadata is attached to HTTP APIs. ResourceName, OpenAPITag,
// PermissionName and BasePath are derived once when the API is decorated.
type RestAPIMetadata struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	BasePath       string `json:"basePath" yaml:"basePath"`
	Module         string `json:"module" yaml:"module"`
	ResourceName   string `json:"resourceName" yaml:"resourceName"`
	OpenAPITag     string `json:"openapiSpecTag" yaml:"openapiSpecTag"`
	PermissionName string `json:"classPermissionName" yaml:"classPermissionName"`
}

func (m *RestAPIMetadata) Kind() Kind               { return KindRestAPI }
func (m *RestAPIMetadata) ContributionID() string   { return m.ID }
func (m *RestAPIMetadata) ContributionName() string { return m.Name }
func (m *RestAPIMetadata) Origin() string           { return m.Module }
func (m *RestAPIMetadata) sealed()                  {}

// PendingContribution is a contribution captured in extension mode and not
// yet validated.
type PendingContribution struct {
	Payload  any
	Metadata Metadata
	Kind     Kind
}
