package contrib

// ToolOption customizes a tool contribution.
type ToolOption func(*toolConfig)

type toolConfig struct {
	id          string
	name        string
	description *string
	tags        []string
	protect     bool
}

// ToolID overrides the identifier inferred from the handler.
func ToolID(id string) ToolOption { return func(c *toolConfig) { c.id = id } }

// ToolName overrides the name. It defaults to the identifier.
func ToolName(name string) ToolOption { return func(c *toolConfig) { c.name = name } }

// ToolDescription overrides the description taken from the handler's doc.
func ToolDescription(desc string) ToolOption {
	return func(c *toolConfig) { c.description = &desc }
}

func ToolTags(tags ...string) ToolOption {
	return func(c *toolConfig) { c.tags = append(c.tags, tags...) }
}

// ToolProtect controls whether calls require an authenticated principal.
// Tools are protected unless told otherwise.
func ToolProtect(protect bool) ToolOption { return func(c *toolConfig) { c.protect = protect } }

// PromptOption customizes a prompt contribution.
type PromptOption func(*promptConfig)

type promptConfig struct {
	id          string
	name        string
	title       string
	description *string
	tags        []string
	protect     bool
}

func PromptID(id string) PromptOption     { return func(c *promptConfig) { c.id = id } }
func PromptName(name string) PromptOption { return func(c *promptConfig) { c.name = name } }

// PromptTitle sets the human-readable title. It defaults to the name.
func PromptTitle(title string) PromptOption { return func(c *promptConfig) { c.title = title } }

func PromptDescription(desc string) PromptOption {
	return func(c *promptConfig) { c.description = &desc }
}

func PromptTags(tags ...string) PromptOption {
	return func(c *promptConfig) { c.tags = append(c.tags, tags...) }
}

func PromptProtect(protect bool) PromptOption {
	return func(c *promptConfig) { c.protect = protect }
}

// RestAPIOption customizes a REST API contribution.
type RestAPIOption func(*apiConfig)

type apiConfig struct {
	id             string
	name           string
	description    *string
	basePath       string
	resourceName   string
	openAPITag     string
	permissionName string
}

// APIID sets the identifier. It defaults to the API's type name and drives
// the base path, resource name and permission name.
func APIID(id string) RestAPIOption     { return func(c *apiConfig) { c.id = id } }
func APIName(name string) RestAPIOption { return func(c *apiConfig) { c.name = name } }

func APIDescription(desc string) RestAPIOption {
	return func(c *apiConfig) { c.description = &desc }
}

// APIBasePath overrides the default "/{id}".
func APIBasePath(path string) RestAPIOption { return func(c *apiConfig) { c.basePath = path } }

func APIResourceName(name string) RestAPIOption {
	return func(c *apiConfig) { c.resourceName = name }
}

func APIOpenAPITag(tag string) RestAPIOption { return func(c *apiConfig) { c.openAPITag = tag } }

func APIPermissionName(name string) RestAPIOption {
	return func(c *apiConfig) { c.permissionName = name }
}
