package contrib

import (
	"slices"
	"strings"

	"github.com/agentx-labs/exthost/internal/registration"
)

func toolMetadata(sym Symbol, cfg toolConfig) *registration.ToolMetadata {
	id := cmpOr(cfg.id, sym.Name)
	return &registration.ToolMetadata{
		ID:          id,
		Name:        cmpOr(cfg.name, id),
		Description: describe(cfg.description, sym),
		Tags:        orderedTags(cfg.tags),
		Protect:     cfg.protect,
		Module:      sym.Module,
	}
}

func promptMetadata(sym Symbol, cfg promptConfig) *registration.PromptMetadata {
	id := cmpOr(cfg.id, sym.Name)
	name := cmpOr(cfg.name, id)
	return &registration.PromptMetadata{
		ID:          id,
		Name:        name,
		Title:       cmpOr(cfg.title, name),
		Description: describe(cfg.description, sym),
		Tags:        sortedTags(cfg.tags),
		Protect:     cfg.protect,
		Module:      sym.Module,
	}
}

func restAPIMetadata(sym Symbol, cfg apiConfig) *registration.RestAPIMetadata {
	id := cmpOr(cfg.id, sym.Name)
	name := cmpOr(cfg.name, id)
	resource := cmpOr(cfg.resourceName, strings.ToLower(id))
	return &registration.RestAPIMetadata{
		ID:             id,
		Name:           name,
		Description:    describe(cfg.description, sym),
		BasePath:       normalizeBasePath(cmpOr(cfg.basePath, "/"+id)),
		Module:         sym.Module,
		ResourceName:   resource,
		OpenAPITag:     cmpOr(cfg.openAPITag, name),
		PermissionName: cmpOr(cfg.permissionName, resource),
	}
}

// describe prefers an explicit description, even an empty one, over the
// payload's doc.
func describe(explicit *string, sym Symbol) string {
	if explicit != nil {
		return *explicit
	}
	return firstLine(sym.Doc)
}

// orderedTags drops blanks and duplicates, keeping first-seen order.
func orderedTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func sortedTags(tags []string) []string {
	out := orderedTags(tags)
	slices.Sort(out)
	return out
}

func normalizeBasePath(p string) string {
	p = strings.TrimRight(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func cmpOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
