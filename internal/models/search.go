package models

// SearchResult groups matches over the curriculum catalog
type SearchResult struct {
	Modules []ModuleListItem `json:"modules"`
	Lessons []LessonListItem `json:"lessons"`
}

// Recommendation points the user at a next step in the curriculum
type Recommendation struct {
	Kind        string `json:"kind"` // "lesson" or "module"
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	ModuleSlug  string `json:"moduleSlug,omitempty"`
	ModuleTitle string `json:"moduleTitle,omitempty"`
	Reason      string `json:"reason"`
}
