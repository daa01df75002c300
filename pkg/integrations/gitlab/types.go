package gitlab

import "encoding/json"

type apiGroup struct {
	ID       int64  `json:"id"`
	FullPath string `json:"full_path"`
}

type apiProject struct {
	PathWithNamespace string `json:"path_with_namespace"`
	DefaultBranch     string `json:"default_branch"`
	Archived          bool   `json:"archived"`
	EmptyRepo         bool   `json:"empty_repo"`
}

type apiTreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

func decode(body []byte, v any) error {
	return json.Unmarshal(body, v)
}
