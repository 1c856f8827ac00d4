package k8sutil

import (
	"sort"
	"strings"
)

// GetLabelSelector builds an equality based selector from labels and joins
// it with extra, which may already be a selector expression.
func GetLabelSelector(labels map[string]string, extra string) string {
	var labelSelector []string
	if extra = strings.TrimSpace(extra); extra != "" {
		labelSelector = append(labelSelector, extra)
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		labelSelector = append(labelSelector, k+"="+labels[k])
	}
	return strings.Join(labelSelector, ",")
}
