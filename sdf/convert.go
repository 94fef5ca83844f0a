package sdf

import "strings"

// MolfilesToStructures pairs already known molfiles with names by position.
// A missing or blank name falls back to the positional placeholder.
func MolfilesToStructures(molfiles []string, names []string) []Structure {
	structures := make([]Structure, 0, len(molfiles))
	for i, m := range molfiles {
		var name string
		if i < len(names) {
			name = strings.TrimSpace(names[i])
		}
		structures = append(structures, newStructure(m, Properties{}, name, i))
	}
	return structures
}
