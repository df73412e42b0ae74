package internal

// ReconstructInterior rebuilds the path from the cameFrom map and returns the
// nodes strictly between start and end, ordered from start towards end.
// It returns nil when end has no predecessor or the walk never reaches start.
func ReconstructInterior[NodeType comparable](
	cameFrom map[NodeType]NodeType,
	end NodeType,
	start NodeType,
) []NodeType {
	current, exists := cameFrom[end]
	if !exists {
		return nil
	}

	var path []NodeType
	for current != start {
		path = append(path, current)
		previousNode, exists := cameFrom[current]
		if !exists || len(path) > len(cameFrom) {
			return nil
		}
		current = previousNode
	}

	// reverse path
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}
