// Package domaintree groups a flat asset collection into a host/path
// hierarchy for the workbench's scope pane.
package domaintree

import (
	"sort"

	"trx/internal/asset"
	"trx/internal/urlutil"
)

// Node is one level of the host/path hierarchy. AssetIDs accumulates
// every asset reachable at or below the node, so a collapsed node can
// show an aggregate count without re-walking its subtree.
type Node struct {
	Name     string           // host or path segment
	Path     string           // host plus the /-joined segments down to this node
	Depth    int              // 0 for host nodes
	Children map[string]*Node // keyed by path segment
	AssetIDs []int64
}

// Build groups assets by host and path. It is a pure function, re-run
// from scratch whenever the collection changes. Unparseable URLs fall
// back to a heuristic host extraction and still land in the tree; query
// strings never contribute to tree keys.
func Build(assets []asset.Asset) map[string]*Node {
	hosts := make(map[string]*Node)

	for i := range assets {
		a := &assets[i]
		host := urlutil.Host(a.URL)

		node, ok := hosts[host]
		if !ok {
			node = &Node{
				Name:     host,
				Path:     host,
				Depth:    0,
				Children: make(map[string]*Node),
			}
			hosts[host] = node
		}
		node.AssetIDs = append(node.AssetIDs, a.ID)

		for _, seg := range urlutil.Segments(a.URL) {
			child, ok := node.Children[seg]
			if !ok {
				child = &Node{
					Name:     seg,
					Path:     node.Path + "/" + seg,
					Depth:    node.Depth + 1,
					Children: make(map[string]*Node),
				}
				node.Children[seg] = child
			}
			child.AssetIDs = append(child.AssetIDs, a.ID)
			node = child
		}
	}

	return hosts
}

// Row is one line of the flattened tree display.
type Row struct {
	Node     *Node
	Expanded bool
}

// Flatten turns the host map into a display list in host order,
// descending only into nodes present in the expanded set (keyed by
// Node.Path). Children are emitted in segment order.
func Flatten(hosts map[string]*Node, expanded map[string]bool) []Row {
	names := make([]string, 0, len(hosts))
	for name := range hosts {
		names = append(names, name)
	}
	sort.Strings(names)

	var rows []Row
	for _, name := range names {
		flattenNode(hosts[name], expanded, &rows)
	}
	return rows
}

func flattenNode(node *Node, expanded map[string]bool, rows *[]Row) {
	isExpanded := expanded[node.Path]
	*rows = append(*rows, Row{Node: node, Expanded: isExpanded})
	if !isExpanded {
		return
	}

	segs := make([]string, 0, len(node.Children))
	for seg := range node.Children {
		segs = append(segs, seg)
	}
	sort.Strings(segs)
	for _, seg := range segs {
		flattenNode(node.Children[seg], expanded, rows)
	}
}
