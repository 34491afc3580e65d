package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Overlay marks the path of one turn on the rendered graph.
type Overlay struct {
	Visited []domain.NodeID
	Current domain.NodeID
}

// OverlayFromTurn highlights the nodes a turn visited and the branch it took.
func OverlayFromTurn(state domain.TurnState) *Overlay {
	return &Overlay{Visited: state.Path, Current: state.NextNode}
}

// GenerateMermaid produces a Mermaid flowchart from the routing graph.
// Shapes follow the node kind:
//   - start and end: ((circle))
//   - workflow: {rhombus}, since it selects the branch
//   - response: [rectangle]
//
// Conditional edges are labelled with their branch.
func GenerateMermaid(nodes []domain.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Kind {
		case domain.NodeKindStart, domain.NodeKindEnd:
			opener, closer = "((", "))"
		case domain.NodeKindWorkflow:
			opener, closer = "{", "}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escape(string(node.ID)), closer)

		for _, e := range node.Edges {
			arrow := "-->"
			if e.IsConditional() {
				arrow = fmt.Sprintf("-- \"%s\" -->", escape(string(e.Branch)))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(e.To))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] || id == overlay.Current {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

var idReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")

func sanitizeMermaidID(id domain.NodeID) string {
	s := idReplacer.Replace(string(id))
	// "end" is a Mermaid keyword.
	if strings.EqualFold(s, "end") {
		return s + "_"
	}
	return s
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
