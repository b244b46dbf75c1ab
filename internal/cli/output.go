package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/xlab/treeprint"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// printGarden writes one garden, as JSON or as a tree.
func (a *app) printGarden(w io.Writer, g *types.Garden) error {
	if a.flags.jsonMode {
		return writeJSON(w, g)
	}
	_, err := io.WriteString(w, gardenTree(g).String())
	return err
}

// printGardens writes a list of gardens, as a JSON array or as a forest.
func (a *app) printGardens(w io.Writer, gs []*types.Garden) error {
	if a.flags.jsonMode {
		if gs == nil {
			gs = []*types.Garden{}
		}
		return writeJSON(w, gs)
	}
	if len(gs) == 0 {
		_, err := fmt.Fprintln(w, "No gardens.")
		return err
	}

	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s gardens", humanize.Comma(int64(len(gs)))))
	for _, g := range gs {
		b := tree.AddBranch(gardenTitle(g))
		b.AddNode("location: " + g.Location)
		b.AddNode("owner: " + g.Owner.String())
		b.AddNode("plants: " + plantSummary(g.Plants))
	}
	_, err := io.WriteString(w, tree.String())
	return err
}

// printPlants writes a plant list, one per line or as a JSON array.
func (a *app) printPlants(w io.Writer, plants []string) error {
	if a.flags.jsonMode {
		if plants == nil {
			plants = []string{}
		}
		return writeJSON(w, plants)
	}
	if len(plants) == 0 {
		_, err := fmt.Fprintln(w, "No plants.")
		return err
	}
	_, err := fmt.Fprintln(w, strings.Join(plants, "\n"))
	return err
}

func gardenTree(g *types.Garden) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(gardenTitle(g))
	tree.AddNode("location: " + g.Location)
	tree.AddNode("owner: " + g.Owner.String())
	tree.AddNode("image: " + valueOrDash(g.Image))
	tree.AddNode("created: " + timestamp(g.CreatedAt))
	if g.UpdatedAt != nil {
		tree.AddNode("updated: " + timestamp(*g.UpdatedAt))
	} else {
		tree.AddNode("updated: -")
	}

	plants := tree.AddBranch(fmt.Sprintf("plants (%d)", len(g.Plants)))
	for _, p := range g.Plants {
		plants.AddNode(p)
	}
	return tree
}

func gardenTitle(g *types.Garden) string {
	return fmt.Sprintf("%s [%s]", g.Name, g.ID)
}

func plantSummary(plants []string) string {
	if len(plants) == 0 {
		return "-"
	}
	return strings.Join(plants, ", ")
}

func timestamp(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.UTC().Format(time.RFC3339), humanize.Time(t))
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
