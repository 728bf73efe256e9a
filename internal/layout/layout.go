// Package layout computes deterministic canvas positions for the graph:
// companies in type-ordered columns, people clustered under their
// employers, projects beside their producers, and bands for everything
// unconnected. Compute is pure; Apply commits the placements.
package layout

import (
	"context"

	"go.uber.org/zap"

	"github.com/MattEddy/coterie/internal/model"
	"github.com/MattEddy/coterie/internal/store"
)

const (
	canvasHeight = 3000.0
	cardSpacingX = 220.0
	cardSpacingY = 300.0
	columnGap    = 400.0
	maxPerColumn = 10
	startX       = 300.0
	bandWrap     = 12
)

// columnOrder is the left-to-right order of company columns. Companies
// whose primary type is not listed fall into the trailing "other" group.
var columnOrder = []string{
	"studio", "streamer", "network", "production_company",
	"agency", "management", "financier", "distributor",
}

const otherGroup = "other"

// Placement is one computed position.
type Placement struct {
	ObjectID string
	X, Y     float64
}

// Compute derives positions from the snapshot. With force every object
// is re-placed; otherwise only objects without coordinates are placed,
// and anchor lookups (employers, producers) fall back to existing
// positions. Identical snapshots always produce identical placements:
// objects are walked in snapshot order and groups in columnOrder.
func Compute(snap *store.Snapshot, force bool) []Placement {
	var companies, people, projects []model.GraphObject
	for _, o := range snap.Objects {
		if !force && o.Positioned() {
			continue
		}
		switch o.Class {
		case model.ClassCompany:
			companies = append(companies, o)
		case model.ClassPerson:
			people = append(people, o)
		case model.ClassProject:
			projects = append(projects, o)
		}
	}

	var placements []Placement
	placed := make(map[string]Placement)
	record := func(id string, x, y float64) {
		p := Placement{ObjectID: id, X: x, Y: y}
		placements = append(placements, p)
		placed[id] = p
	}

	// anchorPosition prefers a placement from this run, then an existing
	// position on the canvas.
	anchorPosition := func(id string) (x, y float64, ok bool) {
		if p, hit := placed[id]; hit {
			return p.X, p.Y, true
		}
		if o, hit := snap.Object(id); hit && o.Positioned() {
			return *o.MapX, *o.MapY, true
		}
		return 0, 0, false
	}

	// Companies: columns grouped by primary type, vertically centered,
	// wrapping after maxPerColumn.
	groups := make(map[string][]model.GraphObject)
	for _, c := range companies {
		group := otherGroup
		if types := snap.TypesOfObject(c.ID); len(types) > 0 {
			if id := types[0].ID; contains(columnOrder, id) {
				group = id
			}
		}
		groups[group] = append(groups[group], c)
	}

	currentX := startX
	for _, group := range append(append([]string{}, columnOrder...), otherGroup) {
		members := groups[group]
		if len(members) == 0 {
			continue
		}
		columnsNeeded := (len(members) + maxPerColumn - 1) / maxPerColumn
		lastColumnSize := len(members) % maxPerColumn
		fullColumns := columnsNeeded
		if lastColumnSize > 0 {
			fullColumns--
		}

		for i, c := range members {
			column := i / maxPerColumn
			row := i % maxPerColumn

			inColumn := maxPerColumn
			if column >= fullColumns && lastColumnSize > 0 {
				inColumn = lastColumnSize
			}

			x := currentX + float64(column)*cardSpacingX
			y := canvasHeight/2 - float64(inColumn)*cardSpacingY/2 + float64(row)*cardSpacingY
			record(c.ID, x, y)
		}
		currentX += float64(columnsNeeded)*cardSpacingX + columnGap
	}

	// People: stacked below-right of their employer, three per mini
	// column. The first employed_by edge in snapshot order wins.
	employerCount := make(map[string]int)
	var unplacedPeople []model.GraphObject
	for _, p := range people {
		employer := employerOf(snap, p.ID)
		if employer == "" {
			unplacedPeople = append(unplacedPeople, p)
			continue
		}
		ex, ey, ok := anchorPosition(employer)
		if !ok {
			unplacedPeople = append(unplacedPeople, p)
			continue
		}
		n := employerCount[employer]
		employerCount[employer] = n + 1
		record(p.ID, ex+120+float64(n/3)*100, ey+100+float64(n%3)*120)
	}
	for i, p := range unplacedPeople {
		x := startX + float64(i%bandWrap)*cardSpacingX
		y := canvasHeight - 300 + float64(i/bandWrap)*cardSpacingY
		record(p.ID, x, y)
	}

	// Projects: fanned out to the left of their producer, two per mini
	// row. The first produces edge in snapshot order wins.
	producerCount := make(map[string]int)
	var unplacedProjects []model.GraphObject
	for _, pr := range projects {
		producer := producerOf(snap, pr.ID)
		if producer == "" {
			unplacedProjects = append(unplacedProjects, pr)
			continue
		}
		px, py, ok := anchorPosition(producer)
		if !ok {
			unplacedProjects = append(unplacedProjects, pr)
			continue
		}
		n := producerCount[producer]
		producerCount[producer] = n + 1
		record(pr.ID, px-120-float64(n/2)*100, py+float64(n%2)*100)
	}
	for i, pr := range unplacedProjects {
		x := startX + float64(i%bandWrap)*cardSpacingX
		y := 150 + float64(i/bandWrap)*cardSpacingY
		record(pr.ID, x, y)
	}

	return placements
}

// employerOf returns the target of the person's first employed_by edge.
func employerOf(snap *store.Snapshot, personID string) string {
	for _, r := range snap.Relationships {
		if r.SourceID == personID && r.Type == model.RelEmployedBy {
			return r.TargetID
		}
	}
	return ""
}

// producerOf returns the source of the project's first produces edge.
func producerOf(snap *store.Snapshot, projectID string) string {
	for _, r := range snap.Relationships {
		if r.TargetID == projectID && r.Type == model.RelProduces {
			return r.SourceID
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Failure records one placement that could not be committed.
type Failure struct {
	ObjectID string
	Err      error
}

// Result aggregates an Apply run.
type Result struct {
	Applied  int
	Failures []Failure
}

// Apply commits placements through the store one object at a time.
// Failures are collected rather than aborting the batch, so one bad
// write does not strand the rest of the canvas.
func Apply(ctx context.Context, st store.Store, placements []Placement, logger *zap.Logger) Result {
	if logger == nil {
		logger = zap.NewNop()
	}
	var res Result
	snap := st.Snapshot()
	for _, p := range placements {
		obj, ok := snap.Object(p.ObjectID)
		if !ok {
			continue
		}
		x, y := p.X, p.Y
		obj.MapX = &x
		obj.MapY = &y
		if _, err := st.UpdateObject(ctx, obj); err != nil {
			logger.Warn("layout update failed",
				zap.String("object_id", p.ObjectID),
				zap.Error(err))
			res.Failures = append(res.Failures, Failure{ObjectID: p.ObjectID, Err: err})
			continue
		}
		res.Applied++
	}
	return res
}
