package contacts

import (
	"context"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MattEddy/coterie/internal/match"
	"github.com/MattEddy/coterie/internal/model"
	"github.com/MattEddy/coterie/internal/store"
)

// DefaultImportThreshold is looser than the matcher's default so that
// slightly mangled address-book spellings still land on the right
// company.
const DefaultImportThreshold = 0.75

const (
	defaultCompanyType = "production_company"
	defaultPersonType  = "executive"
	sourceAttr         = "contacts"
)

// Importer reconciles contacts against a store.
type Importer struct {
	Store     store.Store
	Log       *zap.Logger
	Threshold float64
}

// NewImporter builds an importer with the default threshold.
func NewImporter(st store.Store, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{Store: st, Log: logger, Threshold: DefaultImportThreshold}
}

// Failure records one contact that could not be imported.
type Failure struct {
	Contact Contact
	Err     error
}

// Result aggregates an import run.
type Result struct {
	People    int
	Companies int
	Linked    int
	Failures  []Failure
}

// MatchOrganizations fuzzy-matches every distinct organization in
// contacts against the snapshot's company names. Matching is pure CPU
// work, so it fans out across cores; results come back keyed by
// organization so the order of goroutine completion never shows.
func (im *Importer) MatchOrganizations(ctx context.Context, snap *store.Snapshot, contacts []Contact) (map[string]string, error) {
	companies := snap.ObjectsByClass(model.ClassCompany)
	names := make([]string, 0, len(companies))
	for _, c := range companies {
		names = append(names, c.Name)
	}

	seen := make(map[string]bool)
	var orgs []string
	for _, c := range contacts {
		if c.Organization == "" || seen[c.Organization] {
			continue
		}
		seen[c.Organization] = true
		orgs = append(orgs, c.Organization)
	}

	matched := make([]string, len(orgs))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, org := range orgs {
		i, org := i, org
		g.Go(func() error {
			if m, ok := match.BestMatch(org, names, im.Threshold); ok {
				matched[i] = m.Candidate
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for i, org := range orgs {
		if matched[i] != "" {
			out[org] = matched[i]
		}
	}
	return out, nil
}

// Import writes contacts into the store. Organizations resolve in three
// steps: exact lowercase name, fuzzy match against existing companies,
// then creation with the default company type. Each contact becomes a
// person linked to its company with employed_by. Failures are collected
// per contact instead of aborting the batch.
func (im *Importer) Import(ctx context.Context, contacts []Contact) (Result, error) {
	snap := im.Store.Snapshot()
	matchedOrgs, err := im.MatchOrganizations(ctx, snap, contacts)
	if err != nil {
		return Result{}, err
	}

	companiesByName := make(map[string]model.GraphObject)
	for _, c := range snap.ObjectsByClass(model.ClassCompany) {
		companiesByName[strings.ToLower(c.Name)] = c
	}

	var res Result
	for _, contact := range contacts {
		if err := im.importOne(ctx, contact, matchedOrgs, companiesByName, &res); err != nil {
			im.Log.Warn("contact import failed",
				zap.String("contact", contact.DisplayName()),
				zap.Error(err))
			res.Failures = append(res.Failures, Failure{Contact: contact, Err: err})
		}
	}
	return res, nil
}

func (im *Importer) importOne(ctx context.Context, contact Contact, matchedOrgs map[string]string, companiesByName map[string]model.GraphObject, res *Result) error {
	var companyID string
	if org := contact.Organization; org != "" {
		key := strings.ToLower(org)
		switch {
		case companiesByName[key].ID != "":
			companyID = companiesByName[key].ID
		case matchedOrgs[org] != "":
			if c, ok := companiesByName[strings.ToLower(matchedOrgs[org])]; ok {
				companyID = c.ID
				companiesByName[key] = c
			}
		}
		if companyID == "" {
			company, err := im.Store.CreateObject(ctx, model.ClassCompany, org,
				[]string{defaultCompanyType},
				model.Attributes{"source": model.String(sourceAttr)})
			if err != nil {
				return err
			}
			companiesByName[key] = company
			companyID = company.ID
			res.Companies++
		}
	}

	attrs := model.Attributes{"source": model.String(sourceAttr)}
	if contact.Title != "" {
		attrs["title"] = model.String(contact.Title)
	}
	if len(contact.Emails) > 0 {
		attrs["email"] = model.String(contact.Emails[0])
	}
	if len(contact.Phones) > 0 {
		attrs["phone"] = model.String(contact.Phones[0])
	}
	person, err := im.Store.CreateObject(ctx, model.ClassPerson, contact.DisplayName(),
		[]string{defaultPersonType}, attrs)
	if err != nil {
		return err
	}
	res.People++

	if companyID != "" {
		if _, err := im.Store.CreateRelationship(ctx, person.ID, companyID, model.RelEmployedBy, nil); err != nil {
			return err
		}
		res.Linked++
	}
	return nil
}
