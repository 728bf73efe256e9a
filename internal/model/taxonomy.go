package model

// Class ids.
const (
	ClassCompany = "company"
	ClassPerson  = "person"
	ClassProject = "project"
)

// Relationship type ids referenced by code.
const (
	RelEmployedBy = "employed_by"
	RelProduces   = "produces"
)

// SeedClasses returns the fixed object classes. Seeding is idempotent:
// stores skip it when the class table is already populated.
func SeedClasses() []ObjectClass {
	return []ObjectClass{
		{ID: ClassCompany, DisplayName: "Company", Icon: "building.2", Color: "#3B82F6"},
		{ID: ClassPerson, DisplayName: "Person", Icon: "person.fill", Color: "#10B981"},
		{ID: ClassProject, DisplayName: "Project", Icon: "film", Color: "#F59E0B"},
	}
}

// SeedTypes returns the predefined object types, partitioned by class.
func SeedTypes() []ObjectType {
	return []ObjectType{
		{ID: "studio", DisplayName: "Studio", Class: ClassCompany, Icon: "building.2.fill", Color: "#3B82F6"},
		{ID: "parent_company", DisplayName: "Parent Company", Class: ClassCompany, Icon: "building.columns", Color: "#1E40AF"},
		{ID: "network", DisplayName: "Network", Class: ClassCompany, Icon: "tv", Color: "#7C3AED"},
		{ID: "streamer", DisplayName: "Streamer", Class: ClassCompany, Icon: "play.tv", Color: "#DC2626"},
		{ID: "production_company", DisplayName: "Production Company", Class: ClassCompany, Icon: "film.stack", Color: "#059669"},
		{ID: "agency", DisplayName: "Agency", Class: ClassCompany, Icon: "person.3", Color: "#EA580C"},
		{ID: "management", DisplayName: "Management", Class: ClassCompany, Icon: "person.2", Color: "#DB2777"},
		{ID: "financier", DisplayName: "Financier", Class: ClassCompany, Icon: "dollarsign.circle", Color: "#CA8A04"},
		{ID: "distributor", DisplayName: "Distributor", Class: ClassCompany, Icon: "shippingbox", Color: "#0891B2"},
		{ID: "guild_union", DisplayName: "Guild/Union", Class: ClassCompany, Icon: "person.badge.shield.checkmark", Color: "#6B7280"},
		{ID: "executive", DisplayName: "Executive", Class: ClassPerson, Icon: "person.badge.key", Color: "#1E40AF"},
		{ID: "producer", DisplayName: "Producer", Class: ClassPerson, Icon: "person.crop.rectangle", Color: "#7C3AED"},
		{ID: "creative", DisplayName: "Creative", Class: ClassPerson, Icon: "pencil.and.outline", Color: "#059669"},
		{ID: "talent", DisplayName: "Talent", Class: ClassPerson, Icon: "star", Color: "#CA8A04"},
		{ID: "agent", DisplayName: "Agent", Class: ClassPerson, Icon: "briefcase", Color: "#EA580C"},
		{ID: "manager", DisplayName: "Manager", Class: ClassPerson, Icon: "person.badge.clock", Color: "#DB2777"},
		{ID: "lawyer", DisplayName: "Lawyer", Class: ClassPerson, Icon: "text.book.closed", Color: "#6B7280"},
		{ID: "investor", DisplayName: "Investor", Class: ClassPerson, Icon: "chart.line.uptrend.xyaxis", Color: "#0891B2"},
		{ID: "feature", DisplayName: "Feature", Class: ClassProject, Icon: "film", Color: "#F59E0B"},
		{ID: "tv_series", DisplayName: "TV Series", Class: ClassProject, Icon: "tv", Color: "#7C3AED"},
		{ID: "limited_series", DisplayName: "Limited Series", Class: ClassProject, Icon: "tv.inset.filled", Color: "#DC2626"},
		{ID: "pilot", DisplayName: "Pilot", Class: ClassProject, Icon: "play.rectangle", Color: "#059669"},
		{ID: "documentary", DisplayName: "Documentary", Class: ClassProject, Icon: "doc.text.image", Color: "#3B82F6"},
		{ID: "short", DisplayName: "Short", Class: ClassProject, Icon: "film.stack", Color: "#6B7280"},
		{ID: "unscripted", DisplayName: "Unscripted", Class: ClassProject, Icon: "person.wave.2", Color: "#EA580C"},
	}
}

// SeedRelationshipTypes returns the predefined relationship types.
// related_to is unrestricted on both sides.
func SeedRelationshipTypes() []RelationshipType {
	return []RelationshipType{
		{ID: "owns", DisplayName: "Owns", ValidSourceClasses: []string{ClassCompany}, ValidTargetClasses: []string{ClassCompany}, Icon: "arrow.down.circle"},
		{ID: "division_of", DisplayName: "Division Of", ValidSourceClasses: []string{ClassCompany}, ValidTargetClasses: []string{ClassCompany}, Icon: "square.grid.2x2"},
		{ID: RelEmployedBy, DisplayName: "Employed By", ValidSourceClasses: []string{ClassPerson}, ValidTargetClasses: []string{ClassCompany}, Icon: "briefcase"},
		{ID: "reports_to", DisplayName: "Reports To", ValidSourceClasses: []string{ClassPerson}, ValidTargetClasses: []string{ClassPerson}, Icon: "arrow.up.circle"},
		{ID: "has_deal_at", DisplayName: "Has Deal At", ValidSourceClasses: []string{ClassCompany}, ValidTargetClasses: []string{ClassCompany}, Icon: "doc.text"},
		{ID: "represents", DisplayName: "Represents", ValidSourceClasses: []string{ClassCompany}, ValidTargetClasses: []string{ClassPerson}, Icon: "person.badge.shield.checkmark"},
		{ID: "represented_by", DisplayName: "Represented By", ValidSourceClasses: []string{ClassPerson}, ValidTargetClasses: []string{ClassCompany}, Icon: "person.badge.shield.checkmark"},
		{ID: "set_up_at", DisplayName: "Set Up At", ValidSourceClasses: []string{ClassProject}, ValidTargetClasses: []string{ClassCompany}, Icon: "building.2"},
		{ID: "attached_to", DisplayName: "Attached To", ValidSourceClasses: []string{ClassPerson}, ValidTargetClasses: []string{ClassProject}, Icon: "paperclip"},
		{ID: RelProduces, DisplayName: "Produces", ValidSourceClasses: []string{ClassCompany}, ValidTargetClasses: []string{ClassProject}, Icon: "film"},
		{ID: "related_to", DisplayName: "Related To", Icon: "link"},
	}
}
