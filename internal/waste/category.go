// Package waste defines the fixed medical waste category table and the
// normalizer that turns raw Gemini output into a bounded classification
// record. The category set is closed: every classification resolves to one
// of the four categories below, with General-Biomedical as the conservative
// catch-all, so downstream consumers never see an "unknown" bin.
package waste

// Category is one of the four fixed disposal classes. Values are the stable
// wire keys used in API responses and tracking token payloads.
type Category string

// Medical Waste Categories
//
// | key                | bin color | disposal code |
// |--------------------|-----------|---------------|
// | general_biomedical | Yellow    | MW-GB         |
// | infectious         | Red       | MW-INF        |
// | sharp              | Blue      | MW-SH         |
// | pharmaceutical     | Black     | MW-PH         |
const (
	// CategoryGeneral is non-hazardous biomedical waste (containers,
	// packaging, non-contaminated materials). Also the safe default when a
	// classification cannot be confidently interpreted.
	CategoryGeneral Category = "general_biomedical"

	// CategoryInfectious is waste contaminated with bodily fluids, blood,
	// or pathological material.
	CategoryInfectious Category = "infectious"

	// CategorySharp is anything that can cut or puncture: needles,
	// syringes, scalpels, broken glass.
	CategorySharp Category = "sharp"

	// CategoryPharmaceutical is medicine-related waste: expired drugs,
	// vials, chemotherapy waste.
	CategoryPharmaceutical Category = "pharmaceutical"
)

// DefaultCategory is the conservative fallback bin. Operational policy: an
// item we cannot classify still gets a disposal recommendation, and the
// yellow general-biomedical stream is the safe one to over-fill.
const DefaultCategory = CategoryGeneral

// Info describes the physical handling attributes of one category.
type Info struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	BinColor     string `json:"bin_color"`
	DisposalCode string `json:"disposal_code"`
}

// Categories maps each category key to its bin attributes. The table is
// read-only after init; callers must not mutate the returned Info.
var Categories = map[Category]Info{
	CategoryGeneral: {
		Name:         "General Biomedical Waste",
		Description:  "Non-hazardous medical items like containers, packaging, non-contaminated materials",
		BinColor:     "Yellow",
		DisposalCode: "MW-GB",
	},
	CategoryInfectious: {
		Name:         "Infectious/Pathological Waste",
		Description:  "Items contaminated with bodily fluids, blood, pathological waste",
		BinColor:     "Red",
		DisposalCode: "MW-INF",
	},
	CategorySharp: {
		Name:         "Sharp Objects",
		Description:  "Needles, syringes, scalpels, broken glass, sharp objects",
		BinColor:     "Blue",
		DisposalCode: "MW-SH",
	},
	CategoryPharmaceutical: {
		Name:         "Pharmaceutical Waste",
		Description:  "Expired medicines, drug containers, pharmaceutical waste",
		BinColor:     "Black",
		DisposalCode: "MW-PH",
	},
}

// All lists the categories in severity-table order, for stable iteration in
// API responses and stats snapshots.
var All = []Category{
	CategoryGeneral,
	CategoryInfectious,
	CategorySharp,
	CategoryPharmaceutical,
}

// Valid reports whether c is one of the four known category keys.
func (c Category) Valid() bool {
	_, ok := Categories[c]
	return ok
}

// Info returns the bin attributes for c, falling back to the default
// category's attributes for unknown keys.
func (c Category) Info() Info {
	if info, ok := Categories[c]; ok {
		return info
	}
	return Categories[DefaultCategory]
}

// ParseCategory resolves a raw category key to a known Category. Unknown or
// empty keys resolve to DefaultCategory; ok reports whether the key was one
// of the four valid values.
func ParseCategory(key string) (c Category, ok bool) {
	c = Category(key)
	if c.Valid() {
		return c, true
	}
	return DefaultCategory, false
}
