package filter

import "slices"

// Index field names.
const (
	FieldInstitution = "dataProvider"
	FieldObjectType  = "edmType"
	FieldCreator     = "creator"
	FieldSubject     = "subject"
	FieldMedium      = "medium"
	FieldDCType      = "dcType"
	FieldDateMin     = "dateMin"
	FieldDateMax     = "dateMax"
	FieldTitleSort   = "titleSort"
	FieldID          = "id"
)

// KnownInstitutions is the closed set of institution names accepted as
// dataProvider values.
var KnownInstitutions = []string{
	"Albertina",
	"Belvedere",
	"Österreichische Nationalbibliothek",
	"Wiener Stadt- und Landesarchiv",
	"MAK",
	"Weltmuseum Wien",
	"Technisches Museum Wien",
	"Naturhistorisches Museum Wien",
}

// KnownObjectTypes is the closed set of edmType values.
var KnownObjectTypes = []string{"IMAGE", "TEXT", "SOUND", "VIDEO", "3D"}

// KnownDCTypes is the closed set of Dublin Core type values.
var KnownDCTypes = []string{
	"Fotografie",
	"Gemälde",
	"Zeichnung",
	"Grafik",
	"Druckwerk",
	"Karte",
	"Münze",
	"Medaille",
}

// Intersect returns the values of in that appear in vocab, preserving the
// order of in. Duplicates are kept.
func Intersect(in, vocab []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if slices.Contains(vocab, v) {
			out = append(out, v)
		}
	}
	return out
}
