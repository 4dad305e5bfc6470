// Package filter builds Kulturpool filter_by and sort_by expressions from
// structured facet selections.
//
// Values within a facet group are OR-ed, groups are AND-ed, and groups are
// always emitted in the same order so identical selections produce
// byte-identical expressions. Date ranges use interval overlap: a record
// whose [dateMin, dateMax] shares any point with [from, to] matches.
//
// # Usage
//
//	expr := filter.Build(filter.Facets{
//	    Institutions: []string{"Albertina", "Belvedere"},
//	    ObjectTypes:  []string{"IMAGE"},
//	    Dates:        filter.DateRange{From: 1900, To: 1950},
//	})
//	// (dataProvider:=Albertina || dataProvider:=Belvedere) && edmType:=IMAGE && dateMin:<=... && ...
package filter
