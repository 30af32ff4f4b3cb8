// Package regions holds the canonical names of the Chilean administrative
// regions and the aliases they are commonly written as.
//
// Aliases are keyed in their folded form: accents removed, trimmed and
// upper-cased. The table is built once and never modified.
package regions

import (
	"sort"
	"strconv"
)

type region struct {
	official string
	numeral  string
	number   int
	aliases  []string
}

var catalog = []region{
	{
		official: "Región de Arica y Parinacota",
		numeral:  "XV",
		number:   15,
		aliases:  []string{"REGION DE ARICA Y PARINACOTA", "ARICA Y PARINACOTA", "ARICA PARINACOTA", "ARICA"},
	},
	{
		official: "Región de Tarapacá",
		numeral:  "I",
		number:   1,
		aliases:  []string{"REGION DE TARAPACA", "TARAPACA"},
	},
	{
		official: "Región de Antofagasta",
		numeral:  "II",
		number:   2,
		aliases:  []string{"REGION DE ANTOFAGASTA", "ANTOFAGASTA"},
	},
	{
		official: "Región de Atacama",
		numeral:  "III",
		number:   3,
		aliases:  []string{"REGION DE ATACAMA", "ATACAMA"},
	},
	{
		official: "Región de Coquimbo",
		numeral:  "IV",
		number:   4,
		aliases:  []string{"REGION DE COQUIMBO", "COQUIMBO"},
	},
	{
		official: "Región de Valparaíso",
		numeral:  "V",
		number:   5,
		aliases:  []string{"REGION DE VALPARAISO", "VALPARAISO"},
	},
	{
		official: "Región Metropolitana de Santiago",
		numeral:  "XIII",
		number:   13,
		aliases: []string{
			"REGION METROPOLITANA DE SANTIAGO", "REGION METROPOLITANA", "METROPOLITANA DE SANTIAGO",
			"METROPOLITANA", "REGION DE SANTIAGO", "SANTIAGO", "RM", "R.M.", "R. M.",
		},
	},
	{
		official: "Región del Libertador General Bernardo O'Higgins",
		numeral:  "VI",
		number:   6,
		aliases: []string{
			"REGION DEL LIBERTADOR GENERAL BERNARDO O'HIGGINS", "LIBERTADOR GENERAL BERNARDO O'HIGGINS",
			"LIBERTADOR BERNARDO O'HIGGINS", "REGION DEL LIBERTADOR", "REGION DE O'HIGGINS",
			"O'HIGGINS", "OHIGGINS", "O HIGGINS",
		},
	},
	{
		official: "Región del Maule",
		numeral:  "VII",
		number:   7,
		aliases:  []string{"REGION DEL MAULE", "MAULE"},
	},
	{
		official: "Región de Ñuble",
		numeral:  "XVI",
		number:   16,
		aliases:  []string{"REGION DE NUBLE", "REGION DEL NUBLE", "NUBLE"},
	},
	{
		official: "Región del Biobío",
		numeral:  "VIII",
		number:   8,
		aliases: []string{
			"REGION DEL BIOBIO", "REGION DEL BIO BIO", "REGION DEL BIO-BIO",
			"BIOBIO", "BIO BIO", "BIO-BIO",
		},
	},
	{
		official: "Región de La Araucanía",
		numeral:  "IX",
		number:   9,
		aliases:  []string{"REGION DE LA ARAUCANIA", "LA ARAUCANIA", "ARAUCANIA"},
	},
	{
		official: "Región de Los Ríos",
		numeral:  "XIV",
		number:   14,
		aliases:  []string{"REGION DE LOS RIOS", "LOS RIOS"},
	},
	{
		official: "Región de Los Lagos",
		numeral:  "X",
		number:   10,
		aliases:  []string{"REGION DE LOS LAGOS", "LOS LAGOS"},
	},
	{
		official: "Región de Aysén del General Carlos Ibáñez del Campo",
		numeral:  "XI",
		number:   11,
		aliases: []string{
			"REGION DE AYSEN DEL GENERAL CARLOS IBANEZ DEL CAMPO", "AYSEN DEL GENERAL CARLOS IBANEZ DEL CAMPO",
			"REGION DE AYSEN", "REGION DE AISEN", "AYSEN", "AISEN",
		},
	},
	{
		official: "Región de Magallanes y de la Antártica Chilena",
		numeral:  "XII",
		number:   12,
		aliases: []string{
			"REGION DE MAGALLANES Y DE LA ANTARTICA CHILENA", "MAGALLANES Y DE LA ANTARTICA CHILENA",
			"MAGALLANES Y ANTARTICA CHILENA", "REGION DE MAGALLANES", "MAGALLANES",
		},
	},
}

// byAlias is read-only after package initialization.
var byAlias = buildIndex()

func buildIndex() map[string]string {
	idx := make(map[string]string)
	for _, r := range catalog {
		for _, a := range r.aliases {
			idx[a] = r.official
		}
		n := strconv.Itoa(r.number)
		for _, a := range []string{
			r.numeral, "REGION " + r.numeral, r.numeral + " REGION",
			n, "REGION " + n,
		} {
			idx[a] = r.official
		}
	}
	return idx
}

// Lookup returns the official name for a folded alias.
func Lookup(alias string) (string, bool) {
	name, ok := byAlias[alias]
	return name, ok
}

// Official returns the official region names in north-to-south catalog order.
func Official() []string {
	names := make([]string, len(catalog))
	for i, r := range catalog {
		names[i] = r.official
	}
	return names
}

// Aliases returns every known alias, sorted.
func Aliases() []string {
	keys := make([]string, 0, len(byAlias))
	for k := range byAlias {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
