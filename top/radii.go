/*
 * radii.go, part of gopbsa.
 *
 * Copyright 2024 Raul Mera  <rmeraa{at}academicos(dot)uta(dot)cl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package top

import (
	"regexp"
	"strings"
)

// van der Waals radii (Å) for the common bio-elements. Values from Bondi
// (1964) and Mantina et al. (2009) for the elements Bondi does not list.
// Hydrogens are handled by hydrogenRadius.
var symbolVdwrad = map[string]float64{
	"C":  1.70,
	"O":  1.52,
	"N":  1.55,
	"P":  1.80,
	"S":  1.80,
	"Se": 1.90,
	"K":  2.75,
	"Ca": 2.31,
	"Mg": 1.73,
	"Cl": 1.75,
	"Na": 2.27,
	"Cu": 2.00,
	"Zn": 2.02,
	"Co": 1.95,
	"Fe": 1.96,
	"Mn": 1.96,
	"Cr": 1.97,
	"Si": 2.10,
	"Be": 1.53,
	"F":  1.47,
	"Br": 1.83,
	"I":  1.98,
}

// two-letter elements that show up as monoatomic ions, keyed by upper case.
var ionSymbols = map[string]string{
	"CL": "Cl", "NA": "Na", "MG": "Mg", "ZN": "Zn", "CA": "Ca",
	"FE": "Fe", "CU": "Cu", "MN": "Mn", "CO": "Co", "BR": "Br",
	"SE": "Se", "CR": "Cr", "SI": "Si", "BE": "Be",
}

var elementRe = regexp.MustCompile(`^([a-zA-Z]+)\d*`)

// Element guesses the element symbol from a force field atom name. Two-letter
// symbols are only considered for monoatomic residues, so "CA" is an alpha
// carbon unless it is alone in its residue. Returns "" if nothing matches.
func Element(name string, monoatomic bool) string {
	m := elementRe.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	letters := strings.ToUpper(m[1])
	if monoatomic {
		if s, ok := ionSymbols[letters]; ok {
			return s
		}
	}
	return letters[:1]
}

// hydrogenRadius follows the modified Bondi set: hydrogens bonded to
// nitrogen get 1.3 Å, all others 1.2 Å.
func hydrogenRadius(heavy string) float64 {
	if heavy != "" && Element(heavy, false) == "N" {
		return 1.30
	}
	return 1.20
}

// ElementRadius returns the radius (Å) for an atom called name. heavy is the
// name of the heavy atom a hydrogen is bonded to (empty if unknown or not a
// hydrogen). def is returned for unknown elements.
func ElementRadius(name, heavy string, monoatomic bool, def float64) float64 {
	el := Element(name, monoatomic)
	if el == "H" {
		return hydrogenRadius(heavy)
	}
	if r, ok := symbolVdwrad[el]; ok {
		return r
	}
	return def
}
