/*
 * constants.go, part of gopbsa.
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

package pbsa

// Physical constants (CODATA 2018) and conversion factors used across gopbsa.
const (
	Eps0      = 8.854187812800001e-12 //vacuum permittivity, F/m
	Kb        = 1.380649e-23          //J/K
	NA        = 6.02214076e23         //1/mol
	Qe        = 1.602176634e-19       //C
	R         = 8.314462618e-3        //kJ/(mol K)
	CoulombKJ = 1389.35457520287      //kJ/mol Å e^-2
	KJ2Kcal   = 1 / 4.184
	Kcal2KJ   = 4.184
	Nm2A      = 10.0
	A2Nm      = 0.1
)

// RT returns the thermal energy at temperature T (K), in kJ/mol.
func RT(T float64) float64 {
	return R * T
}
