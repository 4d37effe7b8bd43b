/*
 * doc.go, part of gopbsa.
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

/*
Package pbsa holds the pieces shared by all of gopbsa: the run configuration,
physical constants and the error types.

gopbsa estimates receptor-ligand binding free energies with the MM-PBSA
method, and decomposes them per residue. For each selected frame of a
molecular dynamics trajectory it computes the gas-phase interaction energy
(Coulomb plus Lennard-Jones, package mm) and has an external
Poisson-Boltzmann solver (APBS, package apbs) compute polar and apolar
solvation energies for the complex, the receptor and the ligand. Package
results combines the terms into enthalpies, an entropy estimate from
exponential averaging of the MM energies, free energies and binding
constants.

The force field parameters are read from the text dump of a GROMACS run
input file (package top) and cached in a parameter ("qrv") file (package qrv).
Atom groups come from GROMACS index files (package ndx). Package pipeline
ties everything together over a trajectory, and cmd/gopbsa is the command
line program.

Units: coordinates are handled in nm (the simulation units) except where
noted, radii in Å, energies in kJ/mol.
*/
package pbsa
