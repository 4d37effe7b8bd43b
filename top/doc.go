/*
 * doc.go, part of gopbsa.
 *
 * Copyright 2025 Raul Mera A. (rmeraaatacademicosdotutadotcl)
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
Package top reads the force-field topology of a Gromacs run input file, as
printed by "gmx dump -s". The molecule types of the dump are expanded into
the full system, so every atom gets its charge, van der Waals type, residue
and a radius for the continuum electrostatics. The pairwise Lennard-Jones
coefficients are kept in a NonbondedTable.

Only the sections needed for MM-PBSA are read; bonded terms are ignored.
*/
package top
