/*
 * mesh.go, part of gopbsa.
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

// Package mesh sizes the finite difference grids of the Poisson-Boltzmann
// solver from the extent of the atoms in each system.
package mesh

import (
	"math"

	v3 "github.com/rmera/gochem/v3"

	pbsa "github.com/rmera/gopbsa"
)

const (
	minExtent     = 0.1 //Å
	paddedCoarse  = 1.7 //coarse/fine ratio for the padded policy
	paddedExtraLv = 1
	bytesPerPoint = 200
)

// Grid is the geometry of the coarse and fine grids for one system. All
// lengths are in Å.
type Grid struct {
	Min    [3]float64
	Max    [3]float64
	Center [3]float64
	Coarse [3]float64
	Fine   [3]float64
	Dime   [3]int
}

// Points returns the number of grid points.
func (G Grid) Points() int {
	return G.Dime[0] * G.Dime[1] * G.Dime[2]
}

// MemoryMB estimates the memory the solver needs for the grid, in MB.
func (G Grid) MemoryMB() float64 {
	return bytesPerPoint * float64(G.Points()) / 1024 / 1024
}

// Planner turns atom extents into grids following a pbsa.MeshConfig.
type Planner struct {
	cfg    pbsa.MeshConfig
	stride int //2^(levels+1)
}

// NewPlanner returns a planner for the given settings.
func NewPlanner(cfg pbsa.MeshConfig) *Planner {
	return &Planner{cfg: cfg, stride: 1 << uint(cfg.Levels+1)}
}

// MinPoints is the smallest point count the planner returns on any axis.
func (P *Planner) MinPoints() int { return P.stride + 1 }

// Plan returns the grid for the atoms idx in coords (nm), each of them
// covered with its radius (Å). The result depends only on its input.
func (P *Planner) Plan(coords *v3.Matrix, radii []float64, idx []int) (Grid, error) {
	var G Grid
	if len(idx) == 0 {
		return G, &pbsa.GeometryError{Msg: "can't plan a grid for zero atoms"}
	}
	for k := 0; k < 3; k++ {
		G.Min[k] = math.Inf(1)
		G.Max[k] = math.Inf(-1)
	}
	for _, i := range idx {
		if i < 0 || i >= coords.NVecs() || i >= len(radii) {
			return G, &pbsa.GeometryError{Atoms: []int{i}, Msg: "atom index out of range for the mesh"}
		}
		r := radii[i] * pbsa.A2Nm
		for k := 0; k < 3; k++ {
			c := coords.At(i, k)
			G.Min[k] = math.Min(G.Min[k], c-r)
			G.Max[k] = math.Max(G.Max[k], c+r)
		}
	}
	for k := 0; k < 3; k++ {
		G.Min[k] *= pbsa.Nm2A
		G.Max[k] *= pbsa.Nm2A
		G.Center[k] = (G.Max[k] + G.Min[k]) / 2
		ext := math.Max(G.Max[k]-G.Min[k], minExtent)
		G.Coarse[k], G.Fine[k], G.Dime[k] = P.axis(ext)
	}
	return G, nil
}

// axis applies the sizing policy to one axis of extent ext (Å).
func (P *Planner) axis(ext float64) (coarse, fine float64, n int) {
	t := float64(P.stride)
	df := P.cfg.Spacing
	switch P.cfg.Policy {
	case pbsa.MeshPadded:
		fine = ext + 2*P.cfg.FinePadding
		coarse = fine * paddedCoarse
		n = P.stride*(int(math.Round(fine/(t*df)))+1+paddedExtraLv) + 1
	default:
		coarse = ext * P.cfg.CoarseFactor
		fine = math.Min(coarse, ext+P.cfg.FinePadding)
		n = int(math.Floor(fine / df))
		if n < P.stride+1 {
			n = P.stride + 1
		}
		if n%2 == 0 {
			n++
		}
	}
	return coarse, fine, n
}
