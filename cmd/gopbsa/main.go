/*
 * main.go, part of gopbsa.
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

// gopbsa computes MM-PBSA binding free energies, decomposed per residue,
// from a GROMACS trajectory and topology.
//
//	gopbsa run -s md.tpr -f md.dcd -n index.ndx -r Protein -l LIG
//
// Run "gopbsa help" for the list of commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pbsa "github.com/rmera/gopbsa"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gopbsa:", err)
		if trail := pbsa.Trail(err); len(trail) > 0 {
			fmt.Fprintln(os.Stderr, "  in:", trail)
		}
		os.Exit(1)
	}
}
