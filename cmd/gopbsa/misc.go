/*
 * misc.go, part of gopbsa.
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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmera/gopbsa/config"
	"github.com/rmera/gopbsa/ndx"
)

func newGroupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "groups index.ndx",
		Short: "List the groups of an index file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			I, err := ndx.Read(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, g := range I.List() {
				fmt.Fprintf(w, "%3d %-24s %8d atoms\n", g.Number, g.Name, g.Size)
			}
			return nil
		},
	}
}

func newSettingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settings [file]",
		Short: "Write a settings file with the default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fname := "settings.toml"
			if len(args) > 0 {
				fname = args[0]
			}
			if err := config.WriteDefault(fname); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "settings written to", fname)
			return nil
		},
	}
}
