// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// options holds the command-line overrides. Zero values leave the
// configuration untouched.
type options struct {
	configPath string
	topN       int
	users      userList
}

// userList collects repeated -user flags. A single flag may also carry a
// comma-separated list.
type userList []string

func (u *userList) String() string {
	return strings.Join(*u, ",")
}

func (u *userList) Set(value string) error {
	for _, id := range strings.Split(value, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			return fmt.Errorf("empty user ID in %q", value)
		}
		*u = append(*u, id)
	}
	return nil
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("wayfinder", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.IntVar(&opts.topN, "top-n", 0, "recommendations per user (overrides recommend.top_n)")
	fs.Var(&opts.users, "user", "user ID to report on, repeatable (overrides report.users)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
		fmt.Fprintln(output, err)
		return nil, err
	}
	if opts.topN < 0 {
		err := fmt.Errorf("-top-n must be positive, got %d", opts.topN)
		fmt.Fprintln(output, err)
		return nil, err
	}
	return opts, nil
}
