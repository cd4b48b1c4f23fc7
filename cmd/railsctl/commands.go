package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/railskit/version"
)

func newResourcesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List the defined resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(_ context.Context, s *session) (any, error) {
				type entry struct {
					Name   string `json:"name"`
					Plural string `json:"plural"`
					URL    string `json:"url"`
				}
				out := make([]entry, 0, len(s.registry))
				for _, name := range s.registry.Names() {
					c := s.registry[name]
					out = append(out, entry{Name: c.Name(), Plural: c.PluralName(), URL: c.URL(nil)})
				}
				return out, nil
			})
		},
	}
}

func newQueryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "query <resource>",
		Short: "Fetch a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				class, err := s.registry.Lookup(args[0])
				if err != nil {
					return nil, err
				}
				params, err := parseParams(opts.params)
				if err != nil {
					return nil, err
				}
				return class.Query(ctx, params, nil)
			})
		},
	}
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Fetch one member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				class, err := s.registry.Lookup(args[0])
				if err != nil {
					return nil, err
				}
				params, err := parseParams(opts.params)
				if err != nil {
					return nil, err
				}
				return class.Get(ctx, args[1], params)
			})
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <resource>",
		Short: "Create a member from --data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				class, err := s.registry.Lookup(args[0])
				if err != nil {
					return nil, err
				}
				data, err := parseData(opts.data)
				if err != nil {
					return nil, err
				}
				inst, err := class.New(data)
				if err != nil {
					return nil, err
				}
				return inst.Create(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&opts.data, "data", "", "JSON object with the member's fields")
	return cmd
}

func newUpdateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <resource> <id>",
		Short: "Update a member from --data",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				class, err := s.registry.Lookup(args[0])
				if err != nil {
					return nil, err
				}
				data, err := parseData(opts.data)
				if err != nil {
					return nil, err
				}
				inst, err := class.New(data)
				if err != nil {
					return nil, err
				}
				inst.Set("id", args[1])
				return inst.Update(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&opts.data, "data", "", "JSON object with the fields to change")
	return cmd
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, s *session) (any, error) {
				class, err := s.registry.Lookup(args[0])
				if err != nil {
					return nil, err
				}
				inst, err := class.New(map[string]any{"id": args[1]})
				if err != nil {
					return nil, err
				}
				return inst.Delete(ctx)
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if short {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version string")
	return cmd
}
