package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campus-hub/course-registry/internal/domain/user"
)

func userCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	c.AddCommand(userCreateCmd(opts))
	return c
}

func userCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		in       user.RegisterInput
		role     string
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account (admins included)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, newLogger(cfg))
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			gate, err := a.gate()
			if err != nil {
				return err
			}

			in.Role = user.Role(role)
			in.Active = !inactive

			u, err := gate.Register(ctx, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", u.Role, u.ID, u.Email)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "full name")
	f.StringVar(&in.Email, "email", "", "email address (login)")
	f.StringVar(&in.Password, "password", "", "plain-text password, hashed before storage")
	f.StringVar(&in.CPF, "cpf", "", "national taxpayer id")
	f.StringVar(&in.Registration, "registration", "", "registration number (login)")
	f.StringVar(&in.Course, "course", "", "course name")
	f.IntVar(&in.FirstSemester.Year, "semester-year", 0, "year of the first semester")
	f.IntVar(&in.FirstSemester.Unity, "semester-unity", 1, "term of the first semester")
	f.StringVar(&role, "role", string(user.RoleStudent), "admin or student")
	f.BoolVar(&inactive, "inactive", false, "create the account as inactive")

	for _, name := range []string{"name", "email", "password", "cpf", "registration", "course"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
