package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lending-library/internal/handler/http/auth"
	"lending-library/internal/infra/loader"
)

// annotationNoStore marks commands that run without opening a store.
const annotationNoStore = "no-store"

func (a *app) addBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addBook key=value...",
		Short: "Add a book or more copies of a stored one",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := makeReq(args)
			if err != nil {
				return err
			}
			book, err := a.lib.AddBook(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(book)
		},
	}
}

func (a *app) findBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "findBooks search=WORDS [index=N] [count=N]",
		Short: "Search the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := makeReq(args)
			if err != nil {
				return err
			}
			books, err := a.lib.FindBooks(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(books)
		},
	}
}

func (a *app) checkoutBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkoutBook isbn=ISBN patronId=ID",
		Short: "Lend a copy of a book to a patron",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := makeReq(args)
			if err != nil {
				return err
			}
			return a.lib.CheckoutBook(cmd.Context(), req)
		},
	}
}

func (a *app) returnBookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "returnBook isbn=ISBN patronId=ID",
		Short: "Take back a copy from a patron",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := makeReq(args)
			if err != nil {
				return err
			}
			return a.lib.ReturnBook(cmd.Context(), req)
		},
	}
}

func (a *app) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every book and checkout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.lib.Clear(cmd.Context())
		},
	}
}

func (a *app) loadPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "loadPaths key=PATH...",
		Short: "Add every book from JSON or YAML files",
		Long: `loadPaths reads each file named by a key=PATH argument and adds its
books in order. It stops at the first invalid book; books added before it
stay in the catalog.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := pathArgs(args)
			if err != nil {
				return err
			}
			books, err := loader.ReadBooks(cmd.Context(), paths...)
			if err != nil {
				return err
			}
			_, err = a.lib.LoadBooks(cmd.Context(), books)
			return err
		},
	}
}

func (a *app) tokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:         "token",
		Short:       "Mint a bearer token for the HTTP API",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoStore: "true"},
		RunE: func(*cobra.Command, []string) error {
			secret := a.v.GetString(cfgKeyJWTSecret)
			if len(secret) < 32 {
				return configError("LIBRARY_JWT_SECRET must be at least 32 characters")
			}
			if !auth.KnownRole(role) {
				return configError(fmt.Sprintf("unknown role %q", role))
			}
			tok, err := auth.NewTokens(secret, ttl).Mint(subject, role)
			if err != nil {
				return configError(err.Error())
			}
			_, err = fmt.Fprintln(a.stdout, tok)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "role: admin or librarian")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
