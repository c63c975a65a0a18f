package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dusk-indust/usermgr/internal/userapi"
)

func writeTable(w io.Writer, users []userapi.User) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tSTREET\tCITY\tCOMPANY")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Name, u.Email, u.Phone, u.Address.Street, u.Address.City, u.Company.Name)
	}
	return tw.Flush()
}

func writeCard(w io.Writer, u userapi.User) {
	fmt.Fprintf(w, "User %d: %s\n", u.ID, u.Name)
	fmt.Fprintf(w, "  Email:    %s\n", u.Email)
	fmt.Fprintf(w, "  Phone:    %s\n", u.Phone)
	if u.Website != "" {
		fmt.Fprintf(w, "  Website:  %s\n", u.Website)
	}
	if u.Address.Street != "" || u.Address.City != "" {
		fmt.Fprintf(w, "  Address:  %s\n", joinNonEmpty(u.Address.Street, u.Address.City))
	}
	if u.Company.Name != "" {
		fmt.Fprintf(w, "  Company:  %s\n", u.Company.Name)
	}
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}
