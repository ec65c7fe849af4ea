package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsline/helpdesk/internal/ticket"
)

func newTicketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Inspect and manage tickets from the terminal",
	}

	cmd.AddCommand(newTicketListCmd())
	cmd.AddCommand(newTicketShowCmd())
	cmd.AddCommand(newTicketCloseCmd())
	return cmd
}

func newTicketListCmd() *cobra.Command {
	var (
		configPath string
		openOnly   bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTicketList(cmd, configPath, openOnly, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to helpdesk config file")
	cmd.Flags().BoolVar(&openOnly, "open", false, "show only open tickets")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max tickets to show")
	return cmd
}

func runTicketList(cmd *cobra.Command, configPath string, openOnly bool, limit int) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	tickets, err := ticket.Recent(gormDB, limit)
	if err != nil {
		return err
	}
	if openOnly {
		open := tickets[:0]
		for _, t := range tickets {
			if t.Status == "open" {
				open = append(open, t)
			}
		}
		tickets = open
	}
	if len(tickets) == 0 {
		fmt.Fprintln(out, "No tickets.")
		return nil
	}

	fmt.Fprintf(out, "%-6s %-8s %-20s %-16s %-12s %s\n", "ID", "STATUS", "CATEGORY", "REQUESTER", "CREATED", "SUBJECT")
	for _, t := range tickets {
		fmt.Fprintf(out, "%-6d %-8s %-20s %-16s %-12s %s\n",
			t.ID, t.Status, t.Category, t.UserName, t.CreatedAt.Format(time.DateOnly), t.Subject)
	}
	return nil
}

func newTicketShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one ticket with its conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			return runTicketShow(cmd, configPath, id)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to helpdesk config file")
	return cmd
}

func runTicketShow(cmd *cobra.Command, configPath string, id uint) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	engine, err := ticket.NewEngine(ticket.EngineOpts{DB: gormDB})
	if err != nil {
		return err
	}

	t, err := engine.Get(id)
	if err != nil {
		return err
	}
	msgs, err := engine.Messages(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Ticket #%d: %s\n", t.ID, t.Subject)
	fmt.Fprintf(out, "Status:    %s\n", t.Status)
	fmt.Fprintf(out, "Category:  %s\n", t.Category)
	fmt.Fprintf(out, "Requester: %s (%s)\n", t.UserName, t.UserID)
	if t.AssignedAdmin != nil {
		fmt.Fprintf(out, "Assignee:  %s\n", *t.AssignedAdmin)
	}
	fmt.Fprintf(out, "Created:   %s\n", t.CreatedAt.Format(time.DateTime))
	if t.ClosedAt != nil {
		fmt.Fprintf(out, "Closed:    %s\n", t.ClosedAt.Format(time.DateTime))
	}
	fmt.Fprintf(out, "\n%s\n", t.Description)

	if len(msgs) > 0 {
		fmt.Fprintln(out, "\nConversation:")
		for _, m := range msgs {
			role := "user"
			if m.FromAdmin {
				role = "admin"
			}
			body := m.Body
			if m.Kind == "photo" {
				body = "[photo] " + body
			}
			fmt.Fprintf(out, "  [%s] %s (%s): %s\n",
				m.CreatedAt.Format(time.DateTime), m.UserName, role, body)
		}
	}
	return nil
}

func newTicketCloseCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Close a ticket as the main admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			return runTicketClose(cmd, configPath, id)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to helpdesk config file")
	return cmd
}

func runTicketClose(cmd *cobra.Command, configPath string, id uint) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	engine, err := ticket.NewEngine(ticket.EngineOpts{DB: gormDB})
	if err != nil {
		return err
	}

	closer := ticket.Actor{ID: cfg.Chat.MainAdminID, Name: "Main Admin", Admin: true}
	if err := engine.Close(context.Background(), id, closer); err != nil {
		return err
	}
	fmt.Fprintf(out, "Ticket #%d closed.\n", id)
	return nil
}

func parseTicketID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid ticket id %q", arg)
	}
	return uint(id), nil
}
