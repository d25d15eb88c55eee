package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matheus3301/wppdesk/internal/auth"
	"github.com/matheus3301/wppdesk/internal/billing"
	"github.com/matheus3301/wppdesk/internal/helpdesk"
	"github.com/matheus3301/wppdesk/internal/lock"
	"github.com/matheus3301/wppdesk/internal/outbox"
	"github.com/matheus3301/wppdesk/internal/profile"
	"github.com/matheus3301/wppdesk/internal/realtime"
	"github.com/matheus3301/wppdesk/internal/store"
	"github.com/matheus3301/wppdesk/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTicketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ticket <id>",
		Short: "Show a ticket, checked against the agent's queues",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := tui.ParseTicketID(args[0])
			if err != nil {
				return err
			}
			return withCore(func(ctx context.Context, c core) error {
				ctx, cancel := context.WithTimeout(ctx, requestTimeout)
				defer cancel()

				s, err := auth.Bootstrap(ctx, c.Helpdesk, c.Store, c.Config.DeskToken, c.Logger)
				if err != nil {
					return err
				}
				t, err := c.Helpdesk.Ticket(ctx, id)
				if err != nil {
					return err
				}
				if !helpdesk.CanAccess(&s.User, t) {
					return errors.New("access not permitted")
				}
				if jsonFlag {
					outputJSON(t)
					return nil
				}
				printTicket(t)
				return nil
			})
		},
	}
}

func printTicket(t *helpdesk.Ticket) {
	fmt.Printf("Ticket:   #%d\n", t.ID)
	fmt.Printf("Status:   %s\n", t.Status)
	fmt.Printf("Contact:  %s (%s)\n", t.Contact.Name, t.Contact.Number)
	if t.Assigned() {
		fmt.Printf("Assignee: %s\n", t.User.Name)
	}
	if len(t.Tags) > 0 {
		names := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			names[i] = tag.Name
		}
		fmt.Printf("Tags:     %s\n", strings.Join(names, ", "))
	}
	for _, e := range t.Contact.ExtraInfo {
		fmt.Printf("  %s: %s\n", e.Name, e.Value)
	}
}

func newTicketsCmd() *cobra.Command {
	var (
		status string
		search string
		page   int
	)
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List tickets in the agent's queues",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withCore(func(ctx context.Context, c core) error {
				ctx, cancel := context.WithTimeout(ctx, requestTimeout)
				defer cancel()

				s, err := auth.Bootstrap(ctx, c.Helpdesk, c.Store, c.Config.DeskToken, c.Logger)
				if err != nil {
					return err
				}
				q := helpdesk.TicketQuery{Status: status, Search: search, Page: page, ShowAll: s.User.IsAdmin()}
				for _, queue := range s.User.Queues {
					q.QueueIDs = append(q.QueueIDs, queue.ID)
				}
				res, err := c.Helpdesk.Tickets(ctx, q)
				if err != nil {
					return err
				}
				if jsonFlag {
					outputJSON(res)
					return nil
				}
				if len(res.Tickets) == 0 {
					fmt.Println("No tickets found.")
					return nil
				}
				for _, t := range res.Tickets {
					fmt.Printf("#%-6d %-8s %-24s %s\n", t.ID, t.Status, t.Contact.Name, firstLine(t.LastMessage))
				}
				if res.HasMore {
					fmt.Printf("(more: --page %d)\n", page+1)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", helpdesk.StatusOpen, "ticket status")
	cmd.Flags().StringVar(&search, "search", "", "search term")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func newInvoiceCmd() *cobra.Command {
	var ticketID int64
	cmd := &cobra.Command{
		Use:   "invoice <cpf-or-cnpj>",
		Short: "Look up a duplicate invoice for a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return withCore(func(ctx context.Context, c core) error {
				ctx, cancel := context.WithTimeout(ctx, requestTimeout)
				defer cancel()

				chargeCode := int64(c.Config.ChargeCode)
				res, err := billing.Lookup(ctx, c.Billing, args[0], chargeCode)
				if err != nil {
					return err
				}
				rec := &store.InvoiceLookup{
					TicketID:     ticketID,
					TaxID:        res.TaxID,
					CustomerCode: res.Customer.Code,
					ChargeCode:   chargeCode,
					Message:      res.Invoice.Message,
					PDFURL:       res.Invoice.PDFURL,
					Barcode:      res.Invoice.Barcode,
				}
				if err := c.Store.RecordInvoice(rec); err != nil {
					c.Logger.Warn("failed to record invoice lookup", zap.Error(err))
				}
				if jsonFlag {
					outputJSON(res)
					return nil
				}
				fmt.Printf("Customer: %d %s\n", res.Customer.Code, res.Customer.Name)
				fmt.Printf("Message:  %s\n", res.Invoice.Message)
				fmt.Printf("PDF:      %s\n", res.Invoice.PDFURL)
				fmt.Printf("Barcode:  %s\n", res.Invoice.Barcode)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&ticketID, "ticket", 0, "ticket the lookup is recorded against")
	return cmd
}

func newInvoicesCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "invoices [cpf-or-cnpj]",
		Short: "Show recent invoice lookups",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var taxID string
			if len(args) > 0 {
				taxID = billing.NormalizeTaxID(args[0])
			}
			return withCore(func(_ context.Context, c core) error {
				lookups, err := c.Store.RecentInvoices(taxID, limit)
				if err != nil {
					return err
				}
				if jsonFlag {
					outputJSON(lookups)
					return nil
				}
				if len(lookups) == 0 {
					fmt.Println("No lookups found.")
					return nil
				}
				for _, l := range lookups {
					fmt.Printf("%-16s ticket #%-6d customer %-8d %s\n", l.TaxID, l.TicketID, l.CustomerCode, l.PDFURL)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries")
	return cmd
}

func newFollowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow <ticket-id>",
		Short: "Stream realtime events for a ticket until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := tui.ParseTicketID(args[0])
			if err != nil {
				return err
			}
			return withCore(func(ctx context.Context, c core) error {
				bootCtx, cancel := context.WithTimeout(ctx, requestTimeout)
				s, err := auth.Bootstrap(bootCtx, c.Helpdesk, c.Store, c.Config.DeskToken, c.Logger)
				cancel()
				if err != nil {
					return err
				}

				d := &realtime.WSDialer{URL: c.Config.SocketURL, Token: c.Helpdesk.Token, Logger: c.Logger}
				sub, err := d.Dial(ctx, s.Tenant, id)
				if err != nil {
					return err
				}
				defer func() { _ = sub.Close() }()

				for {
					select {
					case <-ctx.Done():
						return nil
					case evt, ok := <-sub.Events():
						if !ok {
							return errors.New("connection closed")
						}
						printEvent(evt)
					}
				}
			})
		},
	}
}

func printEvent(evt realtime.Event) {
	if jsonFlag {
		outputJSON(evt)
		return
	}
	switch {
	case evt.Topic == realtime.TopicTicket && evt.Ticket != nil:
		fmt.Printf("%s %s #%d status=%s\n", evt.Topic, evt.Action, evt.Ticket.ID, evt.Ticket.Status)
	case evt.Topic == realtime.TopicTicket:
		fmt.Printf("%s %s #%d\n", evt.Topic, evt.Action, evt.TicketID)
	default:
		fmt.Printf("%s %s contact=%d %s\n", evt.Topic, evt.Action, evt.ContactID, evt.ContactPatch)
	}
}

func newLoginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Validate a session token and store it in the profile",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if token == "" {
				return errors.New("--token is required")
			}
			return withCore(func(ctx context.Context, c core) error {
				ctx, cancel := context.WithTimeout(ctx, requestTimeout)
				defer cancel()

				s, err := auth.Bootstrap(ctx, c.Helpdesk, c.Store, token, c.Logger)
				if err != nil {
					return err
				}
				if s.Cached {
					return errors.New("backend unreachable; token not verified")
				}
				if jsonFlag {
					outputJSON(s.User)
					return nil
				}
				fmt.Printf("Logged in as %s (%s), tenant %d\n", s.User.Name, s.User.Profile, s.Tenant)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "session token")
	return cmd
}

func newOutboxCmd() *cobra.Command {
	var retry bool
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "List failed replies, optionally requeueing them",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withCore(func(_ context.Context, c core) error {
				failed, err := c.Store.FailedOutbox()
				if err != nil {
					return err
				}
				if retry {
					n, err := outbox.NewSender(c.Store, c.Helpdesk, nil, c.Logger).RetryFailed()
					if err != nil {
						return err
					}
					fmt.Printf("Requeued %d message(s); they are sent by the running desk UI.\n", n)
					return nil
				}
				if jsonFlag {
					outputJSON(failed)
					return nil
				}
				if len(failed) == 0 {
					fmt.Println("No failed messages.")
					return nil
				}
				for _, e := range failed {
					fmt.Printf("%s ticket #%-6d attempts=%d %s\n", e.ClientMsgID, e.TicketID, e.Attempts, e.ErrorMessage)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&retry, "retry", false, "requeue every failed message")
	return cmd
}

type profileInfo struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	InUse   bool   `json:"in_use"`
	PID     int    `json:"pid,omitempty"`
	Default bool   `json:"default"`
}

func newProfilesCmd() *cobra.Command {
	profiles := &cobra.Command{
		Use:   "profiles",
		Short: "Manage profiles",
	}
	profiles.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List known profiles",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			names, err := profile.List()
			if err != nil {
				return err
			}
			current := profile.Resolve("")
			var out []profileInfo
			for _, n := range names {
				pid, held := lock.Holder(profile.Dir(n))
				out = append(out, profileInfo{Name: n, Path: profile.Dir(n), InUse: held, PID: pid, Default: n == current})
			}
			if jsonFlag {
				outputJSON(out)
				return nil
			}
			if len(out) == 0 {
				fmt.Println("No profiles found.")
				return nil
			}
			for _, p := range out {
				state := "idle"
				if p.InUse {
					state = fmt.Sprintf("in use by %d", p.PID)
				}
				mark := " "
				if p.Default {
					mark = "*"
				}
				fmt.Printf("%s %-20s %s (%s)\n", mark, p.Name, p.Path, state)
			}
			return nil
		},
	})
	return profiles
}
