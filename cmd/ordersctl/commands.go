package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kendall-kelly/formalwear-orders-api/coordinator"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/intake"
	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
	"github.com/kendall-kelly/formalwear-orders-api/money"
	"github.com/spf13/cobra"
)

var errDraftInvalid = errors.New("draft has validation errors")

func parseOrderID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("order id must be a positive integer, got %q", arg)
	}
	return uint(id), nil
}

// loadOrder fetches the order named by the first argument
func (c *cli) loadOrder(ctx context.Context, args []string) (*dto.OrderRecord, error) {
	id, err := parseOrderID(args[0])
	if err != nil {
		return nil, err
	}
	return c.client.GetOrder(ctx, id)
}

// reportTransition prints the outcome of a lifecycle action. A declined
// confirmation is not a failure.
func reportTransition(out io.Writer, rec *dto.OrderRecord, err error) error {
	if errors.Is(err, coordinator.ErrNotConfirmed) {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Order #%d is now %s\n", rec.ID, rec.Phase)
	return nil
}

func newIntakeCmd(c *cli) *cobra.Command {
	var (
		orderID       uint
		lookupAddress bool
	)
	cmd := &cobra.Command{
		Use:   "intake <draft.yaml>",
		Short: "Submit an intake draft",
		Long: `Reads a draft file of dotted field names ("client.name", "jacket.color",
"payment.total", ...) and submits it as a new order, or as changes to an
existing order with --order-id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readDraftFile(args[0])
			if err != nil {
				return err
			}

			w := intake.NewWizard(c.client,
				intake.WithAddressLookup(c.client),
				intake.WithBalanceDebounce(c.cfg.BalanceDebounce),
				intake.WithLogger(c.log))
			defer w.Cancel()

			ctx := cmd.Context()
			if orderID != 0 {
				if err := w.LoadForEdit(ctx, orderID); err != nil {
					return err
				}
			}
			if err := applyDraft(w, entries); err != nil {
				return err
			}
			if lookupAddress {
				if err := w.LookupPostalCode(ctx); err != nil {
					return err
				}
			}

			id, err := w.Submit(ctx)
			var verrs intake.ValidationErrors
			if errors.As(err, &verrs) {
				out := cmd.OutOrStdout()
				for _, key := range verrs.Keys() {
					fmt.Fprintf(out, "%s: %s\n", key, verrs[key])
				}
				return errDraftInvalid
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order #%d saved\n", id)
			return nil
		},
	}
	cmd.Flags().UintVar(&orderID, "order-id", 0, "update this order instead of creating one")
	cmd.Flags().BoolVar(&lookupAddress, "lookup-address", false, "fill blank address fields from the postal code")
	return cmd
}

func newExportCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <order-id>",
		Short: "Write an order as an intake draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.loadOrder(cmd.Context(), args)
			if err != nil {
				return err
			}
			data, err := exportDraft(intake.RecoverDraft(rec))
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func newActionsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "actions <order-id>",
		Short: "List the actions available for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.loadOrder(cmd.Context(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			phase := rec.Phase
			if rec.Overdue {
				phase += " (overdue)"
			}
			fmt.Fprintf(out, "Order #%d: %s\n", rec.ID, phase)
			actions := c.coordinator(cmd).AvailableActions(rec)
			if len(actions) == 0 {
				fmt.Fprintln(out, "No actions available")
				return nil
			}
			for _, a := range actions {
				fmt.Fprintf(out, "  %s\n", a)
			}
			return nil
		},
	}
}

// newTransitionCmd builds the commands whose action takes no input
func newTransitionCmd(c *cli, use, short string, run func(*coordinator.Coordinator, context.Context, *dto.OrderRecord) (*dto.OrderRecord, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <order-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.loadOrder(cmd.Context(), args)
			if err != nil {
				return err
			}
			updated, err := run(c.coordinator(cmd), cmd.Context(), rec)
			return reportTransition(cmd.OutOrStdout(), updated, err)
		},
	}
}

func newStartCmd(c *cli) *cobra.Command {
	return newTransitionCmd(c, "start", "Start production of a pending order", (*coordinator.Coordinator).StartProduction)
}

func newReadyCmd(c *cli) *cobra.Command {
	return newTransitionCmd(c, "ready", "Mark an order in production as ready for pickup", (*coordinator.Coordinator).MarkProduced)
}

func newReturnedCmd(c *cli) *cobra.Command {
	return newTransitionCmd(c, "returned", "Complete an order whose garments came back", (*coordinator.Coordinator).MarkReturned)
}

func newReopenCmd(c *cli) *cobra.Command {
	return newTransitionCmd(c, "reopen", "Return a refused order to pending", (*coordinator.Coordinator).ReturnToPending)
}

func newAssignCmd(c *cli) *cobra.Command {
	var attendant string
	cmd := &cobra.Command{
		Use:   "assign <order-id>",
		Short: "Assign an attendant to a pending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rec, err := c.loadOrder(ctx, args)
			if err != nil {
				return err
			}
			coord := c.coordinator(cmd)
			m, err := coord.OpenAssign(ctx, rec)
			if err != nil {
				return err
			}
			m.AttendantID = matchAttendant(m.Attendants, attendant)
			if m.AttendantID == 0 {
				coord.CloseModal(rec.ID)
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Eligible attendants:")
				for _, a := range m.Attendants {
					fmt.Fprintf(out, "  %d  %s\n", a.ID, a.Name)
				}
				if attendant == "" {
					return coordinator.ErrNoAttendant
				}
				return fmt.Errorf("%q: %w", attendant, coordinator.ErrUnknownAttendant)
			}
			updated, err := coord.Assign(ctx, m)
			return reportTransition(cmd.OutOrStdout(), updated, err)
		},
	}
	cmd.Flags().StringVarP(&attendant, "attendant", "a", "", "attendant id or name")
	return cmd
}

// matchAttendant resolves an id or a case-insensitive name, 0 when nothing matches
func matchAttendant(attendants []dto.EmployeeSummary, ref string) uint {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0
	}
	id, _ := strconv.ParseUint(ref, 10, 32)
	for _, a := range attendants {
		if (id != 0 && a.ID == uint(id)) || strings.EqualFold(a.Name, ref) {
			return a.ID
		}
	}
	return 0
}

func newPickupCmd(c *cli) *cobra.Command {
	var pays []string
	cmd := &cobra.Command{
		Use:   "pickup <order-id>",
		Short: "Register that the client picked up an order",
		Long: `Registers the pickup. When the balance is settled now, pass up to two
--pay amount:method pairs (methods: pix, credit, debit, cash), for example
--pay 100,00:pix --pay 53.40:cash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payments, err := parsePayments(pays)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			rec, err := c.loadOrder(ctx, args)
			if err != nil {
				return err
			}
			coord := c.coordinator(cmd)
			m, err := coord.OpenPickup(rec)
			if err != nil {
				return err
			}
			defer coord.CloseModal(rec.ID)

			m.Collect = len(payments) > 0
			for i, p := range payments {
				if err := m.SetPayment(i, p.Amount, p.Method); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Outstanding balance: %s\n", money.Format(m.Balance))
			updated, err := coord.PickUp(ctx, m)
			return reportTransition(cmd.OutOrStdout(), updated, err)
		},
	}
	cmd.Flags().StringArrayVar(&pays, "pay", nil, "payment as amount:method, repeat for a second payment")
	return cmd
}

// parsePayments reads amount:method pairs. The amount may use a decimal
// comma, so the method is whatever follows the last colon.
func parsePayments(raw []string) ([]lifecycle.PaymentForm, error) {
	if len(raw) > lifecycle.MaxPickupPayments {
		return nil, fmt.Errorf(lifecycle.ErrMsgPaymentTooMany, lifecycle.MaxPickupPayments)
	}
	out := make([]lifecycle.PaymentForm, 0, len(raw))
	for _, r := range raw {
		i := strings.LastIndex(r, ":")
		if i < 0 {
			return nil, fmt.Errorf("payment %q must be amount:method", r)
		}
		out = append(out, lifecycle.PaymentForm{
			Amount: strings.TrimSpace(r[:i]),
			Method: lifecycle.PaymentMethod(strings.ToLower(strings.TrimSpace(r[i+1:]))),
		})
	}
	return out, nil
}

func newRefuseCmd(c *cli) *cobra.Command {
	var (
		reason        string
		justification string
	)
	cmd := &cobra.Command{
		Use:   "refuse <order-id>",
		Short: "Refuse an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rec, err := c.loadOrder(ctx, args)
			if err != nil {
				return err
			}
			coord := c.coordinator(cmd)
			m, err := coord.OpenRefuse(ctx, rec)
			if err != nil {
				return err
			}
			m.ReasonID = matchReason(m.Reasons, reason)
			m.Justification = justification
			if m.ReasonID == 0 {
				coord.CloseModal(rec.ID)
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Refusal reasons:")
				for _, r := range m.Reasons {
					fmt.Fprintf(out, "  %d  %s\n", r.ID, r.Label)
				}
				return coordinator.ErrNoReason
			}
			updated, err := coord.Refuse(ctx, m)
			return reportTransition(cmd.OutOrStdout(), updated, err)
		},
	}
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "refusal reason id or label")
	cmd.Flags().StringVarP(&justification, "justification", "j", "", "free text kept with the refusal")
	return cmd
}

func matchReason(reasons []dto.RefusalReason, ref string) uint {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0
	}
	id, _ := strconv.ParseUint(ref, 10, 32)
	for _, r := range reasons {
		if (id != 0 && r.ID == uint(id)) || strings.EqualFold(r.Label, ref) {
			return r.ID
		}
	}
	return 0
}

func newBoardCmd(c *cli) *cobra.Command {
	var filter dto.OrderFilter
	cmd := &cobra.Command{
		Use:   "board",
		Short: "List orders with the count per phase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter.Phase != "" {
				if _, err := lifecycle.ParsePhase(filter.Phase); err != nil {
					return err
				}
			}
			board := coordinator.NewBoard(c.client, filter)
			if err := board.Refresh(cmd.Context()); err != nil {
				return err
			}
			printBoard(cmd.OutOrStdout(), board.Orders(), board.Counts())
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter.Phase, "phase", "p", "", "only orders in this phase")
	cmd.Flags().BoolVar(&filter.Overdue, "overdue", false, "only overdue orders")
	return cmd
}

func printBoard(out io.Writer, orders []dto.OrderRecord, counts dto.PhaseCounts) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPHASE\tCLIENT\tPICKUP\tRETURN\tBALANCE\t")
	for _, o := range orders {
		phase := o.Phase
		if o.Overdue {
			phase += "!"
		}
		client, balance := "", "0.00"
		if o.Client != nil {
			client = o.Client.Name
		}
		if o.Payment != nil {
			balance = money.Format(money.FromFloat(o.Payment.Balance))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n", o.ID, phase, client, o.PickupDate, o.ReturnDate, balance)
	}
	tw.Flush()

	parts := make([]string, 0, len(lifecycle.Phases)+1)
	for _, p := range lifecycle.Phases {
		parts = append(parts, fmt.Sprintf("%s %d", p, counts[string(p)]))
	}
	parts = append(parts, fmt.Sprintf("%s %d", lifecycle.OverdueFilter, counts[lifecycle.OverdueFilter]))
	fmt.Fprintln(out, strings.Join(parts, " | "))
}
