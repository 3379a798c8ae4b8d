package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"vendsim/internal/config"
	"vendsim/internal/machine"
	"vendsim/internal/model"
)

func dispatch(m *machine.Machine, inv CLIInvocation, cfg config.Config, out io.Writer) error {
	args := inv.Args
	switch inv.Command {
	case CmdMenu:
		return renderMenu(out, m.Menu())
	case CmdInventory:
		return renderInventory(out, m.Inventory(), cfg.LowStock)
	case CmdLowStock:
		return renderInventory(out, m.LowStock(cfg.LowStock), cfg.LowStock)
	case CmdHistory:
		return renderSales(out, m.SalesHistory())
	case CmdReport:
		return renderReport(out, m.Report(cfg.ReportTop, cfg.ReportRecent))

	case CmdBuy:
		r, err := m.PlaceOrder(args)
		if len(r.Sales) > 0 {
			if rerr := renderReceipt(out, r); rerr != nil && err == nil {
				err = rerr
			}
		}
		return err

	case CmdRefill:
		amount, err := parseQuantity(args[1])
		if err != nil {
			return err
		}
		if err := m.Refill(args[0], amount); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "Refilled %s by %d\n", args[0], amount)
		return err

	case CmdSetCost:
		cost, err := parseDecimal("unit cost", args[1])
		if err != nil {
			return err
		}
		if err := m.SetIngredientCost(args[0], cost); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "Unit cost of %s set to %s\n", args[0], model.FormatUnitCost(model.RoundUnitCost(cost)))
		return err

	case CmdAddDrink:
		price, recipe, err := parseDrinkSpec(args[1], args[2:])
		if err != nil {
			return err
		}
		if err := m.AddDrink(args[0], price, recipe); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "Added %s\n", args[0])
		return err

	case CmdUpdateDrink:
		price, recipe, err := parseDrinkSpec(args[2], args[3:])
		if err != nil {
			return err
		}
		if err := m.UpdateDrink(args[0], args[1], price, recipe); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "Updated %s\n", args[1])
		return err

	case CmdDeleteDrink:
		if err := m.DeleteDrink(args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "Deleted %s\n", args[0])
		return err

	case CmdCollect:
		amount, err := m.CollectCash()
		if _, werr := fmt.Fprintf(out, "Collected %s\n", model.FormatCurrency(amount)); werr != nil && err == nil {
			err = werr
		}
		return err

	case CmdSetImage:
		if err := m.SetDrinkImage(args[0], args[1]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "Image of %s set to %s\n", args[0], args[1])
		return err

	case CmdClearImage:
		if err := m.ClearDrinkImage(args[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "Image of %s cleared\n", args[0])
		return err

	case CmdImage:
		if !m.HasDrink(args[0]) {
			return &machine.Error{Kind: machine.ErrDrinkNotFound, Subject: args[0]}
		}
		path, ok := m.DrinkImage(args[0])
		if !ok {
			path = "-"
		}
		_, err := fmt.Fprintln(out, path)
		return err
	}
	return invalidInvocationf("unknown command %q", inv.Command)
}

func parseQuantity(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, invalidInvocationf("quantity must be an integer (got %q)", raw)
	}
	return n, nil
}

func parseDecimal(what, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, invalidInvocationf("%s must be a decimal number (got %q)", what, raw)
	}
	return d, nil
}

// parseDrinkSpec reads a price and `ingredient=qty` pairs. The last '=' splits
// a pair, so ingredient names may contain '='.
func parseDrinkSpec(rawPrice string, pairs []string) (decimal.Decimal, model.Recipe, error) {
	price, err := parseDecimal("price", rawPrice)
	if err != nil {
		return decimal.Zero, nil, err
	}
	recipe := model.Recipe{}
	for _, p := range pairs {
		i := strings.LastIndexByte(p, '=')
		if i <= 0 {
			return decimal.Zero, nil, invalidInvocationf("recipe entry must be ingredient=qty (got %q)", p)
		}
		qty, err := parseQuantity(p[i+1:])
		if err != nil {
			return decimal.Zero, nil, err
		}
		name := p[:i]
		if _, dup := recipe[name]; dup {
			return decimal.Zero, nil, invalidInvocationf("ingredient %q listed twice", name)
		}
		recipe[name] = qty
	}
	return price, recipe, nil
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func renderMenu(out io.Writer, items []machine.MenuItem) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "DRINK\tPRICE\tCOST\tAVAILABLE\tRECIPE\tIMAGE")
	for _, it := range items {
		avail := "yes"
		if !it.CanMake {
			avail = "no"
		}
		img := it.Image
		if img == "" {
			img = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", it.Name, model.FormatCurrency(it.Price),
			model.FormatCurrency(it.Cost), avail, formatRecipe(it.Recipe), img)
	}
	return tw.Flush()
}

func formatRecipe(r model.Recipe) string {
	parts := make([]string, 0, len(r))
	for _, name := range r.Ingredients() {
		parts = append(parts, fmt.Sprintf("%s=%d", name, r[name]))
	}
	return strings.Join(parts, ", ")
}

func renderInventory(out io.Writer, items []machine.InventoryItem, lowStock int) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "INGREDIENT\tQUANTITY\tUNIT COST\tSTATUS")
	for _, it := range items {
		status := "ok"
		if it.Quantity < lowStock {
			status = "low"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", it.Name, it.Quantity, model.FormatUnitCost(it.UnitCost), status)
	}
	return tw.Flush()
}

func renderSales(out io.Writer, sales []model.SaleRecord) error {
	tw := newTable(out)
	fmt.Fprintln(tw, "TIME\tDRINK\tPRICE\tCOST\tPROFIT")
	for _, s := range sales {
		ts := "-"
		if !s.Time.IsZero() {
			ts = s.Time.Format(model.TimeLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ts, s.Drink,
			model.FormatCurrency(s.Price), model.FormatCurrency(s.Cost), model.FormatCurrency(s.Profit))
	}
	return tw.Flush()
}

func renderReceipt(out io.Writer, r machine.Receipt) error {
	if _, err := fmt.Fprintf(out, "Order %s\n", r.ID); err != nil {
		return err
	}
	tw := newTable(out)
	for _, s := range r.Sales {
		fmt.Fprintf(tw, "  %s\t%s\n", s.Drink, model.FormatCurrency(s.Price))
	}
	fmt.Fprintf(tw, "  TOTAL\t%s\n", model.FormatCurrency(r.Total))
	return tw.Flush()
}

func renderReport(out io.Writer, r machine.Report) error {
	tw := newTable(out)
	fmt.Fprintf(tw, "Cash\t%s\n", model.FormatCurrency(r.Cash))
	fmt.Fprintf(tw, "Total profit\t%s\n", model.FormatCurrency(r.TotalProfit))
	fmt.Fprintf(tw, "Revenue\t%s\n", model.FormatCurrency(r.Revenue))
	fmt.Fprintf(tw, "Sales\t%d\n", r.SalesCount)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.TopSellers) > 0 {
		fmt.Fprintln(out, "\nTop sellers")
		tw = newTable(out)
		for i, s := range r.TopSellers {
			fmt.Fprintf(tw, "  %d.\t%s\t%d\n", i+1, s.Drink, s.Count)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if len(r.Recent) > 0 {
		fmt.Fprintln(out, "\nRecent sales")
		return renderSales(out, r.Recent)
	}
	return nil
}
